// Package http wires the gin router. Room directory CRUD lives in a
// separate service; this surface is the websocket endpoint plus
// read-only observability.
package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/auxroom/server/internal/adapters/ws"
	"github.com/auxroom/server/internal/config"
	"github.com/auxroom/server/internal/core"
	"github.com/auxroom/server/internal/domain"
)

func SetupRouter(ctx context.Context, cfg *config.Config, handler *ws.Handler, roster *core.Roster) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// GET /api/rooms/:code/members — live members of a room's group
	api.GET("/rooms/:code/members", func(c *gin.Context) {
		code := domain.RoomCode(c.Param("code"))
		members := roster.Members(code)
		c.JSON(http.StatusOK, gin.H{
			"members": members,
			"count":   len(members),
		})
	})

	// GET /ws/rooms/:code?token=... — the room session connection
	r.GET("/ws/rooms/:code", func(c *gin.Context) {
		handler.HandleRoom(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
