package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/auxroom/server/internal/adapters/auth"
	router "github.com/auxroom/server/internal/adapters/http"
	"github.com/auxroom/server/internal/adapters/store"
	"github.com/auxroom/server/internal/adapters/ws"
	"github.com/auxroom/server/internal/app"
	"github.com/auxroom/server/internal/config"
	"github.com/auxroom/server/internal/core"
	"github.com/auxroom/server/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	roomStore, participants := buildStore(cfg)
	validator := auth.NewJWT(cfg.Auth.Secret)
	roster := core.NewRoster()
	picker := app.NewCatalogPicker(cfg.CatalogSongs())
	coord := app.NewCoordinator(roomStore, roster, picker)
	handler := ws.NewHandler(validator, roomStore, participants, roster, coord, cfg.WS)

	r := router.SetupRouter(ctx, cfg, handler, roster)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Str("store", cfg.Store.Backend).Msg("auxroom server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited gracefully")
}

func buildStore(cfg *config.Config) (core.RoomStore, core.ParticipantFinder) {
	if cfg.Store.Backend == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		s := store.NewRedis(rdb)
		return s, s
	}

	mem := store.NewMemory()
	if cfg.Demo.Enabled {
		seedDemoRoom(mem, cfg.Demo)
	}
	return mem, mem
}

// seedDemoRoom makes the memory backend usable without the room
// directory service: one active room with a host participant.
func seedDemoRoom(mem *store.Memory, demo config.Demo) {
	now := time.Now()
	room := &domain.Room{
		ID:                domain.RoomID(uuid.NewString()),
		Code:              domain.RoomCode(demo.RoomCode),
		Name:              demo.RoomName,
		Status:            domain.StatusActive,
		MaxParticipants:   10,
		AllowGuestControl: true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := mem.Save(context.Background(), room); err != nil {
		log.Error().Err(err).Msg("failed to seed demo room")
		return
	}
	mem.PutParticipant(domain.Participant{
		RoomID:   room.ID,
		User:     domain.User{ID: domain.UserID(demo.HostID), Name: demo.HostName},
		Role:     domain.RoleHost,
		IsActive: true,
		JoinedAt: now,
	})
	log.Info().Str("room", demo.RoomCode).Str("host", demo.HostID).Msg("seeded demo room")
}
