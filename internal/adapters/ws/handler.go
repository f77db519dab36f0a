package ws

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/auxroom/server/internal/app"
	"github.com/auxroom/server/internal/config"
	"github.com/auxroom/server/internal/core"
	"github.com/auxroom/server/internal/domain"
	"github.com/auxroom/server/internal/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict origins once the web client's domain is settled.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler runs the per-connection handshake state machine:
// Connecting -> Authenticating -> Authorizing -> Joined -> Closed.
type Handler struct {
	validator    core.TokenValidator
	store        core.RoomStore
	participants core.ParticipantFinder
	roster       *core.Roster
	coord        *app.Coordinator
	cfg          config.WebSocket
}

func NewHandler(validator core.TokenValidator, store core.RoomStore, participants core.ParticipantFinder, roster *core.Roster, coord *app.Coordinator, cfg config.WebSocket) *Handler {
	return &Handler{
		validator:    validator,
		store:        store,
		participants: participants,
		roster:       roster,
		coord:        coord,
		cfg:          cfg,
	}
}

// HandleRoom upgrades the connection and walks the handshake. Each
// rejection closes with its own code so clients can react differently:
// 4001 no/invalid token, 4004 room missing or inactive, 4003 not a
// participant. The handler blocks on the read pump until disconnect.
func (h *Handler) HandleRoom(ctx context.Context, c *gin.Context) {
	code := domain.RoomCode(strings.ToUpper(c.Param("code")))
	token := c.Query("token")

	wsc, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Str("module", "ws.handler").Err(err).Msg("upgrade failed")
		return
	}
	conn := NewConn(wsc, h.cfg)

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go conn.WritePump(connCtx)

	if token == "" {
		log.Info().Str("module", "ws.handler").Str("room", string(code)).Msg("rejected: no token")
		conn.CloseWith(protocol.CloseAuthRequired, "token required")
		return
	}

	ident, err := h.validator.Validate(connCtx, token)
	if err != nil {
		log.Info().Str("module", "ws.handler").Str("room", string(code)).Err(err).Msg("rejected: invalid token")
		conn.CloseWith(protocol.CloseAuthRequired, "invalid token")
		return
	}

	room, err := h.store.GetByCode(connCtx, code)
	if err != nil || !room.Joinable() {
		log.Info().Str("module", "ws.handler").Str("room", string(code)).Msg("rejected: room not found or inactive")
		conn.CloseWith(protocol.CloseRoomNotFound, "room not found")
		return
	}

	part, err := h.participants.FindParticipant(connCtx, room, ident.UserID)
	if err != nil || !part.IsActive {
		log.Info().Str("module", "ws.handler").Str("room", string(code)).Str("user", string(ident.UserID)).Msg("rejected: not a participant")
		conn.CloseWith(protocol.CloseForbidden, "not a participant")
		return
	}

	user := domain.User{ID: ident.UserID, Name: ident.Name}
	sess := NewSession(uuid.NewString(), code, user, part.Role, conn, h.roster, h.coord)

	// Join, then announce. The announcement is enqueued to every
	// pre-existing member (and to the joiner) before the command loop
	// starts, so no command from this connection can overtake it.
	h.roster.Join(code, sess)
	h.roster.Broadcast(code, protocol.UserJoined(user))

	defer func() {
		// Best effort; deregistration happens regardless.
		h.roster.Broadcast(code, protocol.UserLeft(user))
		h.roster.Leave(code, sess)
	}()

	conn.ReadPump(connCtx, func(data []byte) {
		sess.Dispatch(connCtx, data)
	})
}
