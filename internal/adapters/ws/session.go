package ws

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/auxroom/server/internal/app"
	"github.com/auxroom/server/internal/core"
	"github.com/auxroom/server/internal/domain"
	"github.com/auxroom/server/internal/protocol"
)

// Session is one live, authorized connection to a room. It implements
// core.Member for roster fan-out and dispatches inbound commands. The
// role is cached at handshake time and not re-verified per message.
type Session struct {
	id     string
	code   domain.RoomCode
	user   domain.User
	role   domain.Role
	conn   core.EventConn
	roster *core.Roster
	coord  *app.Coordinator
	log    zerolog.Logger
}

func NewSession(id string, code domain.RoomCode, user domain.User, role domain.Role, conn core.EventConn, roster *core.Roster, coord *app.Coordinator) *Session {
	return &Session{
		id:     id,
		code:   code,
		user:   user,
		role:   role,
		conn:   conn,
		roster: roster,
		coord:  coord,
		log:    log.With().Str("module", "ws.session").Str("room", string(code)).Str("user", string(user.ID)).Logger(),
	}
}

func (s *Session) ID() string        { return s.id }
func (s *Session) User() domain.User { return s.user }

// Deliver enqueues a broadcast event for this member. Host playback
// reports are suppressed when this session *is* the host connection:
// the position authority must not receive its own sync back.
func (s *Session) Deliver(ev core.Event) error {
	if ev.SyncFromHost && s.role == domain.RoleHost {
		return nil
	}
	return s.conn.TrySend(ev.Frame)
}

func (s *Session) Kick() {
	s.log.Warn().Msg("kicking slow member")
	s.conn.Close()
}

// reply sends a direct event to this connection only.
func (s *Session) reply(ev core.Event) {
	if err := s.conn.TrySend(ev.Frame); err != nil {
		s.log.Debug().Err(err).Msg("direct reply dropped")
	}
}

// Dispatch routes one inbound command. Host-only commands are rejected
// against the cached role before any state is touched; every failure
// is a direct error reply and the connection stays open.
func (s *Session) Dispatch(ctx context.Context, data []byte) {
	cmd, err := protocol.ParseCommand(data)
	if err != nil {
		s.reply(protocol.Error("invalid message"))
		return
	}

	if cmd.HostOnly() && s.role != domain.RoleHost {
		s.log.Debug().Str("type", string(cmd.Type)).Msg("host-only command from guest")
		s.reply(protocol.Error("Only the host can control playback"))
		return
	}

	switch cmd.Type {
	case protocol.KindPing:
		s.reply(protocol.Pong(cmd.Timestamp))

	case protocol.KindChatMessage:
		message := strings.TrimSpace(cmd.Message)
		if message == "" {
			return
		}
		s.roster.Broadcast(s.code, protocol.ChatMessage(s.user, message, cmd.Timestamp))

	case protocol.KindTogglePlayback:
		s.run(s.coord.TogglePlayback(ctx, s.code, cmd.Timestamp))

	case protocol.KindNextSong:
		s.run(s.coord.NextSong(ctx, s.code))

	case protocol.KindPreviousSong:
		s.run(s.coord.PreviousSong(ctx, s.code))

	case protocol.KindAddSong:
		s.addSong(ctx, cmd)

	case protocol.KindSyncPlayback:
		s.run(s.coord.SyncPlayback(ctx, s.code, int(cmd.CurrentTime), cmd.IsPlaying))

	default:
		s.log.Debug().Str("type", string(cmd.Type)).Err(core.ErrUnknownCommand).Msg("command rejected")
		s.reply(protocol.Error(fmt.Sprintf("Unknown message type: %s", cmd.Type)))
	}
}

func (s *Session) run(err error) {
	if err != nil {
		s.log.Debug().Err(err).Msg("command rejected")
		s.reply(protocol.Error(err.Error()))
	}
}

func (s *Session) addSong(ctx context.Context, cmd protocol.Command) {
	title := strings.TrimSpace(cmd.SongTitle)
	url := strings.TrimSpace(cmd.SongURL)
	if title == "" || url == "" {
		s.reply(protocol.Error("Song title and URL are required"))
		return
	}

	song := domain.Song{Title: title, Artist: strings.TrimSpace(cmd.Artist), URL: url}
	res, err := s.coord.AddSong(ctx, s.code, s.user.ID, s.role, song)
	if err != nil {
		s.run(err)
		return
	}
	if res == app.AddStarted {
		s.reply(protocol.Success(fmt.Sprintf("Now playing %q", title)))
	} else {
		s.reply(protocol.Success(fmt.Sprintf("Added %q to queue", title)))
	}
}
