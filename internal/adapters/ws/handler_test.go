package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auxroom/server/internal/adapters/auth"
	"github.com/auxroom/server/internal/adapters/store"
	"github.com/auxroom/server/internal/app"
	"github.com/auxroom/server/internal/config"
	"github.com/auxroom/server/internal/core"
	"github.com/auxroom/server/internal/domain"
)

func testWSConfig() config.WebSocket {
	return config.WebSocket{
		ReadLimit:    32768,
		PongWait:     60 * time.Second,
		PingInterval: 54 * time.Second,
		WriteWait:    5 * time.Second,
		SendBuffer:   256,
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	room := activeRoom()
	require.NoError(t, mem.Save(context.Background(), room))
	mem.PutParticipant(domain.Participant{
		RoomID: room.ID, User: domain.User{ID: "h1", Name: "Host"},
		Role: domain.RoleHost, IsActive: true,
	})
	mem.PutParticipant(domain.Participant{
		RoomID: room.ID, User: domain.User{ID: "g1", Name: "Guest"},
		Role: domain.RoleGuest, IsActive: true,
	})
	mem.PutParticipant(domain.Participant{
		RoomID: room.ID, User: domain.User{ID: "gone", Name: "Gone"},
		Role: domain.RoleGuest, IsActive: false,
	})

	validator := auth.NewStatic(map[string]core.Identity{
		"host-token":     {UserID: "h1", Name: "Host"},
		"guest-token":    {UserID: "g1", Name: "Guest"},
		"stranger-token": {UserID: "s1", Name: "Stranger"},
		"gone-token":     {UserID: "gone", Name: "Gone"},
	})

	roster := core.NewRoster()
	coord := app.NewCoordinator(mem, roster, fixedPicker{song: domain.Song{Title: "Fallback", URL: "f"}})
	handler := NewHandler(validator, mem, mem, roster, coord, testWSConfig())

	r := gin.New()
	ctx, cancel := context.WithCancel(context.Background())
	r.GET("/ws/rooms/:code", func(c *gin.Context) {
		handler.HandleRoom(ctx, c)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))
	return payload
}

func expectClose(t *testing.T, conn *websocket.Conn, code int) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, code), "expected close code %d, got %v", code, err)
}

func TestHandshakeRejections(t *testing.T) {
	srv := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		conn := dial(t, srv, "/ws/rooms/ABCDEF")
		expectClose(t, conn, 4001)
	})

	t.Run("invalid token", func(t *testing.T) {
		conn := dial(t, srv, "/ws/rooms/ABCDEF?token=bogus")
		expectClose(t, conn, 4001)
	})

	t.Run("room not found", func(t *testing.T) {
		conn := dial(t, srv, "/ws/rooms/ZZZZZZ?token=host-token")
		expectClose(t, conn, 4004)
	})

	t.Run("not a participant", func(t *testing.T) {
		conn := dial(t, srv, "/ws/rooms/ABCDEF?token=stranger-token")
		expectClose(t, conn, 4003)
	})

	t.Run("inactive participant", func(t *testing.T) {
		conn := dial(t, srv, "/ws/rooms/ABCDEF?token=gone-token")
		expectClose(t, conn, 4003)
	})
}

// End-to-end room scenario: host joins, guest joins, guest adds a song
// while nothing is playing, guest is refused next_song, host leaves.
func TestRoomSession(t *testing.T) {
	srv := newTestServer(t)

	host := dial(t, srv, "/ws/rooms/ABCDEF?token=host-token")
	joined := readEvent(t, host)
	assert.Equal(t, "user_joined", joined["type"])
	assert.Equal(t, "Host", joined["name"])

	guest := dial(t, srv, "/ws/rooms/ABCDEF?token=guest-token")
	joined = readEvent(t, guest)
	assert.Equal(t, "user_joined", joined["type"])
	assert.Equal(t, "Guest", joined["name"])

	joined = readEvent(t, host)
	assert.Equal(t, "user_joined", joined["type"])
	assert.Equal(t, "Guest", joined["name"])

	// Guest adds a song while current_song is null: everyone gets
	// song_started, the adder also gets a direct success.
	require.NoError(t, guest.WriteJSON(map[string]any{
		"type": "add_song", "song_title": "X", "song_url": "u",
	}))

	started := readEvent(t, guest)
	assert.Equal(t, "song_started", started["type"])
	assert.Equal(t, "X", started["current_song"])
	success := readEvent(t, guest)
	assert.Equal(t, "success", success["type"])

	started = readEvent(t, host)
	assert.Equal(t, "song_started", started["type"])
	assert.Equal(t, "X", started["current_song"])

	// Guest may not drive playback.
	require.NoError(t, guest.WriteJSON(map[string]any{"type": "next_song"}))
	errEvent := readEvent(t, guest)
	assert.Equal(t, "error", errEvent["type"])

	// Ping is a direct reply.
	require.NoError(t, guest.WriteJSON(map[string]any{"type": "ping", "timestamp": 7}))
	pong := readEvent(t, guest)
	assert.Equal(t, "pong", pong["type"])
	assert.EqualValues(t, 7, pong["timestamp"])

	// Host leaving announces user_left to the remaining guest.
	require.NoError(t, host.Close())
	left := readEvent(t, guest)
	assert.Equal(t, "user_left", left["type"])
	assert.Equal(t, "Host", left["name"])
}

func TestSyncExcludesHostConnection(t *testing.T) {
	srv := newTestServer(t)

	host := dial(t, srv, "/ws/rooms/ABCDEF?token=host-token")
	readEvent(t, host) // own user_joined

	guest := dial(t, srv, "/ws/rooms/ABCDEF?token=guest-token")
	readEvent(t, guest) // own user_joined
	readEvent(t, host)  // guest user_joined

	require.NoError(t, host.WriteJSON(map[string]any{
		"type": "add_song", "song_title": "X", "song_url": "u",
	}))
	readEvent(t, host)  // song_started
	readEvent(t, host)  // success
	readEvent(t, guest) // song_started

	require.NoError(t, host.WriteJSON(map[string]any{
		"type": "sync_playback", "current_time": 33, "is_playing": true,
	}))

	synced := readEvent(t, guest)
	assert.Equal(t, "playback_synced", synced["type"])
	assert.EqualValues(t, 33, synced["current_time"])
	assert.Equal(t, true, synced["sync_from_host"])

	// The host must not get the sync back; the next thing it hears
	// should be the pong for a follow-up ping.
	require.NoError(t, host.WriteJSON(map[string]any{"type": "ping", "timestamp": 1}))
	next := readEvent(t, host)
	assert.Equal(t, "pong", next["type"])
}
