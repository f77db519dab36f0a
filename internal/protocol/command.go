// Package protocol defines the JSON command/event envelopes exchanged
// over a room connection, and the websocket close codes clients key on.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/auxroom/server/internal/core"
)

// Close codes for handshake rejections. Distinct so clients can react
// differently to a bad token, a dead room and a missing membership.
const (
	CloseAuthRequired = 4001
	CloseForbidden    = 4003
	CloseRoomNotFound = 4004
)

type CommandKind string

const (
	KindPing           CommandKind = "ping"
	KindChatMessage    CommandKind = "chat_message"
	KindTogglePlayback CommandKind = "toggle_playback"
	KindNextSong       CommandKind = "next_song"
	KindPreviousSong   CommandKind = "previous_song"
	KindAddSong        CommandKind = "add_song"
	KindSyncPlayback   CommandKind = "sync_playback"
)

// Command is the inbound envelope: a type tag plus the union of all
// per-command fields. Which fields matter depends on Type.
type Command struct {
	Type CommandKind `json:"type"`

	// ping, chat_message, toggle_playback
	Timestamp int64 `json:"timestamp,omitempty"`

	// chat_message
	Message string `json:"message,omitempty"`

	// add_song
	SongTitle string `json:"song_title,omitempty"`
	Artist    string `json:"artist,omitempty"`
	SongURL   string `json:"song_url,omitempty"`

	// sync_playback
	CurrentTime float64 `json:"current_time,omitempty"`
	IsPlaying   bool    `json:"is_playing,omitempty"`
}

func ParseCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("%w: %v", core.ErrValidation, err)
	}
	return cmd, nil
}

// HostOnly reports whether the command mutates playback state and is
// therefore restricted to the room's host.
func (c Command) HostOnly() bool {
	switch c.Type {
	case KindTogglePlayback, KindNextSong, KindPreviousSong, KindSyncPlayback:
		return true
	default:
		return false
	}
}
