package protocol

import (
	"encoding/json"

	"github.com/auxroom/server/internal/core"
	"github.com/auxroom/server/internal/domain"
	"github.com/rs/zerolog/log"
)

// Outbound event type tags.
const (
	EventPong           = "pong"
	EventError          = "error"
	EventSuccess        = "success"
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
	EventChatMessage    = "chat_message"
	EventSongResumed    = "song_resumed"
	EventSongPaused     = "song_paused"
	EventSongStarted    = "song_started"
	EventSongChanged    = "song_changed"
	EventPlaybackSynced = "playback_synced"
)

func marshal(v any) core.Frame {
	b, err := json.Marshal(v)
	if err != nil {
		// Event payloads are plain structs; this cannot happen in practice.
		log.Error().Str("module", "protocol").Err(err).Msg("event marshal failed")
		return nil
	}
	return b
}

func event(frame core.Frame) core.Event {
	return core.Event{Frame: frame}
}

func Pong(timestamp int64) core.Event {
	return event(marshal(struct {
		Type      string `json:"type"`
		Timestamp int64  `json:"timestamp"`
	}{EventPong, timestamp}))
}

func Error(message string) core.Event {
	return event(marshal(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{EventError, message}))
}

func Success(message string) core.Event {
	return event(marshal(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{EventSuccess, message}))
}

type presencePayload struct {
	Type   string        `json:"type"`
	UserID domain.UserID `json:"user_id"`
	Name   string        `json:"name"`
}

func UserJoined(u domain.User) core.Event {
	return event(marshal(presencePayload{EventUserJoined, u.ID, u.Name}))
}

func UserLeft(u domain.User) core.Event {
	return event(marshal(presencePayload{EventUserLeft, u.ID, u.Name}))
}

func ChatMessage(u domain.User, message string, timestamp int64) core.Event {
	return event(marshal(struct {
		Type      string        `json:"type"`
		UserID    domain.UserID `json:"user_id"`
		Name      string        `json:"name"`
		Message   string        `json:"message"`
		Timestamp int64         `json:"timestamp"`
	}{EventChatMessage, u.ID, u.Name, message, timestamp}))
}

// PlaybackToggled picks song_resumed or song_paused from the room's
// post-transition state and echoes the host's client timestamp.
func PlaybackToggled(room *domain.Room, timestamp int64) core.Event {
	kind := EventSongPaused
	if room.IsPlaying {
		kind = EventSongResumed
	}
	var title, artist string
	if room.CurrentSong != nil {
		title, artist = room.CurrentSong.Title, room.CurrentSong.Artist
	}
	return event(marshal(struct {
		Type          string `json:"type"`
		IsPlaying     bool   `json:"is_playing"`
		CurrentSong   string `json:"current_song"`
		CurrentArtist string `json:"current_artist"`
		CurrentTime   int    `json:"current_time"`
		Timestamp     int64  `json:"timestamp"`
	}{kind, room.IsPlaying, title, artist, room.CurrentPosition, timestamp}))
}

func SongStarted(song domain.Song) core.Event {
	return event(marshal(struct {
		Type          string `json:"type"`
		CurrentSong   string `json:"current_song"`
		CurrentArtist string `json:"current_artist"`
		SongURL       string `json:"song_url"`
		IsPlaying     bool   `json:"is_playing"`
		CurrentTime   int    `json:"current_time"`
	}{EventSongStarted, song.Title, song.Artist, song.URL, true, 0}))
}

func SongChanged(room *domain.Room) core.Event {
	var title, artist string
	if room.CurrentSong != nil {
		title, artist = room.CurrentSong.Title, room.CurrentSong.Artist
	}
	return event(marshal(struct {
		Type            string `json:"type"`
		CurrentSong     string `json:"current_song"`
		CurrentArtist   string `json:"current_artist"`
		IsPlaying       bool   `json:"is_playing"`
		CurrentPosition int    `json:"current_position"`
	}{EventSongChanged, title, artist, room.IsPlaying, room.CurrentPosition}))
}

// PlaybackSynced carries the host's position report. The event is
// flagged so receiving sessions can withhold it from the host itself.
func PlaybackSynced(position int, playing bool) core.Event {
	ev := event(marshal(struct {
		Type         string `json:"type"`
		CurrentTime  int    `json:"current_time"`
		IsPlaying    bool   `json:"is_playing"`
		SyncFromHost bool   `json:"sync_from_host"`
	}{EventPlaybackSynced, position, playing, true}))
	ev.SyncFromHost = true
	return ev
}
