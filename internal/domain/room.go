package domain

import "time"

type RoomCode string

type RoomID string

type RoomStatus string

const (
	StatusActive RoomStatus = "active"
	StatusPaused RoomStatus = "paused"
	StatusEnded  RoomStatus = "ended"
)

const DefaultArtist = "Unknown Artist"

// Song is what the room is (or could be) playing.
type Song struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	URL    string `json:"url"`
}

// QueueEntry is a song waiting in a room's FIFO queue.
type QueueEntry struct {
	Song
	AddedBy UserID    `json:"added_by"`
	AddedAt time.Time `json:"added_at"`
}

// Room is the authoritative per-room playback aggregate. It is mutated
// only through the coordinator, which serializes commands per room and
// persists the whole aggregate after every transition. All methods are
// plain state transitions; they never touch the store or the roster.
type Room struct {
	ID     RoomID     `json:"id"`
	Code   RoomCode   `json:"code"`
	Name   string     `json:"name"`
	Status RoomStatus `json:"status"`

	MaxParticipants   int  `json:"max_participants"`
	AllowGuestControl bool `json:"allow_guest_control"`

	CurrentSong       *Song        `json:"current_song"`
	IsPlaying         bool         `json:"is_playing"`
	CurrentPosition   int          `json:"current_position"`
	PlaybackStartedAt *time.Time   `json:"playback_started_at"`
	Queue             []QueueEntry `json:"queue"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Room) Joinable() bool {
	return r.Status == StatusActive
}

// TogglePlayback flips IsPlaying. Returns false (and leaves the room
// untouched) when asked to start playing with no current song; the
// playback timestamp is only ever stamped against a definite song.
func (r *Room) TogglePlayback(now time.Time) bool {
	next := !r.IsPlaying
	if next && r.CurrentSong == nil {
		return false
	}
	r.IsPlaying = next
	if next {
		t := now
		r.PlaybackStartedAt = &t
	}
	r.UpdatedAt = now
	return true
}

// StartSong makes s the current song, playing from position zero.
func (r *Room) StartSong(s Song, now time.Time) {
	if s.Artist == "" {
		s.Artist = DefaultArtist
	}
	song := s
	r.CurrentSong = &song
	r.IsPlaying = true
	r.CurrentPosition = 0
	t := now
	r.PlaybackStartedAt = &t
	r.UpdatedAt = now
}

// ChangeSong swaps the current song but preserves the play/pause state.
func (r *Room) ChangeSong(s Song, now time.Time) {
	if s.Artist == "" {
		s.Artist = DefaultArtist
	}
	song := s
	r.CurrentSong = &song
	r.CurrentPosition = 0
	t := now
	r.PlaybackStartedAt = &t
	r.UpdatedAt = now
}

// Enqueue appends to the tail of the queue.
func (r *Room) Enqueue(e QueueEntry) {
	if e.Artist == "" {
		e.Artist = DefaultArtist
	}
	r.Queue = append(r.Queue, e)
	r.UpdatedAt = e.AddedAt
}

// PopQueue removes and returns the head of the queue.
func (r *Room) PopQueue() (QueueEntry, bool) {
	if len(r.Queue) == 0 {
		return QueueEntry{}, false
	}
	head := r.Queue[0]
	r.Queue = append([]QueueEntry(nil), r.Queue[1:]...)
	return head, true
}

// SyncPlayback overwrites position and play state verbatim from the
// host's report; the host is the position authority and the last write
// wins. Playing without a current song is never accepted.
func (r *Room) SyncPlayback(position int, playing bool, now time.Time) {
	r.CurrentPosition = position
	r.IsPlaying = playing && r.CurrentSong != nil
	r.UpdatedAt = now
}

// Clone returns an independent copy so callers outside the coordinator
// lock never observe a half-applied transition.
func (r *Room) Clone() *Room {
	cp := *r
	if r.CurrentSong != nil {
		song := *r.CurrentSong
		cp.CurrentSong = &song
	}
	if r.PlaybackStartedAt != nil {
		t := *r.PlaybackStartedAt
		cp.PlaybackStartedAt = &t
	}
	cp.Queue = append([]QueueEntry(nil), r.Queue...)
	return &cp
}
