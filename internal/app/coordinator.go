// Package app holds the room coordinator: the single writer for each
// room's playback state.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/auxroom/server/internal/core"
	"github.com/auxroom/server/internal/domain"
	"github.com/auxroom/server/internal/protocol"
)

// Broadcaster fans an event out to a room's live members.
type Broadcaster interface {
	Broadcast(code domain.RoomCode, ev core.Event) core.BroadcastResult
}

// AddResult tells the caller which branch add_song took, so the direct
// reply can say "now playing" vs "added to queue".
type AddResult int

const (
	AddStarted AddResult = iota
	AddQueued
)

// Coordinator serializes all mutating commands per room: each op locks
// the room, loads the aggregate, applies one validated transition,
// persists it, and only then broadcasts the post-save snapshot.
// Different rooms proceed independently.
type Coordinator struct {
	store  core.RoomStore
	bus    Broadcaster
	picker SongPicker
	now    func() time.Time

	mu    sync.Mutex
	locks map[domain.RoomCode]*sync.Mutex
}

func NewCoordinator(store core.RoomStore, bus Broadcaster, picker SongPicker) *Coordinator {
	return &Coordinator{
		store:  store,
		bus:    bus,
		picker: picker,
		now:    time.Now,
		locks:  make(map[domain.RoomCode]*sync.Mutex),
	}
}

// roomLock returns the mutex guarding one room's read-modify-write
// cycle, creating it on first use.
func (c *Coordinator) roomLock(code domain.RoomCode) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[code]
	if !ok {
		l = &sync.Mutex{}
		c.locks[code] = l
	}
	return l
}

// TogglePlayback flips play/pause and broadcasts song_resumed or
// song_paused. Starting playback with no current song is rejected
// without touching the store.
func (c *Coordinator) TogglePlayback(ctx context.Context, code domain.RoomCode, clientTS int64) error {
	l := c.roomLock(code)
	l.Lock()
	defer l.Unlock()

	room, err := c.store.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if !room.TogglePlayback(c.now()) {
		return fmt.Errorf("%w: no song is playing", core.ErrValidation)
	}
	if err := c.store.Save(ctx, room); err != nil {
		return err
	}

	log.Info().Str("module", "app.coordinator").Str("room", string(code)).Bool("playing", room.IsPlaying).Msg("playback toggled")
	c.bus.Broadcast(code, protocol.PlaybackToggled(room, clientTS))
	return nil
}

// NextSong pops the queue head and starts it; an empty queue falls
// back to the picker so the room never stalls.
func (c *Coordinator) NextSong(ctx context.Context, code domain.RoomCode) error {
	l := c.roomLock(code)
	l.Lock()
	defer l.Unlock()

	room, err := c.store.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	song := c.picker.Pick()
	if head, ok := room.PopQueue(); ok {
		song = head.Song
	}
	room.StartSong(song, c.now())
	if err := c.store.Save(ctx, room); err != nil {
		return err
	}

	log.Info().Str("module", "app.coordinator").Str("room", string(code)).Str("song", song.Title).Msg("next song started")
	c.bus.Broadcast(code, protocol.SongStarted(*room.CurrentSong))
	return nil
}

// PreviousSong has no real history stack; it swaps in a picker song at
// position zero, preserving the play/pause state.
func (c *Coordinator) PreviousSong(ctx context.Context, code domain.RoomCode) error {
	l := c.roomLock(code)
	l.Lock()
	defer l.Unlock()

	room, err := c.store.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	room.ChangeSong(c.picker.Pick(), c.now())
	if err := c.store.Save(ctx, room); err != nil {
		return err
	}

	log.Info().Str("module", "app.coordinator").Str("room", string(code)).Str("song", room.CurrentSong.Title).Msg("previous song selected")
	c.bus.Broadcast(code, protocol.SongChanged(room))
	return nil
}

// AddSong starts the song immediately when nothing is playing,
// otherwise appends it to the queue tail.
func (c *Coordinator) AddSong(ctx context.Context, code domain.RoomCode, by domain.UserID, role domain.Role, song domain.Song) (AddResult, error) {
	song.Title = strings.TrimSpace(song.Title)
	song.URL = strings.TrimSpace(song.URL)
	song.Artist = strings.TrimSpace(song.Artist)
	if song.Title == "" || song.URL == "" {
		return 0, fmt.Errorf("%w: song title and URL are required", core.ErrValidation)
	}

	l := c.roomLock(code)
	l.Lock()
	defer l.Unlock()

	room, err := c.store.GetByCode(ctx, code)
	if err != nil {
		return 0, err
	}
	if role != domain.RoleHost && !room.AllowGuestControl {
		return 0, fmt.Errorf("%w: guests may not add songs in this room", core.ErrForbidden)
	}

	now := c.now()
	if room.CurrentSong == nil {
		room.StartSong(song, now)
		if err := c.store.Save(ctx, room); err != nil {
			return 0, err
		}
		log.Info().Str("module", "app.coordinator").Str("room", string(code)).Str("song", song.Title).Msg("song started from add")
		c.bus.Broadcast(code, protocol.SongStarted(*room.CurrentSong))
		return AddStarted, nil
	}

	room.Enqueue(domain.QueueEntry{Song: song, AddedBy: by, AddedAt: now})
	if err := c.store.Save(ctx, room); err != nil {
		return 0, err
	}
	log.Info().Str("module", "app.coordinator").Str("room", string(code)).Str("song", song.Title).Int("queue", len(room.Queue)).Msg("song queued")
	return AddQueued, nil
}

// SyncPlayback overwrites position and play state verbatim from the
// host's report and broadcasts it to everyone but the host.
func (c *Coordinator) SyncPlayback(ctx context.Context, code domain.RoomCode, position int, playing bool) error {
	l := c.roomLock(code)
	l.Lock()
	defer l.Unlock()

	room, err := c.store.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	room.SyncPlayback(position, playing, c.now())
	if err := c.store.Save(ctx, room); err != nil {
		return err
	}

	log.Debug().Str("module", "app.coordinator").Str("room", string(code)).Int("position", room.CurrentPosition).Bool("playing", room.IsPlaying).Msg("playback synced")
	c.bus.Broadcast(code, protocol.PlaybackSynced(room.CurrentPosition, room.IsPlaying))
	return nil
}
