package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoom() *Room {
	return &Room{
		ID:                "room-1",
		Code:              "ABCDEF",
		Name:              "Test Room",
		Status:            StatusActive,
		AllowGuestControl: true,
	}
}

func TestTogglePlayback(t *testing.T) {
	now := time.Now()

	t.Run("rejects playing with no current song", func(t *testing.T) {
		r := testRoom()
		ok := r.TogglePlayback(now)
		assert.False(t, ok)
		assert.False(t, r.IsPlaying)
		assert.Nil(t, r.PlaybackStartedAt)
	})

	t.Run("double toggle returns to original state", func(t *testing.T) {
		r := testRoom()
		r.StartSong(Song{Title: "X", URL: "u"}, now)
		require.True(t, r.IsPlaying)

		require.True(t, r.TogglePlayback(now))
		assert.False(t, r.IsPlaying)
		require.True(t, r.TogglePlayback(now))
		assert.True(t, r.IsPlaying)
	})

	t.Run("stamps start time when resuming", func(t *testing.T) {
		r := testRoom()
		r.StartSong(Song{Title: "X", URL: "u"}, now)
		require.True(t, r.TogglePlayback(now))

		later := now.Add(time.Minute)
		require.True(t, r.TogglePlayback(later))
		require.NotNil(t, r.PlaybackStartedAt)
		assert.Equal(t, later, *r.PlaybackStartedAt)
	})
}

func TestStartSong(t *testing.T) {
	now := time.Now()
	r := testRoom()
	r.CurrentPosition = 42

	r.StartSong(Song{Title: "X", URL: "u"}, now)

	require.NotNil(t, r.CurrentSong)
	assert.Equal(t, "X", r.CurrentSong.Title)
	assert.Equal(t, DefaultArtist, r.CurrentSong.Artist)
	assert.True(t, r.IsPlaying)
	assert.Equal(t, 0, r.CurrentPosition)
	require.NotNil(t, r.PlaybackStartedAt)
}

func TestChangeSongPreservesPlayState(t *testing.T) {
	now := time.Now()
	r := testRoom()
	r.StartSong(Song{Title: "X", URL: "u"}, now)
	require.True(t, r.TogglePlayback(now)) // pause

	r.ChangeSong(Song{Title: "Y", Artist: "A", URL: "u2"}, now)

	assert.False(t, r.IsPlaying)
	assert.Equal(t, "Y", r.CurrentSong.Title)
	assert.Equal(t, 0, r.CurrentPosition)
}

func TestQueueFIFO(t *testing.T) {
	now := time.Now()
	r := testRoom()

	r.Enqueue(QueueEntry{Song: Song{Title: "A", URL: "a"}, AddedBy: "u1", AddedAt: now})
	r.Enqueue(QueueEntry{Song: Song{Title: "B", URL: "b"}, AddedBy: "u2", AddedAt: now})

	head, ok := r.PopQueue()
	require.True(t, ok)
	assert.Equal(t, "A", head.Title)
	require.Len(t, r.Queue, 1)
	assert.Equal(t, "B", r.Queue[0].Title)

	head, ok = r.PopQueue()
	require.True(t, ok)
	assert.Equal(t, "B", head.Title)

	_, ok = r.PopQueue()
	assert.False(t, ok)
}

func TestSyncPlaybackKeepsInvariant(t *testing.T) {
	now := time.Now()

	t.Run("verbatim overwrite with current song", func(t *testing.T) {
		r := testRoom()
		r.StartSong(Song{Title: "X", URL: "u"}, now)
		r.SyncPlayback(37, false, now)
		assert.Equal(t, 37, r.CurrentPosition)
		assert.False(t, r.IsPlaying)
	})

	t.Run("never playing without a song", func(t *testing.T) {
		r := testRoom()
		r.SyncPlayback(10, true, now)
		assert.False(t, r.IsPlaying)
	})
}

func TestClone(t *testing.T) {
	now := time.Now()
	r := testRoom()
	r.StartSong(Song{Title: "X", URL: "u"}, now)
	r.Enqueue(QueueEntry{Song: Song{Title: "A", URL: "a"}, AddedAt: now})

	cp := r.Clone()
	cp.CurrentSong.Title = "changed"
	cp.Queue[0].Title = "changed"
	cp.IsPlaying = false

	assert.Equal(t, "X", r.CurrentSong.Title)
	assert.Equal(t, "A", r.Queue[0].Title)
	assert.True(t, r.IsPlaying)
}
