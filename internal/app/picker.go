package app

import (
	"math/rand/v2"

	"github.com/auxroom/server/internal/domain"
)

// SongPicker supplies a song when the coordinator has no queue to draw
// from: next_song on an empty queue and every previous_song. The
// catalog default is placeholder demo behavior, kept behind this
// interface so a real history/recommendation source can replace it.
type SongPicker interface {
	Pick() domain.Song
}

var defaultCatalog = []domain.Song{
	{Title: "Sample Song 1", Artist: "Test Artist", URL: "https://www.soundjay.com/misc/sounds/bell-ringing-05.mp3"},
	{Title: "Sample Song 2", Artist: "Demo Artist", URL: "https://www.soundjay.com/misc/sounds/bell-ringing-05.mp3"},
	{Title: "Sample Song 3", Artist: "Demo Artist", URL: "https://www.soundjay.com/misc/sounds/bell-ringing-05.mp3"},
}

// CatalogPicker picks pseudo-randomly from a fixed catalog.
type CatalogPicker struct {
	songs []domain.Song
}

// NewCatalogPicker builds a picker over songs, falling back to the
// built-in demo catalog when none are configured.
func NewCatalogPicker(songs []domain.Song) *CatalogPicker {
	if len(songs) == 0 {
		songs = defaultCatalog
	}
	return &CatalogPicker{songs: append([]domain.Song(nil), songs...)}
}

func (p *CatalogPicker) Pick() domain.Song {
	return p.songs[rand.IntN(len(p.songs))]
}
