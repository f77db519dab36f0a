package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/auxroom/server/internal/domain"
)

func TestCatalogPicker(t *testing.T) {
	t.Run("picks from the configured catalog", func(t *testing.T) {
		songs := []domain.Song{
			{Title: "One", Artist: "A", URL: "1"},
			{Title: "Two", Artist: "B", URL: "2"},
		}
		p := NewCatalogPicker(songs)
		for i := 0; i < 50; i++ {
			got := p.Pick()
			assert.Contains(t, songs, got)
		}
	})

	t.Run("falls back to built-in catalog", func(t *testing.T) {
		p := NewCatalogPicker(nil)
		got := p.Pick()
		assert.NotEmpty(t, got.Title)
		assert.NotEmpty(t, got.URL)
	})
}
