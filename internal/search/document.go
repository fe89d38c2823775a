package search

import (
	"strings"

	"github.com/elewand/elewand-server/internal/domain"
)

// BookDocument is the indexed view of a library entry.
type BookDocument struct {
	ID          string
	UserID      string
	Title       string
	Author      string
	Description string
	Publisher   string
	Shelf       string
	Categories  []string
	Tags        []string
}

// NewBookDocument builds the document for a library entry.
func NewBookDocument(e *domain.LibraryEntry) *BookDocument {
	shelf := string(e.Shelf)
	if e.Shelf == domain.ShelfCustom && e.CustomShelfName != "" {
		shelf = "custom:" + strings.ToLower(e.CustomShelfName)
	}
	return &BookDocument{
		ID:          e.ID,
		UserID:      e.UserID,
		Title:       e.Title,
		Author:      e.Author,
		Description: e.Description,
		Publisher:   e.Publisher,
		Shelf:       shelf,
		Categories:  e.Categories,
		Tags:        lowerAll(e.Tags),
	}
}

// ToMap converts the document to field names matching the index mapping.
func (d *BookDocument) ToMap() map[string]any {
	return map[string]any{
		"id":          d.ID,
		"user_id":     d.UserID,
		"title":       d.Title,
		"author":      d.Author,
		"description": d.Description,
		"publisher":   d.Publisher,
		"shelf":       d.Shelf,
		"categories":  d.Categories,
		"tags":        d.Tags,
	}
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
