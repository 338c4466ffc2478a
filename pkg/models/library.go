package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	LibraryTypeComics = "comics"
	LibraryTypeBooks  = "books"
)

var LibraryTypes = []string{LibraryTypeComics, LibraryTypeBooks}

type Library struct {
	bun.BaseModel `bun:"table:libraries,alias:l"`

	ID        int              `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Name      string           `bun:",nullzero" json:"name"`
	Type      string           `bun:",nullzero" json:"type"`
	ScannedAt *time.Time       `json:"scanned_at"`
	Sources   []*LibrarySource `bun:"rel:has-many" json:"sources,omitempty"`
}

// SourcePaths returns the root path of every source in the order they were
// loaded.
func (l *Library) SourcePaths() []string {
	paths := make([]string, 0, len(l.Sources))
	for _, s := range l.Sources {
		paths = append(paths, s.Path)
	}
	return paths
}
