package models

import (
	"time"

	"github.com/uptrace/bun"
)

type LibrarySource struct {
	bun.BaseModel `bun:"table:library_sources,alias:ls"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LibraryID int       `bun:",nullzero" json:"library_id"`
	Path      string    `bun:",nullzero" json:"path"`
}
