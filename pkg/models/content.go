package models

import (
	"database/sql/driver"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

const (
	ContentTypeComic       = "comic"
	ContentTypeComicSeries = "comic_series"
	ContentTypeBook        = "book"
	ContentTypeBookSeries  = "book_series"
)

// LeafContentTypes are the content types backed by a single file.
var LeafContentTypes = []string{ContentTypeComic, ContentTypeBook}

// GroupContentTypes are the content types that only exist to hold leaves.
var GroupContentTypes = []string{ContentTypeComicSeries, ContentTypeBookSeries}

// Content is a catalog row: either a leaf tied to one file on disk or a
// grouping row (a series) that holds leaves.
type Content struct {
	bun.BaseModel `bun:"table:contents,alias:c"`

	ID         string       `bun:",pk" json:"id"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	LibraryID  int          `bun:",nullzero" json:"library_id"`
	ParentID   *string      `json:"parent_id"`
	URIPart    string       `bun:"uri_part" json:"uri_part"`
	URI        string       `bun:"uri" json:"uri"`
	Title      string       `json:"title"`
	SortTitle  string       `json:"sort_title"`
	Type       string       `bun:",nullzero" json:"type"`
	Valid      bool         `json:"valid"`
	FileURI    *string      `bun:"file_uri" json:"file_uri,omitempty"`
	FileMtime  *time.Time   `bun:"file_mtime" json:"file_mtime,omitempty"`
	FileSize   *int64       `bun:"file_size" json:"file_size,omitempty"`
	CoverURI   *string      `bun:"cover_uri" json:"cover_uri,omitempty"`
	Order      int          `bun:"order_index" json:"order"`
	OrderParts OrderParts   `bun:"order_parts" json:"order_parts"`
	Meta       *ContentMeta `bun:"meta" json:"meta,omitempty"`
}

// OrderParts is the numeric sort vector of a leaf, e.g. [volume, chapter].
// It's stored as a JSON array.
type OrderParts []float64

func (p OrderParts) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]float64(p))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return string(b), nil
}

func (p *OrderParts) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return errors.Errorf("can't scan %T into OrderParts", src)
	}
	var parts []float64
	if err := json.Unmarshal(b, &parts); err != nil {
		return errors.WithStack(err)
	}
	*p = parts
	return nil
}

// Equal treats a nil vector and an empty one as the same.
func (p OrderParts) Equal(other OrderParts) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// ChangedColumns lists the persisted columns whose values differ between c and
// other. Identity and bookkeeping columns (id, created_at, updated_at) are
// never reported.
func (c *Content) ChangedColumns(other *Content) []string {
	cols := []string{}
	if c.LibraryID != other.LibraryID {
		cols = append(cols, "library_id")
	}
	if !equalStringPtr(c.ParentID, other.ParentID) {
		cols = append(cols, "parent_id")
	}
	if c.URIPart != other.URIPart {
		cols = append(cols, "uri_part")
	}
	if c.URI != other.URI {
		cols = append(cols, "uri")
	}
	if c.Title != other.Title {
		cols = append(cols, "title")
	}
	if c.SortTitle != other.SortTitle {
		cols = append(cols, "sort_title")
	}
	if c.Type != other.Type {
		cols = append(cols, "type")
	}
	if c.Valid != other.Valid {
		cols = append(cols, "valid")
	}
	if !equalStringPtr(c.FileURI, other.FileURI) {
		cols = append(cols, "file_uri")
	}
	if !equalTimePtr(c.FileMtime, other.FileMtime) {
		cols = append(cols, "file_mtime")
	}
	if !equalInt64Ptr(c.FileSize, other.FileSize) {
		cols = append(cols, "file_size")
	}
	if !equalStringPtr(c.CoverURI, other.CoverURI) {
		cols = append(cols, "cover_uri")
	}
	if c.Order != other.Order {
		cols = append(cols, "order_index")
	}
	if !c.OrderParts.Equal(other.OrderParts) {
		cols = append(cols, "order_parts")
	}
	if !c.Meta.Equal(other.Meta) {
		cols = append(cols, "meta")
	}
	return cols
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
