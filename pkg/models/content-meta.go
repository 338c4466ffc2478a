package models

import (
	"bytes"
	"database/sql/driver"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

const (
	ContentMetaTypeComic = "comic"
	ContentMetaTypeBook  = "book"
)

// ContentMeta holds the type specific metadata of a leaf. Exactly one of the
// variants is set.
type ContentMeta struct {
	Comic *ComicMeta
	Book  *BookMeta
}

type ComicMeta struct {
	Pages []ComicPage `json:"pages"`
}

type ComicPage struct {
	Name     string `json:"name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	MimeType string `json:"mime_type,omitempty"`
}

type BookMeta struct {
	Authors         []string `json:"authors,omitempty"`
	Description     string   `json:"description,omitempty"`
	Publisher       string   `json:"publisher,omitempty"`
	Language        string   `json:"language,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty"`
	SeriesIndex     *float64 `json:"series_index,omitempty"`
}

type taggedComicMeta struct {
	Type string `json:"type"`
	ComicMeta
}

type taggedBookMeta struct {
	Type string `json:"type"`
	BookMeta
}

func (m ContentMeta) MarshalJSON() ([]byte, error) {
	switch {
	case m.Comic != nil:
		return json.Marshal(taggedComicMeta{ContentMetaTypeComic, *m.Comic})
	case m.Book != nil:
		return json.Marshal(taggedBookMeta{ContentMetaTypeBook, *m.Book})
	}
	return []byte("null"), nil
}

func (m *ContentMeta) UnmarshalJSON(b []byte) error {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &tag); err != nil {
		return errors.WithStack(err)
	}
	*m = ContentMeta{}
	switch tag.Type {
	case ContentMetaTypeComic:
		var v taggedComicMeta
		if err := json.Unmarshal(b, &v); err != nil {
			return errors.WithStack(err)
		}
		m.Comic = &v.ComicMeta
	case ContentMetaTypeBook:
		var v taggedBookMeta
		if err := json.Unmarshal(b, &v); err != nil {
			return errors.WithStack(err)
		}
		m.Book = &v.BookMeta
	default:
		return errors.Errorf("unknown content meta type %q", tag.Type)
	}
	return nil
}

func (m *ContentMeta) Value() (driver.Value, error) {
	if m == nil || (m.Comic == nil && m.Book == nil) {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return string(b), nil
}

func (m *ContentMeta) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = ContentMeta{}
		return nil
	case string:
		return m.UnmarshalJSON([]byte(v))
	case []byte:
		return m.UnmarshalJSON(v)
	}
	return errors.Errorf("can't scan %T into ContentMeta", src)
}

// Equal compares the serialized forms, so a nil meta equals an empty one.
func (m *ContentMeta) Equal(other *ContentMeta) bool {
	a, errA := m.Value()
	b, errB := other.Value()
	if errA != nil || errB != nil {
		return false
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return bytes.Equal([]byte(a.(string)), []byte(b.(string)))
}
