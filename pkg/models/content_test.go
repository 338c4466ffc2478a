package models

import (
	"testing"
	"time"

	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentMeta_TaggedJSON(t *testing.T) {
	meta := &ContentMeta{Comic: &ComicMeta{Pages: []ComicPage{{Name: "01.png", Width: 10, Height: 20, MimeType: "image/png"}}}}

	b, err := json.Marshal(meta)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"comic","pages":[{"name":"01.png","width":10,"height":20,"mime_type":"image/png"}]}`, string(b))

	var decoded ContentMeta
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Nil(t, decoded.Book)
	require.NotNil(t, decoded.Comic)
	assert.Equal(t, meta.Comic.Pages, decoded.Comic.Pages)
}

func TestContentMeta_UnknownType(t *testing.T) {
	var decoded ContentMeta
	err := json.Unmarshal([]byte(`{"type":"audiobook"}`), &decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown content meta type "audiobook"`)
}

func TestContentMeta_Scan(t *testing.T) {
	var m ContentMeta
	require.NoError(t, m.Scan(`{"type":"book","authors":["Ann"],"series_index":2.5}`))
	require.NotNil(t, m.Book)
	assert.Equal(t, []string{"Ann"}, m.Book.Authors)
	require.NotNil(t, m.Book.SeriesIndex)
	assert.InDelta(t, 2.5, *m.Book.SeriesIndex, 0)

	require.NoError(t, m.Scan(nil))
	assert.Nil(t, m.Book)

	assert.Error(t, m.Scan(42))
}

func TestContentMeta_Equal(t *testing.T) {
	var nilMeta *ContentMeta
	assert.True(t, nilMeta.Equal(&ContentMeta{}))
	assert.True(t, (&ContentMeta{Book: &BookMeta{Language: "en"}}).Equal(&ContentMeta{Book: &BookMeta{Language: "en"}}))
	assert.False(t, (&ContentMeta{Book: &BookMeta{Language: "en"}}).Equal(&ContentMeta{Book: &BookMeta{Language: "fr"}}))
	assert.False(t, (&ContentMeta{Book: &BookMeta{}}).Equal(nil))
}

func TestOrderParts_ValueAndScan(t *testing.T) {
	v, err := OrderParts(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = OrderParts{1, 2.5}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[1,2.5]", v)

	var p OrderParts
	require.NoError(t, p.Scan([]byte("[3,4]")))
	assert.Equal(t, OrderParts{3, 4}, p)

	assert.True(t, OrderParts(nil).Equal(OrderParts{}))
	assert.False(t, OrderParts{1}.Equal(OrderParts{1, 0}))
}

func TestContent_ChangedColumns(t *testing.T) {
	mtime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	size, biggerSize := int64(10), int64(11)
	base := &Content{
		ID:         "a",
		LibraryID:  1,
		URIPart:    "1",
		Title:      "Vol. 1",
		Type:       ContentTypeComic,
		Valid:      true,
		FileURI:    pointerutil.String("/comics/A/A v01.cbz"),
		FileMtime:  &mtime,
		FileSize:   &size,
		OrderParts: OrderParts{1},
	}

	same := *base
	same.UpdatedAt = time.Now()
	otherMtime := mtime.In(time.FixedZone("x", 3600))
	same.FileMtime = &otherMtime
	assert.Empty(t, base.ChangedColumns(&same))

	changed := *base
	changed.Title = "Vol. 01"
	changed.FileSize = &biggerSize
	changed.OrderParts = OrderParts{1, 2}
	changed.Meta = &ContentMeta{Comic: &ComicMeta{}}
	assert.Equal(t, []string{"title", "file_size", "order_parts", "meta"}, base.ChangedColumns(&changed))
}
