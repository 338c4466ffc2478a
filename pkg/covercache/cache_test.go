package covercache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voltisapp/voltis/internal/testgen"
	"github.com/voltisapp/voltis/pkg/cbz"
	"github.com/voltisapp/voltis/pkg/models"
)

func TestInvalidate(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cache := New(dir)

	cover := testgen.WriteFile(t, filepath.Join(dir, "covers"), "abc.jpg", []byte("cover"))
	page := testgen.WriteFile(t, filepath.Join(dir, "pages", "abc"), "page_0.png", []byte("page"))
	other := testgen.WriteFile(t, filepath.Join(dir, "covers"), "def.jpg", []byte("cover"))

	require.NoError(t, cache.Invalidate("abc"))
	assert.False(t, testgen.FileExists(cover))
	assert.False(t, testgen.FileExists(page))
	assert.True(t, testgen.FileExists(other))
}

func TestInvalidate_Missing(t *testing.T) {
	t.Parallel()
	cache := New(t.TempDir())
	assert.NoError(t, cache.Invalidate("nothing-here"))
	assert.NoError(t, cache.Invalidate(""))
}

func TestPage(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	archive := testgen.GenerateCBZ(t, dir, "issue.cbz", testgen.CBZOptions{
		PageNames: []string{"p10.png", "p2.png", "p1.png"},
	})
	pages, err := cbz.ListPages(archive)
	require.NoError(t, err)

	content := &models.Content{
		ID:      "content-1",
		FileURI: &archive,
		Meta:    &models.ContentMeta{Comic: &models.ComicMeta{Pages: pages}},
	}

	cache := New(filepath.Join(dir, "cache"))
	p, mimeType, err := cache.Page(content, 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cache", "pages", "content-1", "page_2.png"), p)
	assert.Equal(t, "image/png", mimeType)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.NotEmpty(t, b)

	// Served from disk the second time.
	p2, _, err := cache.Page(content, 2)
	require.NoError(t, err)
	assert.Equal(t, p, p2)

	require.NoError(t, cache.Invalidate("content-1"))
	assert.False(t, testgen.FileExists(p))
}

func TestPage_OutOfRange(t *testing.T) {
	t.Parallel()
	archive := "/nonexistent.cbz"
	content := &models.Content{
		ID:      "content-1",
		FileURI: &archive,
		Meta:    &models.ContentMeta{Comic: &models.ComicMeta{Pages: []models.ComicPage{{Name: "a.png"}}}},
	}
	_, _, err := New(t.TempDir()).Page(content, 1)
	assert.Error(t, err)

	_, _, err = New(t.TempDir()).Page(&models.Content{ID: "book"}, 0)
	assert.Error(t, err)
}
