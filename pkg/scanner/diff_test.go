package scanner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/voltisapp/voltis/pkg/models"
)

func catalogEntry(uri string, mtime time.Time, size int64) CatalogEntry {
	return CatalogEntry{
		File:    LibraryFile{URI: uri, ModTime: mtime, Size: size},
		Content: &models.Content{ID: uri},
	}
}

func TestComputeDiff(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	onDisk := []LibraryFile{
		{URI: "/lib/d.cbz", ModTime: t0, Size: 10},
		{URI: "/lib/a.cbz", ModTime: t0, Size: 10},
		{URI: "/lib/b.cbz", ModTime: t0.Add(time.Second), Size: 10},
		{URI: "/lib/c.cbz", ModTime: t0, Size: 11},
	}
	catalog := []CatalogEntry{
		catalogEntry("/lib/a.cbz", t0, 10),
		catalogEntry("/lib/b.cbz", t0, 10),
		catalogEntry("/lib/c.cbz", t0, 10),
		catalogEntry("/lib/e.cbz", t0, 10),
	}

	diff := ComputeDiff(onDisk, catalog, DiffOptions{})

	assert.Equal(t, []string{"/lib/d.cbz"}, uris(diff.Added))
	assert.Equal(t, []string{"/lib/b.cbz", "/lib/c.cbz"}, uris(entryFiles(diff.Updated)))
	assert.Equal(t, []string{"/lib/a.cbz"}, uris(entryFiles(diff.Unchanged)))
	assert.Equal(t, []string{"/lib/e.cbz"}, uris(entryFiles(diff.Removed)))

	// updated entries carry the on-disk file and the stored row
	assert.Equal(t, t0.Add(time.Second), diff.Updated[0].File.ModTime)
	assert.Equal(t, "/lib/b.cbz", diff.Updated[0].Content.ID)
}

func TestComputeDiff_Force(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	onDisk := []LibraryFile{{URI: "/lib/a.cbz", ModTime: t0, Size: 10}}
	catalog := []CatalogEntry{catalogEntry("/lib/a.cbz", t0, 10)}

	diff := ComputeDiff(onDisk, catalog, DiffOptions{Force: true})

	assert.Empty(t, diff.Unchanged)
	assert.Equal(t, []string{"/lib/a.cbz"}, uris(entryFiles(diff.Updated)))
}

func TestComputeDiff_FilterPaths(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	onDisk := []LibraryFile{
		{URI: "/lib/a/new.cbz", ModTime: t0, Size: 1},
		{URI: "/lib/b/new.cbz", ModTime: t0, Size: 1},
	}
	catalog := []CatalogEntry{
		catalogEntry("/lib/a/gone.cbz", t0, 1),
		catalogEntry("/lib/b/gone.cbz", t0, 1),
	}

	diff := ComputeDiff(onDisk, catalog, DiffOptions{FilterPaths: []string{"/lib/a/"}})

	assert.Equal(t, []string{"/lib/a/new.cbz"}, uris(diff.Added))
	assert.Equal(t, []string{"/lib/a/gone.cbz"}, uris(entryFiles(diff.Removed)))
	assert.Empty(t, diff.Updated)
	assert.Empty(t, diff.Unchanged)
}

func TestComputeDiff_Empty(t *testing.T) {
	t.Parallel()

	diff := ComputeDiff(nil, nil, DiffOptions{})

	assert.NotNil(t, diff.Added)
	assert.NotNil(t, diff.Removed)
	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Updated)
	assert.Empty(t, diff.Unchanged)
	assert.Empty(t, diff.Removed)
}

func TestLibraryFile_HasChanged(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	f := LibraryFile{URI: "/a", ModTime: t0, Size: 5}

	assert.False(t, f.HasChanged(LibraryFile{URI: "/a", ModTime: t0.In(time.FixedZone("x", 3600)), Size: 5}))
	assert.True(t, f.HasChanged(LibraryFile{URI: "/a", ModTime: t0.Add(time.Microsecond), Size: 5}))
	assert.True(t, f.HasChanged(LibraryFile{URI: "/a", ModTime: t0, Size: 6}))
}
