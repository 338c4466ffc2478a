package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/voltisapp/voltis/pkg/contents"
	"github.com/voltisapp/voltis/pkg/models"
	"golang.org/x/sync/errgroup"
)

// CatalogEntry pairs a stored leaf row with the file it was built from.
type CatalogEntry struct {
	File    LibraryFile
	Content *models.Content
}

type CatalogInventory struct {
	Leaves []CatalogEntry
	Groups []*models.Content
}

// normalizeURI turns a filesystem path into the URI form stored in the
// catalog: absolute, cleaned and slash separated.
func normalizeURI(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// normalizeTime drops what SQLite can't round-trip so stored and on-disk
// times compare equal.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// ListSourceFiles walks every source root and stats each regular file with at
// most statConcurrency stats in flight. Entries that can't be listed or
// stat'd are logged and skipped; a root that can't be read fails the whole
// listing so an unmounted source never looks empty. Results are sorted by URI.
func ListSourceFiles(ctx context.Context, roots []string, statConcurrency int) ([]LibraryFile, error) {
	log := logger.FromContext(ctx)

	var mu sync.Mutex
	files := []LibraryFile{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statConcurrency)

	for _, root := range roots {
		root, err := filepath.Abs(root)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read source %s", root)
		}
		if !info.IsDir() {
			return nil, errors.Errorf("source %s is not a directory", root)
		}

		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				if p == root {
					return errors.Wrapf(err, "failed to list source %s", root)
				}
				log.Warn("failed to list path, skipping", logger.Data{"path": p, "error": err.Error()})
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}

			g.Go(func() error {
				info, err := os.Stat(p)
				if err != nil {
					log.Warn("failed to stat file, skipping", logger.Data{"path": p, "error": err.Error()})
					return nil
				}
				if !info.Mode().IsRegular() {
					return nil
				}
				file := LibraryFile{
					URI:     normalizeURI(p),
					ModTime: normalizeTime(info.ModTime()),
					Size:    info.Size(),
				}
				mu.Lock()
				files = append(files, file)
				mu.Unlock()
				return nil
			})
			return nil
		})
		if err != nil {
			_ = g.Wait()
			return nil, errors.WithStack(err)
		}
	}

	if err := g.Wait(); err != nil {
		return nil, errors.WithStack(err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].URI < files[j].URI
	})

	// Nested sources list the same file twice.
	deduped := files[:0]
	for i, f := range files {
		if i > 0 && f.URI == files[i-1].URI {
			continue
		}
		deduped = append(deduped, f)
	}
	return deduped, nil
}

func filterEligible(files []LibraryFile, plugin Plugin) []LibraryFile {
	eligible := make([]LibraryFile, 0, len(files))
	for _, f := range files {
		if plugin.CheckFileEligible(f) {
			eligible = append(eligible, f)
		}
	}
	return eligible
}

// SourceInventory lists the library's files that the plugin handles.
func (e *Engine) SourceInventory(ctx context.Context, library *models.Library, plugin Plugin) ([]LibraryFile, error) {
	files, err := ListSourceFiles(ctx, library.SourcePaths(), e.statConcurrency)
	if err != nil {
		return nil, err
	}
	return filterEligible(files, plugin), nil
}

// LoadCatalog loads the library's leaf rows, each paired with the file it
// was built from, and its grouping rows.
func (e *Engine) LoadCatalog(ctx context.Context, library *models.Library) (*CatalogInventory, error) {
	leaves, err := e.contentService.ListContents(ctx, contents.ListContentsOptions{
		LibraryID: &library.ID,
		Types:     models.LeafContentTypes,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	groups, err := e.contentService.ListContents(ctx, contents.ListContentsOptions{
		LibraryID: &library.ID,
		Types:     models.GroupContentTypes,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	inv := &CatalogInventory{
		Leaves: make([]CatalogEntry, 0, len(leaves)),
		Groups: groups,
	}
	for _, c := range leaves {
		file := LibraryFile{}
		if c.FileURI != nil {
			file.URI = *c.FileURI
		}
		if c.FileMtime != nil {
			file.ModTime = normalizeTime(*c.FileMtime)
		}
		if c.FileSize != nil {
			file.Size = *c.FileSize
		}
		inv.Leaves = append(inv.Leaves, CatalogEntry{File: file, Content: c})
	}
	sort.Slice(inv.Leaves, func(i, j int) bool {
		return inv.Leaves[i].File.URI < inv.Leaves[j].File.URI
	})

	return inv, nil
}
