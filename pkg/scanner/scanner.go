// Package scanner synchronizes a library's catalog with the files on disk.
//
// A scan inventories the library's source folders and its catalog rows,
// diffs them by file URI, and hands every new or changed file to the
// library's Plugin. Committed rows are then re-ordered within their series,
// series rows are refreshed, and rows whose files are gone are deleted.
package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/voltisapp/voltis/pkg/config"
	"github.com/voltisapp/voltis/pkg/contents"
	"github.com/voltisapp/voltis/pkg/epub"
	"github.com/voltisapp/voltis/pkg/errcodes"
	"github.com/voltisapp/voltis/pkg/libraries"
	"github.com/voltisapp/voltis/pkg/models"
)

// ErrScanRunning is returned when the library already has a scan in
// progress.
var ErrScanRunning = errcodes.Conflict("A scan is already running for this library")

// LibraryFile describes a file on disk. Two files are the same file when
// their URIs match.
type LibraryFile struct {
	URI     string    `json:"uri"`
	ModTime time.Time `json:"modified_time"`
	Size    int64     `json:"size"`
}

// HasChanged reports whether other has a different modification time or
// size.
func (f LibraryFile) HasChanged(other LibraryFile) bool {
	return !f.ModTime.Equal(other.ModTime) || f.Size != other.Size
}

// Plugin holds the format-specific rules of a library type.
type Plugin interface {
	CheckFileEligible(file LibraryFile) bool
	// ScanFile builds the row for file. existing is the row currently stored
	// for the file's URI, if any. A nil row means the file is skipped.
	ScanFile(ctx context.Context, sc *ScanContext, file LibraryFile, existing *models.Content) (*models.Content, error)
}

// SeriesScanner is implemented by plugins that derive series state from the
// series' children. children are sorted by order.
type SeriesScanner interface {
	ScanSeries(ctx context.Context, sc *ScanContext, group *models.Content, children []*models.Content) error
}

// CacheInvalidator drops artifacts cached for a content id.
type CacheInvalidator interface {
	Invalidate(contentID string) error
}

// MetadataReader reads the metadata embedded in an e-book. It never fails:
// unreadable files produce empty metadata.
type MetadataReader interface {
	ReadMetadata(ctx context.Context, path string) *epub.Metadata
}

type ScanOptions struct {
	DryRun bool
	Force  bool
	// FilterPaths restricts the scan to files whose URI starts with one of
	// the prefixes.
	FilterPaths []string
}

type RemovedFile struct {
	File    LibraryFile     `json:"file"`
	Content *models.Content `json:"content"`
}

// ScanResult lists the files of each diff category. After a real run only
// committed changes are reported.
type ScanResult struct {
	Added     []LibraryFile `json:"added"`
	Updated   []LibraryFile `json:"updated"`
	Removed   []RemovedFile `json:"removed"`
	Unchanged []LibraryFile `json:"unchanged"`
}

type Engine struct {
	contentService  *contents.Service
	libraryService  *libraries.Service
	covers          CacheInvalidator
	metadata        MetadataReader
	statConcurrency int
	fileConcurrency int

	// running holds the ids of libraries with a scan in progress.
	running sync.Map
}

func NewEngine(db *bun.DB, cfg *config.Config, covers CacheInvalidator, metadata MetadataReader) *Engine {
	statConcurrency := cfg.ScanStatConcurrency
	if statConcurrency < 1 {
		statConcurrency = 20
	}
	fileConcurrency := cfg.ScanFileConcurrency
	if fileConcurrency < 1 {
		fileConcurrency = 5
	}
	return &Engine{
		contentService:  contents.NewService(db),
		libraryService:  libraries.NewService(db),
		covers:          covers,
		metadata:        metadata,
		statConcurrency: statConcurrency,
		fileConcurrency: fileConcurrency,
	}
}

// PluginFor returns the plugin matching the library's type.
func (e *Engine) PluginFor(library *models.Library) (Plugin, error) {
	switch library.Type {
	case models.LibraryTypeComics:
		return NewComicScanner(), nil
	case models.LibraryTypeBooks:
		return NewBookScanner(e.metadata), nil
	}
	return nil, errors.Errorf("unsupported library type %q", library.Type)
}
