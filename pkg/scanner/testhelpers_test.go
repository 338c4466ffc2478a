package scanner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/robinjoseph08/golib/logger"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/voltisapp/voltis/pkg/config"
	"github.com/voltisapp/voltis/pkg/contents"
	"github.com/voltisapp/voltis/pkg/covercache"
	"github.com/voltisapp/voltis/pkg/database"
	"github.com/voltisapp/voltis/pkg/epub"
	"github.com/voltisapp/voltis/pkg/libraries"
	"github.com/voltisapp/voltis/pkg/migrations"
	"github.com/voltisapp/voltis/pkg/models"
)

type testContext struct {
	t              *testing.T
	ctx            context.Context
	cfg            *config.Config
	db             *bun.DB
	engine         *Engine
	contentService *contents.Service
	libraryService *libraries.Service
}

func newTestContext(t *testing.T) *testContext {
	t.Helper()

	cfg := config.NewForTest()
	cfg.CacheDir = t.TempDir()

	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	return &testContext{
		t:              t,
		ctx:            logger.New().WithContext(context.Background()),
		cfg:            cfg,
		db:             db,
		engine:         NewEngine(db, cfg, covercache.New(cfg.CacheDir), epub.NewReader()),
		contentService: contents.NewService(db),
		libraryService: libraries.NewService(db),
	}
}

func (tc *testContext) createLibrary(typ string, sources ...string) *models.Library {
	tc.t.Helper()

	library := &models.Library{Name: "Test " + typ, Type: typ}
	for _, s := range sources {
		library.Sources = append(library.Sources, &models.LibrarySource{Path: s})
	}
	require.NoError(tc.t, tc.libraryService.CreateLibrary(tc.ctx, library))

	return tc.reloadLibrary(library)
}

func (tc *testContext) reloadLibrary(library *models.Library) *models.Library {
	tc.t.Helper()
	loaded, err := tc.libraryService.RetrieveLibrary(tc.ctx, libraries.RetrieveLibraryOptions{ID: &library.ID})
	require.NoError(tc.t, err)
	return loaded
}

func (tc *testContext) scan(library *models.Library, opts ScanOptions) *ScanResult {
	tc.t.Helper()
	result, err := tc.engine.Scan(tc.ctx, library, opts)
	require.NoError(tc.t, err)
	return result
}

func (tc *testContext) listContents(library *models.Library, types ...string) []*models.Content {
	tc.t.Helper()
	rows, err := tc.contentService.ListContents(tc.ctx, contents.ListContentsOptions{
		LibraryID: &library.ID,
		Types:     types,
	})
	require.NoError(tc.t, err)
	return rows
}

func (tc *testContext) children(library *models.Library, parent *models.Content) []*models.Content {
	tc.t.Helper()
	rows, err := tc.contentService.ListContents(tc.ctx, contents.ListContentsOptions{
		LibraryID: &library.ID,
		ParentID:  &parent.ID,
	})
	require.NoError(tc.t, err)
	return rows
}

// group returns the grouping row with the given uri_part.
func (tc *testContext) group(library *models.Library, uriPart string) *models.Content {
	tc.t.Helper()
	row, err := tc.contentService.RetrieveContent(tc.ctx, contents.RetrieveContentOptions{
		LibraryID: &library.ID,
		Root:      true,
		URIPart:   &uriPart,
		Types:     models.GroupContentTypes,
	})
	require.NoError(tc.t, err)
	return row
}

// byFile indexes leaf rows by the file they were built from.
func (tc *testContext) byFile(library *models.Library) map[string]*models.Content {
	tc.t.Helper()
	rows := map[string]*models.Content{}
	for _, row := range tc.listContents(library, models.LeafContentTypes...) {
		require.NotNil(tc.t, row.FileURI)
		rows[*row.FileURI] = row
	}
	return rows
}

func uri(p string) string {
	return filepath.ToSlash(p)
}

func uris(files []LibraryFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.URI)
	}
	return out
}

func titles(rows []*models.Content) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Title)
	}
	return out
}
