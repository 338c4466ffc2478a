package worker

import (
	"context"
	"testing"

	"github.com/robinjoseph08/golib/logger"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/voltisapp/voltis/pkg/config"
	"github.com/voltisapp/voltis/pkg/contents"
	"github.com/voltisapp/voltis/pkg/covercache"
	"github.com/voltisapp/voltis/pkg/database"
	"github.com/voltisapp/voltis/pkg/epub"
	"github.com/voltisapp/voltis/pkg/jobs"
	"github.com/voltisapp/voltis/pkg/migrations"
	"github.com/voltisapp/voltis/pkg/models"
	"github.com/voltisapp/voltis/pkg/scanner"
)

type testContext struct {
	t              *testing.T
	ctx            context.Context
	db             *bun.DB
	worker         *Worker
	jobService     *jobs.Service
	contentService *contents.Service
}

func newTestContext(t *testing.T) *testContext {
	t.Helper()

	cfg := config.NewForTest()
	cfg.CacheDir = t.TempDir()
	cfg.WorkerProcesses = 1

	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	engine := scanner.NewEngine(db, cfg, covercache.New(cfg.CacheDir), epub.NewReader())

	return &testContext{
		t:              t,
		ctx:            logger.New().WithContext(context.Background()),
		db:             db,
		worker:         New(cfg, db, engine),
		jobService:     jobs.NewService(db),
		contentService: contents.NewService(db),
	}
}

func (tc *testContext) createLibrary(typ string, sources ...string) *models.Library {
	tc.t.Helper()

	library := &models.Library{Name: "Test " + typ + " " + sources[0], Type: typ}
	for _, s := range sources {
		library.Sources = append(library.Sources, &models.LibrarySource{Path: s})
	}
	require.NoError(tc.t, tc.worker.libraryService.CreateLibrary(tc.ctx, library))
	return library
}

func (tc *testContext) countContents(library *models.Library) int {
	tc.t.Helper()
	rows, err := tc.contentService.ListContents(tc.ctx, contents.ListContentsOptions{LibraryID: &library.ID})
	require.NoError(tc.t, err)
	return len(rows)
}

func (tc *testContext) createScanJob(libraryID *int, data *models.JobScanData) *models.Job {
	tc.t.Helper()
	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusPending,
		DataParsed: data,
		LibraryID:  libraryID,
	}
	require.NoError(tc.t, tc.jobService.CreateJob(tc.ctx, job))
	loaded, err := tc.jobService.RetrieveJob(tc.ctx, jobs.RetrieveJobOptions{ID: &job.ID})
	require.NoError(tc.t, err)
	return loaded
}
