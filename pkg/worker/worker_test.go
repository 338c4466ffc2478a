package worker

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voltisapp/voltis/internal/testgen"
	"github.com/voltisapp/voltis/pkg/joblogs"
	"github.com/voltisapp/voltis/pkg/jobs"
	"github.com/voltisapp/voltis/pkg/models"
)

func TestProcessScanJob_AllLibraries(t *testing.T) {
	tc := newTestContext(t)
	comicsRoot := t.TempDir()
	booksRoot := t.TempDir()
	testgen.GenerateCBZ(t, comicsRoot, "Series/Series #01.cbz", testgen.CBZOptions{})
	testgen.GenerateEPUB(t, booksRoot, "book.epub", testgen.EPUBOptions{Title: "Book"})
	comics := tc.createLibrary(models.LibraryTypeComics, comicsRoot)
	books := tc.createLibrary(models.LibraryTypeBooks, booksRoot)

	err := tc.worker.ProcessScanJob(tc.ctx, tc.createScanJob(nil, &models.JobScanData{}))
	require.NoError(t, err)

	assert.Equal(t, 2, tc.countContents(comics))
	assert.Equal(t, 1, tc.countContents(books))
}

func TestProcessScanJob_SingleLibrary(t *testing.T) {
	tc := newTestContext(t)
	first := t.TempDir()
	second := t.TempDir()
	testgen.GenerateCBZ(t, first, "A/A #01.cbz", testgen.CBZOptions{})
	testgen.GenerateCBZ(t, second, "B/B #01.cbz", testgen.CBZOptions{})
	scanned := tc.createLibrary(models.LibraryTypeComics, first)
	skipped := tc.createLibrary(models.LibraryTypeComics, second)

	err := tc.worker.ProcessScanJob(tc.ctx, tc.createScanJob(&scanned.ID, &models.JobScanData{}))
	require.NoError(t, err)

	assert.Equal(t, 2, tc.countContents(scanned))
	assert.Equal(t, 0, tc.countContents(skipped))
}

func TestProcessScanJob_ContinuesPastFailedLibrary(t *testing.T) {
	tc := newTestContext(t)
	good := t.TempDir()
	testgen.GenerateCBZ(t, good, "A/A #01.cbz", testgen.CBZOptions{})
	tc.createLibrary(models.LibraryTypeComics, filepath.Join(t.TempDir(), "missing"))
	library := tc.createLibrary(models.LibraryTypeComics, good)

	err := tc.worker.ProcessScanJob(tc.ctx, tc.createScanJob(nil, &models.JobScanData{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 libraries failed")

	assert.Equal(t, 2, tc.countContents(library))
}

func TestProcessJob_MarksCompleted(t *testing.T) {
	tc := newTestContext(t)
	root := t.TempDir()
	testgen.GenerateCBZ(t, root, "A/A #01.cbz", testgen.CBZOptions{})
	library := tc.createLibrary(models.LibraryTypeComics, root)
	job := tc.createScanJob(&library.ID, &models.JobScanData{Force: true})

	tc.worker.processJob(job)

	loaded, err := tc.jobService.RetrieveJob(tc.ctx, jobs.RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, loaded.Status)
	assert.Equal(t, 100, loaded.Progress)
	require.NotNil(t, loaded.ProcessID)
	assert.Equal(t, processID, *loaded.ProcessID)
	assert.Nil(t, loaded.Error)
}

func TestProcessJob_MarksFailed(t *testing.T) {
	tc := newTestContext(t)
	library := tc.createLibrary(models.LibraryTypeComics, filepath.Join(t.TempDir(), "missing"))
	job := tc.createScanJob(&library.ID, &models.JobScanData{})

	tc.worker.processJob(job)

	loaded, err := tc.jobService.RetrieveJob(tc.ctx, jobs.RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, loaded.Status)
	require.NotNil(t, loaded.Error)
	assert.Contains(t, *loaded.Error, "failed to scan")
}

func TestEnqueueScan(t *testing.T) {
	tc := newTestContext(t)

	created, err := tc.worker.enqueueScan(tc.ctx)
	require.NoError(t, err)
	assert.True(t, created)

	// the pending job blocks another one
	created, err = tc.worker.enqueueScan(tc.ctx)
	require.NoError(t, err)
	assert.False(t, created)

	pending, err := tc.jobService.ListJobs(tc.ctx, jobs.ListJobsOptions{Statuses: []string{models.JobStatusPending}})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Nil(t, pending[0].LibraryID)
	assert.Equal(t, models.JobTypeScan, pending[0].Type)
}

func TestEnqueueScan_AfterCompletion(t *testing.T) {
	tc := newTestContext(t)

	created, err := tc.worker.enqueueScan(tc.ctx)
	require.NoError(t, err)
	require.True(t, created)

	pending, err := tc.jobService.ListJobs(tc.ctx, jobs.ListJobsOptions{})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	pending[0].Status = models.JobStatusCompleted
	require.NoError(t, tc.jobService.UpdateJob(tc.ctx, pending[0], jobs.UpdateJobOptions{Columns: []string{"status"}}))

	created, err = tc.worker.enqueueScan(tc.ctx)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestProcessScanJob_RecordsJobLogs(t *testing.T) {
	tc := newTestContext(t)
	good := t.TempDir()
	testgen.GenerateCBZ(t, good, "A/A #01.cbz", testgen.CBZOptions{})
	missing := tc.createLibrary(models.LibraryTypeComics, filepath.Join(t.TempDir(), "missing"))
	library := tc.createLibrary(models.LibraryTypeComics, good)
	job := tc.createScanJob(nil, &models.JobScanData{})

	require.Error(t, tc.worker.ProcessScanJob(tc.ctx, job))

	logs, err := tc.worker.jobLogService.ListJobLogs(tc.ctx, joblogs.ListJobLogsOptions{JobID: job.ID})
	require.NoError(t, err)
	require.Len(t, logs, 3)

	assert.Equal(t, "processing libraries", logs[0].Message)

	byLibrary := map[int]*models.JobLog{}
	for _, l := range logs[1:] {
		require.NotNil(t, l.LibraryID)
		byLibrary[*l.LibraryID] = l
	}

	require.Contains(t, byLibrary, missing.ID)
	assert.Equal(t, models.JobLogLevelError, byLibrary[missing.ID].Level)

	require.Contains(t, byLibrary, library.ID)
	scanned := byLibrary[library.ID]
	assert.Equal(t, "library scanned", scanned.Message)
	require.NotNil(t, scanned.Data)
	assert.JSONEq(t, `{"added":1,"updated":0,"removed":0,"unchanged":0}`, *scanned.Data)
}
