package worker

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/voltisapp/voltis/pkg/libraries"
	"github.com/voltisapp/voltis/pkg/models"
	"github.com/voltisapp/voltis/pkg/scanner"
)

var errUnknownJobType = errors.New("unknown job type")

// ProcessScanJob scans the job's library, or every library when the job has
// none. Libraries are scanned one after the other and a failure doesn't stop
// the remaining ones.
func (w *Worker) ProcessScanJob(ctx context.Context, job *models.Job) error {
	jl := w.jobLogService.NewJobLogger(ctx, job.ID)

	opts := scanner.ScanOptions{}
	if data, ok := job.DataParsed.(*models.JobScanData); ok && data != nil {
		opts.Force = data.Force
		opts.FilterPaths = data.FilterPaths
	}
	var libraryIDs []int
	if job.LibraryID != nil {
		libraryIDs = []int{*job.LibraryID}
	}

	allLibraries, err := w.libraryService.ListLibraries(ctx, libraries.ListLibrariesOptions{IDs: libraryIDs})
	if err != nil {
		return errors.WithStack(err)
	}

	jl.Info("processing libraries", logger.Data{"count": len(allLibraries), "force": opts.Force})

	failed := 0
	for _, library := range allLibraries {
		ljl := jl.ForLibrary(library.ID)
		result, err := w.engine.Scan(ctx, library, opts)
		if errors.Is(err, scanner.ErrScanRunning) {
			ljl.Warn("library is already being scanned, skipping", nil)
			continue
		}
		if err != nil {
			ljl.Error("library scan failed", err, nil)
			failed++
			continue
		}
		summary := result.Summary()
		ljl.Info("library scanned", logger.Data{
			"added":     summary.Added.Count,
			"updated":   summary.Updated.Count,
			"removed":   summary.Removed.Count,
			"unchanged": summary.Unchanged.Count,
		})
	}

	if failed > 0 {
		return errors.Errorf("%d of %d libraries failed to scan", failed, len(allLibraries))
	}
	return nil
}
