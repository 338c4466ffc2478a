package worker

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/voltisapp/voltis/pkg/models"
)

// scheduleScans queues a scan of every library each ScanIntervalMinutes.
func (w *Worker) scheduleScans() {
	defer func() {
		w.doneScheduling <- struct{}{}
	}()

	if w.config.ScanIntervalMinutes <= 0 {
		<-w.shutdown
		return
	}

	ticker := time.NewTicker(time.Duration(w.config.ScanIntervalMinutes) * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-w.shutdown:
			return
		case <-ticker.C:
			ctx := w.log.WithContext(context.Background())
			if _, err := w.enqueueScan(ctx); err != nil {
				w.log.Err(err).Error("schedule scan error")
			}
		}
	}
}

// enqueueScan queues a scan of every library unless one is already pending or
// running. It reports whether a job was created.
func (w *Worker) enqueueScan(ctx context.Context) (bool, error) {
	log := logger.FromContext(ctx)

	active, err := w.jobService.HasActiveJob(ctx, models.JobTypeScan, nil)
	if err != nil {
		return false, errors.WithStack(err)
	}
	if active {
		log.Info("scan job already queued, skipping scheduled scan")
		return false, nil
	}

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobScanData{},
	}
	if err := w.jobService.CreateJob(ctx, job); err != nil {
		return false, errors.WithStack(err)
	}
	log.Info("queued scheduled scan", logger.Data{"job_id": job.ID})
	return true, nil
}
