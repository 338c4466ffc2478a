package joblogs

import (
	"context"

	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/voltisapp/voltis/pkg/models"
)

const maxDataValueLen = 1024

// JobLogger writes to the process log and keeps a copy of every message in
// job_logs so it can be read back through the API.
type JobLogger struct {
	ctx       context.Context
	jobID     int
	libraryID *int
	service   *Service
	log       logger.Logger
}

func (svc *Service) NewJobLogger(ctx context.Context, jobID int) *JobLogger {
	return &JobLogger{
		ctx:     ctx,
		jobID:   jobID,
		service: svc,
		log:     logger.FromContext(ctx).Data(logger.Data{"job_id": jobID}),
	}
}

// ForLibrary returns a logger whose messages are tagged with the library.
func (l *JobLogger) ForLibrary(libraryID int) *JobLogger {
	id := libraryID
	return &JobLogger{
		ctx:       l.ctx,
		jobID:     l.jobID,
		libraryID: &id,
		service:   l.service,
		log:       l.log.Data(logger.Data{"library_id": libraryID}),
	}
}

func (l *JobLogger) Info(msg string, data logger.Data) {
	l.log.Info(msg, data)
	l.persist(models.JobLogLevelInfo, msg, data)
}

func (l *JobLogger) Warn(msg string, data logger.Data) {
	l.log.Warn(msg, data)
	l.persist(models.JobLogLevelWarn, msg, data)
}

func (l *JobLogger) Error(msg string, err error, data logger.Data) {
	l.log.Err(err).Error(msg, data)
	merged := logger.Data{}
	for k, v := range data {
		merged[k] = v
	}
	if err != nil {
		merged["error"] = err.Error()
	}
	l.persist(models.JobLogLevelError, msg, merged)
}

func (l *JobLogger) persist(level, msg string, data logger.Data) {
	var dataStr *string
	if len(data) > 0 {
		truncated := make(logger.Data, len(data))
		for k, v := range data {
			if s, ok := v.(string); ok && len(s) > maxDataValueLen {
				truncated[k] = truncateMiddle(s, maxDataValueLen)
				continue
			}
			truncated[k] = v
		}
		if b, err := json.Marshal(truncated); err == nil {
			s := string(b)
			dataStr = &s
		}
	}

	jobLog := &models.JobLog{
		JobID:     l.jobID,
		LibraryID: l.libraryID,
		Level:     level,
		Message:   msg,
		Data:      dataStr,
	}
	if err := l.service.CreateJobLog(l.ctx, jobLog); err != nil {
		l.log.Err(err).Error("persist job log error")
	}
}

func truncateMiddle(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	half := (maxLen - 5) / 2
	return s[:half] + " ... " + s[len(s)-half:]
}
