package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	JobLogLevelInfo  = "info"
	JobLogLevelWarn  = "warn"
	JobLogLevelError = "error"
)

// JobLog is a message recorded while a job ran. LibraryID is set when the
// message concerns a single library of a scan.
type JobLog struct {
	bun.BaseModel `bun:"table:job_logs,alias:jl"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	JobID     int       `bun:",nullzero" json:"job_id"`
	LibraryID *int      `json:"library_id,omitempty"`
	Level     string    `bun:",nullzero" json:"level"`
	Message   string    `bun:",nullzero" json:"message"`
	Data      *string   `json:"data,omitempty"`
}
