package importjob

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("import job not found")

// Status is the lifecycle state of an import job. A job always reaches a
// terminal state: Failed when parsing breaks before execution, otherwise
// Completed or CompletedWithErrors once the executor finishes.
type Status string

const (
	StatusRunning             Status = "running"
	StatusCompleted           Status = "completed"
	StatusCompletedWithErrors Status = "completed_with_errors"
	StatusFailed              Status = "failed"
)

// RowStatus is the persistence outcome recorded for one processed row.
type RowStatus string

const (
	RowInserted        RowStatus = "inserted"
	RowUpdatedAmount   RowStatus = "updated_amount"
	RowSkippedExisting RowStatus = "skipped_existing"
	RowUpdated         RowStatus = "updated"
	RowError           RowStatus = "error"
)

// Job describes one import execution. It is created running and updated
// exactly once at the end with final totals.
type Job struct {
	ID          uuid.UUID
	Exercice    int
	Filename    string
	FileSize    int64
	Status      Status
	TotalRows   int
	NewRows     int
	UpdatedRows int
	SkippedRows int
	ErrorRows   int
	Summary     string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// RowLog is one append-only audit entry per row that reached the executor.
type RowLog struct {
	ID         uuid.UUID
	JobID      uuid.UUID
	RowIndex   int
	SheetName  string
	Raw        map[string]string
	Normalized map[string]any
	Status     RowStatus
	Errors     []string
	CreatedAt  time.Time
}

type Repository interface {
	CreateJob(ctx context.Context, job *Job) error
	// FinishJob writes the job's terminal status, counts, summary and
	// completion timestamp. Called exactly once per job.
	FinishJob(ctx context.Context, job *Job) error
	MarkJobFailed(ctx context.Context, id uuid.UUID, reason string) error

	AppendRowLog(ctx context.Context, log *RowLog) error

	GetJob(ctx context.Context, id uuid.UUID) (*Job, error)
	ListJobs(ctx context.Context, exercice int) ([]*Job, error)
	ListRowLogs(ctx context.Context, jobID uuid.UUID) ([]*RowLog, error)
}
