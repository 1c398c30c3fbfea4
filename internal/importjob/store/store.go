package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/arti-ci/sygfp/internal/importjob"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateJob(ctx context.Context, job *importjob.Job) error {
	query := `
		INSERT INTO import_jobs (exercice, filename, file_size, status, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		job.Exercice,
		job.Filename,
		job.FileSize,
		importjob.StatusRunning,
	).Scan(&job.ID, &job.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating import job: %w", err)
	}

	job.Status = importjob.StatusRunning

	return nil
}

func (s *Store) FinishJob(ctx context.Context, job *importjob.Job) error {
	query := `
		UPDATE import_jobs
		SET status = $1, total_rows = $2, new_rows = $3, updated_rows = $4,
		    skipped_rows = $5, error_rows = $6, summary = $7, completed_at = NOW()
		WHERE id = $8
		RETURNING completed_at
	`

	err := s.db.QueryRowContext(ctx, query,
		job.Status,
		job.TotalRows,
		job.NewRows,
		job.UpdatedRows,
		job.SkippedRows,
		job.ErrorRows,
		job.Summary,
		job.ID,
	).Scan(&job.CompletedAt)
	if err != nil {
		return fmt.Errorf("finishing import job: %w", err)
	}

	return nil
}

func (s *Store) MarkJobFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE import_jobs
		SET status = $1, summary = $2, completed_at = NOW()
		WHERE id = $3
	`

	_, err := s.db.ExecContext(ctx, query, importjob.StatusFailed, reason, id)
	if err != nil {
		return fmt.Errorf("marking import job failed: %w", err)
	}

	return nil
}

func (s *Store) AppendRowLog(ctx context.Context, log *importjob.RowLog) error {
	raw, err := json.Marshal(log.Raw)
	if err != nil {
		return fmt.Errorf("encoding raw payload: %w", err)
	}

	var normalized []byte

	if log.Normalized != nil {
		if normalized, err = json.Marshal(log.Normalized); err != nil {
			return fmt.Errorf("encoding normalized payload: %w", err)
		}
	}

	errMsgs, err := json.Marshal(log.Errors)
	if err != nil {
		return fmt.Errorf("encoding error messages: %w", err)
	}

	query := `
		INSERT INTO import_rows (job_id, row_index, sheet_name, raw, normalized, status, error_messages, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	err = s.db.QueryRowContext(ctx, query,
		log.JobID,
		log.RowIndex,
		log.SheetName,
		raw,
		normalized,
		log.Status,
		errMsgs,
	).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending import row log: %w", err)
	}

	return nil
}

const selectJobColumns = `
	id, exercice, filename, file_size, status, total_rows, new_rows,
	updated_rows, skipped_rows, error_rows, summary, created_at, completed_at
`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*importjob.Job, error) {
	var job importjob.Job

	var statusStr, summary sql.NullString

	if err := s.Scan(
		&job.ID, &job.Exercice, &job.Filename, &job.FileSize, &statusStr,
		&job.TotalRows, &job.NewRows, &job.UpdatedRows, &job.SkippedRows,
		&job.ErrorRows, &summary, &job.CreatedAt, &job.CompletedAt,
	); err != nil {
		return nil, err
	}

	job.Status = importjob.Status(statusStr.String)
	job.Summary = summary.String

	return &job, nil
}

func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*importjob.Job, error) {
	query := `SELECT ` + selectJobColumns + ` FROM import_jobs WHERE id = $1`

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, importjob.ErrNotFound
		}

		return nil, fmt.Errorf("getting import job: %w", err)
	}

	return job, nil
}

func (s *Store) ListJobs(ctx context.Context, exercice int) ([]*importjob.Job, error) {
	// exercice 0 means no filter.
	query := `SELECT ` + selectJobColumns + `
		FROM import_jobs
		WHERE ($1 = 0 OR exercice = $1)
		ORDER BY created_at DESC
		LIMIT 50`

	rows, err := s.db.QueryContext(ctx, query, exercice)
	if err != nil {
		return nil, fmt.Errorf("listing import jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*importjob.Job

	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning import job: %w", err)
		}

		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

func (s *Store) ListRowLogs(ctx context.Context, jobID uuid.UUID) ([]*importjob.RowLog, error) {
	query := `
		SELECT id, job_id, row_index, sheet_name, raw, normalized, status, error_messages, created_at
		FROM import_rows
		WHERE job_id = $1
		ORDER BY row_index ASC
	`

	rows, err := s.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("listing import rows: %w", err)
	}
	defer rows.Close()

	var logs []*importjob.RowLog

	for rows.Next() {
		var log importjob.RowLog

		var raw, normalized, errMsgs []byte

		var statusStr string

		if err := rows.Scan(
			&log.ID, &log.JobID, &log.RowIndex, &log.SheetName,
			&raw, &normalized, &statusStr, &errMsgs, &log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning import row: %w", err)
		}

		log.Status = importjob.RowStatus(statusStr)

		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &log.Raw); err != nil {
				return nil, fmt.Errorf("decoding raw payload: %w", err)
			}
		}

		if len(normalized) > 0 {
			if err := json.Unmarshal(normalized, &log.Normalized); err != nil {
				return nil, fmt.Errorf("decoding normalized payload: %w", err)
			}
		}

		if len(errMsgs) > 0 {
			if err := json.Unmarshal(errMsgs, &log.Errors); err != nil {
				return nil, fmt.Errorf("decoding error messages: %w", err)
			}
		}

		logs = append(logs, &log)
	}

	return logs, rows.Err()
}
