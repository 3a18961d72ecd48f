package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/fieldsync/internal/types"
)

// ListJobs returns a page of jobs ordered by scheduled time, plus the total matching count.
// An empty status matches every job.
func (db *DB) ListJobs(ctx context.Context, status types.JobStatus, limit, offset int) ([]types.Job, int, error) {
	limit, offset = types.NormalizePage(limit, offset)

	var statusArg *string
	if status != "" {
		s := string(status)
		statusArg = &s
	}

	var total int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM jobs WHERE ($1::text IS NULL OR status = $1)`,
		statusArg,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, title, customer, address, status, scheduled_at, model_url, description
		 FROM jobs
		 WHERE ($1::text IS NULL OR status = $1)
		 ORDER BY scheduled_at, id
		 LIMIT $2 OFFSET $3`,
		statusArg, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]types.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, total, nil
}

// GetJob retrieves a job by id. Returns nil, nil when absent.
func (db *DB) GetJob(ctx context.Context, id string) (*types.Job, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, title, customer, address, status, scheduled_at, model_url, description
		 FROM jobs WHERE id = $1`,
		id,
	)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return job, nil
}

// UpsertJob inserts or replaces a job.
func (db *DB) UpsertJob(ctx context.Context, job *types.Job) error {
	return upsertJob(ctx, db.pool, job)
}

func scanJob(row scanner) (*types.Job, error) {
	var j types.Job
	err := row.Scan(&j.ID, &j.Title, &j.Customer, &j.Address, &j.Status,
		&j.ScheduledAt, &j.ModelURL, &j.Description)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func upsertJob(ctx context.Context, ex execer, job *types.Job) error {
	status := job.Status
	if status == "" {
		status = types.JobScheduled
	}
	_, err := ex.Exec(ctx,
		`INSERT INTO jobs (id, title, customer, address, status, scheduled_at, model_url, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
		   title = $2, customer = $3, address = $4, status = $5, scheduled_at = $6,
		   model_url = $7, description = $8, updated_at = NOW()`,
		job.ID, job.Title, job.Customer, job.Address, string(status), job.ScheduledAt,
		job.ModelURL, job.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert job %s: %w", job.ID, err)
	}
	return nil
}
