package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/event-gallery-api/internal/database"
	"github.com/event-gallery-api/internal/models"
	"github.com/lib/pq"
)

const jobColumns = `id, event_id, folder_id, status, idempotency_key, total_files, imported_count,
	skipped_count, duration_ms, error_message, created_at, started_at, completed_at`

// jobRepo is the concrete implementation of JobRepository
type jobRepo struct {
	db *database.DB
}

// NewJobRepo creates a new job repository
func NewJobRepo(db *database.DB) JobRepository {
	return &jobRepo{db: db}
}

// Create inserts a new job
func (r *jobRepo) Create(ctx context.Context, job *models.IngestJob) error {
	query := `
		INSERT INTO ingest_jobs (id, event_id, folder_id, status, idempotency_key, total_files,
			imported_count, skipped_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.EventID, job.FolderID, job.Status, nullString(job.IdempotencyKey),
		job.TotalFiles, job.ImportedCount, job.SkippedCount, job.CreatedAt,
	)
	return err
}

// Update updates job status and counters
func (r *jobRepo) Update(ctx context.Context, job *models.IngestJob) error {
	query := `
		UPDATE ingest_jobs SET
			status = $1, total_files = $2, imported_count = $3, skipped_count = $4,
			duration_ms = $5, error_message = $6, started_at = $7, completed_at = $8
		WHERE id = $9
	`
	_, err := r.db.ExecContext(ctx, query,
		job.Status, job.TotalFiles, job.ImportedCount, job.SkippedCount,
		job.DurationMs, nullString(job.ErrorMessage), job.StartedAt, job.CompletedAt, job.ID,
	)
	return err
}

// GetByID retrieves a job by ID
func (r *jobRepo) GetByID(ctx context.Context, id string) (*models.IngestJob, error) {
	query := `SELECT ` + jobColumns + ` FROM ingest_jobs WHERE id = $1`
	return scanJobRow(r.db.QueryRowContext(ctx, query, id))
}

// GetByIdempotencyKey retrieves a job by idempotency key
func (r *jobRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.IngestJob, error) {
	query := `SELECT ` + jobColumns + ` FROM ingest_jobs WHERE idempotency_key = $1`
	return scanJobRow(r.db.QueryRowContext(ctx, query, key))
}

// GetPendingJobs retrieves all pending jobs, oldest first
func (r *jobRepo) GetPendingJobs(ctx context.Context) ([]*models.IngestJob, error) {
	query := `
		SELECT id, event_id, folder_id, created_at
		FROM ingest_jobs WHERE status = 'pending'
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.IngestJob
	for rows.Next() {
		var job models.IngestJob
		if err := rows.Scan(&job.ID, &job.EventID, &job.FolderID, &job.CreatedAt); err != nil {
			return nil, err
		}
		job.Status = models.JobStatusPending
		jobs = append(jobs, &job)
	}

	return jobs, rows.Err()
}

// MarkJobAsProcessing atomically marks a pending job as processing
func (r *jobRepo) MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error) {
	query := `
		UPDATE ingest_jobs SET status = 'processing', started_at = $1
		WHERE id = $2 AND status = 'pending'
	`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), jobID)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// AddSkips records the files a job did not import, using COPY
func (r *jobRepo) AddSkips(ctx context.Context, jobID string, skips []models.SkippedFile) error {
	if len(skips) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("ingest_job_skips",
		"job_id", "file_id", "file_name", "mime_type", "reason",
	))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range skips {
		if _, err := stmt.ExecContext(ctx, jobID, s.FileID, s.FileName, s.MimeType, s.Reason); err != nil {
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		return err
	}

	return tx.Commit()
}

// GetSkips retrieves skipped files for a job. limit <= 0 returns all.
func (r *jobRepo) GetSkips(ctx context.Context, jobID string, limit int) ([]models.SkippedFile, error) {
	query := `SELECT file_id, file_name, mime_type, reason FROM ingest_job_skips WHERE job_id = $1 ORDER BY id`
	args := []interface{}{jobID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skips []models.SkippedFile
	for rows.Next() {
		var s models.SkippedFile
		var name, mime sql.NullString
		if err := rows.Scan(&s.FileID, &name, &mime, &s.Reason); err != nil {
			return nil, err
		}
		s.FileName = name.String
		s.MimeType = mime.String
		skips = append(skips, s)
	}

	return skips, rows.Err()
}

func scanJobRow(row *sql.Row) (*models.IngestJob, error) {
	var job models.IngestJob
	var idempotencyKey, errorMessage sql.NullString
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&job.ID, &job.EventID, &job.FolderID, &job.Status, &idempotencyKey,
		&job.TotalFiles, &job.ImportedCount, &job.SkippedCount, &job.DurationMs,
		&errorMessage, &job.CreatedAt, &startedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	job.IdempotencyKey = idempotencyKey.String
	job.ErrorMessage = errorMessage.String
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}

	return &job, nil
}
