package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SeyyedAliBargh/task-manager-api/internal/job"
	"github.com/SeyyedAliBargh/task-manager-api/internal/platform/logger"
	"github.com/SeyyedAliBargh/task-manager-api/internal/store"
)

// PostgresJobStore implements the job.JobStore interface using PostgreSQL.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobStore creates a new PostgresJobStore.
// If logger is nil, a default logger will be used.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure PostgresJobStore implements job.JobStore
var _ job.JobStore = (*PostgresJobStore)(nil)

// SaveJob implements job.JobStore.SaveJob
func (s *PostgresJobStore) SaveJob(ctx context.Context, j job.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO jobs (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, query,
		j.ID(),
		j.Type(),
		j.Payload(),
		j.Status(),
		now,
		now,
	)
	if err != nil {
		log.Error("failed to save job",
			slog.String("job_id", j.ID().String()),
			slog.String("job_type", j.Type()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save job: %w", err)
	}

	return nil
}

// UpdateJobStatus implements job.JobStore.UpdateJobStatus
func (s *PostgresJobStore) UpdateJobStatus(
	ctx context.Context,
	jobID uuid.UUID,
	status job.JobStatus,
	errorMsg string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		status,
		errorMsg,
		time.Now().UTC(),
		jobID,
	)
	if err != nil {
		log.Error("failed to update job status",
			slog.String("job_id", jobID.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update job status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// The runner updates jobs that may have been cleaned up
		// concurrently; a missing row is not worth failing over.
		log.Warn("no job found with ID to update status",
			slog.String("job_id", jobID.String()))
		return nil
	}

	return nil
}

// GetPendingJobs implements job.JobStore.GetPendingJobs
func (s *PostgresJobStore) GetPendingJobs(ctx context.Context) ([]job.Job, error) {
	return s.getJobsByStatus(ctx, job.JobStatusPending, 0)
}

// GetProcessingJobs implements job.JobStore.GetProcessingJobs
func (s *PostgresJobStore) GetProcessingJobs(
	ctx context.Context,
	olderThan time.Duration,
) ([]job.Job, error) {
	return s.getJobsByStatus(ctx, job.JobStatusProcessing, olderThan)
}

// getJobsByStatus retrieves jobs in the given status, optionally only
// those that last changed more than olderThan ago.
func (s *PostgresJobStore) getJobsByStatus(
	ctx context.Context,
	status job.JobStatus,
	olderThan time.Duration,
) ([]job.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, type, payload, status
		FROM jobs
		WHERE status = $1
		ORDER BY created_at ASC
	`
	args := []any{status}

	if olderThan > 0 {
		query = `
			SELECT id, type, payload, status
			FROM jobs
			WHERE status = $1 AND updated_at < $2
			ORDER BY created_at ASC
		`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query jobs by status",
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query jobs by status: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("error closing rows", slog.String("error", closeErr.Error()))
		}
	}()

	jobs := []job.Job{}
	for rows.Next() {
		loaded := &databaseJob{}
		if err := rows.Scan(&loaded.id, &loaded.jobType, &loaded.payload, &loaded.status); err != nil {
			log.Error("failed to scan job row",
				slog.String("status", string(status)),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, loaded)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating job rows",
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}

	return jobs, nil
}

// WithTx implements job.JobStore.WithTx
func (s *PostgresJobStore) WithTx(tx *sql.Tx) job.JobStore {
	return &PostgresJobStore{
		db:     tx,
		logger: s.logger,
	}
}

// databaseJob implements the job.Job interface for rows loaded from the
// database. A loaded job carries no behavior; the runner's factory must
// rebuild it into an executable job before it can run.
type databaseJob struct {
	id      uuid.UUID
	jobType string
	payload []byte
	status  job.JobStatus
}

// ID returns the job's unique identifier
func (j *databaseJob) ID() uuid.UUID {
	return j.id
}

// Type returns the job type identifier
func (j *databaseJob) Type() string {
	return j.jobType
}

// Payload returns the job data as a byte slice
func (j *databaseJob) Payload() []byte {
	return j.payload
}

// Status returns the current job status
func (j *databaseJob) Status() job.JobStatus {
	return j.status
}

// Execute always fails: a job loaded straight from the database has not
// been bound to its dependencies yet.
func (j *databaseJob) Execute(ctx context.Context) error {
	return errors.New("job loaded from database must be rebuilt by a factory before execution")
}
