package job

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current state of a job
type JobStatus string

// Possible job status values
const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job type constants
const (
	// JobTypeActivationEmail sends the account activation link after registration
	JobTypeActivationEmail = "activation_email"

	// JobTypePasswordResetEmail sends a password reset code
	JobTypePasswordResetEmail = "password_reset_email"

	// JobTypeEmailChangeEmail sends an email change confirmation code
	JobTypeEmailChangeEmail = "email_change_email"

	// JobTypeInvitationEmail notifies a user of a project invitation
	JobTypeInvitationEmail = "invitation_email"

	// JobTypeTaskReminderEmail reminds an assignee about a task due soon
	JobTypeTaskReminderEmail = "task_reminder_email"
)

// Job represents a unit of background work to be processed
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier
	Type() string

	// Payload returns the job data as a byte slice
	Payload() []byte

	// Status returns the current job status
	Status() JobStatus

	// Execute runs the job logic
	Execute(ctx context.Context) error
}

// JobFactory rebuilds an executable Job from its persisted form.
// Jobs loaded from the database after a restart carry only their type
// and payload; the factory binds them back to their dependencies so
// they can actually run.
type JobFactory interface {
	Rebuild(id uuid.UUID, jobType string, payload []byte) (Job, error)
}

// Submitter enqueues jobs for background execution.
type Submitter interface {
	Submit(ctx context.Context, job Job) error
}

// JobStore defines the interface for persisting jobs
type JobStore interface {
	// SaveJob persists a job to the database
	SaveJob(ctx context.Context, job Job) error

	// UpdateJobStatus updates the status of a job
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status JobStatus, errorMsg string) error

	// GetPendingJobs retrieves all jobs with "pending" status
	GetPendingJobs(ctx context.Context) ([]Job, error)

	// GetProcessingJobs retrieves jobs with "processing" status.
	// If olderThan is non-zero, only returns jobs that have been in this
	// state longer than the specified duration.
	GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]Job, error)

	// WithTx returns a new JobStore instance that uses the provided transaction.
	// This allows job submission to participate in a larger transaction
	// managed by the caller (typically a service).
	WithTx(tx *sql.Tx) JobStore
}
