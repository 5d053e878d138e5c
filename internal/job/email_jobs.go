package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNilMailer      = errors.New("mailer cannot be nil")
	ErrNilLogger      = errors.New("logger cannot be nil")
	ErrEmptyRecipient = errors.New("recipient email cannot be empty")
	ErrUnknownJobType = errors.New("unknown job type")
)

// Mailer delivers the emails that jobs produce.
type Mailer interface {
	// SendActivationEmail mails the account activation link
	SendActivationEmail(ctx context.Context, to, activationURL string) error

	// SendPasswordResetCode mails a password reset code
	SendPasswordResetCode(ctx context.Context, to, code string) error

	// SendEmailChangeCode mails an email change confirmation code
	SendEmailChangeCode(ctx context.Context, to, newEmail, code string) error

	// SendInvitationEmail notifies a user of a project invitation
	SendInvitationEmail(ctx context.Context, to, projectName, role string) error

	// SendTaskReminder notifies an assignee about a task due soon
	SendTaskReminder(ctx context.Context, to, taskTitle string, dueDate time.Time) error
}

// Payload structures for each email job type. They are serialized into
// the jobs table, so a job survives restarts and can be rebuilt by the
// factory from its type and payload alone.

// ActivationEmailPayload carries the data for an activation email job
type ActivationEmailPayload struct {
	Email           string `json:"email"`
	ActivationToken string `json:"activation_token"`
}

// PasswordResetEmailPayload carries the data for a password reset email job
type PasswordResetEmailPayload struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// EmailChangeEmailPayload carries the data for an email change
// confirmation job. To is the address that receives the code, NewEmail
// the address the account will switch to once confirmed.
type EmailChangeEmailPayload struct {
	To       string `json:"to"`
	NewEmail string `json:"new_email"`
	Code     string `json:"code"`
}

// InvitationEmailPayload carries the data for an invitation email job
type InvitationEmailPayload struct {
	Email       string `json:"email"`
	ProjectName string `json:"project_name"`
	Role        string `json:"role"`
}

// TaskReminderEmailPayload carries the data for a task reminder email job
type TaskReminderEmailPayload struct {
	Email     string    `json:"email"`
	TaskTitle string    `json:"task_title"`
	DueDate   time.Time `json:"due_date"`
}

// emailJob is the Job implementation for all outgoing mail. The deliver
// closure is bound by the factory based on the job type and payload.
type emailJob struct {
	id      uuid.UUID
	jobType string
	payload []byte
	status  JobStatus
	deliver func(ctx context.Context) error
	logger  *slog.Logger
}

// ID returns the job's unique identifier
func (j *emailJob) ID() uuid.UUID {
	return j.id
}

// Type returns the job type identifier
func (j *emailJob) Type() string {
	return j.jobType
}

// Payload returns the job data as a byte slice
func (j *emailJob) Payload() []byte {
	return j.payload
}

// Status returns the current job status
func (j *emailJob) Status() JobStatus {
	return j.status
}

// Execute delivers the email, tracking the job status through the
// processing lifecycle.
func (j *emailJob) Execute(ctx context.Context) error {
	j.status = JobStatusProcessing

	if err := ctx.Err(); err != nil {
		j.status = JobStatusFailed
		return fmt.Errorf("job cancelled by context: %w", err)
	}

	j.logger.Info("delivering email")

	if err := j.deliver(ctx); err != nil {
		j.status = JobStatusFailed
		j.logger.Error("email delivery failed", "error", err)
		return fmt.Errorf("failed to deliver email: %w", err)
	}

	j.status = JobStatusCompleted
	return nil
}

// EmailJobFactory creates email jobs bound to a Mailer. It builds fresh
// jobs for services to submit and rebuilds persisted jobs during
// recovery, which makes it the JobFactory used by the runner.
type EmailJobFactory struct {
	mailer  Mailer
	baseURL string
	logger  *slog.Logger
}

// NewEmailJobFactory creates a new factory for email jobs. baseURL is
// the externally reachable server address used to assemble activation
// links.
func NewEmailJobFactory(mailer Mailer, baseURL string, logger *slog.Logger) (*EmailJobFactory, error) {
	if mailer == nil {
		return nil, ErrNilMailer
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &EmailJobFactory{
		mailer:  mailer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With("component", "email_job_factory"),
	}, nil
}

// Ensure EmailJobFactory implements JobFactory
var _ JobFactory = (*EmailJobFactory)(nil)

// NewActivationEmailJob creates a job that mails an activation link
func (f *EmailJobFactory) NewActivationEmailJob(email, activationToken string) (Job, error) {
	return f.newJob(JobTypeActivationEmail, ActivationEmailPayload{
		Email:           email,
		ActivationToken: activationToken,
	})
}

// NewPasswordResetEmailJob creates a job that mails a password reset code
func (f *EmailJobFactory) NewPasswordResetEmailJob(email, code string) (Job, error) {
	return f.newJob(JobTypePasswordResetEmail, PasswordResetEmailPayload{
		Email: email,
		Code:  code,
	})
}

// NewEmailChangeEmailJob creates a job that mails an email change code
func (f *EmailJobFactory) NewEmailChangeEmailJob(to, newEmail, code string) (Job, error) {
	return f.newJob(JobTypeEmailChangeEmail, EmailChangeEmailPayload{
		To:       to,
		NewEmail: newEmail,
		Code:     code,
	})
}

// NewInvitationEmailJob creates a job that mails a project invitation notice
func (f *EmailJobFactory) NewInvitationEmailJob(email, projectName, role string) (Job, error) {
	return f.newJob(JobTypeInvitationEmail, InvitationEmailPayload{
		Email:       email,
		ProjectName: projectName,
		Role:        role,
	})
}

// NewTaskReminderEmailJob creates a job that mails a due date reminder
func (f *EmailJobFactory) NewTaskReminderEmailJob(email, taskTitle string, dueDate time.Time) (Job, error) {
	return f.newJob(JobTypeTaskReminderEmail, TaskReminderEmailPayload{
		Email:     email,
		TaskTitle: taskTitle,
		DueDate:   dueDate,
	})
}

// Rebuild implements JobFactory. It reconstructs an executable job from
// its persisted type and payload.
func (f *EmailJobFactory) Rebuild(id uuid.UUID, jobType string, payload []byte) (Job, error) {
	return f.build(id, jobType, payload)
}

// newJob marshals the payload and assembles a fresh job
func (f *EmailJobFactory) newJob(jobType string, payload any) (Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job payload: %w", err)
	}
	return f.build(uuid.New(), jobType, data)
}

// build binds the delivery step for the given job type and payload.
// Both fresh submissions and recovery go through here, so a job always
// behaves the same regardless of where it was constructed.
func (f *EmailJobFactory) build(id uuid.UUID, jobType string, data []byte) (Job, error) {
	var deliver func(ctx context.Context) error

	switch jobType {
	case JobTypeActivationEmail:
		var p ActivationEmailPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal activation email payload: %w", err)
		}
		if p.Email == "" {
			return nil, ErrEmptyRecipient
		}
		activationURL := fmt.Sprintf("%s/api/auth/activate/%s", f.baseURL, p.ActivationToken)
		deliver = func(ctx context.Context) error {
			return f.mailer.SendActivationEmail(ctx, p.Email, activationURL)
		}

	case JobTypePasswordResetEmail:
		var p PasswordResetEmailPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal password reset email payload: %w", err)
		}
		if p.Email == "" {
			return nil, ErrEmptyRecipient
		}
		deliver = func(ctx context.Context) error {
			return f.mailer.SendPasswordResetCode(ctx, p.Email, p.Code)
		}

	case JobTypeEmailChangeEmail:
		var p EmailChangeEmailPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal email change payload: %w", err)
		}
		if p.To == "" {
			return nil, ErrEmptyRecipient
		}
		deliver = func(ctx context.Context) error {
			return f.mailer.SendEmailChangeCode(ctx, p.To, p.NewEmail, p.Code)
		}

	case JobTypeInvitationEmail:
		var p InvitationEmailPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal invitation email payload: %w", err)
		}
		if p.Email == "" {
			return nil, ErrEmptyRecipient
		}
		deliver = func(ctx context.Context) error {
			return f.mailer.SendInvitationEmail(ctx, p.Email, p.ProjectName, p.Role)
		}

	case JobTypeTaskReminderEmail:
		var p TaskReminderEmailPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task reminder payload: %w", err)
		}
		if p.Email == "" {
			return nil, ErrEmptyRecipient
		}
		deliver = func(ctx context.Context) error {
			return f.mailer.SendTaskReminder(ctx, p.Email, p.TaskTitle, p.DueDate)
		}

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownJobType, jobType)
	}

	return &emailJob{
		id:      id,
		jobType: jobType,
		payload: data,
		status:  JobStatusPending,
		deliver: deliver,
		logger:  f.logger.With("job_type", jobType, "job_id", id),
	}, nil
}
