package job

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockMailer implements the Mailer interface for testing
type MockMailer struct {
	SendActivationEmailFn   func(ctx context.Context, to, activationURL string) error
	SendPasswordResetCodeFn func(ctx context.Context, to, code string) error
	SendEmailChangeCodeFn   func(ctx context.Context, to, newEmail, code string) error
	SendInvitationEmailFn   func(ctx context.Context, to, projectName, role string) error
	SendTaskReminderFn      func(ctx context.Context, to, taskTitle string, dueDate time.Time) error

	Calls []string
}

func NewMockMailer() *MockMailer {
	m := &MockMailer{}
	m.SendActivationEmailFn = func(ctx context.Context, to, activationURL string) error { return nil }
	m.SendPasswordResetCodeFn = func(ctx context.Context, to, code string) error { return nil }
	m.SendEmailChangeCodeFn = func(ctx context.Context, to, newEmail, code string) error { return nil }
	m.SendInvitationEmailFn = func(ctx context.Context, to, projectName, role string) error { return nil }
	m.SendTaskReminderFn = func(ctx context.Context, to, taskTitle string, dueDate time.Time) error { return nil }
	return m
}

func (m *MockMailer) SendActivationEmail(ctx context.Context, to, activationURL string) error {
	m.Calls = append(m.Calls, "activation")
	return m.SendActivationEmailFn(ctx, to, activationURL)
}

func (m *MockMailer) SendPasswordResetCode(ctx context.Context, to, code string) error {
	m.Calls = append(m.Calls, "password_reset")
	return m.SendPasswordResetCodeFn(ctx, to, code)
}

func (m *MockMailer) SendEmailChangeCode(ctx context.Context, to, newEmail, code string) error {
	m.Calls = append(m.Calls, "email_change")
	return m.SendEmailChangeCodeFn(ctx, to, newEmail, code)
}

func (m *MockMailer) SendInvitationEmail(ctx context.Context, to, projectName, role string) error {
	m.Calls = append(m.Calls, "invitation")
	return m.SendInvitationEmailFn(ctx, to, projectName, role)
}

func (m *MockMailer) SendTaskReminder(ctx context.Context, to, taskTitle string, dueDate time.Time) error {
	m.Calls = append(m.Calls, "task_reminder")
	return m.SendTaskReminderFn(ctx, to, taskTitle, dueDate)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewEmailJobFactory(t *testing.T) {
	t.Parallel()

	t.Run("rejects nil mailer", func(t *testing.T) {
		t.Parallel()

		factory, err := NewEmailJobFactory(nil, "http://localhost:8080", testLogger())
		assert.ErrorIs(t, err, ErrNilMailer)
		assert.Nil(t, factory)
	})

	t.Run("rejects nil logger", func(t *testing.T) {
		t.Parallel()

		factory, err := NewEmailJobFactory(NewMockMailer(), "http://localhost:8080", nil)
		assert.ErrorIs(t, err, ErrNilLogger)
		assert.Nil(t, factory)
	})

	t.Run("trims trailing slash from base URL", func(t *testing.T) {
		t.Parallel()

		mailer := NewMockMailer()
		var gotURL string
		mailer.SendActivationEmailFn = func(ctx context.Context, to, activationURL string) error {
			gotURL = activationURL
			return nil
		}

		factory, err := NewEmailJobFactory(mailer, "http://localhost:8080/", testLogger())
		require.NoError(t, err)

		job, err := factory.NewActivationEmailJob("user@example.com", "tok123")
		require.NoError(t, err)
		require.NoError(t, job.Execute(context.Background()))

		assert.Equal(t, "http://localhost:8080/api/auth/activate/tok123", gotURL)
	})
}

func TestActivationEmailJob(t *testing.T) {
	t.Parallel()

	mailer := NewMockMailer()
	var gotTo, gotURL string
	mailer.SendActivationEmailFn = func(ctx context.Context, to, activationURL string) error {
		gotTo = to
		gotURL = activationURL
		return nil
	}

	factory, err := NewEmailJobFactory(mailer, "https://tasks.example.com", testLogger())
	require.NoError(t, err)

	job, err := factory.NewActivationEmailJob("user@example.com", "tok-abc")
	require.NoError(t, err)

	assert.Equal(t, JobTypeActivationEmail, job.Type())
	assert.Equal(t, JobStatusPending, job.Status())
	assert.NotEqual(t, uuid.Nil, job.ID())

	// Payload must carry everything needed to rebuild the job
	var payload ActivationEmailPayload
	require.NoError(t, json.Unmarshal(job.Payload(), &payload))
	assert.Equal(t, "user@example.com", payload.Email)
	assert.Equal(t, "tok-abc", payload.ActivationToken)

	require.NoError(t, job.Execute(context.Background()))
	assert.Equal(t, JobStatusCompleted, job.Status())
	assert.Equal(t, "user@example.com", gotTo)
	assert.Equal(t, "https://tasks.example.com/api/auth/activate/tok-abc", gotURL)
}

func TestPasswordResetEmailJob(t *testing.T) {
	t.Parallel()

	mailer := NewMockMailer()
	var gotTo, gotCode string
	mailer.SendPasswordResetCodeFn = func(ctx context.Context, to, code string) error {
		gotTo = to
		gotCode = code
		return nil
	}

	factory, err := NewEmailJobFactory(mailer, "http://localhost:8080", testLogger())
	require.NoError(t, err)

	job, err := factory.NewPasswordResetEmailJob("user@example.com", "A2B3C4D5")
	require.NoError(t, err)
	require.NoError(t, job.Execute(context.Background()))

	assert.Equal(t, "user@example.com", gotTo)
	assert.Equal(t, "A2B3C4D5", gotCode)
}

func TestEmailChangeEmailJob(t *testing.T) {
	t.Parallel()

	mailer := NewMockMailer()
	var gotTo, gotNewEmail, gotCode string
	mailer.SendEmailChangeCodeFn = func(ctx context.Context, to, newEmail, code string) error {
		gotTo = to
		gotNewEmail = newEmail
		gotCode = code
		return nil
	}

	factory, err := NewEmailJobFactory(mailer, "http://localhost:8080", testLogger())
	require.NoError(t, err)

	job, err := factory.NewEmailChangeEmailJob("new@example.com", "new@example.com", "X9Y8Z7W6")
	require.NoError(t, err)
	require.NoError(t, job.Execute(context.Background()))

	assert.Equal(t, "new@example.com", gotTo)
	assert.Equal(t, "new@example.com", gotNewEmail)
	assert.Equal(t, "X9Y8Z7W6", gotCode)
}

func TestInvitationEmailJob(t *testing.T) {
	t.Parallel()

	mailer := NewMockMailer()
	var gotProject, gotRole string
	mailer.SendInvitationEmailFn = func(ctx context.Context, to, projectName, role string) error {
		gotProject = projectName
		gotRole = role
		return nil
	}

	factory, err := NewEmailJobFactory(mailer, "http://localhost:8080", testLogger())
	require.NoError(t, err)

	job, err := factory.NewInvitationEmailJob("invitee@example.com", "Roadmap 2026", "viewer")
	require.NoError(t, err)
	require.NoError(t, job.Execute(context.Background()))

	assert.Equal(t, "Roadmap 2026", gotProject)
	assert.Equal(t, "viewer", gotRole)
}

func TestTaskReminderEmailJob(t *testing.T) {
	t.Parallel()

	mailer := NewMockMailer()
	var gotTitle string
	var gotDue time.Time
	mailer.SendTaskReminderFn = func(ctx context.Context, to, taskTitle string, dueDate time.Time) error {
		gotTitle = taskTitle
		gotDue = dueDate
		return nil
	}

	factory, err := NewEmailJobFactory(mailer, "http://localhost:8080", testLogger())
	require.NoError(t, err)

	due := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	job, err := factory.NewTaskReminderEmailJob("assignee@example.com", "Ship release notes", due)
	require.NoError(t, err)
	require.NoError(t, job.Execute(context.Background()))

	assert.Equal(t, "Ship release notes", gotTitle)
	assert.True(t, gotDue.Equal(due))
}

func TestEmailJobExecuteFailure(t *testing.T) {
	t.Parallel()

	mailer := NewMockMailer()
	mailer.SendActivationEmailFn = func(ctx context.Context, to, activationURL string) error {
		return errors.New("smtp unavailable")
	}

	factory, err := NewEmailJobFactory(mailer, "http://localhost:8080", testLogger())
	require.NoError(t, err)

	job, err := factory.NewActivationEmailJob("user@example.com", "tok123")
	require.NoError(t, err)

	err = job.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to deliver email")
	assert.Equal(t, JobStatusFailed, job.Status())
}

func TestEmailJobExecuteCancelledContext(t *testing.T) {
	t.Parallel()

	mailer := NewMockMailer()
	factory, err := NewEmailJobFactory(mailer, "http://localhost:8080", testLogger())
	require.NoError(t, err)

	job, err := factory.NewActivationEmailJob("user@example.com", "tok123")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = job.Execute(ctx)
	require.Error(t, err)
	assert.Equal(t, JobStatusFailed, job.Status())
	assert.Empty(t, mailer.Calls, "cancelled job should not attempt delivery")
}

func TestEmailJobFactoryRebuild(t *testing.T) {
	t.Parallel()

	t.Run("rebuilds every job type from its persisted payload", func(t *testing.T) {
		t.Parallel()

		mailer := NewMockMailer()
		factory, err := NewEmailJobFactory(mailer, "http://localhost:8080", testLogger())
		require.NoError(t, err)

		due := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		original := make([]Job, 0, 5)

		job, err := factory.NewActivationEmailJob("a@example.com", "tok")
		require.NoError(t, err)
		original = append(original, job)

		job, err = factory.NewPasswordResetEmailJob("b@example.com", "CODE1234")
		require.NoError(t, err)
		original = append(original, job)

		job, err = factory.NewEmailChangeEmailJob("c@example.com", "c2@example.com", "CODE5678")
		require.NoError(t, err)
		original = append(original, job)

		job, err = factory.NewInvitationEmailJob("d@example.com", "Roadmap", "member")
		require.NoError(t, err)
		original = append(original, job)

		job, err = factory.NewTaskReminderEmailJob("e@example.com", "Task", due)
		require.NoError(t, err)
		original = append(original, job)

		for _, orig := range original {
			rebuilt, err := factory.Rebuild(orig.ID(), orig.Type(), orig.Payload())
			require.NoError(t, err, "rebuilding %s", orig.Type())

			assert.Equal(t, orig.ID(), rebuilt.ID())
			assert.Equal(t, orig.Type(), rebuilt.Type())
			assert.Equal(t, orig.Payload(), rebuilt.Payload())
			assert.NoError(t, rebuilt.Execute(context.Background()))
		}

		assert.Equal(t,
			[]string{"activation", "password_reset", "email_change", "invitation", "task_reminder"},
			mailer.Calls)
	})

	t.Run("rejects unknown job types", func(t *testing.T) {
		t.Parallel()

		factory, err := NewEmailJobFactory(NewMockMailer(), "http://localhost:8080", testLogger())
		require.NoError(t, err)

		job, err := factory.Rebuild(uuid.New(), "carrier_pigeon", []byte(`{}`))
		assert.ErrorIs(t, err, ErrUnknownJobType)
		assert.Nil(t, job)
	})

	t.Run("rejects malformed payloads", func(t *testing.T) {
		t.Parallel()

		factory, err := NewEmailJobFactory(NewMockMailer(), "http://localhost:8080", testLogger())
		require.NoError(t, err)

		job, err := factory.Rebuild(uuid.New(), JobTypeActivationEmail, []byte(`not json`))
		assert.Error(t, err)
		assert.Nil(t, job)
	})

	t.Run("rejects payloads without a recipient", func(t *testing.T) {
		t.Parallel()

		factory, err := NewEmailJobFactory(NewMockMailer(), "http://localhost:8080", testLogger())
		require.NoError(t, err)

		job, err := factory.Rebuild(uuid.New(), JobTypePasswordResetEmail, []byte(`{"code":"CODE1234"}`))
		assert.ErrorIs(t, err, ErrEmptyRecipient)
		assert.Nil(t, job)
	})
}
