package mailer

import (
	"context"
	"errors"
	"log/slog"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeyyedAliBargh/task-manager-api/internal/config"
)

// capturedSend records the arguments of a single smtp.SendMail call.
type capturedSend struct {
	addr string
	from string
	to   []string
	msg  string
}

func newCapturingMailer(t *testing.T, cfg config.EmailConfig) (*SMTPMailer, *capturedSend) {
	t.Helper()

	captured := &capturedSend{}
	m := NewSMTPMailer(cfg, slog.Default())
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		captured.addr = addr
		captured.from = from
		captured.to = to
		captured.msg = string(msg)
		return nil
	}
	return m, captured
}

func testEmailConfig() config.EmailConfig {
	return config.EmailConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "mailer@example.com",
		Password: "secret",
		From:     "noreply@example.com",
	}
}

func TestSMTPMailerSendActivationEmail(t *testing.T) {
	m, captured := newCapturingMailer(t, testEmailConfig())

	err := m.SendActivationEmail(context.Background(), "user@example.com", "http://localhost:8080/api/auth/activate/abc123")
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", captured.addr)
	assert.Equal(t, "noreply@example.com", captured.from)
	assert.Equal(t, []string{"user@example.com"}, captured.to)
	assert.Contains(t, captured.msg, "To: user@example.com\r\n")
	assert.Contains(t, captured.msg, "Subject: Activate your account\r\n")
	assert.Contains(t, captured.msg, "Content-Type: text/html")
	assert.Contains(t, captured.msg, `href="http://localhost:8080/api/auth/activate/abc123"`)
}

func TestSMTPMailerSendPasswordResetCode(t *testing.T) {
	m, captured := newCapturingMailer(t, testEmailConfig())

	err := m.SendPasswordResetCode(context.Background(), "user@example.com", "A2B3C4D5")
	require.NoError(t, err)

	assert.Contains(t, captured.msg, "Subject: Reset your password\r\n")
	assert.Contains(t, captured.msg, "A2B3C4D5")
}

func TestSMTPMailerSendEmailChangeCode(t *testing.T) {
	m, captured := newCapturingMailer(t, testEmailConfig())

	err := m.SendEmailChangeCode(context.Background(), "old@example.com", "new@example.com", "X9Y8Z7W6")
	require.NoError(t, err)

	assert.Equal(t, []string{"old@example.com"}, captured.to)
	assert.Contains(t, captured.msg, "new@example.com")
	assert.Contains(t, captured.msg, "X9Y8Z7W6")
}

func TestSMTPMailerSendInvitationEmail(t *testing.T) {
	m, captured := newCapturingMailer(t, testEmailConfig())

	err := m.SendInvitationEmail(context.Background(), "invitee@example.com", "Roadmap 2026", "viewer")
	require.NoError(t, err)

	assert.Contains(t, captured.msg, "Subject: You have been invited to a project\r\n")
	assert.Contains(t, captured.msg, "Roadmap 2026")
	assert.Contains(t, captured.msg, "viewer")
}

func TestSMTPMailerSendTaskReminder(t *testing.T) {
	m, captured := newCapturingMailer(t, testEmailConfig())

	due := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	err := m.SendTaskReminder(context.Background(), "assignee@example.com", "Ship release notes", due)
	require.NoError(t, err)

	assert.Contains(t, captured.msg, "Ship release notes")
	assert.Contains(t, captured.msg, "Sat, 14 Mar 2026 09:00 UTC")
}

func TestSMTPMailerEscapesTemplateData(t *testing.T) {
	m, captured := newCapturingMailer(t, testEmailConfig())

	err := m.SendInvitationEmail(context.Background(), "invitee@example.com", `<script>alert("x")</script>`, "member")
	require.NoError(t, err)

	assert.NotContains(t, captured.msg, "<script>")
	assert.Contains(t, captured.msg, "&lt;script&gt;")
}

func TestSMTPMailerFallsBackToUsernameAsSender(t *testing.T) {
	cfg := testEmailConfig()
	cfg.From = ""
	m, captured := newCapturingMailer(t, cfg)

	err := m.SendPasswordResetCode(context.Background(), "user@example.com", "A2B3C4D5")
	require.NoError(t, err)

	assert.Equal(t, "mailer@example.com", captured.from)
	assert.Contains(t, captured.msg, "From: mailer@example.com\r\n")
}

func TestSMTPMailerSendError(t *testing.T) {
	m := NewSMTPMailer(testEmailConfig(), slog.Default())
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("connection refused")
	}

	err := m.SendActivationEmail(context.Background(), "user@example.com", "http://example.com/activate/x")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to send email"))
}

func TestSMTPMailerRespectsContextCancellation(t *testing.T) {
	m, captured := newCapturingMailer(t, testEmailConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.SendActivationEmail(ctx, "user@example.com", "http://example.com/activate/x")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, captured.addr, "cancelled send should never reach SMTP")
}

func TestLogMailerNeverFails(t *testing.T) {
	m := NewLogMailer(slog.Default())
	ctx := context.Background()

	assert.NoError(t, m.SendActivationEmail(ctx, "a@example.com", "http://example.com/activate/x"))
	assert.NoError(t, m.SendPasswordResetCode(ctx, "a@example.com", "A2B3C4D5"))
	assert.NoError(t, m.SendEmailChangeCode(ctx, "a@example.com", "b@example.com", "A2B3C4D5"))
	assert.NoError(t, m.SendInvitationEmail(ctx, "a@example.com", "Roadmap", "member"))
	assert.NoError(t, m.SendTaskReminder(ctx, "a@example.com", "Task", time.Now()))
}

func TestNewSelectsImplementation(t *testing.T) {
	t.Run("returns LogMailer when no host is configured", func(t *testing.T) {
		m := New(config.EmailConfig{}, slog.Default())
		_, ok := m.(*LogMailer)
		assert.True(t, ok)
	})

	t.Run("returns SMTPMailer when a host is configured", func(t *testing.T) {
		m := New(testEmailConfig(), slog.Default())
		_, ok := m.(*SMTPMailer)
		assert.True(t, ok)
	})
}
