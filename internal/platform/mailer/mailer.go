// Package mailer delivers the transactional emails produced by background
// jobs: account activation links, verification codes, project invitations,
// and task reminders. Delivery goes over plain SMTP; when no SMTP host is
// configured the mailer degrades to logging the would-be message, which
// keeps local development working without a mail server.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/SeyyedAliBargh/task-manager-api/internal/config"
)

// Mailer sends the application's transactional emails.
type Mailer interface {
	// SendActivationEmail mails the account activation link.
	SendActivationEmail(ctx context.Context, to, activationURL string) error

	// SendPasswordResetCode mails a password reset code.
	SendPasswordResetCode(ctx context.Context, to, code string) error

	// SendEmailChangeCode mails a confirmation code to the address the
	// user wants to switch to.
	SendEmailChangeCode(ctx context.Context, to, newEmail, code string) error

	// SendInvitationEmail notifies a user they were invited to a project.
	SendInvitationEmail(ctx context.Context, to, projectName, role string) error

	// SendTaskReminder notifies an assignee about a task due soon.
	SendTaskReminder(ctx context.Context, to, taskTitle string, dueDate time.Time) error
}

// Email body templates. html/template escapes interpolated values, so
// user-supplied strings (project names, task titles) cannot inject markup.
var (
	activationTmpl = template.Must(template.New("activation").Parse(
		`<h2>Welcome!</h2>
<p>Please confirm your email address to activate your account:</p>
<p><a href="{{.ActivationURL}}">Activate my account</a></p>
<p>If you did not register, you can ignore this message.</p>`))

	passwordResetTmpl = template.Must(template.New("password_reset").Parse(
		`<h2>Password reset requested</h2>
<p>Use this code to set a new password:</p>
<p><strong style="font-size:20px">{{.Code}}</strong></p>
<p>The code expires in 24 hours and can be used once.</p>`))

	emailChangeTmpl = template.Must(template.New("email_change").Parse(
		`<h2>Confirm your new email address</h2>
<p>Use this code to confirm switching your account to {{.NewEmail}}:</p>
<p><strong style="font-size:20px">{{.Code}}</strong></p>
<p>The code expires in 24 hours and can be used once.</p>`))

	invitationTmpl = template.Must(template.New("invitation").Parse(
		`<h2>You have been invited</h2>
<p>You were invited to join the project <strong>{{.ProjectName}}</strong> as {{.Role}}.</p>
<p>Sign in and open your invitations to accept.</p>`))

	taskReminderTmpl = template.Must(template.New("task_reminder").Parse(
		`<h2>Task due soon</h2>
<p>The task <strong>{{.Title}}</strong> is due {{.Due}}.</p>`))
)

// sendFunc matches smtp.SendMail, allowing tests to capture outgoing
// messages without a real SMTP server.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer implements Mailer over plain SMTP with PLAIN authentication.
type SMTPMailer struct {
	cfg    config.EmailConfig
	logger *slog.Logger
	send   sendFunc
}

// NewSMTPMailer creates a Mailer that delivers through the configured
// SMTP server. If logger is nil, a default logger will be used.
func NewSMTPMailer(cfg config.EmailConfig, logger *slog.Logger) *SMTPMailer {
	if logger == nil {
		logger = slog.Default()
	}

	return &SMTPMailer{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "smtp_mailer")),
		send:   smtp.SendMail,
	}
}

// Ensure SMTPMailer implements Mailer
var _ Mailer = (*SMTPMailer)(nil)

// deliver renders the template and hands the MIME message to the SMTP
// server. net/smtp has no context support, so cancellation is only
// checked before dialing.
func (m *SMTPMailer) deliver(ctx context.Context, to, subject string, tmpl *template.Template, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if err := m.send(addr, auth, from, []string{to}, msg.Bytes()); err != nil {
		m.logger.Error("failed to send email",
			slog.String("subject", subject),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("email sent",
		slog.String("subject", subject))
	return nil
}

// SendActivationEmail implements Mailer.SendActivationEmail
func (m *SMTPMailer) SendActivationEmail(ctx context.Context, to, activationURL string) error {
	return m.deliver(ctx, to, "Activate your account", activationTmpl, struct {
		ActivationURL string
	}{activationURL})
}

// SendPasswordResetCode implements Mailer.SendPasswordResetCode
func (m *SMTPMailer) SendPasswordResetCode(ctx context.Context, to, code string) error {
	return m.deliver(ctx, to, "Reset your password", passwordResetTmpl, struct {
		Code string
	}{code})
}

// SendEmailChangeCode implements Mailer.SendEmailChangeCode
func (m *SMTPMailer) SendEmailChangeCode(ctx context.Context, to, newEmail, code string) error {
	return m.deliver(ctx, to, "Confirm your new email address", emailChangeTmpl, struct {
		NewEmail string
		Code     string
	}{newEmail, code})
}

// SendInvitationEmail implements Mailer.SendInvitationEmail
func (m *SMTPMailer) SendInvitationEmail(ctx context.Context, to, projectName, role string) error {
	return m.deliver(ctx, to, "You have been invited to a project", invitationTmpl, struct {
		ProjectName string
		Role        string
	}{projectName, role})
}

// SendTaskReminder implements Mailer.SendTaskReminder
func (m *SMTPMailer) SendTaskReminder(ctx context.Context, to, taskTitle string, dueDate time.Time) error {
	return m.deliver(ctx, to, "Task due soon", taskReminderTmpl, struct {
		Title string
		Due   string
	}{taskTitle, dueDate.Format("Mon, 2 Jan 2006 15:04 MST")})
}

// LogMailer implements Mailer by logging messages instead of sending
// them. It stands in for a real mail server in local development.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a Mailer that only logs.
// If logger is nil, a default logger will be used.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogMailer{
		logger: logger.With(slog.String("component", "log_mailer")),
	}
}

// Ensure LogMailer implements Mailer
var _ Mailer = (*LogMailer)(nil)

func (m *LogMailer) log(kind string, attrs ...any) error {
	m.logger.Info("email delivery skipped, no SMTP host configured",
		append([]any{slog.String("kind", kind)}, attrs...)...)
	return nil
}

// SendActivationEmail implements Mailer.SendActivationEmail
func (m *LogMailer) SendActivationEmail(ctx context.Context, to, activationURL string) error {
	return m.log("activation", slog.String("activation_url", activationURL))
}

// SendPasswordResetCode implements Mailer.SendPasswordResetCode
// The code is logged so the flow stays testable without a mail server.
func (m *LogMailer) SendPasswordResetCode(ctx context.Context, to, code string) error {
	return m.log("password_reset", slog.String("code", code))
}

// SendEmailChangeCode implements Mailer.SendEmailChangeCode
func (m *LogMailer) SendEmailChangeCode(ctx context.Context, to, newEmail, code string) error {
	return m.log("email_change", slog.String("code", code))
}

// SendInvitationEmail implements Mailer.SendInvitationEmail
func (m *LogMailer) SendInvitationEmail(ctx context.Context, to, projectName, role string) error {
	return m.log("invitation", slog.String("project_name", projectName))
}

// SendTaskReminder implements Mailer.SendTaskReminder
func (m *LogMailer) SendTaskReminder(ctx context.Context, to, taskTitle string, dueDate time.Time) error {
	return m.log("task_reminder", slog.Time("due_date", dueDate))
}

// New selects the Mailer implementation for the given configuration:
// an SMTPMailer when a host is configured, a LogMailer otherwise.
func New(cfg config.EmailConfig, logger *slog.Logger) Mailer {
	if cfg.Host == "" {
		return NewLogMailer(logger)
	}
	return NewSMTPMailer(cfg, logger)
}
