package job

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
	"github.com/SeyyedAliBargh/task-manager-api/internal/store"
)

// UserDirectory is the slice of the user store the scheduler needs:
// resolving reminder recipients and purging stale unverified accounts.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// InvitationExpirer marks old pending invitations as expired.
type InvitationExpirer interface {
	ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ReminderSource lists tasks whose due date is approaching and records
// that a reminder went out.
type ReminderSource interface {
	ListDueSoon(ctx context.Context, deadline time.Time) ([]*domain.Task, error)
	MarkReminderSent(ctx context.Context, taskID uuid.UUID) error
}

// SchedulerConfig holds configuration for the periodic scheduler
type SchedulerConfig struct {
	// Interval defines how often a maintenance sweep runs
	Interval time.Duration

	// UnverifiedUserTTL is how long an unverified account may exist
	// before a sweep deletes it
	UnverifiedUserTTL time.Duration

	// InvitationTTL is how long a pending invitation stays open
	// before a sweep expires it
	InvitationTTL time.Duration

	// ReminderWindow is how far ahead of a task's due date the
	// reminder email is enqueued
	ReminderWindow time.Duration
}

// DefaultSchedulerConfig returns a SchedulerConfig with reasonable defaults
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Interval:          time.Hour,
		UnverifiedUserTTL: 24 * time.Hour,
		InvitationTTL:     domain.InvitationTTL,
		ReminderWindow:    24 * time.Hour,
	}
}

// Scheduler runs periodic maintenance sweeps: purging unverified
// accounts past their grace period, expiring stale invitations, and
// enqueueing due date reminder emails.
type Scheduler struct {
	users       UserDirectory
	invitations InvitationExpirer
	tasks       ReminderSource
	factory     *EmailJobFactory
	submitter   Submitter
	config      SchedulerConfig
	logger      *slog.Logger
	ctx         context.Context
	cancelFunc  context.CancelFunc
	wg          sync.WaitGroup
}

// NewScheduler creates a new Scheduler
func NewScheduler(
	users UserDirectory,
	invitations InvitationExpirer,
	tasks ReminderSource,
	factory *EmailJobFactory,
	submitter Submitter,
	config SchedulerConfig,
	logger *slog.Logger,
) *Scheduler {
	defaults := DefaultSchedulerConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.UnverifiedUserTTL <= 0 {
		config.UnverifiedUserTTL = defaults.UnverifiedUserTTL
	}
	if config.InvitationTTL <= 0 {
		config.InvitationTTL = defaults.InvitationTTL
	}
	if config.ReminderWindow <= 0 {
		config.ReminderWindow = defaults.ReminderWindow
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		users:       users,
		invitations: invitations,
		tasks:       tasks,
		factory:     factory,
		submitter:   submitter,
		config:      config,
		logger:      logger.With("component", "scheduler"),
		ctx:         ctx,
		cancelFunc:  cancel,
	}
}

// Start launches the sweep loop. A sweep runs immediately so work that
// accumulated while the server was down is handled without waiting a
// full interval.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop gracefully shuts down the scheduler
func (s *Scheduler) Stop() {
	s.cancelFunc()
	s.wg.Wait()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	s.RunSweep(s.ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debug("stopping scheduler")
			return

		case <-ticker.C:
			s.RunSweep(s.ctx)
		}
	}
}

// RunSweep executes a single maintenance sweep. Each step is isolated:
// a failure in one is logged and the sweep continues with the next.
func (s *Scheduler) RunSweep(ctx context.Context) {
	s.purgeUnverifiedUsers(ctx)
	s.expireInvitations(ctx)
	s.enqueueTaskReminders(ctx)
}

// purgeUnverifiedUsers deletes accounts that never completed email
// verification within the grace period.
func (s *Scheduler) purgeUnverifiedUsers(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.config.UnverifiedUserTTL)

	count, err := s.users.DeleteUnverifiedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to purge unverified users", "error", err)
		return
	}

	if count > 0 {
		s.logger.Info("purged unverified users", "count", count)
	}
}

// expireInvitations flips pending invitations past their TTL to expired.
func (s *Scheduler) expireInvitations(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.config.InvitationTTL)

	count, err := s.invitations.ExpirePendingBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to expire invitations", "error", err)
		return
	}

	if count > 0 {
		s.logger.Info("expired stale invitations", "count", count)
	}
}

// enqueueTaskReminders submits a reminder email job for every assigned,
// unfinished task whose due date falls inside the reminder window. A
// task is marked only after its job is accepted, so a full queue means
// the reminder is retried on the next sweep instead of being lost.
func (s *Scheduler) enqueueTaskReminders(ctx context.Context) {
	deadline := time.Now().UTC().Add(s.config.ReminderWindow)

	dueTasks, err := s.tasks.ListDueSoon(ctx, deadline)
	if err != nil {
		s.logger.Error("failed to list tasks due soon", "error", err)
		return
	}

	for _, t := range dueTasks {
		if t.AssigneeID == nil || t.DueDate == nil {
			continue
		}

		logger := s.logger.With("job_task_id", t.ID)

		assignee, err := s.users.GetByID(ctx, *t.AssigneeID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				logger.Warn("skipping reminder, assignee no longer exists",
					"assignee_id", *t.AssigneeID)
			} else {
				logger.Error("failed to load assignee for reminder", "error", err)
			}
			continue
		}

		reminderJob, err := s.factory.NewTaskReminderEmailJob(assignee.Email, t.Title, *t.DueDate)
		if err != nil {
			logger.Error("failed to create reminder job", "error", err)
			continue
		}

		if err := s.submitter.Submit(ctx, reminderJob); err != nil {
			logger.Error("failed to submit reminder job", "error", err)
			continue
		}

		if err := s.tasks.MarkReminderSent(ctx, t.ID); err != nil {
			logger.Error("failed to mark reminder as sent", "error", err)
		}
	}
}
