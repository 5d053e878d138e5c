package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SeyyedAliBargh/task-manager-api/internal/events"
)

// JobFactoryEventHandler implements the events.EventHandler interface.
// It turns job request events emitted by services into executable jobs
// and hands them to the runner. The event ID becomes the job ID, so an
// emitted request can be traced through to its jobs table row.
type JobFactoryEventHandler struct {
	factory   JobFactory
	submitter Submitter
	logger    *slog.Logger
}

// NewJobFactoryEventHandler creates an event handler that builds jobs
// with the given factory and submits them to the provided submitter.
func NewJobFactoryEventHandler(
	factory JobFactory,
	submitter Submitter,
	logger *slog.Logger,
) *JobFactoryEventHandler {
	return &JobFactoryEventHandler{
		factory:   factory,
		submitter: submitter,
		logger:    logger.With("component", "job_factory_event_handler"),
	}
}

// HandleEvent processes a job request event by building the matching job
// and submitting it for background execution.
func (h *JobFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.JobRequestEvent,
) error {
	job, err := h.factory.Rebuild(event.ID, event.Type, event.Payload)
	if err != nil {
		h.logger.Error("failed to build job from event",
			"error", err,
			"event_id", event.ID,
			"event_type", event.Type)
		return fmt.Errorf("failed to build job from event: %w", err)
	}

	if err := h.submitter.Submit(ctx, job); err != nil {
		h.logger.Error("failed to submit job",
			"error", err,
			"job_id", job.ID(),
			"job_type", job.Type())
		return fmt.Errorf("failed to submit job: %w", err)
	}

	h.logger.Debug("job created and submitted",
		"job_id", job.ID(),
		"job_type", job.Type())
	return nil
}

// Ensure JobFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*JobFactoryEventHandler)(nil)
