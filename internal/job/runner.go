package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// JobRunnerConfig holds configuration for the job runner
type JobRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue
	QueueSize int

	// StuckJobAge defines how long a job can be in processing state
	// before it's considered stuck and reset
	StuckJobAge time.Duration

	// StuckJobCheckInterval defines how often to check for stuck jobs
	// If zero, defaults to 5 minutes
	StuckJobCheckInterval time.Duration
}

// DefaultJobRunnerConfig returns a JobRunnerConfig with reasonable defaults
func DefaultJobRunnerConfig() JobRunnerConfig {
	return JobRunnerConfig{
		WorkerCount:           2,
		QueueSize:             100,
		StuckJobAge:           30 * time.Minute,
		StuckJobCheckInterval: 5 * time.Minute,
	}
}

// JobRunner manages background job processing
type JobRunner struct {
	store      JobStore
	factory    JobFactory
	jobChan    chan Job
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     JobRunnerConfig
	logger     *slog.Logger
	errHandler func(job Job, err error)
	observer   func(jobType string, err error)
}

// NewJobRunner creates a new JobRunner
func NewJobRunner(store JobStore, config JobRunnerConfig, logger *slog.Logger) *JobRunner {
	// Apply default check interval if not specified
	if config.StuckJobCheckInterval == 0 {
		config.StuckJobCheckInterval = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &JobRunner{
		store:      store,
		jobChan:    make(chan Job, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		wg:         sync.WaitGroup{},
		config:     config,
		logger:     logger,
		errHandler: func(job Job, err error) {
			// Default error handler just logs the error
			logger.Error("job execution failed",
				"job_id", job.ID(),
				"job_type", job.Type(),
				"error", err)
		},
	}
}

// Ensure JobRunner implements Submitter
var _ Submitter = (*JobRunner)(nil)

// SetErrorHandler allows setting a custom error handler function
func (r *JobRunner) SetErrorHandler(handler func(job Job, err error)) {
	r.errHandler = handler
}

// SetFactory installs the factory used to rebuild jobs loaded from the
// database. Without a factory, recovered jobs are requeued as loaded and
// fail on execution because their delivery step is unbound.
func (r *JobRunner) SetFactory(factory JobFactory) {
	r.factory = factory
}

// SetObserver installs a hook told the outcome of every executed job.
// Used to feed metrics without coupling the runner to a registry.
func (r *JobRunner) SetObserver(observer func(jobType string, err error)) {
	r.observer = observer
}

// Submit adds a new job to the queue
func (r *JobRunner) Submit(ctx context.Context, job Job) error {
	// Save job to database first
	if err := r.store.SaveJob(ctx, job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	// Then add to in-memory queue
	select {
	case r.jobChan <- job:
		return nil
	default:
		// Queue is full, return error
		return fmt.Errorf("job queue is full, try again later")
	}
}

// Start initializes the worker pool and begins processing jobs
func (r *JobRunner) Start() error {
	// Recover unfinished jobs from previous runs
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	// Start worker goroutines
	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	// Start goroutine to check for stuck jobs periodically
	r.wg.Add(1)
	go r.stuckJobMonitor()

	return nil
}

// Stop gracefully shuts down the job runner
func (r *JobRunner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	close(r.jobChan)
}

// Recover loads any unfinished jobs from the database
func (r *JobRunner) Recover() error {
	ctx := context.Background()

	// Get jobs that were in "pending" state
	pendingJobs, err := r.store.GetPendingJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending jobs: %w", err)
	}

	// Get jobs that were in "processing" state (potentially interrupted by a crash)
	processingJobs, err := r.store.GetProcessingJobs(
		ctx,
		0,
	) // Get all processing jobs regardless of age
	if err != nil {
		return fmt.Errorf("failed to get processing jobs: %w", err)
	}

	// Log recovery statistics
	r.logger.Info("recovering unfinished jobs",
		"pending_count", len(pendingJobs),
		"processing_count", len(processingJobs))

	// Requeue pending jobs
	for _, job := range pendingJobs {
		r.requeue(ctx, job)
	}

	// Reset processing jobs back to pending state and requeue them
	for _, job := range processingJobs {
		// Update status in database to pending
		if err := r.store.UpdateJobStatus(ctx, job.ID(), JobStatusPending, "Reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing job status",
				"job_id", job.ID(),
				"job_type", job.Type(),
				"error", err)
			continue
		}

		r.requeue(ctx, job)
	}

	return nil
}

// requeue rebuilds a job loaded from the database and places it back on
// the queue. Jobs whose type the factory no longer recognizes are marked
// failed rather than requeued, since they could never execute.
func (r *JobRunner) requeue(ctx context.Context, job Job) {
	if r.factory != nil {
		rebuilt, err := r.factory.Rebuild(job.ID(), job.Type(), job.Payload())
		if err != nil {
			r.logger.Error("failed to rebuild recovered job",
				"job_id", job.ID(),
				"job_type", job.Type(),
				"error", err)
			if updateErr := r.store.UpdateJobStatus(ctx, job.ID(), JobStatusFailed, err.Error()); updateErr != nil {
				r.logger.Error("failed to mark unrecoverable job as failed",
					"job_id", job.ID(),
					"error", updateErr)
			}
			return
		}
		job = rebuilt
	}

	select {
	case r.jobChan <- job:
		// Successfully requeued
	default:
		// Queue is full, log error
		r.logger.Error("failed to requeue job, queue is full",
			"job_id", job.ID(),
			"job_type", job.Type())
	}
}

// worker processes jobs from the queue
func (r *JobRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			// Context cancelled, stop worker
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case job, ok := <-r.jobChan:
			if !ok {
				// Channel closed, stop worker
				r.logger.Debug("job channel closed, stopping worker", "worker_id", id)
				return
			}

			// Process the job
			r.processJob(job, id)
		}
	}
}

// processJob handles execution of a single job
func (r *JobRunner) processJob(job Job, workerID int) {
	ctx := context.Background()
	logger := r.logger.With(
		"job_id", job.ID(),
		"job_type", job.Type(),
		"worker_id", workerID,
	)

	// Update job status to processing
	if err := r.store.UpdateJobStatus(ctx, job.ID(), JobStatusProcessing, ""); err != nil {
		logger.Error("failed to update job status to processing", "error", err)
		return
	}

	logger.Info("processing job")

	// Execute job
	err := job.Execute(ctx)

	if err != nil {
		// Job failed
		logger.Error("job execution failed", "error", err)
		if updateErr := r.store.UpdateJobStatus(ctx, job.ID(), JobStatusFailed, err.Error()); updateErr != nil {
			logger.Error("failed to update job status to failed", "error", updateErr)
		}

		// Call error handler
		r.errHandler(job, err)
	} else {
		// Job completed successfully
		logger.Info("job completed successfully")
		if updateErr := r.store.UpdateJobStatus(ctx, job.ID(), JobStatusCompleted, ""); updateErr != nil {
			logger.Error("failed to update job status to completed", "error", updateErr)
		}
	}

	if r.observer != nil {
		r.observer(job.Type(), err)
	}
}

// stuckJobMonitor periodically checks for jobs that have been in "processing"
// state for too long and resets them
func (r *JobRunner) stuckJobMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckJobCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			// Context cancelled, stop monitor
			return

		case <-ticker.C:
			ctx := context.Background()

			// Find jobs that have been in "processing" state for too long
			stuckJobs, err := r.store.GetProcessingJobs(ctx, r.config.StuckJobAge)
			if err != nil {
				r.logger.Error("failed to check for stuck jobs", "error", err)
				continue
			}

			if len(stuckJobs) == 0 {
				continue
			}

			r.logger.Info("found stuck jobs", "count", len(stuckJobs))

			// Reset each stuck job and requeue it
			for _, job := range stuckJobs {
				if err := r.store.UpdateJobStatus(ctx, job.ID(), JobStatusPending,
					"Reset after being stuck in processing state"); err != nil {
					r.logger.Error("failed to reset stuck job status",
						"job_id", job.ID(),
						"job_type", job.Type(),
						"error", err)
					continue
				}

				r.requeue(ctx, job)
			}
		}
	}
}
