package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	apimiddleware "github.com/SeyyedAliBargh/task-manager-api/internal/api/middleware"
	"github.com/SeyyedAliBargh/task-manager-api/internal/config"
	"github.com/SeyyedAliBargh/task-manager-api/internal/events"
	"github.com/SeyyedAliBargh/task-manager-api/internal/job"
	"github.com/SeyyedAliBargh/task-manager-api/internal/platform/mailer"
	"github.com/SeyyedAliBargh/task-manager-api/internal/platform/postgres"
	"github.com/SeyyedAliBargh/task-manager-api/internal/platform/redis"
	"github.com/SeyyedAliBargh/task-manager-api/internal/service"
	"github.com/SeyyedAliBargh/task-manager-api/internal/service/auth"
	"github.com/SeyyedAliBargh/task-manager-api/internal/store"
)

// application holds all the dependencies and services for the API server.
// It acts as a container for dependency injection throughout the app.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *goredis.Client

	userStore       store.UserStore
	profileStore    store.ProfileStore
	codeStore       store.VerificationCodeStore
	projectStore    store.ProjectStore
	memberStore     store.MemberStore
	taskStore       store.TaskStore
	invitationStore store.InvitationStore
	jobStore        job.JobStore

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	limiter          apimiddleware.RequestLimiter

	userService       service.UserService
	projectService    service.ProjectService
	taskService       service.TaskService
	invitationService service.InvitationService

	eventEmitter events.EventEmitter
	jobRunner    *job.JobRunner
	scheduler    *job.Scheduler

	registry    *prometheus.Registry
	httpMetrics *apimiddleware.Metrics
}

// newApplication creates and initializes all application dependencies:
// Redis-backed token denylist and rate limiter, the JWT service, the
// Postgres stores, the background job runner with its email job factory,
// the maintenance scheduler, and the domain services. The job runner and
// scheduler are started before this function returns.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Redis is optional: without it refresh tokens cannot be revoked
	// before expiry and rate limiting is disabled.
	redisClient, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.redis = redisClient

	var denylist auth.TokenDenylist
	if redisClient != nil {
		denylist = redis.NewDenylist(redisClient, logger)
		app.limiter = redis.NewLimiter(redisClient, logger)
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth, denylist)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, bcrypt.DefaultCost, logger)
	app.profileStore = postgres.NewPostgresProfileStore(db, logger)
	app.codeStore = postgres.NewPostgresVerificationCodeStore(db, logger)
	app.projectStore = postgres.NewPostgresProjectStore(db, logger)
	app.memberStore = postgres.NewPostgresMemberStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.invitationStore = postgres.NewPostgresInvitationStore(db, logger)
	app.jobStore = postgres.NewPostgresJobStore(db, logger)

	appMailer := mailer.New(cfg.Email, logger)
	emailFactory, err := job.NewEmailJobFactory(appMailer, cfg.Server.BaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create email job factory: %w", err)
	}

	app.setupMetrics()

	if err := app.setupJobRunner(emailFactory); err != nil {
		return nil, err
	}

	// Services emit job request events; the factory handler turns them
	// into queued jobs.
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(job.NewJobFactoryEventHandler(emailFactory, app.jobRunner, logger))
	app.eventEmitter = emitter

	app.scheduler = job.NewScheduler(
		app.userStore,
		app.invitationStore,
		app.taskStore,
		emailFactory,
		app.jobRunner,
		job.SchedulerConfig{
			Interval: time.Duration(cfg.Job.SchedulerIntervalMinutes) * time.Minute,
		},
		logger,
	)
	app.scheduler.Start()

	app.userService, err = service.NewUserService(
		app.userStore,
		app.profileStore,
		app.codeStore,
		app.jwtService,
		app.eventEmitter,
		db,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}
	app.projectService = service.NewProjectService(app.projectStore, app.memberStore, db, logger)
	app.taskService = service.NewTaskService(app.taskStore, app.projectStore, app.memberStore, db, logger)
	app.invitationService = service.NewInvitationService(
		app.invitationStore,
		app.projectStore,
		app.memberStore,
		app.userStore,
		app.eventEmitter,
		db,
		logger,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupMetrics creates the Prometheus registry with process and Go
// runtime collectors plus the HTTP request metrics.
func (app *application) setupMetrics() {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.httpMetrics = apimiddleware.NewMetrics(app.registry)
}

// setupJobRunner initializes and starts the background job processor,
// wiring the job outcome counter into the metrics registry.
func (app *application) setupJobRunner(factory *job.EmailJobFactory) error {
	runner := job.NewJobRunner(app.jobStore, job.JobRunnerConfig{
		WorkerCount: app.config.Job.WorkerCount,
		QueueSize:   app.config.Job.QueueSize,
		StuckJobAge: time.Duration(app.config.Job.StuckJobAgeMinutes) * time.Minute,
	}, app.logger)
	runner.SetFactory(factory)

	jobsProcessed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_processed_total",
			Help: "Total number of background jobs executed, by type and outcome.",
		},
		[]string{"type", "status"},
	)
	app.registry.MustRegister(jobsProcessed)
	runner.SetObserver(func(jobType string, err error) {
		status := "completed"
		if err != nil {
			status = "failed"
		}
		jobsProcessed.WithLabelValues(jobType, status).Inc()
	})

	if err := runner.Start(); err != nil {
		return fmt.Errorf("failed to start job runner: %w", err)
	}

	app.jobRunner = runner
	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.jobRunner != nil {
		app.jobRunner.Stop()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing redis connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
