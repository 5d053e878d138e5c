package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SeyyedAliBargh/task-manager-api/internal/api"
	apiMiddleware "github.com/SeyyedAliBargh/task-manager-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware. It accepts the application dependencies to
// create handlers and register routes. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(app.httpMetrics.Instrument)

	// Create API handlers using the application's services
	tokenLifetime := time.Duration(app.config.Auth.TokenLifetimeMinutes) * time.Minute
	authHandler := api.NewAuthHandler(
		app.userService,
		app.userStore,
		app.jwtService,
		app.passwordVerifier,
		tokenLifetime,
		app.logger,
	)
	userHandler := api.NewUserHandler(app.userService, app.logger)
	projectHandler := api.NewProjectHandler(app.projectService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	invitationHandler := api.NewInvitationHandler(app.invitationService, app.logger)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	rateLimit := apiMiddleware.NewRateLimitMiddleware(app.limiter, app.config.RateLimit)

	quotas := app.config.RateLimit

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.With(rateLimit.Limit("register", quotas.Register)).
			Post("/auth/register", authHandler.Register)
		r.With(rateLimit.Limit("activation", quotas.Activation)).
			Get("/auth/activate/{token}", authHandler.Activate)
		r.With(rateLimit.Limit("activation", quotas.Activation)).
			Post("/auth/activate/resend", authHandler.ResendActivation)
		r.With(rateLimit.Limit("login", quotas.Login)).
			Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)
		r.Post("/auth/verify", authHandler.VerifyToken)
		r.With(rateLimit.Limit("password", quotas.Password)).
			Post("/auth/password/reset", userHandler.RequestPasswordReset)
		r.With(rateLimit.Limit("password", quotas.Password)).
			Post("/auth/password/reset/confirm", userHandler.ConfirmPasswordReset)

		// Public project listing
		r.Get("/projects/public", projectHandler.ListPublicProjects)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/auth/logout", authHandler.Logout)
			r.With(rateLimit.Limit("password", quotas.Password)).
				Put("/auth/password", authHandler.ChangePassword)

			// Account endpoints
			r.Route("/users/me", func(r chi.Router) {
				r.Use(rateLimit.Limit("profile", quotas.Profile))
				r.Get("/", userHandler.GetMe)
				r.Put("/", userHandler.UpdateMe)
				r.Delete("/", userHandler.DeleteMe)
				r.Post("/email", userHandler.RequestEmailChange)
				r.Post("/email/confirm", userHandler.ConfirmEmailChange)
			})

			// Project endpoints
			r.Route("/projects", func(r chi.Router) {
				r.Post("/", projectHandler.CreateProject)
				r.Get("/", projectHandler.ListProjects)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", projectHandler.GetProject)
					r.Put("/", projectHandler.UpdateProject)
					r.Delete("/", projectHandler.DeleteProject)

					r.Get("/members", projectHandler.ListMembers)
					r.Put("/members/{userID}", projectHandler.UpdateMemberRole)
					r.Delete("/members/{userID}", projectHandler.RemoveMember)

					r.Post("/invitations", invitationHandler.InviteUser)

					r.Get("/tasks", taskHandler.ListProjectTasks)
					r.Post("/tasks", taskHandler.CreateTask)
				})
			})

			// Invitation endpoints
			r.Route("/invitations", func(r chi.Router) {
				r.Get("/", invitationHandler.ListMyInvitations)
				r.Post("/{id}/accept", invitationHandler.AcceptInvitation)
				r.Post("/{id}/decline", invitationHandler.DeclineInvitation)
				r.Post("/{id}/revoke", invitationHandler.RevokeInvitation)
			})

			// Task endpoints
			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.ListMyTasks)
				r.Get("/{id}", taskHandler.GetTask)
				r.Put("/{id}", taskHandler.UpdateTask)
				r.Delete("/{id}", taskHandler.DeleteTask)
				r.Post("/{id}/assign", taskHandler.AssignTask)
			})
		})
	})

	// Operational endpoints
	r.Get("/healthz", app.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
	r.Get("/swagger", app.serveSwaggerUI)
	r.Get("/swagger/openapi.json", app.serveOpenAPIDocument)

	return r
}

// handleHealthz reports liveness. The database ping keeps load balancers
// from routing traffic to an instance that lost its connection.
func (app *application) handleHealthz(w http.ResponseWriter, r *http.Request) {
	unavailable := func() {
		w.WriteHeader(http.StatusServiceUnavailable)
		if _, err := w.Write([]byte("database unavailable")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	}

	if app.db == nil {
		unavailable()
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := app.db.PingContext(ctx); err != nil {
		app.logger.Error("Health check database ping failed", "error", err)
		unavailable()
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		app.logger.Error("Failed to write health check response", "error", err)
	}
}
