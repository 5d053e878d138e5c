package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/SeyyedAliBargh/task-manager-api/internal/config"
	"github.com/SeyyedAliBargh/task-manager-api/internal/platform/postgres"
)

// MigrationTableName is the name of the table goose uses to track
// applied migrations.
const MigrationTableName = "schema_migrations"

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct{}

// Printf implements goose.Logger by forwarding messages to slog.Info.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...))
}

// Fatalf implements goose.Logger by forwarding to slog.Error. Unlike the
// standard Fatalf it does NOT call os.Exit; the error propagates to main
// which handles application exit consistently.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...))
}

// handleMigrations executes the migration command given on the command
// line. All commands except create run against the migration scripts
// embedded in the binary; create writes a new script into the source
// tree and therefore needs a checkout.
func handleMigrations(cfg *config.Config, command, migrationName string, verbose bool) error {
	correlationID := uuid.New().String()
	migrationLogger := slog.Default().With(
		"correlation_id", correlationID,
		"component", "migrations",
		"command", command,
	)

	switch command {
	case "up", "down", "reset", "status", "version", "create":
	default:
		return fmt.Errorf(
			"unknown migration command: %s (expected up, down, reset, status, version, or create)",
			command,
		)
	}

	goose.SetLogger(&slogGooseLogger{})
	goose.SetTableName(MigrationTableName)
	goose.SetVerbose(verbose)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if command == "create" {
		return createMigration(migrationName, migrationLogger)
	}

	goose.SetBaseFS(postgres.MigrationsFS)

	if cfg.Database.URL == "" {
		migrationLogger.Error("Database URL is empty",
			"resolution", "check TASKAPI_DATABASE_URL or the .env file")
		return fmt.Errorf("database URL is empty: check your configuration")
	}

	migrationLogger.Info("Using database URL", "url", maskDatabaseURL(cfg.Database.URL))

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			migrationLogger.Error("Error closing database connection", "error", closeErr)
		}
	}()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf(
			"failed to connect to database: %w (check connection string, credentials, and database availability)",
			err,
		)
	}

	startTime := time.Now()
	migrationLogger.Info("Starting migration operation",
		"operation", fmt.Sprintf("goose %s", command))

	switch command {
	case "up":
		err = goose.Up(db, postgres.MigrationsDir)
	case "down":
		err = goose.Down(db, postgres.MigrationsDir)
	case "reset":
		err = goose.Reset(db, postgres.MigrationsDir)
	case "status":
		err = goose.Status(db, postgres.MigrationsDir)
	case "version":
		err = goose.Version(db, postgres.MigrationsDir)
	}

	duration := time.Since(startTime)
	if err != nil {
		migrationLogger.Error("Migration command failed",
			"error", err,
			"duration_ms", duration.Milliseconds())
		return fmt.Errorf("migration command '%s' failed: %w", command, err)
	}

	migrationLogger.Info("Migration command executed successfully",
		"duration_ms", duration.Milliseconds())
	return nil
}

// createMigration writes a new timestamped SQL migration skeleton into
// the on-disk migrations directory.
func createMigration(name string, migrationLogger *slog.Logger) error {
	if name == "" {
		return fmt.Errorf("migration name is required for 'create' command (use -migration-name)")
	}

	dir, err := findMigrationsSourceDir()
	if err != nil {
		return err
	}

	migrationLogger.Info("Creating new migration",
		"name", name,
		"type", "sql",
		"directory", dir)

	// goose.Create only touches the filesystem for SQL migrations, so no
	// database connection is needed.
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}
	return nil
}

// findMigrationsSourceDir locates the on-disk migrations directory by
// walking up from the working directory to the module root.
func findMigrationsSourceDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			migrationsPath := filepath.Join(dir, "internal", "platform", "postgres", "migrations")
			if _, err := os.Stat(migrationsPath); err != nil {
				return "", fmt.Errorf("migrations directory not found at %s", migrationsPath)
			}
			return migrationsPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("module root not found (no go.mod in directory tree)")
		}
		dir = parent
	}
}

// maskDatabaseURL masks the password in a database URL for safe logging.
func maskDatabaseURL(dbURL string) string {
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}

	if _, hasPassword := parsedURL.User.Password(); hasPassword {
		parsedURL.User = url.UserPassword(parsedURL.User.Username(), "****")
	}

	return parsedURL.String()
}
