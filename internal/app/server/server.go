package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"opsflow/internal/domain/audit"
	"opsflow/internal/domain/compliance"
	"opsflow/internal/domain/contacts"
	"opsflow/internal/domain/credentials"
	"opsflow/internal/domain/documents"
	"opsflow/internal/domain/employees"
	"opsflow/internal/domain/folders"
	"opsflow/internal/domain/inductions"
	"opsflow/internal/domain/licenses"
	"opsflow/internal/domain/reports"
	"opsflow/internal/domain/tasks"
	"opsflow/internal/platform/config"
	"opsflow/internal/platform/crypto"
	"opsflow/internal/platform/db"
	"opsflow/internal/platform/email"
	"opsflow/internal/platform/jobs"
	"opsflow/internal/platform/metrics"
	"opsflow/internal/platform/storage"
	audithandler "opsflow/internal/transport/http/handlers/audit"
	contactshandler "opsflow/internal/transport/http/handlers/contacts"
	credentialshandler "opsflow/internal/transport/http/handlers/credentials"
	documentshandler "opsflow/internal/transport/http/handlers/documents"
	employeeshandler "opsflow/internal/transport/http/handlers/employees"
	foldershandler "opsflow/internal/transport/http/handlers/folders"
	inductionshandler "opsflow/internal/transport/http/handlers/inductions"
	jobshandler "opsflow/internal/transport/http/handlers/jobs"
	licenseshandler "opsflow/internal/transport/http/handlers/licenses"
	reportshandler "opsflow/internal/transport/http/handlers/reports"
	systemhandler "opsflow/internal/transport/http/handlers/system"
	taskshandler "opsflow/internal/transport/http/handlers/tasks"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector
}

// New connects to Postgres, applies migrations and seeds, and wires every service and
// handler. The caller owns the returned App and must Close it.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	app := &App{Config: cfg, DB: pool, Metrics: metrics.New()}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.SeedFolders(ctx, pool, cfg.SeedFolders); err != nil {
			pool.Close()
			return nil, err
		}
	}

	cryptoSvc, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("encryption setup: %w", err)
	}
	if !cryptoSvc.Configured() {
		slog.Warn("DATA_ENCRYPTION_KEY not set; credential passwords are stored unencrypted")
	}

	objects, err := newObjectStore(ctx, cfg.S3)
	if err != nil {
		pool.Close()
		return nil, err
	}

	policy := compliance.NewPolicy(cfg.ExpiryThresholdDays)
	recorder := audit.New(pool)

	employeeSvc := employees.NewService(employees.NewStore(pool))
	folderSvc := folders.NewService(folders.NewStore(pool))
	documentSvc := documents.NewService(documents.NewStore(pool), objects)
	contactSvc := contacts.NewService(contacts.NewStore(pool))
	licenseSvc := licenses.NewService(licenses.NewStore(pool), objects, policy)
	inductionSvc := inductions.NewService(inductions.NewStore(pool), policy)
	credentialSvc := credentials.NewService(credentials.NewStore(pool, cryptoSvc))
	taskSvc := tasks.NewService(tasks.NewStore(pool))
	reportSvc := reports.NewService(licenseSvc, inductionSvc, policy)

	app.Jobs = jobs.New(jobs.NewStore(pool), app.Metrics, cfg.StatusRefreshInterval, map[string]jobs.Refresher{
		"licenses":   licenseSvc,
		"inductions": inductionSvc,
	})
	if cfg.Email.Enabled && len(cfg.Email.AlertTo) > 0 {
		app.Jobs.Notifier = reports.NewNotifier(reportSvc, email.New(cfg.Email), cfg.Email.AlertTo)
	}

	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metricsHandler = app.Metrics.Handler()
	}

	app.Router = newRouter(cfg, app.Metrics, routes{
		system:      systemhandler.NewHandler(pool, metricsHandler),
		employees:   employeeshandler.NewHandler(employeeSvc, recorder),
		folders:     foldershandler.NewHandler(folderSvc, documentSvc, recorder),
		documents:   documentshandler.NewHandler(documentSvc, recorder),
		contacts:    contactshandler.NewHandler(contactSvc, recorder),
		licenses:    licenseshandler.NewHandler(licenseSvc, recorder),
		inductions:  inductionshandler.NewHandler(inductionSvc, recorder),
		credentials: credentialshandler.NewHandler(credentialSvc, recorder),
		tasks:       taskshandler.NewHandler(taskSvc, recorder),
		reports:     reportshandler.NewHandler(reportSvc),
		audit:       audithandler.NewHandler(recorder),
		jobs:        jobshandler.NewHandler(app.Jobs),
	})
	return app, nil
}

func newObjectStore(ctx context.Context, cfg config.S3Config) (storage.ObjectStore, error) {
	if !cfg.Enabled() {
		slog.Info("S3_BUCKET not set; file uploads are disabled")
		return storage.Disabled{}, nil
	}
	store, err := storage.NewS3(ctx, cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("object storage configured", "bucket", cfg.Bucket, "endpoint", cfg.Endpoint)
	return store, nil
}

// Run serves HTTP and the background jobs until ctx is cancelled, then drains
// in-flight requests within the configured shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	jobsCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	a.Jobs.Start(jobsCtx)

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("opsflow listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		stopJobs()
		a.Jobs.Wait()
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down", "timeout", a.Config.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	stopJobs()
	a.Jobs.Wait()
	if err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
