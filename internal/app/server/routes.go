package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"opsflow/internal/platform/config"
	"opsflow/internal/platform/metrics"
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
	"opsflow/internal/transport/http/middleware"
)

const requestTimeout = 60 * time.Second

type routes struct {
	system      *systemhandler.Handler
	employees   *employeeshandler.Handler
	folders     *foldershandler.Handler
	documents   *documentshandler.Handler
	contacts    *contactshandler.Handler
	licenses    *licenseshandler.Handler
	inductions  *inductionshandler.Handler
	credentials *credentialshandler.Handler
	tasks       *taskshandler.Handler
	reports     *reportshandler.Handler
	audit       *audithandler.Handler
	jobs        *jobshandler.Handler
}

func newRouter(cfg config.Config, collector *metrics.Collector, h routes) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.ClientIP)
	router.Use(middleware.Logger(collector))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORSOrigins))

	h.system.RegisterRoutes(router)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))
		r.Use(middleware.BodyLimit(cfg.MaxBodyBytes, cfg.MaxUploadBytes))
		r.Use(middleware.Auth(cfg.JWTSecret, cfg.AuthDisabled))
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		h.employees.RegisterRoutes(r,
			h.documents.RegisterEmployeeRoutes,
			h.inductions.RegisterEmployeeRoutes,
			h.contacts.RegisterEmployeeRoutes,
			h.licenses.RegisterEmployeeRoutes,
		)
		h.folders.RegisterRoutes(r)
		h.documents.RegisterRoutes(r)
		h.licenses.RegisterRoutes(r)
		h.inductions.RegisterRoutes(r)
		h.credentials.RegisterRoutes(r)
		h.tasks.RegisterRoutes(r)
		h.reports.RegisterRoutes(r)
		h.audit.RegisterRoutes(r)
		h.jobs.RegisterRoutes(r)
	})

	return router
}
