package routes

import (
	"context"
	"net/http"
	"time"

	"clubconnect/backend/internal/api"
	"clubconnect/backend/internal/common"
	"clubconnect/backend/internal/db"
	"clubconnect/backend/internal/jobs"
	"clubconnect/backend/internal/logging"
	"clubconnect/backend/internal/metrics"
	"clubconnect/backend/internal/middleware"
	"clubconnect/backend/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(st store.DirectoryStore, locks common.KeyLocker, rdb *redis.Client, upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// Initialize metrics registry
	metricsReg := metrics.NewMetricsRegistry()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(metricsReg))
	r.Use(middleware.RateLimitMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	logging.Info("Router initialized with metrics and logging middleware")
	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, rdb, upSince))

	// Initialize dependencies using DI pattern
	deps, err := api.InitDependencies(st, locks, db.PgDB)
	if err != nil {
		panic("Failed to initialize dependencies: " + err.Error())
	}

	// Initialize handlers with dependencies
	handlers := api.NewHandlers(deps)

	// Setup scheduled jobs
	reconcileJob := jobs.InitializeJobs(context.Background(), st, metricsReg)

	// Initialize jobs handler for manual triggering
	jobsHandler := api.NewJobsHandler(reconcileJob)

	// Register API routes (after jobsHandler is initialized)
	RegisterAPIRoutes(r, handlers, jobsHandler)

	return r
}
