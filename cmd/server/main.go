package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"clubconnect/backend/internal/common"
	"clubconnect/backend/internal/db"
	"clubconnect/backend/internal/logging"
	"clubconnect/backend/internal/routes"
	"clubconnect/backend/internal/store"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Local development settings; no .env in production is fine.
	_ = godotenv.Load()

	// Initialize structured logging
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
	}

	if err := logging.Init(appEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("ClubConnect backend starting up",
		"environment", appEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	// Connect to DB with sqlx
	if err := db.InitPostgres(); err != nil {
		logging.Error("Failed to connect to Postgres (sqlx)", "error", err.Error())
		log.Fatalf("❌ Failed to connect to Postgres (sqlx): %v", err)
	}
	logging.Info("Connected to Postgres (sqlx)")

	// Connect to DB with GORM for the XP transaction log
	if _, err := db.InitPostgresORM(); err != nil {
		logging.Error("Failed to connect to Postgres (GORM)", "error", err.Error())
		log.Fatalf("❌ Failed to connect to Postgres (GORM): %v", err)
	}
	logging.Info("Connected to Postgres (GORM)")

	// Directory store over the shared sqlx pool
	directoryStore, err := store.NewPostgresStore(db.DB)
	if err != nil {
		logging.Error("Failed to initialize directory store", "error", err.Error())
		log.Fatalf("❌ Failed to initialize directory store: %v", err)
	}
	logging.Info("Directory store ready")

	// Per-key locks: redis when configured, in-process otherwise. A
	// multi-replica deployment must use the redis driver.
	var locks common.KeyLocker
	var rdb *redis.Client
	if os.Getenv("LOCK_DRIVER") == "redis" {
		rdb = common.NewRedisClient()
		locks = common.NewRedisKeyLock(rdb)
		logging.Info("Using redis key locks")
	} else {
		locks = common.NewMutexKeyLock()
		logging.Info("Using in-process key locks")
	}

	upSince := time.Now()

	// Initialize router with Chi
	router := routes.RegisterRoutes(directoryStore, locks, rdb, upSince)

	// Setup metrics endpoint outside of Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router) // Mount Chi router at root
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	logging.Info("Server starting",
		"port", 8080,
		"environment", appEnv,
	)

	log.Println("Starting server on :8080")
	log.Fatal(http.ListenAndServe(":8080", mux))
}
