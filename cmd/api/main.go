package main

// @title Arthropod Survey Dashboard API
// @version 1.0.0
// @description Backend for the long-term arthropod field-survey dashboard. Joins survey records with site coordinates and NLCD-derived land-use classes, applies multi-select filters and serves the aggregated views (community composition, quarterly abundance by region, site totals for the map, monthly abundance, diversity metrics).

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/arthropod-dashboard/docs"
	"github.com/arthropod-dashboard/internal/config"
	httpDelivery "github.com/arthropod-dashboard/internal/delivery/http"
	"github.com/arthropod-dashboard/internal/delivery/http/handler"
	"github.com/arthropod-dashboard/internal/domain/repository"
	"github.com/arthropod-dashboard/internal/pkg/logger"
	"github.com/arthropod-dashboard/internal/repository/cache"
	"github.com/arthropod-dashboard/internal/repository/csvsource"
	"github.com/arthropod-dashboard/internal/repository/postgres"
	"github.com/arthropod-dashboard/internal/store"
	"github.com/arthropod-dashboard/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Arthropod Survey Dashboard")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("data_source", cfg.Data.Source),
	)

	// 3. Select dataset source
	var datasetRepo repository.DatasetRepository
	var db *postgres.DB
	switch cfg.Data.Source {
	case "postgres":
		db, err = postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}()
		datasetRepo = postgres.NewDatasetRepository(db)
	default:
		datasetRepo = csvsource.NewDatasetRepository(&cfg.Data, log)
	}

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()
	log.Info("Redis connected")

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if db != nil {
		if err := db.Health(ctx); err != nil {
			log.Fatal("PostgreSQL health check failed", zap.Error(err))
		}
	}
	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	// 6. Build the joined relation up front so a malformed source
	// fails the start instead of the first request.
	recordStore := store.NewRecordStore(datasetRepo, log)

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer loadCancel()
	if _, err := recordStore.Snapshot(loadCtx); err != nil {
		log.Fatal("Failed to build joined relation", zap.Error(err))
	}
	summary := recordStore.Summary()
	log.Info("Dataset loaded",
		zap.Int("records", summary.Records),
		zap.Int("sites", summary.Sites),
	)

	// 7. Initialize Repositories and Use Cases
	cacheRepo := cache.NewCacheRepository(redisClient)

	optionsUC := usecase.NewOptionsUseCase(
		recordStore,
		cacheRepo,
		log,
		cfg.Cache.OptionsCacheTTL,
	)

	dashboardUC := usecase.NewDashboardUseCase(
		recordStore,
		cacheRepo,
		log,
		cfg.Cache.AggregateCacheTTL,
	)

	log.Info("Use cases initialized")

	// 8. Initialize HTTP Handlers
	optionsHandler := handler.NewOptionsHandler(optionsUC, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardUC, log)
	datasetHandler := handler.NewDatasetHandler(dashboardUC, log)

	// 9. Initialize HTTP Server
	server := httpDelivery.NewServer(
		cfg,
		log,
		optionsHandler,
		dashboardHandler,
		datasetHandler,
	)

	log.Info("HTTP server initialized")

	// 10. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
