package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GERNAVSBIZ/movimento/internal/domain/repository"
	"github.com/GERNAVSBIZ/movimento/internal/infrastructure/config"
	"github.com/GERNAVSBIZ/movimento/internal/infrastructure/oauth"
	"github.com/GERNAVSBIZ/movimento/internal/infrastructure/persistence"
	mongoRepo "github.com/GERNAVSBIZ/movimento/internal/interface/repository"
	"github.com/GERNAVSBIZ/movimento/internal/interface/rest"
	"github.com/GERNAVSBIZ/movimento/internal/usecase"
	"github.com/GERNAVSBIZ/movimento/pkg/logger"
	"github.com/GERNAVSBIZ/movimento/pkg/metrics"
	"github.com/GERNAVSBIZ/movimento/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("production").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.AppEnv)
	defer log.Sync()
	log.Info("Starting Movimento Service", "version", cfg.AppVersion, "env", cfg.AppEnv)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection. A failed connection does not stop the
	// service, the API answers 503 until the store comes back.
	log.Info("Connecting to MongoDB")
	store := persistence.Connect(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
	if !store.Available() {
		log.Error("MongoDB unavailable", "error", store.Err())
	}

	// Set up metrics
	m := metrics.NewMetrics("movimento")

	// Set up Mongo repositories
	var movementRepository repository.MovementRepository
	var uploadRepository repository.UploadRepository
	if store.Available() {
		movementRepository = mongoRepo.NewMongoMovementRepository(store.Database(), cfg.WriteBatchSize)
		uploadRepository = mongoRepo.NewMongoUploadRepository(store.Database())
	}

	// Optional aerodrome reference database for destination enrichment
	var aerodromeRepository repository.AerodromeRepository
	if cfg.PostgresDSN != "" {
		gormDB, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
		if err != nil {
			log.Error("Failed to connect to PostgreSQL, destination enrichment disabled", "error", err)
		} else {
			aerodromeRepository = mongoRepo.NewGormAerodromeRepository(gormDB)
		}
	}

	// Raw file archive
	storageCredentials := oauth.NewStorageCredentials(cfg.StorageCredentials, cfg.StorageCredentialsFile, log)
	archiveRepository, err := mongoRepo.NewGCSArchiveRepository(ctx, cfg.StorageBucket, storageCredentials, log)
	if err != nil {
		log.Fatal("Failed to create archive client", "error", err)
	}

	// Set up parser and usecases
	parser := utils.NewMovementParser(utils.DefaultLayout(), log)
	ingestor := usecase.NewMovementIngestor(parser, movementRepository, uploadRepository, archiveRepository, m, log)
	queryService := usecase.NewMovementQueryService(movementRepository, uploadRepository, aerodromeRepository, cfg.CacheTTL, cfg.QueryLimit, log)

	// Set up HTTP server
	handlers := rest.NewHandlers(store, ingestor, queryService, cfg.UploadMaxMB, cfg.AppVersion, log)
	router := rest.NewRouter(handlers, m, cfg.RateLimitRPS, cfg.RateLimitBurst)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	if err := store.Close(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Movimento Service stopped")
}
