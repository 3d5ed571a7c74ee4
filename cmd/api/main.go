package main

// @title LPT Gateway API
// @version 1.0.0
// @description Единый API отправлений общественного транспорта поверх HAFAS и TRIAS провайдеров.
// @description Провайдер выбирается по почтовому индексу адреса.

// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/lpt-gateway/internal/config"
	httpDelivery "github.com/lpt-gateway/internal/delivery/http"
	"github.com/lpt-gateway/internal/delivery/http/handler"
	"github.com/lpt-gateway/internal/domain/repository"
	"github.com/lpt-gateway/internal/pkg/logger"
	"github.com/lpt-gateway/internal/repository/lpt"
	"github.com/lpt-gateway/internal/repository/postgres"
	"github.com/lpt-gateway/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "lpt-gateway")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting LPT Gateway")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("providers_file", cfg.LPT.ProvidersFile),
		zap.String("fallback_provider", cfg.LPT.FallbackProvider),
	)

	// 3. Optional address store
	var addressRepo repository.AddressRepository
	var db *postgres.DB
	if cfg.DatabaseEnabled() {
		db, err = postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		addressRepo = postgres.NewAddressRepository(db)
	} else {
		log.Info("DB_HOST not set, address lookups by id are disabled")
	}

	// 4. Provider registry
	factory := lpt.NewProviderFactory(lpt.FactoryOptions{
		Location: cfg.LPT.Location(),
		Timeout:  cfg.LPT.RequestTimeout,
		Logger:   log,
	})
	registry := lpt.NewRegistry(lpt.NewFileDocumentLoader(cfg.LPT.ProvidersFile, log), factory, log)
	registry.Load(context.Background())

	if _, err := registry.GetByName(context.Background(), cfg.LPT.FallbackProvider); err != nil {
		log.Warn("Fallback provider is not configured, coordinate queries will fail",
			zap.String("fallback_provider", cfg.LPT.FallbackProvider))
	}

	// 5. Use cases and handlers
	departuresUC := usecase.NewDeparturesUseCase(
		registry,
		addressRepo,
		log,
		cfg.LPT.FallbackProvider,
		cfg.LPT.MaxStops,
		cfg.LPT.MaxDepartures,
	)
	departuresHandler := handler.NewDeparturesHandler(departuresUC, log)

	// 6. HTTP server
	checks := map[string]httpDelivery.HealthChecker{}
	if db != nil {
		checks["postgres"] = db
	}
	server := httpDelivery.NewServer(cfg, log, departuresHandler, checks)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 7. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if db != nil {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}

	log.Info("Server stopped successfully")
}
