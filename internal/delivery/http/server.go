package http

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/lpt-gateway/internal/config"
	"github.com/lpt-gateway/internal/delivery/http/handler"
	"github.com/lpt-gateway/internal/delivery/http/middleware"
	"github.com/lpt-gateway/internal/pkg/utils"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	_ "github.com/lpt-gateway/docs"
)

// HealthChecker - зависимость, состояние которой попадает в /health
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	departuresHandler *handler.DeparturesHandler
	checks            map[string]HealthChecker
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	departuresHandler *handler.DeparturesHandler,
	checks map[string]HealthChecker,
) *Server {
	// Write timeout covers one geocode plus MaxStops upstream calls.
	writeTimeout := cfg.LPT.RequestTimeout*time.Duration(cfg.LPT.MaxStops+1) + 5*time.Second

	app := fiber.New(fiber.Config{
		AppName:      "LPT Gateway",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:               app,
		config:            cfg,
		logger:            logger,
		departuresHandler: departuresHandler,
		checks:            checks,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", s.health)

	// Departures
	api.Post("/departures", s.departuresHandler.GetDepartures)
	api.Get("/departures", s.departuresHandler.SearchDepartures)
	api.Get("/providers", s.departuresHandler.ListProviders)
}

// health - проверка состояния сервиса и его зависимостей
func (s *Server) health(c *fiber.Ctx) error {
	started := time.Now()
	status := "healthy"
	components := make(fiber.Map, len(s.checks))
	for name, check := range s.checks {
		if err := check.Health(c.UserContext()); err != nil {
			s.logger.Warn("Health check failed", zap.String("component", name), zap.Error(err))
			components[name] = err.Error()
			status = "degraded"
			continue
		}
		components[name] = "ok"
	}

	if status != "healthy" {
		c.Status(fiber.StatusServiceUnavailable)
	}
	return utils.SendSuccess(c, fiber.Map{
		"status":     status,
		"time":       started,
		"components": components,
	}, &utils.Meta{
		Total:    len(s.checks),
		TimeMSec: float64(time.Since(started).Microseconds()) / 1000,
	})
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if stderrors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    "HTTP_ERROR",
					"message": fe.Message,
				},
			})
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Error(err),
		)

		return utils.SendError(c, err)
	}
}
