package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/arthropod-dashboard/internal/config"
	"github.com/arthropod-dashboard/internal/delivery/http/handler"
	"github.com/arthropod-dashboard/internal/delivery/http/middleware"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	optionsHandler   *handler.OptionsHandler
	dashboardHandler *handler.DashboardHandler
	datasetHandler   *handler.DatasetHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	optionsHandler *handler.OptionsHandler,
	dashboardHandler *handler.DashboardHandler,
	datasetHandler *handler.DatasetHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Arthropod Survey Dashboard",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:              app,
		config:           cfg,
		logger:           logger,
		optionsHandler:   optionsHandler,
		dashboardHandler: dashboardHandler,
		datasetHandler:   datasetHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.RequestID())
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
	api.Get("/health", s.datasetHandler.Health)

	// Filter options
	api.Get("/options", s.optionsHandler.GetOptions)

	// Dashboard views
	api.Post("/dashboard", s.dashboardHandler.GetDashboard)
	api.Post("/dashboard/composition", s.dashboardHandler.GetComposition)
	api.Post("/dashboard/temporal-by-region", s.dashboardHandler.GetTemporalByRegion)
	api.Post("/dashboard/site-totals", s.dashboardHandler.GetSiteTotals)
	api.Post("/dashboard/monthly-abundance", s.dashboardHandler.GetMonthlyAbundance)
	api.Post("/dashboard/diversity", s.dashboardHandler.GetDiversity)

	// Dataset lifecycle
	api.Post("/dataset/reload", s.datasetHandler.Reload)
	api.Get("/dataset/summary", s.datasetHandler.GetSummary)
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
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": err.Error(),
			},
		})
	}
}
