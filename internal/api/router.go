package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/skatepark/skater-profiles/docs"
	"github.com/skatepark/skater-profiles/internal/api/handler"
	"github.com/skatepark/skater-profiles/internal/api/middleware"
	"github.com/skatepark/skater-profiles/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Service     ports.SkaterService
	Tokens      middleware.TokenVerifier
	Revocations middleware.RevocationChecker
	Admins      middleware.AdminChecker
	Health      map[string]handler.DependencyCheck

	PhotoDir       string
	MaxUploadBytes int64
	Log            zerolog.Logger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "skaters",
		Registerer: deps.Registerer,
	}))

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if deps.PhotoDir != "" {
		e.Static("/img", deps.PhotoDir)
	}

	healthHandler := handler.NewHealthHandler(deps.Health)
	e.GET("/health", healthHandler.Liveness)        // liveness: is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness: are dependencies up?

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Service)
	skaterHandler := handler.NewSkaterHandler(deps.Service, deps.MaxUploadBytes)
	requireAuth := middleware.Auth(deps.Tokens, deps.Revocations)
	requireAdmin := middleware.RequireAdmin(deps.Admins)

	v1 := e.Group("/api/v1")

	// --- Public routes ---
	v1.POST("/registro", skaterHandler.Register)
	v1.POST("/login", authHandler.Login)
	v1.GET("/skaters", skaterHandler.List)

	// --- Authenticated routes ---
	v1.GET("/perfil", skaterHandler.Profile, requireAuth)
	v1.PUT("/skaters", skaterHandler.UpdateProfile, requireAuth)
	v1.DELETE("/skaters", skaterHandler.Delete, requireAuth)

	// --- Admin routes ---
	v1.PUT("/skaters/estado", skaterHandler.ToggleStatus, requireAuth, requireAdmin)
	v1.GET("/admin/skaters", skaterHandler.AdminList, requireAuth, requireAdmin)

	return e
}
