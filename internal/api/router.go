package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/bellybox/bellybox-api/docs"
	"github.com/bellybox/bellybox-api/internal/api/handler"
	"github.com/bellybox/bellybox-api/internal/api/metrics"
	"github.com/bellybox/bellybox-api/internal/api/middleware"
	"github.com/bellybox/bellybox-api/internal/core/domain"
	"github.com/bellybox/bellybox-api/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer needs. They are built in
// cmd/server and handed over whole.
type Dependencies struct {
	Auth     ports.AuthService
	Sessions ports.SessionManager
	Audit    ports.AuditRecorder
	// Health maps dependency names to readiness pings.
	Health map[string]handler.PingFunc
	// Registry receives HTTP and auth metrics and backs /metrics. A fresh
	// registry is used when nil.
	Registry       *prometheus.Registry
	Cookie         handler.CookieConfig
	MismatchPolicy middleware.MismatchPolicy
	Log            zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics.MustRegister(reg)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "bellybox",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.Session(deps.Sessions, deps.Log))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Sessions, deps.Audit, deps.Cookie, deps.Log)
	dashboardHandler := handler.NewDashboardHandler()
	healthHandler := handler.NewHealthHandler(deps.Health)
	requireAuth := middleware.RequireAuth(deps.Log)

	// --- Pages ---
	e.GET("/", dashboardHandler.Index)
	e.GET("/register", authHandler.RegisterPage)
	e.POST("/register", authHandler.Register)
	e.GET("/login", authHandler.LoginPage)
	e.POST("/login", authHandler.Login)
	e.GET("/logout", authHandler.Logout, requireAuth)

	// --- Dashboards (exact role match) ---
	for _, d := range domain.Dashboards {
		e.GET(d.Path(), dashboardHandler.Show(d), middleware.RBAC(d, deps.MismatchPolicy, deps.Audit, deps.Log))
	}

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
