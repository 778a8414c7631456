package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/assetdesk/console/internal/api/handler"
	"github.com/assetdesk/console/internal/api/middleware"
	"github.com/assetdesk/console/internal/core/domain"
	"github.com/assetdesk/console/internal/core/ports"
)

// Deps is everything the router needs from the composition root.
type Deps struct {
	Profiles  middleware.ProfileSource
	Auth      ports.AuthAPI
	Cookie    middleware.CookieConfig
	Readiness map[string]handler.Pinger
	Log       zerolog.Logger

	// Registry receives the HTTP metrics and backs /metrics. Defaults to the
	// prometheus default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestContext())
	e.Use(requestLogger(d.Log))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "console",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth)
	inventoryHandler := handler.NewInventoryHandler()

	profile := middleware.Profile(d.Profiles, d.Cookie)
	authenticated := middleware.Guard("authenticated", domain.RequireAuthenticated())
	admin := middleware.Guard("admin", domain.RequireAdmin())
	manager := middleware.Guard("manager", domain.RequireManagerOrAdmin())

	// --- Public session routes ---
	e.POST("/login", authHandler.Login, profile)
	e.POST("/register", authHandler.Register, profile)
	e.POST("/logout", authHandler.Logout, profile)
	e.GET("/session", authHandler.Session, profile)
	e.DELETE("/session/error", authHandler.ClearError, profile)
	e.POST("/password/reset", authHandler.RequestPasswordReset)
	e.POST("/password/reset-confirm/:uid/:token", authHandler.ConfirmPasswordReset)

	// --- Authenticated views ---
	e.GET("/dashboard", inventoryHandler.Dashboard, profile, authenticated)
	e.GET("/assets", inventoryHandler.ListAssets, profile, authenticated)
	e.POST("/assets", inventoryHandler.CreateAsset, profile, authenticated)
	e.GET("/assets/:id", inventoryHandler.GetAsset, profile, authenticated)
	e.PATCH("/assets/:id", inventoryHandler.UpdateAsset, profile, authenticated)
	e.DELETE("/assets/:id", inventoryHandler.DeleteAsset, profile, authenticated)
	e.GET("/categories", inventoryHandler.ListCategories, profile, authenticated)
	e.POST("/categories", inventoryHandler.CreateCategory, profile, authenticated)
	e.PATCH("/categories/:id", inventoryHandler.UpdateCategory, profile, authenticated)
	e.DELETE("/categories/:id", inventoryHandler.DeleteCategory, profile, authenticated)
	e.GET("/departments", inventoryHandler.ListDepartments, profile, authenticated)
	e.GET("/requests", inventoryHandler.ListRequests, profile, authenticated)
	e.GET("/profile", authHandler.Profile, profile, authenticated)
	e.POST("/password/change", authHandler.ChangePassword, profile, authenticated)

	// --- Role-restricted views ---
	e.GET("/users", inventoryHandler.ListUsers, profile, admin)
	e.GET("/reports", inventoryHandler.Reports, profile, manager)

	// --- Health probes, metrics and docs (no profile) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Fallbacks ---
	toLanding := func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, domain.LandingPath)
	}
	e.GET("/", toLanding)
	e.RouteNotFound("/*", toLanding)

	return e
}

// requestLogger feeds echo's request logger into zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
