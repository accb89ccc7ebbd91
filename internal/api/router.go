package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/gameportal/portal-api/docs"
	"github.com/gameportal/portal-api/internal/api/handler"
	"github.com/gameportal/portal-api/internal/api/middleware"
	"github.com/gameportal/portal-api/internal/core/ports"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Sessions ports.SessionService
	Users    ports.UserService
	Statki   ports.StatkiService
	Verifier ports.TokenVerifier
	Cookies  handler.CookieOptions
	Checks   map[string]handler.DependencyCheck
	Log      zerolog.Logger

	// Registry receives the HTTP request metrics and backs /metrics. Nil
	// means the Prometheus default registry.
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
	e.Use(echomiddleware.RequestID())
	// Metrics wrap the logger: its HandleError commits the mapped status
	// before the metrics middleware reads it.
	e.Use(metricsMiddleware(d.Registry))
	e.Use(requestLogger(d.Log))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Sessions, d.Cookies, d.Log)
	userHandler := handler.NewUserHandler(d.Users)
	statkiHandler := handler.NewStatkiHandler(d.Statki)
	requireAuth := middleware.Auth(d.Verifier)

	// --- Session routes ---
	e.POST("/login", authHandler.Login)
	e.POST("/register", authHandler.Register)
	e.POST("/logout", authHandler.Logout)
	e.POST("/refresh", authHandler.Refresh)

	// --- Users ---
	users := e.Group("/users", requireAuth)
	users.GET("/me", userHandler.Me)
	users.GET("/:id", userHandler.Get, middleware.RequireOwner("id"))

	// --- Statki ---
	statki := e.Group("/games/statki", requireAuth)
	statki.POST("", statkiHandler.Create)
	statki.GET("/:id", statkiHandler.Get)
	statki.POST("/:id/attack", statkiHandler.Attack)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", metricsHandler(d.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func metricsMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{
		Namespace: "portal",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
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
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency.Round(time.Microsecond)).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
