// Package router assembles the admin HTTP surface of the scheduler.
package router

import (
	"crypto/subtle"
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/tally/internal/handler/admin"
)

// Config holds what the admin server needs
type Config struct {
	// AdminToken guards /admin/*. Empty disables the admin routes.
	AdminToken string

	// Registry backs /metrics and the HTTP metrics
	Registry *prometheus.Registry

	Logger *slog.Logger
}

// New builds the echo instance with the health, metrics and admin job routes.
func New(jobs *admin.JobsHandler, cfg Config) *echo.Echo {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.RequestID())
	e.Use(Recovery(logger))
	e.Use(Logger(logger))

	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if cfg.Registry != nil {
		e.Use(NewHTTPMetrics("tally", cfg.Registry).Middleware)
		gatherer = cfg.Registry
	}

	e.GET("/health", jobs.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	if cfg.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN not set, admin job routes are disabled")
		return e
	}

	g := e.Group("/admin", echomw.KeyAuth(func(key string, c echo.Context) (bool, error) {
		return subtle.ConstantTimeCompare([]byte(key), []byte(cfg.AdminToken)) == 1, nil
	}))
	g.POST("/jobs/daily", jobs.RunDaily)
	g.POST("/jobs/weekly", jobs.RunWeekly)

	return e
}
