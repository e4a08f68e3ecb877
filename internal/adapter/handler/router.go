package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/johnquangdev/meeting-analyzer/pkg/config"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker func(ctx context.Context) error

// AuthMiddleware builds the authentication middleware around the error
// writer of the route it protects
type AuthMiddleware func(writeError func(c echo.Context, err error) error) echo.MiddlewareFunc

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	analysis       *AnalysisController
	auth           AuthMiddleware
	metricsHandler http.Handler
	checks         map[string]HealthChecker
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, analysis *AnalysisController, auth AuthMiddleware, metricsHandler http.Handler, checks map[string]HealthChecker) *Router {
	return &Router{
		cfg:            cfg,
		analysis:       analysis,
		auth:           auth,
		metricsHandler: metricsHandler,
		checks:         checks,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	if rt.metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(rt.metricsHandler))
	}
	if rt.cfg == nil || !rt.cfg.IsProduction() {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	logger := rt.analysis.logger
	e.POST("/analyze", rt.analysis.Analyze, rt.auth(func(c echo.Context, err error) error {
		return HandleAnalyzeError(logger, c, err)
	}))

	v1 := e.Group("/v1", rt.auth(func(c echo.Context, err error) error {
		return HandleError(logger, c, err)
	}))
	rt.setupMeetingRoutes(v1)
}

// setupMeetingRoutes configures the per-meeting analysis routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := g.Group("/meetings")
	meetings.GET("/:id/analysis", rt.analysis.GetAnalysis)
	meetings.PUT("/:id/transcript", rt.analysis.UploadTranscript)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(rt.checks))
	for name, check := range rt.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	env := ""
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(status, map[string]interface{}{
		"status":       http.StatusText(status),
		"environment":  env,
		"dependencies": deps,
		"time":         time.Now().UTC().Format(time.RFC3339),
	})
}
