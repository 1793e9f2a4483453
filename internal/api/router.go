package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/data2rest/logscope/internal/dbpool"
	"github.com/data2rest/logscope/internal/domain"
	"github.com/data2rest/logscope/internal/middleware"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Pool        *dbpool.Pool
	Logs        domain.LogService
	Sessions    domain.SessionLookup
	CORSOrigins []string
	Version     string
	Limits      PageLimits
}

// Router-level limits.
const (
	rateLimit = 50  // requests per second per IP
	rateBurst = 100 // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.ReadOnly())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Authorization"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Export-Rows", "X-Request-ID"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	health := NewHealthHandler(deps.Pool, deps.Log, deps.Version)
	logs := NewLogHandler(deps.Logs, deps.Limits, deps.Log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// Everything else runs on behalf of a signed-in principal.
	guard := middleware.NewBruteForceGuard(ctx, deps.Log)
	authed := api.Group("",
		middleware.BruteForceMiddleware(guard),
		middleware.SessionAuth(middleware.NewCachedSessionLookup(deps.Sessions), deps.Log, guard),
	)

	authed.GET("/logs", logs.List)
	authed.GET("/logs/filters", logs.Filters)
	authed.GET("/logs/export", logs.Export)
	authed.GET("/logs/scope", logs.Scope)
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
