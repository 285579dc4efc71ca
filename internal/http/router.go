// Package httpapi wires the portal's HTTP transport (Gin) to the session
// store, the top-up service and the route handlers. It centralizes the
// cross-cutting concerns: tracing, correlation IDs, logging/redaction, panic
// recovery, metrics, compression, CORS, security headers, session checks,
// rate limiting and the one-top-up-at-a-time guard.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-topup-portal/internal/config"
	"github.com/tbourn/go-topup-portal/internal/http/handlers"
	"github.com/tbourn/go-topup-portal/internal/http/middleware"
)

// maxBodyBytes caps request bodies; the largest legitimate payload is a
// top-up form.
const maxBodyBytes = 64 << 10

// InFlightMessage is returned when a second top-up arrives while one runs.
const InFlightMessage = "A top-up is already being processed. Wait for its ticket."

// Deps are the services the routes are bound to.
type Deps struct {
	Session handlers.SessionService
	Portal  handlers.PortalService
	Events  handlers.EventSource
}

// sessionToken adapts the session store to middleware.RequireSession.
func sessionToken(s handlers.SessionService) middleware.SessionFunc {
	return func(ctx context.Context) (string, bool) {
		if !s.IsTokenValid(ctx) {
			return "", false
		}
		return s.State(ctx).Token, true
	}
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Compression (the events stream is excluded)
//  8. CORS and Security headers
//
// Protected API routes then run RequireSession → rate limiter, and top-up
// submission adds the in-flight guard.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	apiBase := cfg.APIBasePath

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{joinPath(apiBase, "/events"), "/metrics"})))

	r.Use(corsMiddleware(cfg.CORS)...)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
		CSPExempt:    []string{"/swagger/"},
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(deps.Session, deps.Portal, deps.Events, handlers.LoginDefaults{
		Username: cfg.Backend.Username,
		Commerce: cfg.Backend.Commerce,
	})

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyBySessionOrIP())
	guard := middleware.NewInFlight(middleware.KeyBySessionOrIP(), InFlightMessage)

	api := groupWithPrefix(r, apiBase)
	{
		// Session (public)
		api.POST("/session", rl.Handler(), h.Login)
		api.GET("/session", h.GetSession)
		api.DELETE("/session", h.Logout)
		api.GET("/events", h.Events)

		protected := api.Group("", middleware.RequireSession(sessionToken(deps.Session)), rl.Handler())
		protected.GET("/suppliers", h.ListSuppliers)
		protected.POST("/topups", guard.Handler(), h.CreateTopUp)
		protected.GET("/history", h.ListHistory)
		protected.GET("/history/:id", h.GetTransaction)
		protected.DELETE("/history", h.ClearHistory)
	}
}

// corsMiddleware returns the CORS chain. Without an allowlist every origin
// is accepted (ACAO "*", even without an Origin header); with one, allowed
// origins are echoed.
func corsMiddleware(cfg config.CORSConfig) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderTransactionalPassword},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = cfg.AllowedOrigins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// limitBody caps the request body size at maxBytes using
// http.MaxBytesReader; reads past the cap fail.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

func joinPath(prefix, p string) string {
	if prefix == "" || prefix == "/" {
		return p
	}
	return prefix + p
}
