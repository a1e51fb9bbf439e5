// Package httpapi wires the HTTP transport (Gin) to the issuance services,
// middleware and route handlers. It centralizes cross-cutting concerns:
// tracing, correlation IDs, access logging with redaction, panic recovery,
// compression, metrics, CORS, security headers and authentication.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/issuebadge/issuebadge-service/internal/config"
	"github.com/issuebadge/issuebadge-service/internal/docs"
	"github.com/issuebadge/issuebadge-service/internal/events"
	"github.com/issuebadge/issuebadge-service/internal/http/handlers"
	"github.com/issuebadge/issuebadge-service/internal/http/middleware"
	"github.com/issuebadge/issuebadge-service/internal/services"
)

// Deps are the runtime dependencies of the API.
type Deps struct {
	DB *gorm.DB
	// Client talks to the IssueBadge service. Nil means no API key is
	// configured; every call then reports the configuration error.
	Client services.BadgeClient
	// Registerer receives the domain counters. Nil uses the default registry.
	Registerer prometheus.Registerer
	// Logger receives badge-issued events and auto-issuance warnings.
	// Nil uses the global logger.
	Logger *zerolog.Logger
}

// allowedHeaders are the request headers browsers may send cross-origin.
var allowedHeaders = []string{
	"Origin", "Content-Type", "Accept", "Authorization",
	middleware.HeaderUserID, middleware.HeaderCapabilities, middleware.HeaderRequestID,
}

// RegisterRoutes attaches all middleware and HTTP endpoints to r and
// returns the event bus the services publish to.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. AccessLog: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. gzip compression
//  7. Metrics
//  8. CORS and security headers
//  9. Authenticate (API group only; /health, /metrics and docs stay open)
func RegisterRoutes(r *gin.Engine, cfg config.Config, deps Deps) *events.Bus {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(middleware.AccessLogOptions{
		MaskHeaders: []string{middleware.HeaderCapabilities},
		SkipPaths:   []string{"/health", "/metrics"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(cfg.MaxBodyBytes))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(middleware.Metrics())
	r.Use(corsPolicy(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	// gzip is applied by neither layer: scrapers get plain text.
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		DisableCompression: true,
	})))
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: events ← observers, services ← db/client/events
	bus := newBus(deps)
	h := handlers.New(
		&services.BadgeService{Client: deps.Client},
		&services.IssuanceService{DB: deps.DB, Client: deps.Client, Events: bus},
		&services.AutoIssuer{
			DB:      deps.DB,
			Client:  deps.Client,
			Events:  bus,
			Enabled: cfg.IssueBadge.AutoIssue,
			Logger:  deps.Logger,
		},
		&services.HistoryService{DB: deps.DB},
		&services.PrivacyService{DB: deps.DB},
	)

	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(middleware.Authenticate(middleware.AuthOptions{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.Issuer,
	}))
	{
		api.GET("/badges", middleware.Require(middleware.CapView, nil), h.ListBadges)

		// Capability scope depends on the payload; checked in the handlers.
		api.POST("/issues", h.IssueBadge)
		api.GET("/issues", middleware.NoStore(), h.ListIssues)

		api.POST("/events/course-completed", middleware.Require(middleware.CapNotify, nil), h.CourseCompleted)

		privacy := api.Group("/privacy", middleware.Require(middleware.CapPrivacy, nil), middleware.NoStore())
		privacy.GET("/metadata", h.PrivacyMetadata)
		privacy.GET("/users/:id/contexts", h.UserContexts)
		privacy.GET("/users/:id/export", h.ExportUser)
		privacy.DELETE("/users/:id", h.DeleteUser)
		privacy.GET("/contexts/:context/users", h.ContextUsers)
		privacy.DELETE("/contexts/:context", h.DeleteContext)
		privacy.POST("/contexts/:context/delete-users", h.DeleteContextUsers)
	}
	return bus
}

// newBus subscribes the log observer and the issued-badges counter.
func newBus(deps Deps) *events.Bus {
	lg := log.Logger
	if deps.Logger != nil {
		lg = *deps.Logger
	}
	bus := events.NewBus(events.LogObserver(lg))
	counter, err := events.NewIssuedCounter(deps.Registerer)
	if err != nil {
		lg.Warn().Err(err).Msg("issued-badges counter disabled")
		return bus
	}
	bus.Subscribe(counter.Handler())
	return bus
}

// corsPolicy allows any origin when no allowlist is configured; otherwise it
// echoes allowlisted origins only. Credentials are never allowed: identity
// travels in the Authorization header.
func corsPolicy(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     allowedHeaders,
		ExposeHeaders:    []string{middleware.HeaderRequestID, "ETag", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			// ACAO even without an Origin header, for simple probes.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = origins
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

// limitBody caps the request body at maxBytes; larger bodies fail to bind.
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
