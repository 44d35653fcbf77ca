package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/acolhimento-gf/visitantes-api/internal/business/accounts"
	"github.com/acolhimento-gf/visitantes-api/internal/business/visitors"
	"github.com/acolhimento-gf/visitantes-api/internal/platform/logger"
	"github.com/acolhimento-gf/visitantes-api/internal/platform/metrics"
	"github.com/acolhimento-gf/visitantes-api/internal/session"
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// RouterConfig bundles everything the HTTP layer needs.
type RouterConfig struct {
	Accounts       *accounts.Service
	Visitors       *visitors.Service
	Issuer         *session.Issuer
	Metrics        *metrics.Metrics
	Logger         *logger.Logger
	AllowedOrigins []string
	Health         HealthCheck
}

// Router wires HTTP handlers.
type Router struct {
	accounts *accounts.Service
	visitors *visitors.Service
	log      *logger.Logger
	health   HealthCheck
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	r := &Router{
		accounts: cfg.Accounts,
		visitors: cfg.Visitors,
		log:      cfg.Logger,
		health:   cfg.Health,
	}

	router := gin.New()
	router.Use(gin.Recovery(), corsMiddleware(cfg.AllowedOrigins), requestLogger(cfg.Logger), metricsMiddleware(cfg.Metrics))

	router.GET("/healthz", r.healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Metrics.Registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	api.POST("/login", r.login)

	authed := api.Group("", authenticate(cfg.Issuer, cfg.Accounts))
	{
		authed.GET("/me", r.me)
		authed.GET("/cep/:cep", requireCapability(session.LookupCEP), r.lookupCEP)

		v := authed.Group("/visitantes")
		v.GET("", requireCapability(session.ViewVisitors), r.listVisitors)
		v.GET("/export", requireCapability(session.ExportVisitors), r.exportVisitors)
		v.GET("/:id", requireCapability(session.ViewVisitors), r.getVisitor)
		v.POST("", requireCapability(session.RegisterVisitors), r.registerVisitor)
		v.PUT("/:id", requireCapability(session.RegisterVisitors), r.updateVisitor)
		v.PATCH("/:id/status", requireCapability(session.UpdateVisitorStatus), r.updateVisitorStatus)
		v.DELETE("/:id", requireCapability(session.DeleteVisitors), r.deleteVisitor)

		dash := authed.Group("", requireCapability(session.ViewDashboard))
		dash.GET("/dashboard", r.dashboard)
		dash.GET("/dashboard/snapshot", r.getSnapshot)
		dash.POST("/dashboard/snapshot", r.saveSnapshot)
		dash.POST("/stats/aggregate", r.aggregateRecords)

		users := authed.Group("/usuarios", requireCapability(session.ManageUsers))
		users.GET("", r.listUsers)
		users.POST("", r.createUser)
		users.GET("/:id", r.getUser)
		users.PUT("/:id", r.updateUser)
		users.DELETE("/:id", r.deleteUser)

		addr := authed.Group("/enderecos", requireCapability(session.RunBackfill))
		addr.POST("/backfill", r.startBackfill)
		addr.GET("/runs", r.listRuns)
		addr.GET("/runs/:id", r.getRun)
		addr.POST("/runs/:id/cancel", r.cancelRun)
	}

	return router
}

func (r *Router) healthz(c *gin.Context) {
	if r.health != nil {
		if err := r.health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
