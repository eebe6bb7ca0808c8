package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"uptime-report-backend/internal/metrics"
	"uptime-report-backend/internal/mw"
)

// RouterOptions tunes the middleware in front of the handlers.
type RouterOptions struct {
	RateLimit rate.Limit
	Burst     int
	// CacheTTL applies to the live site preview only; report reads are never cached.
	CacheTTL time.Duration
	Metrics  *metrics.Metrics
}

// NewRouter creates and configures a new Gin router.
func NewRouter(handler *Handler, opts RouterOptions) *gin.Engine {
	r := gin.Default()
	r.Use(opts.Metrics.Middleware())

	rateLimiter := mw.RateLimiter(opts.RateLimit, opts.Burst)

	cacheStore := cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	caching := mw.Cache(cacheStore, opts.CacheTTL)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/trigger-report", handler.TriggerReport)
		api.POST("/trigger-report", handler.TriggerReport)
		api.POST("/get-report", handler.PostGetReport)
		api.GET("/reports/:report_id", handler.GetReport)

		api.GET("/sites/:site_id/uptime", caching, handler.GetSiteUptime)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
