package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"warehouse-sim-backend/config"
	"warehouse-sim-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router. metricsHandler may be nil.
func NewRouter(handler *Handler, cfg config.ServerConfig, metricsHandler http.Handler) *gin.Engine {
	r := gin.Default()
	if cfg.RequestIPHeader != "" {
		r.RemoteIPHeaders = []string{cfg.RequestIPHeader}
	}

	// Initialize middleware
	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 10*time.Minute)
	caching := mw.Cache(cacheStore, ttl)

	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/storage", caching, handler.GetStorage)
		api.GET("/storage/cells", caching, handler.GetCells)
		api.GET("/equipment", caching, handler.GetEquipment)
		api.GET("/stations", caching, handler.GetStations)
		api.GET("/items", caching, handler.GetItems)

		api.POST("/batches", handler.SubmitBatch)
		api.GET("/batches/:id", handler.GetBatch)

		api.GET("/events", handler.GetEvents)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
