package http

import (
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"prabhas.dev/medication-box-service/pkg/config"
	"prabhas.dev/medication-box-service/pkg/medbox"
)

type RestfulServer struct {
	Server           *gin.Engine
	Box              *medbox.MedBox
	Cfg              *config.Config
	RateLimiterStore *medbox.RateLimiterStore
	ResponseCache    *cache.Cache
}

func (rs *RestfulServer) GetLimiter(clientKey string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(clientKey)
	}
}

func (rs *RestfulServer) CheckClientLimiter(clientKey string) bool {
	limiter := rs.GetLimiter(clientKey)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (rs *RestfulServer) Setup() {
	rs.Server.GET("/healthz", rs.HealthCheck)

	api := rs.Server.Group("/api")

	reads := api.Group("")
	if rs.ResponseCache != nil && rs.Cfg != nil && rs.Cfg.CacheTTL > 0 {
		reads.Use(Cache(rs.ResponseCache, rs.Cfg.CacheTTL))
	}
	{
		reads.GET("/status", rs.GetStatus)
		reads.GET("/compartments", rs.GetCompartments)
		reads.GET("/compartment/:id/schedule", rs.GetSchedule)
		reads.GET("/summary", rs.GetSummary)
	}

	api.GET("/stream", rs.StreamEvents)

	// device-facing writes, rate limited per client
	api.POST("/status", rs.PostStatus)
	api.POST("/compartment/:id", rs.UpdateCompartment)

	// caregiver writes
	api.PUT("/compartment/:id/schedule", rs.SaveSchedule)
	api.POST("/admin/reset", rs.AdminReset)
	api.POST("/notifications/subscribe", rs.SubscribePush)
}
