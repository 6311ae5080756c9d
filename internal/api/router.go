package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"busstation-backend/config"
	"busstation-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg config.ServerConfig, handler *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.Actor(cfg.ActorHeader), mw.RequestLogger(handler.log))

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	responses := cache.New(ttl, 2*ttl)
	caching := mw.Cache(responses, ttl)

	api := r.Group("/api")
	api.Use(mw.RateLimiter(cfg.RateLimitPerSec, cfg.RateLimitBurst), mw.FlushOnWrite(responses))
	{
		api.POST("/dispatch", handler.CreateDispatch)
		api.GET("/dispatch", caching, handler.ListDispatch)
		api.GET("/dispatch/:id", caching, handler.GetDispatch)
		api.POST("/dispatch/:id/passenger-drop", handler.PassengerDrop())
		api.POST("/dispatch/:id/permit", handler.IssuePermit())
		api.POST("/dispatch/:id/payment", handler.ProcessPayment())
		api.POST("/dispatch/:id/departure-order", handler.DepartureOrder())
		api.POST("/dispatch/:id/exit", handler.Exit())

		api.PATCH("/vehicles/:id", handler.UpdateVehicle)
		api.PATCH("/drivers/:id", handler.UpdateDriver)
		api.PATCH("/routes/:id", handler.UpdateRoute)
		api.PATCH("/operators/:id", handler.UpdateOperator)
		api.PATCH("/locations/:id", handler.UpdateLocation)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
