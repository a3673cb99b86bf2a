package routes

import (
	"github.com/gin-gonic/gin"

	mmHandlers "github.com/harbinger-games/harbinger/internal/interfaces/http/handlers/matchmaking"
	"github.com/harbinger-games/harbinger/internal/interfaces/http/middleware"
)

type MatchmakingRouteConfig struct {
	Handler          *mmHandlers.Handler
	EventsHandler    *mmHandlers.EventsHandler
	AuthMiddleware   *middleware.AuthMiddleware
	EnqueueRateLimit *middleware.PlayerRateLimiter
}

func SetupMatchmakingRoutes(engine *gin.Engine, config *MatchmakingRouteConfig) {
	mm := engine.Group("/matchmaking")
	mm.Use(config.AuthMiddleware.RequireAuth())
	{
		enqueue := []gin.HandlerFunc{config.Handler.Enqueue}
		if config.EnqueueRateLimit != nil {
			enqueue = append([]gin.HandlerFunc{config.EnqueueRateLimit.Limit()}, enqueue...)
		}
		mm.POST("/enqueue", enqueue...)
		mm.POST("/cancel", config.Handler.Cancel)
		mm.GET("/status", config.Handler.GetStatus)
		mm.GET("/match/:matchId", config.Handler.GetMatch)

		if config.EventsHandler != nil {
			mm.GET("/events", config.EventsHandler.Stream)
		}
	}
}
