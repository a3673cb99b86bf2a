package routes

import (
	"github.com/gin-gonic/gin"

	progressionHandlers "github.com/harbinger-games/harbinger/internal/interfaces/http/handlers/progression"
	"github.com/harbinger-games/harbinger/internal/interfaces/http/middleware"
)

type ProgressionRouteConfig struct {
	ReportHandler  *progressionHandlers.ReportHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupProgressionRoutes(engine *gin.Engine, config *ProgressionRouteConfig) {
	match := engine.Group("/match")
	match.Use(config.AuthMiddleware.RequireAuth())
	{
		match.POST("/report", config.ReportHandler.ReportMatch)
	}
}
