package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/harbinger-games/harbinger/internal/infrastructure/config"
	"github.com/harbinger-games/harbinger/internal/interfaces/http/middleware"
	"github.com/harbinger-games/harbinger/internal/interfaces/http/routes"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
)

// Router represents the HTTP router configuration
type Router struct {
	container *Container
	engine    *gin.Engine
	cfg       *config.Config
	log       logger.Interface
}

// NewRouter wires the container and returns a router ready for SetupRoutes.
// A non-nil redisClient replaces the connection described by cfg.Redis.
func NewRouter(db *gorm.DB, cfg *config.Config, log logger.Interface, redisClient *redis.Client, opts ...ContainerOption) (*Router, error) {
	if redisClient != nil {
		opts = append(opts, WithRedisClient(redisClient))
	}

	c, err := NewContainer(db, cfg, log, opts...)
	if err != nil {
		return nil, err
	}

	return &Router{
		container: c,
		engine:    c.engine,
		cfg:       cfg,
		log:       log,
	}, nil
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	c := r.container

	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.CustomLogger(r.log.Named("http")))
	r.engine.Use(middleware.Recovery(r.log.Named("http")))
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))
	r.engine.Use(middleware.SecurityHeaders())

	r.engine.GET("/health", c.hdlrs.healthHandler.Health)

	routes.SetupMatchmakingRoutes(r.engine, &routes.MatchmakingRouteConfig{
		Handler:          c.hdlrs.matchmakingHandler,
		EventsHandler:    c.hdlrs.eventsHandler,
		AuthMiddleware:   c.authMiddleware,
		EnqueueRateLimit: c.enqueueRateLimit,
	})

	routes.SetupProgressionRoutes(r.engine, &routes.ProgressionRouteConfig{
		ReportHandler:  c.hdlrs.reportHandler,
		AuthMiddleware: c.authMiddleware,
	})
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// StartBackground starts scheduled jobs and the match event subscription.
func (r *Router) StartBackground() {
	r.container.Start()
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}

// Shutdown stops background services and closes event streams.
func (r *Router) Shutdown() {
	r.container.Shutdown()
}
