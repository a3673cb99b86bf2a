package http

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/harbinger-games/harbinger/internal/infrastructure/auth"
	"github.com/harbinger-games/harbinger/internal/infrastructure/config"
	"github.com/harbinger-games/harbinger/internal/infrastructure/pubsub"
	"github.com/harbinger-games/harbinger/internal/infrastructure/scheduler"
	"github.com/harbinger-games/harbinger/internal/interfaces/http/middleware"
	"github.com/harbinger-games/harbinger/internal/shared/goroutine"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
)

// Container holds the infrastructure components, repositories, use cases, handlers
// and background services, and wires them together.
type Container struct {
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	ucs   *allUseCases
	hdlrs *allHandlers

	authMiddleware   *middleware.AuthMiddleware
	enqueueRateLimit *middleware.PlayerRateLimiter

	jwtSvc *auth.JWTService

	// Match events: the hub serves SSE streams on this instance; with Redis enabled
	// the bus relays events between instances and feeds the hub.
	hub               *pubsub.Hub
	matchEventBus     *pubsub.RedisMatchEventBus
	eventBusCancel    context.CancelFunc
	eventBusCancelMu  sync.Mutex
	schedulerManager  *scheduler.SchedulerManager
	ownsRedisConn     bool
	jobsDisabled      bool
	backgroundStarted bool
}

// ContainerOption customizes container construction.
type ContainerOption func(*Container)

// WithRedisClient uses an existing client instead of dialing cfg.Redis.
func WithRedisClient(client *redis.Client) ContainerOption {
	return func(c *Container) {
		c.redis = client
	}
}

// WithoutBackgroundJobs leaves orphan repair and bucket sweep to a separate worker.
func WithoutBackgroundJobs() ContainerOption {
	return func(c *Container) {
		c.jobsDisabled = true
	}
}

// NewContainer creates a Container with all dependencies wired together.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface, opts ...ContainerOption) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}
	for _, opt := range opts {
		opt(c)
	}

	// Section 1: Infrastructure - Redis, repositories, auth
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// Section 2: Match events - hub and cross-instance bus
	c.initMatchEvents()

	// Section 3: Use cases
	c.initUseCases()

	// Section 4: Background jobs
	if err := c.initScheduler(); err != nil {
		return nil, err
	}

	// Section 5: Handlers and middlewares
	c.initHandlers()

	return c, nil
}

// Start launches the scheduler and the cross-instance event subscription.
func (c *Container) Start() {
	if c.backgroundStarted {
		return
	}
	c.backgroundStarted = true

	if c.schedulerManager != nil {
		c.schedulerManager.Start()
	}

	if c.matchEventBus != nil {
		ctx, cancel := context.WithCancel(context.Background())
		c.eventBusCancelMu.Lock()
		c.eventBusCancel = cancel
		c.eventBusCancelMu.Unlock()

		goroutine.SafeGo(c.log, "match-event-subscriber", func() {
			if err := c.matchEventBus.SubscribeMatchFormed(ctx, c.hub.Deliver); err != nil && ctx.Err() == nil {
				c.log.Errorw("match event subscription stopped", "error", err)
			}
		})
	}
}

// Shutdown stops background work and closes open event streams.
func (c *Container) Shutdown() {
	if c.schedulerManager != nil {
		if err := c.schedulerManager.Stop(); err != nil {
			c.log.Errorw("failed to stop scheduler", "error", err)
		}
	}

	c.eventBusCancelMu.Lock()
	if c.eventBusCancel != nil {
		c.eventBusCancel()
		c.eventBusCancel = nil
	}
	c.eventBusCancelMu.Unlock()

	// Close SSE streams first so the HTTP server shutdown is not held open by them.
	if c.hub != nil {
		c.hub.Close()
	}

	if c.redis != nil && c.ownsRedisConn {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis client", "error", err)
		}
	}
}
