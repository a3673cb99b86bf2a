package http

import (
	"context"
	"fmt"

	"github.com/harbinger-games/harbinger/internal/infrastructure/ratelimit"
	"github.com/harbinger-games/harbinger/internal/interfaces/http/handlers"
	mmHandlers "github.com/harbinger-games/harbinger/internal/interfaces/http/handlers/matchmaking"
	progressionHandlers "github.com/harbinger-games/harbinger/internal/interfaces/http/handlers/progression"
	"github.com/harbinger-games/harbinger/internal/interfaces/http/middleware"
)

type allHandlers struct {
	healthHandler      *handlers.HealthHandler
	matchmakingHandler *mmHandlers.Handler
	eventsHandler      *mmHandlers.EventsHandler
	reportHandler      *progressionHandlers.ReportHandler
}

func (c *Container) initHandlers() {
	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, c.log.Named("auth"))

	if c.redis != nil {
		c.enqueueRateLimit = middleware.NewPlayerRateLimiter(
			ratelimit.NewRedisRateLimiter(c.redis, ""),
			"enqueue",
			c.cfg.Matchmaking.EnqueueRateLimit,
			c.log.Named("ratelimit"),
		)
	}

	c.hdlrs = &allHandlers{
		healthHandler:      handlers.NewHealthHandler(c.healthChecks(), c.log.Named("health")),
		matchmakingHandler: mmHandlers.NewHandler(c.ucs.matchmaker, c.log.Named("matchmaking-http")),
		eventsHandler:      mmHandlers.NewEventsHandler(c.hub, c.log.Named("match-events-http")),
		reportHandler:      progressionHandlers.NewReportHandler(c.ucs.reportMatchUC, c.log.Named("match-report-http")),
	}
}

func (c *Container) healthChecks() map[string]handlers.HealthCheck {
	checks := map[string]handlers.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := c.db.DB()
			if err != nil {
				return fmt.Errorf("failed to get sql.DB: %w", err)
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if c.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return c.redis.Ping(ctx).Err()
		}
	}
	return checks
}
