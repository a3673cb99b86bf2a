package http

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harbinger-games/harbinger/internal/infrastructure/auth"
	"github.com/harbinger-games/harbinger/internal/infrastructure/config"
	"github.com/harbinger-games/harbinger/internal/infrastructure/pubsub"
	"github.com/harbinger-games/harbinger/internal/infrastructure/scheduler"
)

const redisPingTimeout = 5 * time.Second

// initInfrastructure connects Redis when enabled, then builds repositories and auth.
func (c *Container) initInfrastructure() error {
	if c.redis == nil && c.cfg.Redis.Enabled {
		client, err := initRedis(c.cfg)
		if err != nil {
			return err
		}
		c.redis = client
		c.ownsRedisConn = true
		c.log.Infow("Redis connection established successfully", "addr", c.cfg.Redis.GetAddr())
	}

	c.initRepositories()

	jwtCfg := c.cfg.Auth.JWT
	c.jwtSvc = auth.NewJWTService(jwtCfg.Secret, jwtCfg.Issuer, jwtCfg.AccessExpMinutes)

	return nil
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.GetAddr(), err)
	}
	return client, nil
}

// initMatchEvents builds the local hub and, with Redis, the cross-instance bus.
// Without Redis the hub itself is the publisher.
func (c *Container) initMatchEvents() {
	c.hub = pubsub.NewHub(c.log.Named("match-events"))

	if c.redis != nil {
		c.matchEventBus = pubsub.NewRedisMatchEventBus(c.redis, c.log.Named("match-event-bus"),
			pubsub.WithLocalDelivery(c.hub.Deliver))
	}
}

func (c *Container) initScheduler() error {
	if c.jobsDisabled {
		c.log.Infow("background jobs disabled on this instance")
		return nil
	}
	mm := c.cfg.Matchmaking

	manager, err := scheduler.NewSchedulerManager(c.log.Named("scheduler"))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	if interval := mm.RepairInterval(); interval > 0 {
		if err := manager.RegisterOrphanRepairJob(c.ucs.repairOrphansUC, interval); err != nil {
			return fmt.Errorf("failed to register orphan repair job: %w", err)
		}
	}
	if interval := mm.SweepInterval(); interval > 0 {
		if err := manager.RegisterBucketSweepJob(c.ucs.sweepBucketsUC, interval); err != nil {
			return fmt.Errorf("failed to register bucket sweep job: %w", err)
		}
	}

	c.schedulerManager = manager
	return nil
}
