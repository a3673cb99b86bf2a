package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	mmApp "github.com/harbinger-games/harbinger/internal/application/matchmaking"
	"github.com/harbinger-games/harbinger/internal/infrastructure/config"
	"github.com/harbinger-games/harbinger/internal/infrastructure/database"
	"github.com/harbinger-games/harbinger/internal/infrastructure/pubsub"
	"github.com/harbinger-games/harbinger/internal/infrastructure/repository"
	"github.com/harbinger-games/harbinger/internal/infrastructure/scheduler"
	"github.com/harbinger-games/harbinger/internal/shared/db"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
)

// The worker runs the matchmaking maintenance jobs (orphan repair and bucket sweep)
// for deployments that start the API with --disable-jobs.
func main() {
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger, false); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger()
	log.Infow("starting matchmaking worker", "environment", env)

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer database.Close()

	// Formed matches still need announcing so SSE clients on API instances hear about them.
	var publisher mmApp.MatchEventPublisher = mmApp.NoopPublisher()
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("failed to connect to redis", "error", err)
		}
		log.Infow("redis connection established", "address", cfg.Redis.GetAddr())
		publisher = pubsub.NewRedisMatchEventBus(redisClient, log.Named("match-event-bus"))
	}

	gdb := database.Get()
	tickets := repository.NewQueueTicketRepository(gdb)
	matches := repository.NewMatchRepository(gdb)
	txManager := db.NewTransactionManager(gdb, cfg.Matchmaking.UseTransactions)

	engine := mmApp.NewFormationEngine(tickets, matches, txManager, publisher, log.Named("formation"))
	repair := mmApp.NewRepairOrphansUseCase(tickets, cfg.Matchmaking.OrphanGrace(), log.Named("orphan-repair"))
	sweep := mmApp.NewSweepBucketsUseCase(tickets, engine, log.Named("bucket-sweep"))

	manager, err := scheduler.NewSchedulerManager(log.Named("scheduler"))
	if err != nil {
		logger.Fatal("failed to create scheduler", "error", err)
	}
	if err := manager.RegisterOrphanRepairJob(repair, cfg.Matchmaking.RepairInterval()); err != nil {
		logger.Fatal("failed to register orphan repair job", "error", err)
	}
	if err := manager.RegisterBucketSweepJob(sweep, cfg.Matchmaking.SweepInterval()); err != nil {
		logger.Fatal("failed to register bucket sweep job", "error", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	manager.Start()
	log.Infow("matchmaking worker started",
		"repair_interval", cfg.Matchmaking.RepairInterval(),
		"sweep_interval", cfg.Matchmaking.SweepInterval(),
	)

	sig := <-sigChan
	log.Infow("received signal, shutting down", "signal", sig.String())

	if err := manager.Stop(); err != nil {
		log.Errorw("failed to stop scheduler", "error", err)
	}
	log.Infow("matchmaking worker stopped")
}
