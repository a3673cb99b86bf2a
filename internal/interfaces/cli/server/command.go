package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/harbinger-games/harbinger/internal/infrastructure/config"
	"github.com/harbinger-games/harbinger/internal/infrastructure/database"
	"github.com/harbinger-games/harbinger/internal/infrastructure/migration"
	httpRouter "github.com/harbinger-games/harbinger/internal/interfaces/http"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
)

const shutdownTimeout = 30 * time.Second

var (
	env                string
	autoMigrate        bool
	migrationStrategy  string
	skipMigrationCheck bool
	disableJobs        bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the Harbinger matchmaking HTTP server and its background jobs.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup")
	cmd.Flags().StringVar(&migrationStrategy, "migration-strategy", migration.StrategyGoose, "Migration strategy used with --auto-migrate (goose, auto)")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip migration status check on startup")
	cmd.Flags().BoolVar(&disableJobs, "disable-jobs", false, "Do not run orphan repair and bucket sweep in this process")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	ginMode := mapEnvToGinMode(env)

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, ginMode == gin.DebugMode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	log.Infow("starting server",
		"environment", env,
		"auto_migrate", autoMigrate,
		"use_transactions", cfg.Matchmaking.UseTransactions,
		"redis_enabled", cfg.Redis.Enabled)

	gin.SetMode(ginMode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
		log.Debugw("route registered", "method", httpMethod, "path", absolutePath, "handler", handlerName)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if err := handleMigrations(cfg, log); err != nil {
		return fmt.Errorf("migration handling failed: %w", err)
	}

	var opts []httpRouter.ContainerOption
	if disableJobs {
		opts = append(opts, httpRouter.WithoutBackgroundJobs())
	}

	router, err := httpRouter.NewRouter(database.Get(), cfg, log, nil, opts...)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}
	router.SetupRoutes()
	router.StartBackground()

	// No WriteTimeout: the match event stream is long-lived.
	srv := &http.Server{
		Addr:              cfg.Server.GetAddr(),
		Handler:           router.GetEngine(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", ginMode)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Infow("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		router.Shutdown()
		return fmt.Errorf("failed to start server: %w", err)
	}

	router.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func handleMigrations(cfg *config.Config, log logger.Interface) error {
	if skipMigrationCheck {
		log.Infow("skipping migration check")
		return nil
	}

	if autoMigrate {
		if env == "production" {
			log.Warnw("auto-migration is enabled in production environment")
		}

		manager, err := migration.NewManager(migrationStrategy, cfg.Database.Driver)
		if err != nil {
			return err
		}
		return manager.Migrate(database.Get())
	}

	strategy, err := migration.NewGooseStrategy(cfg.Database.Driver)
	if err != nil {
		return err
	}
	version, err := strategy.GetVersion(database.Get())
	if err != nil {
		log.Warnw("failed to check migration status", "error", err)
		return nil
	}
	log.Infow("current migration version", "version", version)
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return gin.ReleaseMode
	case "test", "testing":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
