package migration

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/harbinger-games/harbinger/internal/infrastructure/persistence/models"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
)

//go:embed scripts
var scripts embed.FS

// goose keeps its dialect and filesystem in package state.
var gooseMu sync.Mutex

// Strategy defines the interface for different migration strategies
type Strategy interface {
	Migrate(db *gorm.DB) error
	GetName() string
}

// GormAutoMigrateStrategy builds the schema from the persistence models.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy() Strategy {
	return &GormAutoMigrateStrategy{
		logger: logger.NewLogger().With("component", "migration.gorm"),
	}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB) error {
	all := models.All()
	s.logger.Infow("running gorm auto migrate", "models_count", len(all))
	if err := db.AutoMigrate(all...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}

// GooseStrategy applies the versioned SQL scripts embedded under scripts/<driver>.
type GooseStrategy struct {
	dialect goose.Dialect
	dir     string
	logger  logger.Interface
}

// NewGooseStrategy returns the goose strategy for a database driver (mysql or sqlite).
func NewGooseStrategy(driver string) (*GooseStrategy, error) {
	var dialect goose.Dialect
	switch driver {
	case "mysql":
		dialect = goose.DialectMySQL
	case "sqlite":
		dialect = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("no migration scripts for driver %q", driver)
	}

	return &GooseStrategy{
		dialect: dialect,
		dir:     "scripts/" + driver,
		logger:  logger.NewLogger().With("component", "migration.goose"),
	}, nil
}

func (s *GooseStrategy) GetName() string {
	return "goose"
}

func (s *GooseStrategy) Migrate(db *gorm.DB) error {
	return s.run(db, func(sqlDB *sql.DB) error {
		currentVersion, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get current version: %w", err)
		}
		s.logger.Infow("current migration status", "version", currentVersion)

		if err := goose.Up(sqlDB, s.dir); err != nil {
			s.logger.Errorw("migration failed", "error", err)
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		finalVersion, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get final version: %w", err)
		}
		s.logger.Infow("migration completed successfully",
			"from_version", currentVersion,
			"to_version", finalVersion)
		return nil
	})
}

func (s *GooseStrategy) MigrateDown(db *gorm.DB, steps int) error {
	s.logger.Infow("starting down migration", "steps", steps)
	return s.run(db, func(sqlDB *sql.DB) error {
		for i := 0; i < steps; i++ {
			if err := goose.Down(sqlDB, s.dir); err != nil {
				s.logger.Errorw("down migration failed", "error", err)
				return fmt.Errorf("failed to run down migration: %w", err)
			}
		}
		return nil
	})
}

func (s *GooseStrategy) GetVersion(db *gorm.DB) (int64, error) {
	var version int64
	err := s.run(db, func(sqlDB *sql.DB) error {
		v, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		version = v
		return nil
	})
	return version, err
}

func (s *GooseStrategy) Status(db *gorm.DB) error {
	return s.run(db, func(sqlDB *sql.DB) error {
		if err := goose.Status(sqlDB, s.dir); err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}
		return nil
	})
}

func (s *GooseStrategy) run(db *gorm.DB, fn func(sqlDB *sql.DB) error) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(scripts)
	goose.SetLogger(gooseLogger{s.logger})
	if err := goose.SetDialect(string(s.dialect)); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return fn(sqlDB)
}

// gooseLogger adapts logger.Interface to goose's printf logger.
type gooseLogger struct {
	logger logger.Interface
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Infow(fmt.Sprintf(format, v...))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Errorw(fmt.Sprintf(format, v...))
}
