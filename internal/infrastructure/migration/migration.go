package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/harbinger-games/harbinger/internal/shared/logger"
)

const (
	StrategyAuto  = "auto"
	StrategyGoose = "goose"
)

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks the strategy by name. "goose" runs the SQL scripts for driver;
// "auto" (the default) runs gorm AutoMigrate.
func NewManager(name, driver string) (*Manager, error) {
	var strategy Strategy
	switch name {
	case StrategyGoose:
		s, err := NewGooseStrategy(driver)
		if err != nil {
			return nil, err
		}
		strategy = s
	case StrategyAuto, "":
		strategy = NewGormAutoMigrateStrategy()
	default:
		return nil, fmt.Errorf("unknown migration strategy %q", name)
	}
	return NewManagerWithStrategy(strategy), nil
}

func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.NewLogger().With("component", "migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db); err != nil {
		m.logger.Errorw("migration failed",
			"strategy", m.strategy.GetName(),
			"error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}
