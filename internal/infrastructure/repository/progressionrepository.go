package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harbinger-games/harbinger/internal/domain/progression"
	"github.com/harbinger-games/harbinger/internal/infrastructure/persistence/mappers"
	"github.com/harbinger-games/harbinger/internal/infrastructure/persistence/models"
	"github.com/harbinger-games/harbinger/internal/shared/biztime"
	"github.com/harbinger-games/harbinger/internal/shared/db"
)

type ProgressionRepository struct {
	db *gorm.DB
}

func NewProgressionRepository(db *gorm.DB) *ProgressionRepository {
	return &ProgressionRepository{db: db}
}

// AddXP increments xp with an upsert, then writes the derived level only if xp has not
// moved again in between, so a slower concurrent award never stores a stale level.
func (r *ProgressionRepository) AddXP(ctx context.Context, playerID string, delta, xpPerLevel int64) (*progression.PlayerProgression, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	now := biztime.NowUTC().UnixMilli()

	seed := &models.PlayerProgressionModel{
		PlayerID:  playerID,
		XP:        delta,
		Level:     progression.LevelForXP(delta, xpPerLevel),
		UpdatedAt: now,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"xp":         gorm.Expr("xp + ?", delta),
			"updated_at": now,
		}),
	}).Create(seed).Error
	if err != nil {
		return nil, fmt.Errorf("failed to add xp: %w", err)
	}

	var model models.PlayerProgressionModel
	if err := tx.Where("player_id = ?", playerID).First(&model).Error; err != nil {
		return nil, fmt.Errorf("failed to reload progression: %w", err)
	}

	level := progression.LevelForXP(model.XP, xpPerLevel)
	if level != model.Level {
		err := tx.Model(&models.PlayerProgressionModel{}).
			Where("player_id = ? AND xp = ?", playerID, model.XP).
			Update("level", level).Error
		if err != nil {
			return nil, fmt.Errorf("failed to update level: %w", err)
		}
		model.Level = level
	}

	return mappers.ProgressionToDomain(&model)
}

func (r *ProgressionRepository) GetByPlayerID(ctx context.Context, playerID string) (*progression.PlayerProgression, error) {
	var model models.PlayerProgressionModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("player_id = ?", playerID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get progression: %w", err)
	}

	return mappers.ProgressionToDomain(&model)
}
