package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
	"github.com/harbinger-games/harbinger/internal/infrastructure/persistence/mappers"
	"github.com/harbinger-games/harbinger/internal/infrastructure/persistence/models"
	"github.com/harbinger-games/harbinger/internal/shared/db"
)

type MatchRepository struct {
	db     *gorm.DB
	mapper mappers.MatchMapper
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{
		db:     db,
		mapper: mappers.NewMatchMapper(),
	}
}

func (r *MatchRepository) Create(ctx context.Context, m *matchmaking.Match) error {
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(r.mapper.ToModel(m)).Error; err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (*matchmaking.Match, error) {
	var model models.MatchModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("id = ?", matchID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, matchmaking.ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

func (r *MatchRepository) MarkReported(ctx context.Context, matchID string, at time.Time) (bool, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.MatchModel{}).
		Where("id = ? AND state = ?", matchID, vo.MatchStateMatched.String()).
		Updates(map[string]interface{}{
			"state":       vo.MatchStateReported.String(),
			"reported_at": at.UnixMilli(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark match reported: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}
