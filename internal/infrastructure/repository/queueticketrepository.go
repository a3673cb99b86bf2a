package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
	"github.com/harbinger-games/harbinger/internal/infrastructure/persistence/mappers"
	"github.com/harbinger-games/harbinger/internal/infrastructure/persistence/models"
	"github.com/harbinger-games/harbinger/internal/shared/constants"
	"github.com/harbinger-games/harbinger/internal/shared/db"
	apperrors "github.com/harbinger-games/harbinger/internal/shared/errors"
	"github.com/harbinger-games/harbinger/internal/shared/mapper"
)

type QueueTicketRepository struct {
	db     *gorm.DB
	mapper mappers.QueueTicketMapper
}

func NewQueueTicketRepository(db *gorm.DB) *QueueTicketRepository {
	return &QueueTicketRepository{
		db:     db,
		mapper: mappers.NewQueueTicketMapper(),
	}
}

func (r *QueueTicketRepository) Create(ctx context.Context, t *matchmaking.QueueTicket) error {
	model := r.mapper.ToModel(t)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		if isActiveKeyViolation(err) {
			return matchmaking.ErrActiveTicketExists
		}
		return fmt.Errorf("failed to create queue ticket: %w", err)
	}

	t.SetID(model.ID)
	return nil
}

func (r *QueueTicketRepository) GetBySID(ctx context.Context, sid string) (*matchmaking.QueueTicket, error) {
	var model models.QueueTicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("sid = ?", sid).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, matchmaking.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get queue ticket: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

func (r *QueueTicketRepository) FindActive(ctx context.Context, playerID, mode, region string) (*matchmaking.QueueTicket, error) {
	return r.first(ctx, "failed to find active ticket", func(q *gorm.DB) *gorm.DB {
		return q.Where("active_key = ?", vo.ActiveKey(playerID, mode, region))
	})
}

func (r *QueueTicketRepository) FindLatest(ctx context.Context, playerID string, states ...vo.TicketState) (*matchmaking.QueueTicket, error) {
	return r.first(ctx, "failed to find latest ticket", func(q *gorm.DB) *gorm.DB {
		q = q.Where("player_id = ?", playerID)
		if len(states) > 0 {
			q = q.Where("state IN ?", stateStrings(states))
		}
		return q.Order("enqueued_at DESC").Order("id DESC")
	})
}

func (r *QueueTicketRepository) ListQueued(ctx context.Context, bucket vo.Bucket, limit int) ([]*matchmaking.QueueTicket, error) {
	var list []models.QueueTicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	err := tx.Scopes(inBucket(bucket), inState(vo.TicketStateQueued)).
		Order("enqueued_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list queued tickets: %w", err)
	}

	return r.mapper.ToDomainList(list)
}

// CancelLatestQueued picks the newest queued ticket and cancels it only if it is still queued.
// A concurrent formation pass can claim the picked ticket in between; the loop then looks again
// and ends only when a ticket is canceled or none is left queued. Every lost race takes a ticket
// out of the queued state, so the loop runs at most once per queued ticket of the player.
func (r *QueueTicketRepository) CancelLatestQueued(ctx context.Context, playerID string, at time.Time) (bool, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	for {
		var model models.QueueTicketModel
		err := tx.Select("id").
			Scopes(inState(vo.TicketStateQueued)).
			Where("player_id = ?", playerID).
			Order("enqueued_at DESC").
			Order("id DESC").
			First(&model).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to find queued ticket: %w", err)
		}

		result := tx.Model(&models.QueueTicketModel{}).
			Where("id = ?", model.ID).
			Scopes(inState(vo.TicketStateQueued)).
			Updates(map[string]interface{}{
				"state":      vo.TicketStateCanceled.String(),
				"active_key": nil,
				"updated_at": at.UnixMilli(),
			})
		if result.Error != nil {
			return false, fmt.Errorf("failed to cancel queue ticket: %w", result.Error)
		}
		if result.RowsAffected == 1 {
			return true, nil
		}
	}
}

func (r *QueueTicketRepository) MarkMatched(ctx context.Context, ticketIDs []uint, matchID string, at time.Time) (int64, error) {
	if len(ticketIDs) == 0 {
		return 0, nil
	}
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.QueueTicketModel{}).
		Where("id IN ?", ticketIDs).
		Scopes(inState(vo.TicketStateQueued)).
		Updates(map[string]interface{}{
			"state":      vo.TicketStateMatched.String(),
			"match_id":   matchID,
			"matched_at": at.UnixMilli(),
			"active_key": nil,
			"updated_at": at.UnixMilli(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark tickets matched: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (r *QueueTicketRepository) ListOrphaned(ctx context.Context, matchedBefore time.Time, limit int) ([]*matchmaking.QueueTicket, error) {
	var list []models.QueueTicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	noMatch := fmt.Sprintf("NOT EXISTS (SELECT 1 FROM %s m WHERE m.id = %s.match_id)",
		constants.TableMatches, constants.TableQueueTickets)

	err := tx.Scopes(inState(vo.TicketStateMatched)).
		Where("matched_at <= ?", matchedBefore.UnixMilli()).
		Where(noMatch).
		Order("matched_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orphaned tickets: %w", err)
	}

	return r.mapper.ToDomainList(list)
}

func (r *QueueTicketRepository) Requeue(ctx context.Context, ticketID uint, matchID string, at time.Time) (bool, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var model models.QueueTicketModel
	if err := tx.First(&model, ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, matchmaking.ErrTicketNotFound
		}
		return false, fmt.Errorf("failed to load ticket for requeue: %w", err)
	}

	result := tx.Model(&models.QueueTicketModel{}).
		Where("id = ? AND match_id = ?", ticketID, matchID).
		Scopes(inState(vo.TicketStateMatched)).
		Updates(map[string]interface{}{
			"state":      vo.TicketStateQueued.String(),
			"match_id":   nil,
			"matched_at": nil,
			"active_key": vo.ActiveKey(model.PlayerID, model.Mode, model.Region),
			"updated_at": at.UnixMilli(),
		})
	if result.Error != nil {
		if isActiveKeyViolation(result.Error) {
			return false, matchmaking.ErrActiveTicketExists
		}
		return false, fmt.Errorf("failed to requeue ticket: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *QueueTicketRepository) CancelOrphan(ctx context.Context, ticketID uint, matchID string, at time.Time) (bool, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.QueueTicketModel{}).
		Where("id = ? AND match_id = ?", ticketID, matchID).
		Scopes(inState(vo.TicketStateMatched)).
		Updates(map[string]interface{}{
			"state":      vo.TicketStateCanceled.String(),
			"match_id":   nil,
			"matched_at": nil,
			"updated_at": at.UnixMilli(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to cancel orphaned ticket: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

type bucketRow struct {
	Mode      string
	Region    string
	PartySize int
}

func (r *QueueTicketRepository) ListReadyBuckets(ctx context.Context, limit int) ([]vo.Bucket, error) {
	var rows []bucketRow
	tx := db.GetTxFromContext(ctx, r.db)

	err := tx.Model(&models.QueueTicketModel{}).
		Select("mode, region, party_size").
		Scopes(inState(vo.TicketStateQueued)).
		Group("mode, region, party_size").
		Having("COUNT(*) >= party_size").
		Order("MIN(enqueued_at) ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ready buckets: %w", err)
	}

	buckets := make([]vo.Bucket, 0, len(rows))
	for _, row := range rows {
		bucket, err := vo.NewBucket(row.Mode, row.Region, row.PartySize)
		if err != nil {
			return nil, fmt.Errorf("invalid bucket in queue: %w", err)
		}
		buckets = append(buckets, bucket)
	}
	return buckets, nil
}

func (r *QueueTicketRepository) first(ctx context.Context, errMsg string, scope func(*gorm.DB) *gorm.DB) (*matchmaking.QueueTicket, error) {
	var model models.QueueTicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := scope(tx).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}

	return r.mapper.ToDomain(&model)
}

func inBucket(bucket vo.Bucket) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("mode = ? AND region = ? AND party_size = ?", bucket.Mode(), bucket.Region(), bucket.PartySize())
	}
}

func inState(state vo.TicketState) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("state = ?", state.String())
	}
}

func stateStrings(states []vo.TicketState) []string {
	return mapper.MapSlice(states, vo.TicketState.String)
}

func isActiveKeyViolation(err error) bool {
	return apperrors.IsDuplicateError(err) && strings.Contains(err.Error(), "active_key")
}
