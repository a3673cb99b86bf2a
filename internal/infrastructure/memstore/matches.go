package memstore

import (
	"context"
	"fmt"
	"time"

	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	"github.com/harbinger-games/harbinger/internal/domain/progression"
	"github.com/harbinger-games/harbinger/internal/infrastructure/persistence/mappers"
	"github.com/harbinger-games/harbinger/internal/infrastructure/persistence/models"
)

func (s *Store) Matches() *MatchRepository {
	return &MatchRepository{s: s}
}

type MatchRepository struct {
	s *Store
}

var _ matchmaking.MatchRepository = (*MatchRepository)(nil)

func (r *MatchRepository) Create(ctx context.Context, m *matchmaking.Match) error {
	r.s.hooksMu.Lock()
	hook := r.s.onBeforeCreateMatch
	r.s.hooksMu.Unlock()
	if hook != nil {
		if err := hook(ctx); err != nil {
			return err
		}
	}

	unlock, err := r.s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := r.s.matches[m.ID()]; exists {
		return fmt.Errorf("match %s already exists", m.ID())
	}
	r.s.matches[m.ID()] = *r.s.matchMapper.ToModel(m)
	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (*matchmaking.Match, error) {
	unlock, err := r.s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	row, ok := r.s.matches[matchID]
	if !ok {
		return nil, matchmaking.ErrMatchNotFound
	}
	return r.s.matchMapper.ToDomain(&row)
}

func (r *MatchRepository) MarkReported(ctx context.Context, matchID string, at time.Time) (bool, error) {
	unlock, err := r.s.lock(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	row, ok := r.s.matches[matchID]
	if !ok {
		return false, nil
	}
	m, err := r.s.matchMapper.ToDomain(&row)
	if err != nil {
		return false, err
	}
	if err := m.MarkReported(at); err != nil {
		return false, nil
	}
	r.s.matches[matchID] = *r.s.matchMapper.ToModel(m)
	return true, nil
}

// PutRawMatch stores a match row as-is, bypassing domain validation. Tests use it to
// plant corrupted records.
func (s *Store) PutRawMatch(row models.MatchModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[row.ID] = row
}

func (s *Store) Progressions() *ProgressionRepository {
	return &ProgressionRepository{s: s}
}

type ProgressionRepository struct {
	s *Store
}

var _ progression.Repository = (*ProgressionRepository)(nil)

func (r *ProgressionRepository) AddXP(ctx context.Context, playerID string, delta, xpPerLevel int64) (*progression.PlayerProgression, error) {
	unlock, err := r.s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	row := r.s.progressions[playerID]
	row.PlayerID = playerID
	row.XP += delta
	row.Level = progression.LevelForXP(row.XP, xpPerLevel)
	row.UpdatedAt = time.Now().UnixMilli()
	r.s.progressions[playerID] = row

	return mappers.ProgressionToDomain(&row)
}

func (r *ProgressionRepository) GetByPlayerID(ctx context.Context, playerID string) (*progression.PlayerProgression, error) {
	unlock, err := r.s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	row, ok := r.s.progressions[playerID]
	if !ok {
		return nil, nil
	}
	return mappers.ProgressionToDomain(&row)
}
