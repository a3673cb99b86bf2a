package usecases

import (
	"context"
	"time"

	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	"github.com/harbinger-games/harbinger/internal/domain/progression"
)

type mockMatchRepository struct {
	CreateFunc       func(ctx context.Context, m *matchmaking.Match) error
	GetByIDFunc      func(ctx context.Context, matchID string) (*matchmaking.Match, error)
	MarkReportedFunc func(ctx context.Context, matchID string, at time.Time) (bool, error)
}

func (m *mockMatchRepository) Create(ctx context.Context, match *matchmaking.Match) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, match)
	}
	return nil
}

func (m *mockMatchRepository) GetByID(ctx context.Context, matchID string) (*matchmaking.Match, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, matchID)
	}
	return nil, matchmaking.ErrMatchNotFound
}

func (m *mockMatchRepository) MarkReported(ctx context.Context, matchID string, at time.Time) (bool, error) {
	if m.MarkReportedFunc != nil {
		return m.MarkReportedFunc(ctx, matchID, at)
	}
	return true, nil
}

type mockProgressionRepository struct {
	AddXPFunc         func(ctx context.Context, playerID string, delta, xpPerLevel int64) (*progression.PlayerProgression, error)
	GetByPlayerIDFunc func(ctx context.Context, playerID string) (*progression.PlayerProgression, error)
}

func (m *mockProgressionRepository) AddXP(ctx context.Context, playerID string, delta, xpPerLevel int64) (*progression.PlayerProgression, error) {
	if m.AddXPFunc != nil {
		return m.AddXPFunc(ctx, playerID, delta, xpPerLevel)
	}
	return progression.ReconstructPlayerProgression(playerID, delta, progression.LevelForXP(delta, xpPerLevel), time.Now())
}

func (m *mockProgressionRepository) GetByPlayerID(ctx context.Context, playerID string) (*progression.PlayerProgression, error) {
	if m.GetByPlayerIDFunc != nil {
		return m.GetByPlayerIDFunc(ctx, playerID)
	}
	return nil, nil
}

type mockTransactor struct {
	RunInTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTransactor) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTransactionFunc != nil {
		return m.RunInTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}
