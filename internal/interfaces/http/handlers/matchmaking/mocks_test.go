package matchmaking

import (
	"context"

	mmApp "github.com/harbinger-games/harbinger/internal/application/matchmaking"
	"github.com/harbinger-games/harbinger/internal/application/matchmaking/dto"
)

type mockMatchmaker struct {
	EnqueueFunc   func(ctx context.Context, cmd mmApp.EnqueueCommand) (*mmApp.EnqueueResult, error)
	CancelFunc    func(ctx context.Context, playerID string) (bool, error)
	GetStatusFunc func(ctx context.Context, playerID string) (*dto.StatusDTO, error)
	GetMatchFunc  func(ctx context.Context, matchID string) (*dto.MatchDTO, error)

	enqueueCalls []mmApp.EnqueueCommand
}

func (m *mockMatchmaker) Enqueue(ctx context.Context, cmd mmApp.EnqueueCommand) (*mmApp.EnqueueResult, error) {
	m.enqueueCalls = append(m.enqueueCalls, cmd)
	return m.EnqueueFunc(ctx, cmd)
}

func (m *mockMatchmaker) Cancel(ctx context.Context, playerID string) (bool, error) {
	return m.CancelFunc(ctx, playerID)
}

func (m *mockMatchmaker) GetStatus(ctx context.Context, playerID string) (*dto.StatusDTO, error) {
	return m.GetStatusFunc(ctx, playerID)
}

func (m *mockMatchmaker) GetMatch(ctx context.Context, matchID string) (*dto.MatchDTO, error) {
	return m.GetMatchFunc(ctx, matchID)
}
