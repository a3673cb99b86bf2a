package matchmaking

import (
	"context"

	"github.com/harbinger-games/harbinger/internal/application/matchmaking/dto"
	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
)

// MatchEventPublisher announces formed matches to interested listeners.
type MatchEventPublisher interface {
	PublishMatchFormed(ctx context.Context, event matchmaking.MatchFormedEvent) error
}

// Former runs one formation pass for a bucket.
type Former interface {
	Form(ctx context.Context, bucket vo.Bucket) FormResult
}

// Matchmaker is the façade consumed by the HTTP layer.
type Matchmaker interface {
	Enqueue(ctx context.Context, cmd EnqueueCommand) (*EnqueueResult, error)
	Cancel(ctx context.Context, playerID string) (bool, error)
	GetStatus(ctx context.Context, playerID string) (*dto.StatusDTO, error)
	GetMatch(ctx context.Context, matchID string) (*dto.MatchDTO, error)
}

type RepairOrphansExecutor interface {
	Execute(ctx context.Context) (*RepairResult, error)
}

type SweepBucketsExecutor interface {
	Execute(ctx context.Context) (*SweepResult, error)
}

type noopPublisher struct{}

// NoopPublisher drops every event.
func NoopPublisher() MatchEventPublisher {
	return noopPublisher{}
}

func (noopPublisher) PublishMatchFormed(context.Context, matchmaking.MatchFormedEvent) error {
	return nil
}
