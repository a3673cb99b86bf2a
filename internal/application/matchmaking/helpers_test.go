package matchmaking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
	"github.com/harbinger-games/harbinger/internal/infrastructure/memstore"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func mustBucket(t *testing.T, mode, region string, size int) vo.Bucket {
	t.Helper()
	b, err := vo.NewBucket(mode, region, size)
	require.NoError(t, err)
	return b
}

// queueAt stores a queued ticket enqueued offset after baseTime.
func queueAt(t *testing.T, store *memstore.Store, playerID string, bucket vo.Bucket, offset time.Duration) *matchmaking.QueueTicket {
	t.Helper()
	ticket, err := matchmaking.NewQueueTicket(playerID, bucket, baseTime.Add(offset))
	require.NoError(t, err)
	require.NoError(t, store.Tickets().Create(context.Background(), ticket))
	return ticket
}

func newTestEngine(store *memstore.Store, publisher MatchEventPublisher) *FormationEngine {
	return NewFormationEngine(store.Tickets(), store.Matches(), store, publisher, logger.NewDiscard())
}

func latestTicket(t *testing.T, store *memstore.Store, playerID string) *matchmaking.QueueTicket {
	t.Helper()
	ticket, err := store.Tickets().FindLatest(context.Background(), playerID,
		vo.TicketStateQueued, vo.TicketStateMatched, vo.TicketStateCanceled)
	require.NoError(t, err)
	require.NotNil(t, ticket)
	return ticket
}
