package matchmaking

import (
	"context"
	"time"

	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
)

// TicketRepository stores queue tickets. State-changing methods are conditional on the
// current state and report how many tickets they actually moved, so concurrent callers
// can detect that they lost a race.
type TicketRepository interface {
	// Create inserts a queued ticket. Returns ErrActiveTicketExists when the player already
	// holds a queued ticket for the same mode and region.
	Create(ctx context.Context, ticket *QueueTicket) error
	GetBySID(ctx context.Context, sid string) (*QueueTicket, error)
	// FindActive returns the queued ticket for (player, mode, region), or nil.
	FindActive(ctx context.Context, playerID, mode, region string) (*QueueTicket, error)
	// FindLatest returns the most recently enqueued ticket of the player in one of states, or nil.
	FindLatest(ctx context.Context, playerID string, states ...vo.TicketState) (*QueueTicket, error)
	// ListQueued returns up to limit queued tickets of the bucket, oldest first.
	ListQueued(ctx context.Context, bucket vo.Bucket, limit int) ([]*QueueTicket, error)
	// CancelLatestQueued cancels the player's most recently enqueued queued ticket.
	CancelLatestQueued(ctx context.Context, playerID string, at time.Time) (bool, error)
	// MarkMatched moves the given tickets that are still queued to matched and returns the count moved.
	MarkMatched(ctx context.Context, ticketIDs []uint, matchID string, at time.Time) (int64, error)
	// ListOrphaned returns matched tickets older than matchedBefore whose match record does not exist.
	ListOrphaned(ctx context.Context, matchedBefore time.Time, limit int) ([]*QueueTicket, error)
	// Requeue moves a ticket matched to matchID back to queued. May return ErrActiveTicketExists.
	Requeue(ctx context.Context, ticketID uint, matchID string, at time.Time) (bool, error)
	// CancelOrphan moves a ticket matched to matchID to canceled.
	CancelOrphan(ctx context.Context, ticketID uint, matchID string, at time.Time) (bool, error)
	// ListReadyBuckets returns buckets holding at least partySize queued tickets.
	ListReadyBuckets(ctx context.Context, limit int) ([]vo.Bucket, error)
}

type MatchRepository interface {
	Create(ctx context.Context, match *Match) error
	GetByID(ctx context.Context, matchID string) (*Match, error)
	// MarkReported advances a matched match to reported. Returns false if it was not matched.
	MarkReported(ctx context.Context, matchID string, at time.Time) (bool, error)
}
