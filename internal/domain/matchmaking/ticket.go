package matchmaking

import (
	"fmt"
	"time"

	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
	"github.com/harbinger-games/harbinger/internal/shared/id"
)

// QueueTicket is one player's request to be matched in a bucket.
// Tickets are never deleted; they only move through their state machine.
type QueueTicket struct {
	id         uint
	sid        string
	playerID   string
	bucket     vo.Bucket
	state      vo.TicketState
	matchID    string
	enqueuedAt time.Time
	matchedAt  *time.Time
	updatedAt  time.Time
}

// NewQueueTicket creates a queued ticket with a fresh "qt_" id.
func NewQueueTicket(playerID string, bucket vo.Bucket, now time.Time) (*QueueTicket, error) {
	if playerID == "" {
		return nil, fmt.Errorf("player ID is required")
	}
	if bucket.IsZero() {
		return nil, fmt.Errorf("bucket is required")
	}

	sid, err := id.NewQueueTicketID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ticket ID: %w", err)
	}

	return &QueueTicket{
		sid:        sid,
		playerID:   playerID,
		bucket:     bucket,
		state:      vo.TicketStateQueued,
		enqueuedAt: now,
		updatedAt:  now,
	}, nil
}

// ReconstructQueueTicket rebuilds a ticket from persistence.
func ReconstructQueueTicket(
	seq uint,
	sid string,
	playerID string,
	bucket vo.Bucket,
	state vo.TicketState,
	matchID string,
	enqueuedAt time.Time,
	matchedAt *time.Time,
	updatedAt time.Time,
) (*QueueTicket, error) {
	if seq == 0 {
		return nil, fmt.Errorf("ticket ID cannot be zero")
	}
	if err := id.ValidatePrefix(sid, id.PrefixQueueTicket); err != nil {
		return nil, fmt.Errorf("invalid ticket SID: %w", err)
	}
	if playerID == "" {
		return nil, fmt.Errorf("player ID is required")
	}
	if !state.IsValid() {
		return nil, fmt.Errorf("invalid ticket state: %s", state)
	}
	if state.IsMatched() && matchID == "" {
		return nil, fmt.Errorf("matched ticket %s has no match ID", sid)
	}

	return &QueueTicket{
		id:         seq,
		sid:        sid,
		playerID:   playerID,
		bucket:     bucket,
		state:      state,
		matchID:    matchID,
		enqueuedAt: enqueuedAt,
		matchedAt:  matchedAt,
		updatedAt:  updatedAt,
	}, nil
}

// ID is the storage sequence number, assigned on insert. It breaks enqueue-time ties.
func (t *QueueTicket) ID() uint {
	return t.id
}

// SID is the public ticket id.
func (t *QueueTicket) SID() string {
	return t.sid
}

func (t *QueueTicket) PlayerID() string {
	return t.playerID
}

func (t *QueueTicket) Bucket() vo.Bucket {
	return t.bucket
}

func (t *QueueTicket) Mode() string {
	return t.bucket.Mode()
}

func (t *QueueTicket) Region() string {
	return t.bucket.Region()
}

func (t *QueueTicket) PartySize() int {
	return t.bucket.PartySize()
}

func (t *QueueTicket) State() vo.TicketState {
	return t.state
}

func (t *QueueTicket) MatchID() string {
	return t.matchID
}

func (t *QueueTicket) EnqueuedAt() time.Time {
	return t.enqueuedAt
}

func (t *QueueTicket) MatchedAt() *time.Time {
	return t.matchedAt
}

func (t *QueueTicket) UpdatedAt() time.Time {
	return t.updatedAt
}

func (t *QueueTicket) IsQueued() bool {
	return t.state.IsQueued()
}

// ActiveKey returns the uniqueness key while queued and "" otherwise.
func (t *QueueTicket) ActiveKey() string {
	if !t.state.IsQueued() {
		return ""
	}
	return vo.ActiveKey(t.playerID, t.bucket.Mode(), t.bucket.Region())
}

// SetID is called by repositories once storage assigned the sequence number.
func (t *QueueTicket) SetID(id uint) {
	t.id = id
}

func (t *QueueTicket) MarkMatched(matchID string, at time.Time) error {
	if matchID == "" {
		return fmt.Errorf("match ID is required")
	}
	if !t.state.CanTransitionTo(vo.TicketStateMatched) {
		return fmt.Errorf("%w: ticket %s is %s", ErrInvalidTransition, t.sid, t.state)
	}
	t.state = vo.TicketStateMatched
	t.matchID = matchID
	t.matchedAt = &at
	t.updatedAt = at
	return nil
}

func (t *QueueTicket) Cancel(at time.Time) error {
	if !t.state.CanTransitionTo(vo.TicketStateCanceled) {
		return fmt.Errorf("%w: ticket %s is %s", ErrInvalidTransition, t.sid, t.state)
	}
	t.state = vo.TicketStateCanceled
	t.updatedAt = at
	return nil
}

// Requeue returns an orphaned matched ticket to the queue. The ticket keeps its
// original enqueue time so it does not lose its place.
func (t *QueueTicket) Requeue(matchID string, at time.Time) error {
	if err := t.checkOrphanOf(matchID, vo.TicketStateQueued); err != nil {
		return err
	}
	t.state = vo.TicketStateQueued
	t.matchID = ""
	t.matchedAt = nil
	t.updatedAt = at
	return nil
}

// CancelOrphan retires an orphaned matched ticket whose player already queued again.
func (t *QueueTicket) CancelOrphan(matchID string, at time.Time) error {
	if err := t.checkOrphanOf(matchID, vo.TicketStateCanceled); err != nil {
		return err
	}
	t.state = vo.TicketStateCanceled
	t.matchID = ""
	t.matchedAt = nil
	t.updatedAt = at
	return nil
}

func (t *QueueTicket) checkOrphanOf(matchID string, next vo.TicketState) error {
	if !t.state.CanRepairTo(next) || t.matchID != matchID {
		return fmt.Errorf("%w: ticket %s is %s (match %q)", ErrInvalidTransition, t.sid, t.state, t.matchID)
	}
	return nil
}
