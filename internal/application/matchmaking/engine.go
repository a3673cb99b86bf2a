package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
	"github.com/harbinger-games/harbinger/internal/shared/biztime"
	"github.com/harbinger-games/harbinger/internal/shared/db"
	"github.com/harbinger-games/harbinger/internal/shared/id"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
)

// errCandidatesClaimed means another writer moved one of the selected tickets first.
var errCandidatesClaimed = errors.New("formation candidates claimed by a concurrent writer")

// FormResult describes the outcome of one formation pass. Err carries a storage failure
// that was logged and swallowed.
type FormResult struct {
	Formed  bool
	MatchID string
	Players []string
	Err     error
}

// FormationEngine turns the oldest queued tickets of a bucket into a match.
//
// Correctness under concurrent passes comes from storage: the match insert and the
// conditional queued→matched update run in one transaction when the store supports it.
// Otherwise the update runs first, its row count is checked, and the match is only
// inserted when every candidate was claimed; a short pass is compensated right away.
type FormationEngine struct {
	tickets   matchmaking.TicketRepository
	matches   matchmaking.MatchRepository
	txManager db.Transactor
	publisher MatchEventPublisher
	releaser  *TicketReleaser
	logger    logger.Interface
	now       func() time.Time
}

func NewFormationEngine(
	tickets matchmaking.TicketRepository,
	matches matchmaking.MatchRepository,
	txManager db.Transactor,
	publisher MatchEventPublisher,
	logger logger.Interface,
) *FormationEngine {
	if publisher == nil {
		publisher = NoopPublisher()
	}
	return &FormationEngine{
		tickets:   tickets,
		matches:   matches,
		txManager: txManager,
		publisher: publisher,
		releaser:  NewTicketReleaser(tickets, logger),
		logger:    logger,
		now:       biztime.NowUTC,
	}
}

func (e *FormationEngine) Form(ctx context.Context, bucket vo.Bucket) FormResult {
	match, err := e.formInTransaction(ctx, bucket)
	if err != nil && db.IsTransactionUnsupported(err) {
		e.logger.Debugw("transactions unsupported, using conditional update path",
			"bucket", bucket.String(),
		)
		match, err = e.formWithoutTransaction(ctx, bucket)
	}

	switch {
	case errors.Is(err, errCandidatesClaimed):
		e.logger.Infow("formation pass lost a race, no match formed",
			"bucket", bucket.String(),
		)
		return FormResult{}
	case err != nil:
		e.logger.Errorw("formation pass failed",
			"bucket", bucket.String(),
			"error", err,
		)
		return FormResult{Err: err}
	case match == nil:
		return FormResult{}
	}

	e.logger.Infow("match formed",
		"match_id", match.ID(),
		"bucket", bucket.String(),
		"players", match.Players(),
	)

	if err := e.publisher.PublishMatchFormed(ctx, matchmaking.NewMatchFormedEvent(match)); err != nil {
		e.logger.Warnw("failed to publish match formed event",
			"match_id", match.ID(),
			"error", err,
		)
	}

	return FormResult{Formed: true, MatchID: match.ID(), Players: match.Players()}
}

func (e *FormationEngine) formInTransaction(ctx context.Context, bucket vo.Bucket) (*matchmaking.Match, error) {
	var formed *matchmaking.Match
	err := e.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		candidates, err := e.tickets.ListQueued(txCtx, bucket, bucket.PartySize())
		if err != nil {
			return fmt.Errorf("failed to list candidates: %w", err)
		}
		if len(candidates) < bucket.PartySize() {
			return nil
		}

		match, err := e.newMatch(bucket, candidates)
		if err != nil {
			return err
		}
		if err := e.matches.Create(txCtx, match); err != nil {
			return fmt.Errorf("failed to create match: %w", err)
		}

		moved, err := e.tickets.MarkMatched(txCtx, ticketIDs(candidates), match.ID(), match.CreatedAt())
		if err != nil {
			return fmt.Errorf("failed to mark tickets matched: %w", err)
		}
		if moved != int64(bucket.PartySize()) {
			return errCandidatesClaimed
		}

		formed = match
		return nil
	})
	if err != nil {
		return nil, err
	}
	return formed, nil
}

func (e *FormationEngine) formWithoutTransaction(ctx context.Context, bucket vo.Bucket) (*matchmaking.Match, error) {
	candidates, err := e.tickets.ListQueued(ctx, bucket, bucket.PartySize())
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	if len(candidates) < bucket.PartySize() {
		return nil, nil
	}

	match, err := e.newMatch(bucket, candidates)
	if err != nil {
		return nil, err
	}

	moved, err := e.tickets.MarkMatched(ctx, ticketIDs(candidates), match.ID(), match.CreatedAt())
	if err != nil {
		e.release(ctx, candidates, match.ID())
		return nil, fmt.Errorf("failed to mark tickets matched: %w", err)
	}
	if moved != int64(bucket.PartySize()) {
		e.release(ctx, candidates, match.ID())
		return nil, errCandidatesClaimed
	}

	if err := e.matches.Create(ctx, match); err != nil {
		e.release(ctx, candidates, match.ID())
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return match, nil
}

// release undoes the candidates this pass flipped. Tickets claimed by someone else are
// not matched to matchID and are left alone by the conditional updates.
func (e *FormationEngine) release(ctx context.Context, candidates []*matchmaking.QueueTicket, matchID string) {
	ctx = context.WithoutCancel(ctx)
	at := e.now()
	for _, t := range candidates {
		if _, err := e.releaser.Release(ctx, t, matchID, at); err != nil {
			e.logger.Errorw("failed to release ticket of abandoned formation pass",
				"ticket_id", t.SID(),
				"match_id", matchID,
				"error", err,
			)
		}
	}
}

func (e *FormationEngine) newMatch(bucket vo.Bucket, candidates []*matchmaking.QueueTicket) (*matchmaking.Match, error) {
	players := make([]string, 0, len(candidates))
	for _, t := range candidates {
		players = append(players, t.PlayerID())
	}
	match, err := matchmaking.NewMatch(id.NewMatchID(), bucket, players, e.now())
	if err != nil {
		return nil, fmt.Errorf("failed to build match: %w", err)
	}
	return match, nil
}

func ticketIDs(tickets []*matchmaking.QueueTicket) []uint {
	ids := make([]uint, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.ID())
	}
	return ids
}
