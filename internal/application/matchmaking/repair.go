package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	"github.com/harbinger-games/harbinger/internal/shared/biztime"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
)

const orphanBatchSize = 100

type ReleaseOutcome int

const (
	// ReleaseSkipped means the ticket is no longer matched to the given match.
	ReleaseSkipped ReleaseOutcome = iota
	ReleaseRequeued
	// ReleaseCanceled means the player re-queued in the meantime, so the orphan was closed.
	ReleaseCanceled
)

// TicketReleaser returns matched tickets whose match was never stored to the queue.
type TicketReleaser struct {
	tickets matchmaking.TicketRepository
	logger  logger.Interface
}

func NewTicketReleaser(tickets matchmaking.TicketRepository, logger logger.Interface) *TicketReleaser {
	return &TicketReleaser{tickets: tickets, logger: logger}
}

func (r *TicketReleaser) Release(ctx context.Context, t *matchmaking.QueueTicket, matchID string, at time.Time) (ReleaseOutcome, error) {
	requeued, err := r.tickets.Requeue(ctx, t.ID(), matchID, at)
	if err == nil {
		if requeued {
			r.logger.Infow("ticket returned to queue",
				"ticket_id", t.SID(),
				"player_id", t.PlayerID(),
				"match_id", matchID,
			)
			return ReleaseRequeued, nil
		}
		return ReleaseSkipped, nil
	}
	if !errors.Is(err, matchmaking.ErrActiveTicketExists) {
		return ReleaseSkipped, fmt.Errorf("failed to requeue ticket: %w", err)
	}

	canceled, err := r.tickets.CancelOrphan(ctx, t.ID(), matchID, at)
	if err != nil {
		return ReleaseSkipped, fmt.Errorf("failed to cancel orphaned ticket: %w", err)
	}
	if !canceled {
		return ReleaseSkipped, nil
	}
	r.logger.Infow("orphaned ticket canceled, player already queued again",
		"ticket_id", t.SID(),
		"player_id", t.PlayerID(),
		"match_id", matchID,
	)
	return ReleaseCanceled, nil
}

type RepairResult struct {
	Scanned  int
	Requeued int
	Canceled int
}

// RepairOrphansUseCase finds matched tickets whose match record never appeared and
// releases them. The grace period keeps it away from passes still in flight.
type RepairOrphansUseCase struct {
	tickets  matchmaking.TicketRepository
	releaser *TicketReleaser
	grace    time.Duration
	logger   logger.Interface
	now      func() time.Time
}

func NewRepairOrphansUseCase(
	tickets matchmaking.TicketRepository,
	grace time.Duration,
	logger logger.Interface,
) *RepairOrphansUseCase {
	return &RepairOrphansUseCase{
		tickets:  tickets,
		releaser: NewTicketReleaser(tickets, logger),
		grace:    grace,
		logger:   logger,
		now:      biztime.NowUTC,
	}
}

func (uc *RepairOrphansUseCase) Execute(ctx context.Context) (*RepairResult, error) {
	now := uc.now()
	orphans, err := uc.tickets.ListOrphaned(ctx, now.Add(-uc.grace), orphanBatchSize)
	if err != nil {
		uc.logger.Errorw("failed to list orphaned tickets", "error", err)
		return nil, fmt.Errorf("failed to list orphaned tickets: %w", err)
	}

	result := &RepairResult{Scanned: len(orphans)}
	for _, t := range orphans {
		outcome, err := uc.releaser.Release(ctx, t, t.MatchID(), now)
		if err != nil {
			uc.logger.Errorw("failed to repair orphaned ticket",
				"ticket_id", t.SID(),
				"match_id", t.MatchID(),
				"error", err,
			)
			continue
		}
		switch outcome {
		case ReleaseRequeued:
			result.Requeued++
		case ReleaseCanceled:
			result.Canceled++
		}
	}

	if result.Scanned > 0 {
		uc.logger.Warnw("orphaned tickets repaired",
			"integrity_violation", true,
			"scanned", result.Scanned,
			"requeued", result.Requeued,
			"canceled", result.Canceled,
		)
	}
	return result, nil
}
