package matchmaking

import (
	"context"
	"fmt"

	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
)

const (
	sweepBucketLimit   = 50
	maxPassesPerBucket = 16
)

type SweepResult struct {
	Buckets int
	Formed  int
	Failed  int
}

// SweepBucketsUseCase runs formation for every bucket that already holds enough queued
// tickets, so a bucket left waiting after a failed pass does not need a new enqueue.
type SweepBucketsUseCase struct {
	tickets matchmaking.TicketRepository
	former  Former
	logger  logger.Interface
}

func NewSweepBucketsUseCase(tickets matchmaking.TicketRepository, former Former, logger logger.Interface) *SweepBucketsUseCase {
	return &SweepBucketsUseCase{tickets: tickets, former: former, logger: logger}
}

func (uc *SweepBucketsUseCase) Execute(ctx context.Context) (*SweepResult, error) {
	buckets, err := uc.tickets.ListReadyBuckets(ctx, sweepBucketLimit)
	if err != nil {
		uc.logger.Errorw("failed to list ready buckets", "error", err)
		return nil, fmt.Errorf("failed to list ready buckets: %w", err)
	}

	result := &SweepResult{Buckets: len(buckets)}
	for _, bucket := range buckets {
		for pass := 0; pass < maxPassesPerBucket; pass++ {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			res := uc.former.Form(ctx, bucket)
			if res.Err != nil {
				result.Failed++
				break
			}
			if !res.Formed {
				break
			}
			result.Formed++
		}
	}

	if result.Formed > 0 {
		uc.logger.Infow("bucket sweep formed matches",
			"buckets", result.Buckets,
			"formed", result.Formed,
		)
	}
	return result, nil
}
