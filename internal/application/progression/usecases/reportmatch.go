package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harbinger-games/harbinger/internal/application/progression/dto"
	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	"github.com/harbinger-games/harbinger/internal/domain/progression"
	"github.com/harbinger-games/harbinger/internal/shared/biztime"
	"github.com/harbinger-games/harbinger/internal/shared/db"
	apperrors "github.com/harbinger-games/harbinger/internal/shared/errors"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
	"github.com/harbinger-games/harbinger/internal/shared/utils"
)

const (
	xpPerWave = 100
	xpPerKill = 2
)

type PlayerSummary struct {
	UserID          string `json:"user_id" validate:"required"`
	WavesCleared    int    `json:"waves_cleared" validate:"min=0,max=100"`
	Kills           int    `json:"kills" validate:"min=0,max=100000"`
	DurationSeconds int    `json:"duration_seconds" validate:"min=60,max=7200"`
}

type ReportMatchCommand struct {
	CallerID  string
	MatchID   string
	HostID    string
	Summaries []PlayerSummary
}

type ReportMatchConfig struct {
	XPPerLevel     int64
	MaxXPPerReport int64
}

// ReportMatchUseCase accepts the host's end-of-match summary and awards XP to each
// reported player. The match is claimed as reported before any XP is written, so a
// match pays out at most once.
type ReportMatchUseCase struct {
	matches      matchmaking.MatchRepository
	progressions progression.Repository
	txManager    db.Transactor
	cfg          ReportMatchConfig
	logger       logger.Interface
	now          func() time.Time
}

func NewReportMatchUseCase(
	matches matchmaking.MatchRepository,
	progressions progression.Repository,
	txManager db.Transactor,
	cfg ReportMatchConfig,
	logger logger.Interface,
) *ReportMatchUseCase {
	return &ReportMatchUseCase{
		matches:      matches,
		progressions: progressions,
		txManager:    txManager,
		cfg:          cfg,
		logger:       logger,
		now:          biztime.NowUTC,
	}
}

func (uc *ReportMatchUseCase) Execute(ctx context.Context, cmd ReportMatchCommand) (*dto.MatchReportDTO, error) {
	uc.logger.Infow("executing report match use case",
		"match_id", cmd.MatchID,
		"caller_id", cmd.CallerID,
		"summaries", len(cmd.Summaries),
	)

	if strings.TrimSpace(cmd.MatchID) == "" || strings.TrimSpace(cmd.HostID) == "" {
		return nil, apperrors.NewValidationError("match_id and host_id are required")
	}
	if len(cmd.Summaries) == 0 {
		return nil, apperrors.NewValidationError("player_summaries is required")
	}

	match, err := uc.matches.GetByID(ctx, cmd.MatchID)
	if errors.Is(err, matchmaking.ErrMatchNotFound) {
		return nil, apperrors.NewNotFoundError("Match not found")
	}
	if err != nil {
		uc.logger.Errorw("failed to load match", "match_id", cmd.MatchID, "error", err)
		return nil, apperrors.NewInternalError("failed to load match")
	}

	if cmd.HostID != cmd.CallerID {
		return nil, apperrors.NewForbiddenError("Only the host can report results")
	}
	if !match.HasPlayer(cmd.HostID) {
		return nil, apperrors.NewForbiddenError("Host is not part of the match")
	}
	if match.State().IsReported() {
		return nil, apperrors.NewConflictError("Match already reported")
	}

	if err := uc.validateSummaries(match, cmd.Summaries); err != nil {
		return nil, err
	}

	var result *dto.MatchReportDTO
	err = uc.runAtomically(ctx, func(ctx context.Context) error {
		var err error
		result, err = uc.settle(ctx, match, cmd.Summaries)
		return err
	})
	if apperrors.IsConflictError(err) {
		uc.logger.Infow("match was reported concurrently", "match_id", match.ID())
	}
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("match reported",
		"match_id", match.ID(),
		"awards", len(result.Awards),
	)
	return result, nil
}

// settle claims the match and then writes every award.
func (uc *ReportMatchUseCase) settle(ctx context.Context, match *matchmaking.Match, summaries []PlayerSummary) (*dto.MatchReportDTO, error) {
	ok, err := uc.matches.MarkReported(ctx, match.ID(), uc.now())
	if err != nil {
		uc.logger.Errorw("failed to mark match as reported", "match_id", match.ID(), "error", err)
		return nil, apperrors.NewInternalError("failed to report match")
	}
	if !ok {
		return nil, apperrors.NewConflictError("Match already reported")
	}

	result := &dto.MatchReportDTO{MatchID: match.ID(), Awards: make([]dto.MatchAwardDTO, 0, len(summaries))}
	for _, s := range summaries {
		award := uc.calculateXP(s)
		p, err := uc.progressions.AddXP(ctx, s.UserID, award, uc.cfg.XPPerLevel)
		if err != nil {
			uc.logger.Errorw("failed to award xp",
				"match_id", match.ID(),
				"user_id", s.UserID,
				"error", err,
			)
			return nil, apperrors.NewInternalError("failed to award xp")
		}
		result.Awards = append(result.Awards, dto.ToMatchAwardDTO(award, p))
	}
	return result, nil
}

// runAtomically runs fn in a transaction. Stores without transactions run fn directly:
// the claim still guards against double awards, but a failed award is not undone.
func (uc *ReportMatchUseCase) runAtomically(ctx context.Context, fn func(ctx context.Context) error) error {
	err := uc.txManager.RunInTransaction(ctx, fn)
	if !db.IsTransactionUnsupported(err) {
		return err
	}
	uc.logger.Debugw("transactions unsupported, reporting match without one")
	return fn(ctx)
}

func (uc *ReportMatchUseCase) validateSummaries(match *matchmaking.Match, summaries []PlayerSummary) error {
	seen := make(map[string]struct{}, len(summaries))
	for i := range summaries {
		s := &summaries[i]
		if err := utils.ValidateStruct(s); err != nil {
			return err
		}
		if !match.HasPlayer(s.UserID) {
			return apperrors.NewValidationError("Invalid match data", fmt.Sprintf("player %s is not part of the match", s.UserID))
		}
		if _, dup := seen[s.UserID]; dup {
			return apperrors.NewValidationError("Invalid match data", fmt.Sprintf("player %s reported twice", s.UserID))
		}
		seen[s.UserID] = struct{}{}
	}
	return nil
}

func (uc *ReportMatchUseCase) calculateXP(s PlayerSummary) int64 {
	xp := int64(s.WavesCleared)*xpPerWave + int64(s.Kills)*xpPerKill
	if uc.cfg.MaxXPPerReport > 0 && xp > uc.cfg.MaxXPPerReport {
		return uc.cfg.MaxXPPerReport
	}
	return xp
}
