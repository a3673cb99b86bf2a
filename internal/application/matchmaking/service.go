package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harbinger-games/harbinger/internal/application/matchmaking/dto"
	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
	"github.com/harbinger-games/harbinger/internal/shared/biztime"
	apperrors "github.com/harbinger-games/harbinger/internal/shared/errors"
	"github.com/harbinger-games/harbinger/internal/shared/id"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
)

const enqueueAttempts = 3

type EnqueueCommand struct {
	PlayerID string
	Mode     string
	Region   string
	// PartySize of zero selects the configured default.
	PartySize int
}

type EnqueueResult struct {
	Ticket        *dto.QueueTicketDTO
	AlreadyQueued bool
}

// Service is the matchmaking façade: enqueue, cancel, status and match lookup.
type Service struct {
	tickets          matchmaking.TicketRepository
	matches          matchmaking.MatchRepository
	former           Former
	defaultPartySize int
	minPartySize     int
	maxPartySize     int
	logger           logger.Interface
	now              func() time.Time
}

func NewService(
	tickets matchmaking.TicketRepository,
	matches matchmaking.MatchRepository,
	former Former,
	defaultPartySize int,
	logger logger.Interface,
	opts ...ServiceOption,
) *Service {
	if defaultPartySize == 0 {
		defaultPartySize = vo.DefaultPartySize
	}
	s := &Service{
		tickets:          tickets,
		matches:          matches,
		former:           former,
		defaultPartySize: defaultPartySize,
		minPartySize:     vo.MinPartySize,
		maxPartySize:     vo.MaxPartySize,
		logger:           logger,
		now:              biztime.NowUTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ServiceOption func(*Service)

// WithPartySizeBounds narrows the accepted players-per-match range. Values outside
// the domain range are clamped to it.
func WithPartySizeBounds(minSize, maxSize int) ServiceOption {
	return func(s *Service) {
		s.minPartySize = max(minSize, vo.MinPartySize)
		s.maxPartySize = min(maxSize, vo.MaxPartySize)
	}
}

// Enqueue places the player in the bucket's queue, or returns the ticket already
// queued for the same mode and region. A new ticket triggers one formation pass.
func (s *Service) Enqueue(ctx context.Context, cmd EnqueueCommand) (*EnqueueResult, error) {
	s.logger.Infow("executing enqueue",
		"player_id", cmd.PlayerID,
		"mode", cmd.Mode,
		"region", cmd.Region,
		"party_size", cmd.PartySize,
	)

	if strings.TrimSpace(cmd.PlayerID) == "" {
		return nil, apperrors.NewUnauthorizedError("player identity is required")
	}
	partySize := cmd.PartySize
	if partySize == 0 {
		partySize = s.defaultPartySize
	}
	if partySize < s.minPartySize || partySize > s.maxPartySize {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("players per match must be between %d and %d", s.minPartySize, s.maxPartySize))
	}
	bucket, err := vo.NewBucket(cmd.Mode, cmd.Region, partySize)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	for attempt := 0; attempt < enqueueAttempts; attempt++ {
		existing, err := s.tickets.FindActive(ctx, cmd.PlayerID, bucket.Mode(), bucket.Region())
		if err != nil {
			s.logger.Errorw("failed to look up active ticket", "player_id", cmd.PlayerID, "error", err)
			return nil, apperrors.NewInternalError("failed to enqueue")
		}
		if existing != nil {
			s.logger.Infow("player already queued",
				"player_id", cmd.PlayerID,
				"ticket_id", existing.SID(),
			)
			return &EnqueueResult{Ticket: dto.ToQueueTicketDTO(existing), AlreadyQueued: true}, nil
		}

		ticket, err := matchmaking.NewQueueTicket(cmd.PlayerID, bucket, s.now())
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}

		err = s.tickets.Create(ctx, ticket)
		if errors.Is(err, matchmaking.ErrActiveTicketExists) {
			// A concurrent enqueue won; read its ticket on the next attempt.
			continue
		}
		if err != nil {
			s.logger.Errorw("failed to create queue ticket", "player_id", cmd.PlayerID, "error", err)
			return nil, apperrors.NewInternalError("failed to enqueue")
		}

		s.logger.Infow("player enqueued",
			"player_id", cmd.PlayerID,
			"ticket_id", ticket.SID(),
			"bucket", bucket.String(),
		)

		s.former.Form(ctx, bucket)

		return &EnqueueResult{Ticket: dto.ToQueueTicketDTO(ticket)}, nil
	}

	s.logger.Warnw("enqueue kept colliding with concurrent writers", "player_id", cmd.PlayerID)
	return nil, apperrors.NewConflictError("queue state changed concurrently, retry")
}

// Cancel cancels the player's most recent queued ticket. It returns false when there
// was none, including when a formation pass claimed it first.
func (s *Service) Cancel(ctx context.Context, playerID string) (bool, error) {
	if strings.TrimSpace(playerID) == "" {
		return false, apperrors.NewUnauthorizedError("player identity is required")
	}

	canceled, err := s.tickets.CancelLatestQueued(ctx, playerID, s.now())
	if err != nil {
		s.logger.Errorw("failed to cancel queue ticket", "player_id", playerID, "error", err)
		return false, apperrors.NewInternalError("failed to cancel")
	}

	s.logger.Infow("cancel processed", "player_id", playerID, "canceled", canceled)
	return canceled, nil
}

func (s *Service) GetStatus(ctx context.Context, playerID string) (*dto.StatusDTO, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, apperrors.NewUnauthorizedError("player identity is required")
	}

	ticket, err := s.tickets.FindLatest(ctx, playerID, vo.TicketStateQueued, vo.TicketStateMatched)
	if err != nil {
		s.logger.Errorw("failed to load latest ticket", "player_id", playerID, "error", err)
		return nil, apperrors.NewInternalError("failed to load status")
	}
	if ticket == nil {
		return dto.IdleStatus(), nil
	}
	if ticket.IsQueued() {
		return dto.QueuedStatus(ticket), nil
	}

	match, err := s.matches.GetByID(ctx, ticket.MatchID())
	if errors.Is(err, matchmaking.ErrMatchNotFound) {
		s.logger.Errorw("matched ticket references a missing match",
			"integrity_violation", true,
			"player_id", playerID,
			"ticket_id", ticket.SID(),
			"match_id", ticket.MatchID(),
		)
		return dto.IdleStatus(), nil
	}
	if err != nil {
		s.logger.Errorw("failed to load match", "match_id", ticket.MatchID(), "error", err)
		return nil, apperrors.NewInternalError("failed to load status")
	}

	s.checkIntegrity(match)
	return dto.MatchedStatus(match), nil
}

func (s *Service) GetMatch(ctx context.Context, matchID string) (*dto.MatchDTO, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, apperrors.NewValidationError("match ID is required")
	}
	if !id.IsMatchID(matchID) {
		return nil, apperrors.NewNotFoundError("match not found")
	}

	match, err := s.matches.GetByID(ctx, matchID)
	if errors.Is(err, matchmaking.ErrMatchNotFound) {
		return nil, apperrors.NewNotFoundError("match not found")
	}
	if err != nil {
		s.logger.Errorw("failed to load match", "match_id", matchID, "error", err)
		return nil, apperrors.NewInternalError("failed to load match")
	}

	s.checkIntegrity(match)
	return dto.ToMatchDTO(match), nil
}

func (s *Service) checkIntegrity(match *matchmaking.Match) {
	if err := match.CheckIntegrity(); err != nil {
		s.logger.Errorw("match failed integrity check",
			"integrity_violation", true,
			"match_id", match.ID(),
			"error", err,
		)
	}
}
