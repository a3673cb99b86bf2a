package usecases

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
	"github.com/harbinger-games/harbinger/internal/domain/progression"
	"github.com/harbinger-games/harbinger/internal/infrastructure/memstore"
	apperrors "github.com/harbinger-games/harbinger/internal/shared/errors"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
)

var testConfig = ReportMatchConfig{XPPerLevel: 1000, MaxXPPerReport: 50000}

func newMatch(t *testing.T, players ...string) *matchmaking.Match {
	t.Helper()
	bucket, err := vo.NewBucket("pve", "us", len(players))
	require.NoError(t, err)
	m, err := matchmaking.NewMatch("6a1f5a7e-0000-4000-8000-000000000001", bucket, players, time.Now())
	require.NoError(t, err)
	return m
}

func summary(userID string, waves, kills int) PlayerSummary {
	return PlayerSummary{UserID: userID, WavesCleared: waves, Kills: kills, DurationSeconds: 600}
}

func TestReportMatchUseCase_AwardsXP(t *testing.T) {
	store := memstore.New()
	match := newMatch(t, "host", "guest")
	require.NoError(t, store.Matches().Create(context.Background(), match))

	uc := NewReportMatchUseCase(store.Matches(), store.Progressions(), store, testConfig, logger.NewDiscard())

	result, err := uc.Execute(context.Background(), ReportMatchCommand{
		CallerID:  "host",
		MatchID:   match.ID(),
		HostID:    "host",
		Summaries: []PlayerSummary{summary("host", 12, 40), summary("guest", 0, 600)},
	})

	require.NoError(t, err)
	assert.Equal(t, match.ID(), result.MatchID)
	require.Len(t, result.Awards, 2)
	assert.Equal(t, int64(1280), result.Awards[0].XPAwarded)
	assert.Equal(t, int64(1280), result.Awards[0].NewXP)
	assert.Equal(t, 1, result.Awards[0].NewLevel)
	assert.Equal(t, int64(1200), result.Awards[1].XPAwarded)

	stored, err := store.Matches().GetByID(context.Background(), match.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.MatchStateReported, stored.State())

	_, err = uc.Execute(context.Background(), ReportMatchCommand{
		CallerID: "host", MatchID: match.ID(), HostID: "host",
		Summaries: []PlayerSummary{summary("host", 1, 1)},
	})
	assert.True(t, apperrors.IsConflictError(err))
}

func TestReportMatchUseCase_CapsXP(t *testing.T) {
	match := newMatch(t, "host", "guest")
	var gotDelta int64
	uc := NewReportMatchUseCase(
		&mockMatchRepository{GetByIDFunc: func(context.Context, string) (*matchmaking.Match, error) { return match, nil }},
		&mockProgressionRepository{AddXPFunc: func(_ context.Context, playerID string, delta, xpPerLevel int64) (*progression.PlayerProgression, error) {
			gotDelta = delta
			return progression.ReconstructPlayerProgression(playerID, delta, progression.LevelForXP(delta, xpPerLevel), time.Now())
		}},
		&mockTransactor{},
		testConfig,
		logger.NewDiscard(),
	)

	result, err := uc.Execute(context.Background(), ReportMatchCommand{
		CallerID: "host", MatchID: match.ID(), HostID: "host",
		Summaries: []PlayerSummary{summary("host", 100, 100000)},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(50000), gotDelta)
	assert.Equal(t, 50, result.Awards[0].NewLevel)
}

func TestReportMatchUseCase_Rejections(t *testing.T) {
	match := newMatch(t, "host", "guest")
	matches := &mockMatchRepository{
		GetByIDFunc: func(_ context.Context, id string) (*matchmaking.Match, error) {
			if id == match.ID() {
				return match, nil
			}
			return nil, matchmaking.ErrMatchNotFound
		},
	}

	tests := []struct {
		name  string
		cmd   ReportMatchCommand
		check func(error) bool
	}{
		{
			name:  "unknown match",
			cmd:   ReportMatchCommand{CallerID: "host", MatchID: "nope", HostID: "host", Summaries: []PlayerSummary{summary("host", 1, 1)}},
			check: apperrors.IsNotFoundError,
		},
		{
			name:  "caller is not host",
			cmd:   ReportMatchCommand{CallerID: "guest", MatchID: match.ID(), HostID: "host", Summaries: []PlayerSummary{summary("host", 1, 1)}},
			check: apperrors.IsForbiddenError,
		},
		{
			name:  "host not in match",
			cmd:   ReportMatchCommand{CallerID: "intruder", MatchID: match.ID(), HostID: "intruder", Summaries: []PlayerSummary{summary("host", 1, 1)}},
			check: apperrors.IsForbiddenError,
		},
		{
			name:  "summary player not in match",
			cmd:   ReportMatchCommand{CallerID: "host", MatchID: match.ID(), HostID: "host", Summaries: []PlayerSummary{summary("stranger", 1, 1)}},
			check: apperrors.IsValidationError,
		},
		{
			name:  "duration too short",
			cmd:   ReportMatchCommand{CallerID: "host", MatchID: match.ID(), HostID: "host", Summaries: []PlayerSummary{{UserID: "host", DurationSeconds: 59}}},
			check: apperrors.IsValidationError,
		},
		{
			name:  "too many waves",
			cmd:   ReportMatchCommand{CallerID: "host", MatchID: match.ID(), HostID: "host", Summaries: []PlayerSummary{summary("host", 101, 0)}},
			check: apperrors.IsValidationError,
		},
		{
			name:  "negative kills",
			cmd:   ReportMatchCommand{CallerID: "host", MatchID: match.ID(), HostID: "host", Summaries: []PlayerSummary{summary("host", 0, -1)}},
			check: apperrors.IsValidationError,
		},
		{
			name:  "duplicate summary",
			cmd:   ReportMatchCommand{CallerID: "host", MatchID: match.ID(), HostID: "host", Summaries: []PlayerSummary{summary("host", 1, 1), summary("host", 1, 1)}},
			check: apperrors.IsValidationError,
		},
		{
			name:  "no summaries",
			cmd:   ReportMatchCommand{CallerID: "host", MatchID: match.ID(), HostID: "host"},
			check: apperrors.IsValidationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progressions := &mockProgressionRepository{
				AddXPFunc: func(context.Context, string, int64, int64) (*progression.PlayerProgression, error) {
					t.Fatal("xp must not be awarded")
					return nil, nil
				},
			}
			uc := NewReportMatchUseCase(matches, progressions, &mockTransactor{}, testConfig, logger.NewDiscard())

			result, err := uc.Execute(context.Background(), tt.cmd)

			assert.Nil(t, result)
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}
}

func TestReportMatchUseCase_MarkReportedFailureAwardsNothing(t *testing.T) {
	match := newMatch(t, "host", "guest")
	uc := NewReportMatchUseCase(
		&mockMatchRepository{
			GetByIDFunc: func(context.Context, string) (*matchmaking.Match, error) { return match, nil },
			MarkReportedFunc: func(context.Context, string, time.Time) (bool, error) {
				return false, errors.New("write failed")
			},
		},
		&mockProgressionRepository{
			AddXPFunc: func(context.Context, string, int64, int64) (*progression.PlayerProgression, error) {
				t.Fatal("xp must not be awarded")
				return nil, nil
			},
		},
		&mockTransactor{},
		testConfig,
		logger.NewDiscard(),
	)

	result, err := uc.Execute(context.Background(), ReportMatchCommand{
		CallerID: "host", MatchID: match.ID(), HostID: "host",
		Summaries: []PlayerSummary{summary("guest", 2, 0)},
	})

	assert.Nil(t, result)
	assert.True(t, apperrors.IsInternalError(err))
}

// gatedMatchRepository holds every GetByID caller until `parties` callers have loaded
// the match, so concurrent reports all pass the read-side checks.
type gatedMatchRepository struct {
	matchmaking.MatchRepository
	arrived sync.WaitGroup
}

func newGatedMatchRepository(inner matchmaking.MatchRepository, parties int) *gatedMatchRepository {
	g := &gatedMatchRepository{MatchRepository: inner}
	g.arrived.Add(parties)
	return g
}

func (g *gatedMatchRepository) GetByID(ctx context.Context, matchID string) (*matchmaking.Match, error) {
	m, err := g.MatchRepository.GetByID(ctx, matchID)
	g.arrived.Done()
	g.arrived.Wait()
	return m, err
}

func TestReportMatchUseCase_ConcurrentReportsPayOnce(t *testing.T) {
	store := memstore.New()
	match := newMatch(t, "host", "guest")
	require.NoError(t, store.Matches().Create(context.Background(), match))

	const reports = 2
	uc := NewReportMatchUseCase(newGatedMatchRepository(store.Matches(), reports), store.Progressions(), store, testConfig, logger.NewDiscard())

	var wg sync.WaitGroup
	errs := make([]error, reports)
	for i := 0; i < reports; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), ReportMatchCommand{
				CallerID: "host", MatchID: match.ID(), HostID: "host",
				Summaries: []PlayerSummary{summary("host", 10, 0)},
			})
		}(i)
	}
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperrors.IsConflictError(err):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)

	p, err := store.Progressions().GetByPlayerID(context.Background(), "host")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), p.XP())
}

func TestReportMatchUseCase_FailedAwardRollsBackClaim(t *testing.T) {
	store := memstore.New()
	match := newMatch(t, "host", "guest")
	require.NoError(t, store.Matches().Create(context.Background(), match))

	progressions := &mockProgressionRepository{
		AddXPFunc: func(ctx context.Context, playerID string, delta, xpPerLevel int64) (*progression.PlayerProgression, error) {
			if playerID == "guest" {
				return nil, errors.New("write failed")
			}
			return store.Progressions().AddXP(ctx, playerID, delta, xpPerLevel)
		},
	}
	uc := NewReportMatchUseCase(store.Matches(), progressions, store, testConfig, logger.NewDiscard())

	_, err := uc.Execute(context.Background(), ReportMatchCommand{
		CallerID: "host", MatchID: match.ID(), HostID: "host",
		Summaries: []PlayerSummary{summary("host", 5, 0), summary("guest", 5, 0)},
	})
	assert.True(t, apperrors.IsInternalError(err))

	stored, err := store.Matches().GetByID(context.Background(), match.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.MatchStateMatched, stored.State())

	p, err := store.Progressions().GetByPlayerID(context.Background(), "host")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestReportMatchUseCase_WithoutTransactions(t *testing.T) {
	store := memstore.New(memstore.WithoutTransactions())
	match := newMatch(t, "host", "guest")
	require.NoError(t, store.Matches().Create(context.Background(), match))

	uc := NewReportMatchUseCase(store.Matches(), store.Progressions(), store, testConfig, logger.NewDiscard())
	cmd := ReportMatchCommand{
		CallerID: "host", MatchID: match.ID(), HostID: "host",
		Summaries: []PlayerSummary{summary("host", 3, 0)},
	}

	result, err := uc.Execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, int64(300), result.Awards[0].NewXP)

	_, err = uc.Execute(context.Background(), cmd)
	assert.True(t, apperrors.IsConflictError(err))
}
