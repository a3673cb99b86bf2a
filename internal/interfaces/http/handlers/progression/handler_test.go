package progression

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harbinger-games/harbinger/internal/application/progression/dto"
	"github.com/harbinger-games/harbinger/internal/application/progression/usecases"
	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
	"github.com/harbinger-games/harbinger/internal/infrastructure/memstore"
	"github.com/harbinger-games/harbinger/internal/interfaces/http/handlers/testutil"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
)

const testMatchID = "6a1f5a7e-0000-4000-8000-0000000000aa"

func newReportHandler(t *testing.T, players ...string) (*ReportHandler, *memstore.Store) {
	t.Helper()

	store := memstore.New()
	bucket, err := vo.NewBucket("pve", "us", len(players))
	require.NoError(t, err)
	match, err := matchmaking.NewMatch(testMatchID, bucket, players, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Matches().Create(context.Background(), match))

	uc := usecases.NewReportMatchUseCase(store.Matches(), store.Progressions(), store,
		usecases.ReportMatchConfig{XPPerLevel: 1000, MaxXPPerReport: 50000}, logger.NewDiscard())
	return NewReportHandler(uc, logger.NewDiscard()), store
}

func reportBody(hostID string, summaries ...map[string]any) map[string]any {
	return map[string]any{
		"match_id":         testMatchID,
		"host_id":          hostID,
		"player_summaries": summaries,
	}
}

func playerSummary(userID string, waves, kills, duration int) map[string]any {
	return map[string]any{
		"user_id":          userID,
		"waves_cleared":    waves,
		"kills":            kills,
		"duration_seconds": duration,
	}
}

func TestReportHandler_ReportMatch(t *testing.T) {
	h, _ := newReportHandler(t, "host", "guest")

	c, w := testutil.NewTestContext(http.MethodPost, "/match/report",
		reportBody("host", playerSummary("host", 3, 10, 300), playerSummary("guest", 1, 0, 300)))
	testutil.SetAuthContext(c, "host")

	h.ReportMatch(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body dto.MatchReportDTO
	resp, err := testutil.DecodeData(w, &body)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, testMatchID, body.MatchID)
	require.Len(t, body.Awards, 2)
	assert.Equal(t, "host", body.Awards[0].UserID)
	assert.Equal(t, int64(320), body.Awards[0].XPAwarded)
	assert.Equal(t, int64(100), body.Awards[1].XPAwarded)
}

func TestReportHandler_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		caller     string
		body       any
		wantStatus int
	}{
		{name: "unauthenticated", body: reportBody("host", playerSummary("host", 1, 1, 300)), wantStatus: http.StatusUnauthorized},
		{name: "malformed json", caller: "host", body: `{"match_id":`, wantStatus: http.StatusBadRequest},
		{name: "no summaries", caller: "host", body: reportBody("host"), wantStatus: http.StatusBadRequest},
		{name: "caller is not host", caller: "guest", body: reportBody("host", playerSummary("host", 1, 1, 300)), wantStatus: http.StatusForbidden},
		{name: "host outside match", caller: "stranger", body: reportBody("stranger", playerSummary("host", 1, 1, 300)), wantStatus: http.StatusForbidden},
		{name: "summary for outsider", caller: "host", body: reportBody("host", playerSummary("stranger", 1, 1, 300)), wantStatus: http.StatusBadRequest},
		{name: "duration too short", caller: "host", body: reportBody("host", playerSummary("host", 1, 1, 59)), wantStatus: http.StatusBadRequest},
		{name: "too many waves", caller: "host", body: reportBody("host", playerSummary("host", 101, 1, 300)), wantStatus: http.StatusBadRequest},
		{
			name:   "unknown match",
			caller: "host",
			body: map[string]any{
				"match_id":         "missing",
				"host_id":          "host",
				"player_summaries": []map[string]any{playerSummary("host", 1, 1, 300)},
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store := newReportHandler(t, "host", "guest")

			c, w := testutil.NewTestContext(http.MethodPost, "/match/report", tt.body)
			if tt.caller != "" {
				testutil.SetAuthContext(c, tt.caller)
			}

			h.ReportMatch(c)

			assert.Equal(t, tt.wantStatus, w.Code)

			p, err := store.Progressions().GetByPlayerID(context.Background(), "host")
			require.NoError(t, err)
			if p != nil {
				assert.Zero(t, p.XP(), "rejected reports award nothing")
			}
		})
	}
}
