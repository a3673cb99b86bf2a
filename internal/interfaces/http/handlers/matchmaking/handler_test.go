package matchmaking

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mmApp "github.com/harbinger-games/harbinger/internal/application/matchmaking"
	"github.com/harbinger-games/harbinger/internal/application/matchmaking/dto"
	"github.com/harbinger-games/harbinger/internal/interfaces/http/handlers/testutil"
	apperrors "github.com/harbinger-games/harbinger/internal/shared/errors"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
)

var enqueuedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func queuedTicket(playerID string) *dto.QueueTicketDTO {
	return &dto.QueueTicketDTO{
		ID:         "qt_abc123",
		PlayerID:   playerID,
		Mode:       "pve",
		Region:     "us",
		PartySize:  2,
		State:      "queued",
		EnqueuedAt: enqueuedAt,
	}
}

func TestHandler_Enqueue(t *testing.T) {
	mm := &mockMatchmaker{
		EnqueueFunc: func(_ context.Context, cmd mmApp.EnqueueCommand) (*mmApp.EnqueueResult, error) {
			return &mmApp.EnqueueResult{Ticket: queuedTicket(cmd.PlayerID)}, nil
		},
	}
	h := NewHandler(mm, logger.NewDiscard())

	c, w := testutil.NewTestContext(http.MethodPost, "/matchmaking/enqueue",
		map[string]any{"mode": "pve", "region": "us", "players_per_match": 2})
	testutil.SetAuthContext(c, "player-a")

	h.Enqueue(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var body EnqueueResponse
	resp, err := testutil.DecodeData(w, &body)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, body.Queued)
	assert.Equal(t, "qt_abc123", body.ID)
	assert.Equal(t, "pve", body.Mode)
	assert.Equal(t, "us", body.Region)
	assert.True(t, enqueuedAt.Equal(body.CreatedAt))

	require.Len(t, mm.enqueueCalls, 1)
	assert.Equal(t, mmApp.EnqueueCommand{PlayerID: "player-a", Mode: "pve", Region: "us", PartySize: 2}, mm.enqueueCalls[0])
}

func TestHandler_Enqueue_DefaultPartySize(t *testing.T) {
	mm := &mockMatchmaker{
		EnqueueFunc: func(_ context.Context, cmd mmApp.EnqueueCommand) (*mmApp.EnqueueResult, error) {
			return &mmApp.EnqueueResult{Ticket: queuedTicket(cmd.PlayerID)}, nil
		},
	}
	h := NewHandler(mm, logger.NewDiscard())

	c, w := testutil.NewTestContext(http.MethodPost, "/matchmaking/enqueue",
		map[string]any{"mode": "pve", "region": "us"})
	testutil.SetAuthContext(c, "player-a")

	h.Enqueue(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, mm.enqueueCalls, 1)
	assert.Zero(t, mm.enqueueCalls[0].PartySize)
}

func TestHandler_Enqueue_AlreadyQueued(t *testing.T) {
	mm := &mockMatchmaker{
		EnqueueFunc: func(_ context.Context, cmd mmApp.EnqueueCommand) (*mmApp.EnqueueResult, error) {
			return &mmApp.EnqueueResult{Ticket: queuedTicket(cmd.PlayerID), AlreadyQueued: true}, nil
		},
	}
	h := NewHandler(mm, logger.NewDiscard())

	c, w := testutil.NewTestContext(http.MethodPost, "/matchmaking/enqueue",
		map[string]any{"mode": "pve", "region": "us"})
	testutil.SetAuthContext(c, "player-a")

	h.Enqueue(c)

	require.Equal(t, http.StatusConflict, w.Code)
	var body EnqueueResponse
	resp, err := testutil.DecodeData(w, &body)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(apperrors.ErrorTypeConflict), resp.Error.Type)
	assert.Equal(t, "qt_abc123", body.ID, "the existing ticket is returned")
}

func TestHandler_Enqueue_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		playerID   string
		body       any
		wantStatus int
	}{
		{name: "unauthenticated", body: map[string]any{"mode": "pve", "region": "us"}, wantStatus: http.StatusUnauthorized},
		{name: "malformed json", playerID: "p", body: `{"mode":`, wantStatus: http.StatusBadRequest},
		{name: "missing mode", playerID: "p", body: map[string]any{"region": "us"}, wantStatus: http.StatusBadRequest},
		{name: "missing region", playerID: "p", body: map[string]any{"mode": "pve"}, wantStatus: http.StatusBadRequest},
		{name: "party size too small", playerID: "p", body: map[string]any{"mode": "pve", "region": "us", "players_per_match": 1}, wantStatus: http.StatusBadRequest},
		{name: "party size too large", playerID: "p", body: map[string]any{"mode": "pve", "region": "us", "players_per_match": 17}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mm := &mockMatchmaker{}
			h := NewHandler(mm, logger.NewDiscard())

			c, w := testutil.NewTestContext(http.MethodPost, "/matchmaking/enqueue", tt.body)
			if tt.playerID != "" {
				testutil.SetAuthContext(c, tt.playerID)
			}

			h.Enqueue(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Empty(t, mm.enqueueCalls)
		})
	}
}

func TestHandler_Enqueue_StorageFailureHidesDetails(t *testing.T) {
	mm := &mockMatchmaker{
		EnqueueFunc: func(context.Context, mmApp.EnqueueCommand) (*mmApp.EnqueueResult, error) {
			return nil, errors.New("dial tcp 10.0.0.5:3306: connection refused")
		},
	}
	h := NewHandler(mm, logger.NewDiscard())

	c, w := testutil.NewTestContext(http.MethodPost, "/matchmaking/enqueue",
		map[string]any{"mode": "pve", "region": "us"})
	testutil.SetAuthContext(c, "player-a")

	h.Enqueue(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestHandler_Cancel(t *testing.T) {
	tests := []struct {
		name        string
		canceled    bool
		wantMessage string
	}{
		{name: "ticket canceled", canceled: true, wantMessage: msgCanceled},
		{name: "nothing queued", canceled: false, wantMessage: msgNothingQueued},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mm := &mockMatchmaker{
				CancelFunc: func(_ context.Context, playerID string) (bool, error) {
					assert.Equal(t, "player-a", playerID)
					return tt.canceled, nil
				},
			}
			h := NewHandler(mm, logger.NewDiscard())

			c, w := testutil.NewTestContext(http.MethodPost, "/matchmaking/cancel", nil)
			testutil.SetAuthContext(c, "player-a")

			h.Cancel(c)

			require.Equal(t, http.StatusOK, w.Code)
			var body CancelResponse
			_, err := testutil.DecodeData(w, &body)
			require.NoError(t, err)
			assert.Equal(t, tt.canceled, body.Canceled)
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}

func TestHandler_GetStatus(t *testing.T) {
	mm := &mockMatchmaker{
		GetStatusFunc: func(_ context.Context, playerID string) (*dto.StatusDTO, error) {
			return dto.IdleStatus(), nil
		},
	}
	h := NewHandler(mm, logger.NewDiscard())

	c, w := testutil.NewTestContext(http.MethodGet, "/matchmaking/status", nil)
	testutil.SetAuthContext(c, "player-a")

	h.GetStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body dto.StatusDTO
	_, err := testutil.DecodeData(w, &body)
	require.NoError(t, err)
	assert.Equal(t, dto.StatusIdle, body.Status)
	assert.Nil(t, body.Queue)
	assert.Nil(t, body.Match)
}

func TestHandler_GetStatus_Unauthenticated(t *testing.T) {
	h := NewHandler(&mockMatchmaker{}, logger.NewDiscard())

	c, w := testutil.NewTestContext(http.MethodGet, "/matchmaking/status", nil)
	h.GetStatus(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_GetMatch(t *testing.T) {
	match := &dto.MatchDTO{
		MatchID:   "m_1",
		Mode:      "pve",
		Region:    "us",
		Players:   []string{"a", "b"},
		CreatedAt: enqueuedAt,
		State:     "formed",
	}
	mm := &mockMatchmaker{
		GetMatchFunc: func(_ context.Context, matchID string) (*dto.MatchDTO, error) {
			if matchID == "m_1" {
				return match, nil
			}
			return nil, apperrors.NewNotFoundError("match not found")
		},
	}
	h := NewHandler(mm, logger.NewDiscard())

	t.Run("found", func(t *testing.T) {
		c, w := testutil.NewTestContext(http.MethodGet, "/matchmaking/match/m_1", nil)
		testutil.SetURLParam(c, "matchId", "m_1")

		h.GetMatch(c)

		require.Equal(t, http.StatusOK, w.Code)
		var body dto.MatchDTO
		_, err := testutil.DecodeData(w, &body)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, body.Players)
	})

	t.Run("not found", func(t *testing.T) {
		c, w := testutil.NewTestContext(http.MethodGet, "/matchmaking/match/missing", nil)
		testutil.SetURLParam(c, "matchId", "missing")

		h.GetMatch(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
