package mappers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
	"github.com/harbinger-games/harbinger/internal/infrastructure/persistence/models"
)

func TestQueueTicketMapper_ActiveKeyFollowsState(t *testing.T) {
	bucket, err := vo.NewBucket("pve", "us", 2)
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Millisecond)

	tk, err := matchmaking.NewQueueTicket("p1", bucket, now)
	require.NoError(t, err)
	tk.SetID(3)

	mapper := NewQueueTicketMapper()
	model := mapper.ToModel(tk)
	require.NotNil(t, model.ActiveKey)
	assert.Equal(t, "p1|pve|us", *model.ActiveKey)
	assert.Nil(t, model.MatchID)

	require.NoError(t, tk.MarkMatched("m-1", now))
	model = mapper.ToModel(tk)
	assert.Nil(t, model.ActiveKey)
	require.NotNil(t, model.MatchID)
	assert.Equal(t, "m-1", *model.MatchID)

	back, err := mapper.ToDomain(model)
	require.NoError(t, err)
	assert.Equal(t, tk.SID(), back.SID())
	assert.Equal(t, "m-1", back.MatchID())
	assert.True(t, now.Equal(back.EnqueuedAt()))
	require.NotNil(t, back.MatchedAt())
}

func TestQueueTicketMapper_RejectsBadRows(t *testing.T) {
	mapper := NewQueueTicketMapper()

	_, err := mapper.ToDomain(&models.QueueTicketModel{ID: 1, SID: "qt_x", PlayerID: "p1", Mode: "pve", Region: "us", PartySize: 1, State: "queued"})
	assert.Error(t, err)

	_, err = mapper.ToDomain(&models.QueueTicketModel{ID: 1, SID: "qt_x", PlayerID: "p1", Mode: "pve", Region: "us", PartySize: 2, State: "lost"})
	assert.Error(t, err)
}

func TestMatchMapper_KeepsShortPlayerList(t *testing.T) {
	mapper := NewMatchMapper()

	m, err := mapper.ToDomain(&models.MatchModel{
		ID: "m-1", Mode: "pve", Region: "us", PartySize: 4, State: "matched",
		Players: []string{"a", "b"}, CreatedAt: time.Now().UnixMilli(),
	})
	require.NoError(t, err)
	assert.Error(t, m.CheckIntegrity())
	assert.Equal(t, []string{"a", "b"}, mapper.ToModel(m).Players)
}
