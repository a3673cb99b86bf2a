package matchmaking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
)

func TestNewMatch(t *testing.T) {
	bucket := mustBucket(t, "pve", "us", 2)
	now := time.Now().UTC()

	m, err := NewMatch("m-1", bucket, []string{"a", "b"}, now)
	require.NoError(t, err)

	assert.Equal(t, "m-1", m.ID())
	assert.Equal(t, []string{"a", "b"}, m.Players())
	assert.Equal(t, vo.MatchStateMatched, m.State())
	assert.True(t, m.HasPlayer("b"))
	assert.False(t, m.HasPlayer("c"))
	assert.NoError(t, m.CheckIntegrity())
}

func TestNewMatch_Invalid(t *testing.T) {
	bucket := mustBucket(t, "pve", "us", 2)
	now := time.Now()

	tests := []struct {
		name    string
		id      string
		players []string
	}{
		{"missing id", "", []string{"a", "b"}},
		{"too few players", "m-1", []string{"a"}},
		{"too many players", "m-1", []string{"a", "b", "c"}},
		{"duplicate player", "m-1", []string{"a", "a"}},
		{"empty player", "m-1", []string{"a", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMatch(tt.id, bucket, tt.players, now)
			assert.Error(t, err)
		})
	}
}

func TestMatch_PlayersIsCopy(t *testing.T) {
	m, err := NewMatch("m-1", mustBucket(t, "pve", "us", 2), []string{"a", "b"}, time.Now())
	require.NoError(t, err)

	players := m.Players()
	players[0] = "mallory"
	assert.Equal(t, []string{"a", "b"}, m.Players())
}

func TestMatch_CheckIntegrity(t *testing.T) {
	m, err := ReconstructMatch("m-1", mustBucket(t, "pve", "us", 4), []string{"a", "b"}, vo.MatchStateMatched, time.Now(), nil)
	require.NoError(t, err)

	err = m.CheckIntegrity()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has 2 players, expected 4")
}

func TestMatch_MarkReported(t *testing.T) {
	m, err := NewMatch("m-1", mustBucket(t, "pve", "us", 2), []string{"a", "b"}, time.Now())
	require.NoError(t, err)

	at := time.Now().UTC()
	require.NoError(t, m.MarkReported(at))
	assert.True(t, m.State().IsReported())
	assert.Equal(t, &at, m.ReportedAt())

	assert.ErrorIs(t, m.MarkReported(at), ErrInvalidTransition)
}

func TestMatchFormedEvent(t *testing.T) {
	m, err := NewMatch("m-1", mustBucket(t, "pve", "us", 2), []string{"a", "b"}, time.Now())
	require.NoError(t, err)

	evt := NewMatchFormedEvent(m)
	assert.Equal(t, "m-1", evt.MatchID)
	assert.Equal(t, "pve", evt.Mode)
	assert.True(t, evt.Includes("a"))
	assert.False(t, evt.Includes("z"))
}
