package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	got, err := Generate(0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultLength)

	for _, c := range got {
		assert.True(t, strings.ContainsRune(alphabet, c), "unexpected rune %q", c)
	}
}

func TestNewQueueTicketID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		ticketID, err := NewQueueTicketID()
		require.NoError(t, err)
		require.NoError(t, ValidatePrefix(ticketID, PrefixQueueTicket))
		_, dup := seen[ticketID]
		require.False(t, dup)
		seen[ticketID] = struct{}{}
	}
}

func TestParsePrefixedID(t *testing.T) {
	prefix, short, err := ParsePrefixedID("qt_abc123")
	require.NoError(t, err)
	assert.Equal(t, "qt", prefix)
	assert.Equal(t, "abc123", short)

	_, _, err = ParsePrefixedID("noprefix")
	assert.Error(t, err)

	_, _, err = ParsePrefixedID("qt_")
	assert.Error(t, err)

	assert.Error(t, ValidatePrefix("xx_abc", PrefixQueueTicket))
}

func TestNewMatchID(t *testing.T) {
	matchID := NewMatchID()
	assert.True(t, IsMatchID(matchID))
	assert.NotEqual(t, matchID, NewMatchID())
	assert.False(t, IsMatchID("not-a-match"))
}
