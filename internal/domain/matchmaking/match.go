package matchmaking

import (
	"fmt"
	"time"

	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
)

// Match is a formed group of players. Its player list never changes after creation.
type Match struct {
	id         string
	bucket     vo.Bucket
	players    []string
	state      vo.MatchState
	createdAt  time.Time
	reportedAt *time.Time
}

// NewMatch creates a match for exactly bucket.PartySize() distinct players, in order.
func NewMatch(id string, bucket vo.Bucket, players []string, now time.Time) (*Match, error) {
	if id == "" {
		return nil, fmt.Errorf("match ID is required")
	}
	if bucket.IsZero() {
		return nil, fmt.Errorf("bucket is required")
	}
	if len(players) != bucket.PartySize() {
		return nil, fmt.Errorf("match requires %d players, got %d", bucket.PartySize(), len(players))
	}

	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if p == "" {
			return nil, fmt.Errorf("player ID is required")
		}
		if _, dup := seen[p]; dup {
			return nil, fmt.Errorf("player %s appears twice in match", p)
		}
		seen[p] = struct{}{}
	}

	return &Match{
		id:        id,
		bucket:    bucket,
		players:   append([]string(nil), players...),
		state:     vo.MatchStateMatched,
		createdAt: now,
	}, nil
}

// ReconstructMatch rebuilds a match from persistence. It does not enforce the player
// count so that a corrupted record can still be read and reported by CheckIntegrity.
func ReconstructMatch(
	id string,
	bucket vo.Bucket,
	players []string,
	state vo.MatchState,
	createdAt time.Time,
	reportedAt *time.Time,
) (*Match, error) {
	if id == "" {
		return nil, fmt.Errorf("match ID is required")
	}
	if !state.IsValid() {
		return nil, fmt.Errorf("invalid match state: %s", state)
	}
	if players == nil {
		players = []string{}
	}

	return &Match{
		id:         id,
		bucket:     bucket,
		players:    players,
		state:      state,
		createdAt:  createdAt,
		reportedAt: reportedAt,
	}, nil
}

func (m *Match) ID() string {
	return m.id
}

func (m *Match) Bucket() vo.Bucket {
	return m.bucket
}

func (m *Match) Mode() string {
	return m.bucket.Mode()
}

func (m *Match) Region() string {
	return m.bucket.Region()
}

func (m *Match) PartySize() int {
	return m.bucket.PartySize()
}

func (m *Match) Players() []string {
	playersCopy := make([]string, len(m.players))
	copy(playersCopy, m.players)
	return playersCopy
}

func (m *Match) State() vo.MatchState {
	return m.state
}

func (m *Match) CreatedAt() time.Time {
	return m.createdAt
}

func (m *Match) ReportedAt() *time.Time {
	return m.reportedAt
}

func (m *Match) HasPlayer(playerID string) bool {
	for _, p := range m.players {
		if p == playerID {
			return true
		}
	}
	return false
}

// CheckIntegrity reports a stored match whose player count disagrees with its party size.
func (m *Match) CheckIntegrity() error {
	if len(m.players) != m.bucket.PartySize() {
		return fmt.Errorf("match %s has %d players, expected %d", m.id, len(m.players), m.bucket.PartySize())
	}
	return nil
}

func (m *Match) MarkReported(at time.Time) error {
	if !m.state.CanTransitionTo(vo.MatchStateReported) {
		return fmt.Errorf("%w: match %s is %s", ErrInvalidTransition, m.id, m.state)
	}
	m.state = vo.MatchStateReported
	m.reportedAt = &at
	return nil
}
