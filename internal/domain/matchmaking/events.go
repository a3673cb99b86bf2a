package matchmaking

import "time"

// MatchFormedEvent is published after a match and its ticket transitions are stored.
type MatchFormedEvent struct {
	MatchID   string    `json:"match_id"`
	Mode      string    `json:"mode"`
	Region    string    `json:"region"`
	Players   []string  `json:"players"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMatchFormedEvent(m *Match) MatchFormedEvent {
	return MatchFormedEvent{
		MatchID:   m.ID(),
		Mode:      m.Mode(),
		Region:    m.Region(),
		Players:   m.Players(),
		CreatedAt: m.CreatedAt(),
	}
}

// Includes reports whether playerID is one of the event's players.
func (e MatchFormedEvent) Includes(playerID string) bool {
	for _, p := range e.Players {
		if p == playerID {
			return true
		}
	}
	return false
}
