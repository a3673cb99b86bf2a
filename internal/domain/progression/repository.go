package progression

import "context"

type Repository interface {
	// AddXP atomically adds delta to the player's XP, creating the record if needed,
	// and recomputes the level. Returns the stored result.
	AddXP(ctx context.Context, playerID string, delta, xpPerLevel int64) (*PlayerProgression, error)
	// GetByPlayerID returns nil when the player has no progression yet.
	GetByPlayerID(ctx context.Context, playerID string) (*PlayerProgression, error)
}
