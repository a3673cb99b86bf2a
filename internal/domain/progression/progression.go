// Package progression models the XP and level of a player. Only match-report XP awards
// are handled here.
package progression

import (
	"fmt"
	"time"
)

type PlayerProgression struct {
	playerID  string
	xp        int64
	level     int
	updatedAt time.Time
}

func ReconstructPlayerProgression(playerID string, xp int64, level int, updatedAt time.Time) (*PlayerProgression, error) {
	if playerID == "" {
		return nil, fmt.Errorf("player ID is required")
	}
	if xp < 0 {
		return nil, fmt.Errorf("xp cannot be negative")
	}
	return &PlayerProgression{
		playerID:  playerID,
		xp:        xp,
		level:     level,
		updatedAt: updatedAt,
	}, nil
}

func (p *PlayerProgression) PlayerID() string {
	return p.playerID
}

func (p *PlayerProgression) XP() int64 {
	return p.xp
}

func (p *PlayerProgression) Level() int {
	return p.level
}

func (p *PlayerProgression) UpdatedAt() time.Time {
	return p.updatedAt
}

// LevelForXP returns floor(xp / xpPerLevel), or 0 when xpPerLevel is not positive.
func LevelForXP(xp, xpPerLevel int64) int {
	if xpPerLevel <= 0 {
		return 0
	}
	return int(xp / xpPerLevel)
}
