package matchmaking

import (
	"time"

	mmApp "github.com/harbinger-games/harbinger/internal/application/matchmaking"
	"github.com/harbinger-games/harbinger/internal/application/matchmaking/dto"
)

// EnqueueRequest is the body of POST /matchmaking/enqueue. A zero players_per_match
// selects the configured default.
type EnqueueRequest struct {
	Mode            string `json:"mode" binding:"required,max=64"`
	Region          string `json:"region" binding:"required,max=64"`
	PlayersPerMatch int    `json:"players_per_match" binding:"omitempty,min=2,max=16"`
}

func (r EnqueueRequest) ToCommand(playerID string) mmApp.EnqueueCommand {
	return mmApp.EnqueueCommand{
		PlayerID:  playerID,
		Mode:      r.Mode,
		Region:    r.Region,
		PartySize: r.PlayersPerMatch,
	}
}

type EnqueueResponse struct {
	Queued          bool      `json:"queued"`
	ID              string    `json:"id"`
	Mode            string    `json:"mode"`
	Region          string    `json:"region"`
	PlayersPerMatch int       `json:"players_per_match"`
	CreatedAt       time.Time `json:"created_at"`
}

func toEnqueueResponse(t *dto.QueueTicketDTO) EnqueueResponse {
	return EnqueueResponse{
		Queued:          true,
		ID:              t.ID,
		Mode:            t.Mode,
		Region:          t.Region,
		PlayersPerMatch: t.PartySize,
		CreatedAt:       t.EnqueuedAt,
	}
}

type CancelResponse struct {
	Canceled bool   `json:"canceled"`
	Message  string `json:"message"`
}
