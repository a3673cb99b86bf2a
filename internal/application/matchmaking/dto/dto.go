package dto

import (
	"time"

	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
)

const (
	StatusIdle    = "idle"
	StatusQueued  = "queued"
	StatusMatched = "matched"
)

type QueueTicketDTO struct {
	ID         string     `json:"id"`
	PlayerID   string     `json:"player_id"`
	Mode       string     `json:"mode"`
	Region     string     `json:"region"`
	PartySize  int        `json:"players_per_match"`
	State      string     `json:"state"`
	MatchID    string     `json:"match_id,omitempty"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
	MatchedAt  *time.Time `json:"matched_at,omitempty"`
}

type MatchDTO struct {
	MatchID    string     `json:"match_id"`
	Mode       string     `json:"mode"`
	Region     string     `json:"region"`
	Players    []string   `json:"players"`
	CreatedAt  time.Time  `json:"created_at"`
	State      string     `json:"state"`
	ReportedAt *time.Time `json:"reported_at,omitempty"`
}

// QueueSummaryDTO is the queue part of a status view.
type QueueSummaryDTO struct {
	TicketID   string    `json:"ticket_id"`
	Mode       string    `json:"mode"`
	Region     string    `json:"region"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

type StatusDTO struct {
	Status string           `json:"status"`
	Queue  *QueueSummaryDTO `json:"queue,omitempty"`
	Match  *MatchDTO        `json:"match,omitempty"`
}

func ToQueueTicketDTO(t *matchmaking.QueueTicket) *QueueTicketDTO {
	if t == nil {
		return nil
	}
	return &QueueTicketDTO{
		ID:         t.SID(),
		PlayerID:   t.PlayerID(),
		Mode:       t.Mode(),
		Region:     t.Region(),
		PartySize:  t.PartySize(),
		State:      t.State().String(),
		MatchID:    t.MatchID(),
		EnqueuedAt: t.EnqueuedAt(),
		MatchedAt:  t.MatchedAt(),
	}
}

func ToMatchDTO(m *matchmaking.Match) *MatchDTO {
	if m == nil {
		return nil
	}
	return &MatchDTO{
		MatchID:    m.ID(),
		Mode:       m.Mode(),
		Region:     m.Region(),
		Players:    m.Players(),
		CreatedAt:  m.CreatedAt(),
		State:      m.State().String(),
		ReportedAt: m.ReportedAt(),
	}
}

func ToQueueSummaryDTO(t *matchmaking.QueueTicket) *QueueSummaryDTO {
	if t == nil {
		return nil
	}
	return &QueueSummaryDTO{
		TicketID:   t.SID(),
		Mode:       t.Mode(),
		Region:     t.Region(),
		EnqueuedAt: t.EnqueuedAt(),
	}
}

func IdleStatus() *StatusDTO {
	return &StatusDTO{Status: StatusIdle}
}

func QueuedStatus(t *matchmaking.QueueTicket) *StatusDTO {
	return &StatusDTO{Status: StatusQueued, Queue: ToQueueSummaryDTO(t)}
}

func MatchedStatus(m *matchmaking.Match) *StatusDTO {
	return &StatusDTO{Status: StatusMatched, Match: ToMatchDTO(m)}
}
