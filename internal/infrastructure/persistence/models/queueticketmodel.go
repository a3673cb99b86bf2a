package models

import "github.com/harbinger-games/harbinger/internal/shared/constants"

// QueueTicketModel is the persistence shape of a queue ticket.
// ActiveKey is "player|mode|region" while queued and NULL otherwise; its unique index
// is what allows at most one queued ticket per player, mode and region.
type QueueTicketModel struct {
	ID         uint    `gorm:"primaryKey"`
	SID        string  `gorm:"column:sid;uniqueIndex:uk_queue_tickets_sid;size:32;not null"`
	PlayerID   string  `gorm:"size:64;not null;index:idx_queue_tickets_player,priority:1"`
	Mode       string  `gorm:"size:64;not null;index:idx_queue_tickets_bucket,priority:1"`
	Region     string  `gorm:"size:64;not null;index:idx_queue_tickets_bucket,priority:2"`
	PartySize  int     `gorm:"not null;index:idx_queue_tickets_bucket,priority:3"`
	State      string  `gorm:"size:16;not null;index:idx_queue_tickets_bucket,priority:4;index:idx_queue_tickets_player,priority:2;index:idx_queue_tickets_state_matched,priority:1"`
	ActiveKey  *string `gorm:"size:200;uniqueIndex:uk_queue_tickets_active_key"`
	MatchID    *string `gorm:"size:36;index:idx_queue_tickets_match"`
	EnqueuedAt int64   `gorm:"not null;index:idx_queue_tickets_bucket,priority:5;index:idx_queue_tickets_player,priority:3"`
	MatchedAt  *int64  `gorm:"index:idx_queue_tickets_state_matched,priority:2"`
	UpdatedAt  int64   `gorm:"autoUpdateTime:milli;not null"`
}

func (QueueTicketModel) TableName() string {
	return constants.TableQueueTickets
}
