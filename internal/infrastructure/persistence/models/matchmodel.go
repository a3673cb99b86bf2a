package models

import "github.com/harbinger-games/harbinger/internal/shared/constants"

type MatchModel struct {
	ID         string   `gorm:"primaryKey;size:36"`
	Mode       string   `gorm:"size:64;not null"`
	Region     string   `gorm:"size:64;not null"`
	PartySize  int      `gorm:"not null"`
	State      string   `gorm:"size:16;not null"`
	Players    []string `gorm:"serializer:json;type:text;not null"`
	CreatedAt  int64    `gorm:"autoCreateTime:milli;not null;index:idx_matches_created_at,sort:desc"`
	ReportedAt *int64
}

func (MatchModel) TableName() string {
	return constants.TableMatches
}
