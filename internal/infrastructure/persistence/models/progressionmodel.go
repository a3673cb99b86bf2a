package models

import "github.com/harbinger-games/harbinger/internal/shared/constants"

type PlayerProgressionModel struct {
	PlayerID  string `gorm:"primaryKey;size:64"`
	XP        int64  `gorm:"column:xp;not null;default:0"`
	Level     int    `gorm:"not null;default:0"`
	UpdatedAt int64  `gorm:"autoUpdateTime:milli;not null"`
}

func (PlayerProgressionModel) TableName() string {
	return constants.TableProgressions
}
