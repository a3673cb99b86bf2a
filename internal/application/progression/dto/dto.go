package dto

import "github.com/harbinger-games/harbinger/internal/domain/progression"

type MatchAwardDTO struct {
	UserID    string `json:"user_id"`
	XPAwarded int64  `json:"xp_awarded"`
	NewXP     int64  `json:"new_xp"`
	NewLevel  int    `json:"new_level"`
}

type MatchReportDTO struct {
	MatchID string          `json:"match_id"`
	Awards  []MatchAwardDTO `json:"awards"`
}

func ToMatchAwardDTO(awarded int64, p *progression.PlayerProgression) MatchAwardDTO {
	return MatchAwardDTO{
		UserID:    p.PlayerID(),
		XPAwarded: awarded,
		NewXP:     p.XP(),
		NewLevel:  p.Level(),
	}
}
