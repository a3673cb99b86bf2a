package mappers

import (
	"fmt"

	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
	"github.com/harbinger-games/harbinger/internal/infrastructure/persistence/models"
	"github.com/harbinger-games/harbinger/internal/shared/biztime"
)

type MatchMapper interface {
	ToModel(m *matchmaking.Match) *models.MatchModel
	ToDomain(model *models.MatchModel) (*matchmaking.Match, error)
}

type MatchMapperImpl struct{}

func NewMatchMapper() MatchMapper {
	return &MatchMapperImpl{}
}

func (m *MatchMapperImpl) ToModel(match *matchmaking.Match) *models.MatchModel {
	return &models.MatchModel{
		ID:         match.ID(),
		Mode:       match.Mode(),
		Region:     match.Region(),
		PartySize:  match.PartySize(),
		State:      match.State().String(),
		Players:    match.Players(),
		CreatedAt:  biztime.ToMillis(match.CreatedAt()),
		ReportedAt: biztime.ToMillisPtr(match.ReportedAt()),
	}
}

func (m *MatchMapperImpl) ToDomain(model *models.MatchModel) (*matchmaking.Match, error) {
	bucket, err := vo.NewBucket(model.Mode, model.Region, model.PartySize)
	if err != nil {
		return nil, fmt.Errorf("match %s has invalid bucket: %w", model.ID, err)
	}
	state, err := vo.NewMatchState(model.State)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", model.ID, err)
	}

	return matchmaking.ReconstructMatch(
		model.ID,
		bucket,
		model.Players,
		state,
		biztime.FromMillis(model.CreatedAt),
		biztime.FromMillisPtr(model.ReportedAt),
	)
}
