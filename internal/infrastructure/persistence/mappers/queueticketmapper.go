package mappers

import (
	"fmt"

	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
	"github.com/harbinger-games/harbinger/internal/infrastructure/persistence/models"
	"github.com/harbinger-games/harbinger/internal/shared/biztime"
)

// QueueTicketMapper handles the conversion between QueueTicket entities and persistence models.
type QueueTicketMapper interface {
	ToModel(t *matchmaking.QueueTicket) *models.QueueTicketModel
	ToDomain(model *models.QueueTicketModel) (*matchmaking.QueueTicket, error)
	ToDomainList(list []models.QueueTicketModel) ([]*matchmaking.QueueTicket, error)
}

type QueueTicketMapperImpl struct{}

func NewQueueTicketMapper() QueueTicketMapper {
	return &QueueTicketMapperImpl{}
}

func (m *QueueTicketMapperImpl) ToModel(t *matchmaking.QueueTicket) *models.QueueTicketModel {
	return &models.QueueTicketModel{
		ID:         t.ID(),
		SID:        t.SID(),
		PlayerID:   t.PlayerID(),
		Mode:       t.Mode(),
		Region:     t.Region(),
		PartySize:  t.PartySize(),
		State:      t.State().String(),
		ActiveKey:  optionalString(t.ActiveKey()),
		MatchID:    optionalString(t.MatchID()),
		EnqueuedAt: biztime.ToMillis(t.EnqueuedAt()),
		MatchedAt:  biztime.ToMillisPtr(t.MatchedAt()),
		UpdatedAt:  biztime.ToMillis(t.UpdatedAt()),
	}
}

func (m *QueueTicketMapperImpl) ToDomain(model *models.QueueTicketModel) (*matchmaking.QueueTicket, error) {
	bucket, err := vo.NewBucket(model.Mode, model.Region, model.PartySize)
	if err != nil {
		return nil, fmt.Errorf("ticket %s has invalid bucket: %w", model.SID, err)
	}
	state, err := vo.NewTicketState(model.State)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", model.SID, err)
	}

	return matchmaking.ReconstructQueueTicket(
		model.ID,
		model.SID,
		model.PlayerID,
		bucket,
		state,
		derefString(model.MatchID),
		biztime.FromMillis(model.EnqueuedAt),
		biztime.FromMillisPtr(model.MatchedAt),
		biztime.FromMillis(model.UpdatedAt),
	)
}

func (m *QueueTicketMapperImpl) ToDomainList(list []models.QueueTicketModel) ([]*matchmaking.QueueTicket, error) {
	tickets := make([]*matchmaking.QueueTicket, 0, len(list))
	for i := range list {
		t, err := m.ToDomain(&list[i])
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
