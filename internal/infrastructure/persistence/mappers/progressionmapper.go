package mappers

import (
	"github.com/harbinger-games/harbinger/internal/domain/progression"
	"github.com/harbinger-games/harbinger/internal/infrastructure/persistence/models"
	"github.com/harbinger-games/harbinger/internal/shared/biztime"
)

func ProgressionToDomain(model *models.PlayerProgressionModel) (*progression.PlayerProgression, error) {
	return progression.ReconstructPlayerProgression(
		model.PlayerID,
		model.XP,
		model.Level,
		biztime.FromMillis(model.UpdatedAt),
	)
}
