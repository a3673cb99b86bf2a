package usecases

import (
	"context"

	"github.com/harbinger-games/harbinger/internal/application/progression/dto"
)

type ReportMatchExecutor interface {
	Execute(ctx context.Context, cmd ReportMatchCommand) (*dto.MatchReportDTO, error)
}
