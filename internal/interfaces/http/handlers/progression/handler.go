package progression

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harbinger-games/harbinger/internal/application/progression/usecases"
	"github.com/harbinger-games/harbinger/internal/interfaces/http/middleware"
	"github.com/harbinger-games/harbinger/internal/shared/errors"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
	"github.com/harbinger-games/harbinger/internal/shared/utils"
)

// ReportMatchRequest is the body of POST /match/report. Per-summary ranges are
// checked by the use case so a bad summary reads as invalid match data.
type ReportMatchRequest struct {
	MatchID         string                   `json:"match_id" binding:"required"`
	HostID          string                   `json:"host_id" binding:"required"`
	PlayerSummaries []usecases.PlayerSummary `json:"player_summaries" binding:"required,min=1,max=16"`
}

type ReportHandler struct {
	reportMatchUC usecases.ReportMatchExecutor
	logger        logger.Interface
}

func NewReportHandler(reportMatchUC usecases.ReportMatchExecutor, logger logger.Interface) *ReportHandler {
	return &ReportHandler{
		reportMatchUC: reportMatchUC,
		logger:        logger,
	}
}

// ReportMatch handles POST /match/report
// @Summary Report match results
// @Description Host submits end-of-match summaries; each reported player is awarded XP once
// @Tags progression
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body ReportMatchRequest true "Match report"
// @Success 200 {object} utils.APIResponse{data=dto.MatchReportDTO}
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse "Already reported"
// @Failure 500 {object} utils.APIResponse
// @Router /match/report [post]
func (h *ReportHandler) ReportMatch(c *gin.Context) {
	playerID, ok := middleware.PlayerIDFromContext(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("Player identity is required"))
		return
	}

	var req ReportMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for match report", "player_id", playerID, "error", err)
		utils.ErrorResponseWithError(c, utils.TranslateValidationError(err))
		return
	}

	result, err := h.reportMatchUC.Execute(c.Request.Context(), usecases.ReportMatchCommand{
		CallerID:  playerID,
		MatchID:   req.MatchID,
		HostID:    req.HostID,
		Summaries: req.PlayerSummaries,
	})
	if err != nil {
		if errors.IsForbiddenError(err) {
			h.logger.Warnw("match report refused", "player_id", playerID, "match_id", req.MatchID, "host_id", req.HostID)
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Match reported", result)
}
