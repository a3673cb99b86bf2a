package matchmaking

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mmApp "github.com/harbinger-games/harbinger/internal/application/matchmaking"
	"github.com/harbinger-games/harbinger/internal/interfaces/http/middleware"
	"github.com/harbinger-games/harbinger/internal/shared/errors"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
	"github.com/harbinger-games/harbinger/internal/shared/utils"
)

const (
	msgCanceled      = "Canceled matchmaking"
	msgNothingQueued = "No active queue ticket"
)

type Handler struct {
	matchmaker mmApp.Matchmaker
	logger     logger.Interface
}

func NewHandler(matchmaker mmApp.Matchmaker, logger logger.Interface) *Handler {
	return &Handler{
		matchmaker: matchmaker,
		logger:     logger,
	}
}

// Enqueue handles POST /matchmaking/enqueue
// @Summary Enqueue for matchmaking
// @Description Create a queue ticket for the caller and run a formation pass for its bucket
// @Tags matchmaking
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body EnqueueRequest true "Mode, region and party size"
// @Success 201 {object} utils.APIResponse{data=EnqueueResponse}
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse{data=EnqueueResponse} "Already queued"
// @Failure 429 {object} utils.APIResponse
// @Failure 500 {object} utils.APIResponse
// @Router /matchmaking/enqueue [post]
func (h *Handler) Enqueue(c *gin.Context) {
	playerID, ok := middleware.PlayerIDFromContext(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("Player identity is required"))
		return
	}

	var req EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for enqueue", "player_id", playerID, "error", err)
		utils.ErrorResponseWithError(c, utils.TranslateValidationError(err))
		return
	}

	result, err := h.matchmaker.Enqueue(c.Request.Context(), req.ToCommand(playerID))
	if err != nil {
		if errors.IsValidationError(err) {
			h.logger.Warnw("enqueue rejected", "player_id", playerID, "error", err)
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	if result.AlreadyQueued {
		c.JSON(http.StatusConflict, utils.APIResponse{
			Success: false,
			Data:    toEnqueueResponse(result.Ticket),
			Error: &utils.ErrorInfo{
				Type:    string(errors.ErrorTypeConflict),
				Message: "Already queued",
			},
		})
		return
	}

	utils.CreatedResponse(c, toEnqueueResponse(result.Ticket), "Queued for matchmaking")
}

// Cancel handles POST /matchmaking/cancel
// @Summary Cancel matchmaking
// @Description Cancel the caller's most recent queued ticket
// @Tags matchmaking
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=CancelResponse}
// @Failure 401 {object} utils.APIResponse
// @Failure 500 {object} utils.APIResponse
// @Router /matchmaking/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	playerID, ok := middleware.PlayerIDFromContext(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("Player identity is required"))
		return
	}

	canceled, err := h.matchmaker.Cancel(c.Request.Context(), playerID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp := CancelResponse{Canceled: canceled, Message: msgNothingQueued}
	if canceled {
		resp.Message = msgCanceled
	}
	utils.SuccessResponse(c, http.StatusOK, resp.Message, resp)
}

// GetStatus handles GET /matchmaking/status
// @Summary Get matchmaking status
// @Description Report whether the caller is idle, queued or matched
// @Tags matchmaking
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=dto.StatusDTO}
// @Failure 401 {object} utils.APIResponse
// @Failure 500 {object} utils.APIResponse
// @Router /matchmaking/status [get]
func (h *Handler) GetStatus(c *gin.Context) {
	playerID, ok := middleware.PlayerIDFromContext(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("Player identity is required"))
		return
	}

	status, err := h.matchmaker.GetStatus(c.Request.Context(), playerID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", status)
}

// GetMatch handles GET /matchmaking/match/:matchId
// @Summary Get match by ID
// @Description Get the players of a formed match
// @Tags matchmaking
// @Produce json
// @Security Bearer
// @Param matchId path string true "Match ID"
// @Success 200 {object} utils.APIResponse{data=dto.MatchDTO}
// @Failure 401 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /matchmaking/match/{matchId} [get]
func (h *Handler) GetMatch(c *gin.Context) {
	matchID := c.Param("matchId")
	match, err := h.matchmaker.GetMatch(c.Request.Context(), matchID)
	if err != nil {
		if errors.IsNotFoundError(err) {
			h.logger.Debugw("match not found", "match_id", matchID)
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", match)
}
