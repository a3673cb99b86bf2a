package matchmaking

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	mmDomain "github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	"github.com/harbinger-games/harbinger/internal/interfaces/http/middleware"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
	"github.com/harbinger-games/harbinger/internal/shared/utils"
)

const (
	sseContentType       = "text/event-stream"
	sseKeepaliveInterval = 30 * time.Second

	eventMatchFormed = "match_formed"
)

// EventSource hands out per-player streams of formed matches.
type EventSource interface {
	Subscribe(playerID string) (<-chan mmDomain.MatchFormedEvent, func())
}

// EventsHandler streams match_formed events to the connected player.
type EventsHandler struct {
	source    EventSource
	keepalive time.Duration
	logger    logger.Interface
}

func NewEventsHandler(source EventSource, logger logger.Interface) *EventsHandler {
	return &EventsHandler{
		source:    source,
		keepalive: sseKeepaliveInterval,
		logger:    logger,
	}
}

// Stream handles GET /matchmaking/events
// @Summary Stream match events
// @Description Server-sent events; emits match_formed for matches that include the caller
// @Tags matchmaking
// @Produce text/event-stream
// @Security Bearer
// @Param access_token query string false "Access token for clients that cannot set headers"
// @Success 200 {string} string "event stream"
// @Failure 401 {object} utils.APIResponse
// @Router /matchmaking/events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	playerID, ok := middleware.PlayerIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Player identity is required")
		return
	}

	events, unsubscribe := h.source.Subscribe(playerID)
	defer unsubscribe()

	c.Header("Content-Type", sseContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	if _, err := c.Writer.WriteString(": connected\n\n"); err != nil {
		return
	}
	c.Writer.Flush()

	h.logger.Debugw("match event stream opened", "player_id", playerID)
	defer h.logger.Debugw("match event stream closed", "player_id", playerID)

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			c.SSEvent(eventMatchFormed, event)
			c.Writer.Flush()
		case <-keepalive.C:
			if _, err := c.Writer.WriteString(": keepalive\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
