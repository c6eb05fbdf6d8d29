package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/loopreach/loopreach/internal/api/dto"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/service"
	"github.com/loopreach/loopreach/internal/types"
)

// WebhookLogHandler serves the operator-facing health surface for inbound
// webhook processing.
type WebhookLogHandler struct {
	logger     *logger.Logger
	logService service.WebhookLogService
}

func NewWebhookLogHandler(logger *logger.Logger, logService service.WebhookLogService) *WebhookLogHandler {
	return &WebhookLogHandler{
		logger:     logger,
		logService: logService,
	}
}

// GetStats returns status and topic counts, the success rate, the derived
// health classification and the most recent failures over a trailing window.
func (h *WebhookLogHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	if err := types.ValidateOrganizationContext(ctx); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "missing organization context"})
		return
	}

	windowDays := 7
	if raw := c.Query("window_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 90 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "window_days must be between 1 and 90"})
			return
		}
		windowDays = parsed
	}

	stats, err := h.logService.GetStats(ctx, types.GetOrganizationID(ctx), windowDays)
	if err != nil {
		h.logger.Errorw("webhook stats query failed", "error", err)
		c.JSON(ierr.HTTPStatusFromErr(err), dto.ErrResponseInternal)
		return
	}
	c.JSON(http.StatusOK, stats)
}
