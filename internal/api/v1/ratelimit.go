package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/loopreach/loopreach/internal/api/dto"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/service"
	"github.com/loopreach/loopreach/internal/types"
)

// RateLimitHandler exposes the outbound admission check to internal callers
// (campaign workers, automations).
type RateLimitHandler struct {
	logger           *logger.Logger
	rateLimitService service.RateLimitService
}

func NewRateLimitHandler(logger *logger.Logger, rateLimitService service.RateLimitService) *RateLimitHandler {
	return &RateLimitHandler{
		logger:           logger,
		rateLimitService: rateLimitService,
	}
}

// Check answers whether one customer may receive another message on a
// channel right now. Read-only: the caller records the send itself.
func (h *RateLimitHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()

	if err := types.ValidateOrganizationContext(ctx); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "missing organization context"})
		return
	}

	customerID := c.Query("customer_id")
	if customerID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "customer_id is required"})
		return
	}

	channel := types.MessageChannel(c.DefaultQuery("channel", string(types.MessageChannelSMS)))
	if !channel.Validate() {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid channel"})
		return
	}

	result, err := h.rateLimitService.Check(ctx, customerID, channel)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrResponseInternal)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CheckBatch answers for a comma-separated list of customers with one
// aggregate query.
func (h *RateLimitHandler) CheckBatch(c *gin.Context) {
	ctx := c.Request.Context()

	if err := types.ValidateOrganizationContext(ctx); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "missing organization context"})
		return
	}

	raw := c.Query("customer_ids")
	if raw == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "customer_ids is required"})
		return
	}
	customerIDs := strings.Split(raw, ",")

	channel := types.MessageChannel(c.DefaultQuery("channel", string(types.MessageChannelSMS)))
	if !channel.Validate() {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid channel"})
		return
	}

	results, err := h.rateLimitService.CheckBatch(ctx, customerIDs, channel)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrResponseInternal)
		return
	}
	c.JSON(http.StatusOK, results)
}
