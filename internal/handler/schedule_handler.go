package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courtmaster/courtledger-api/internal/models"
	"github.com/courtmaster/courtledger-api/internal/service"
	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
	"github.com/courtmaster/courtledger-api/pkg/response"
)

// ScheduleHandler exposes the weekly training grid.
type ScheduleHandler struct {
	schedule *service.ScheduleService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(schedule *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule}
}

// Get godoc
// @Summary Weekly training schedule
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.schedule.Get(c.Request.Context()), nil)
}

// Replace godoc
// @Summary Replace the weekly schedule grid
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body []models.ScheduleSlot true "Schedule rows"
// @Success 200 {object} response.Envelope
// @Router /schedule [put]
func (h *ScheduleHandler) Replace(c *gin.Context) {
	var slots []models.ScheduleSlot
	if err := c.ShouldBindJSON(&slots); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.schedule.Replace(c.Request.Context(), slots, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}
