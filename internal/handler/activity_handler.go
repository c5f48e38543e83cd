package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/courtmaster/courtledger-api/internal/service"
	"github.com/courtmaster/courtledger-api/pkg/response"
)

// ActivityHandler exposes the audit trail.
type ActivityHandler struct {
	activity *service.ActivityService
}

// NewActivityHandler constructs ActivityHandler.
func NewActivityHandler(activity *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// List godoc
// @Summary Activity history, most recent first
// @Tags Activity
// @Produce json
// @Param student query string false "Filter by student name"
// @Param limit query int false "Maximum entries to return"
// @Success 200 {object} response.Envelope
// @Router /activity [get]
func (h *ActivityHandler) List(c *gin.Context) {
	filter := service.ActivityFilter{StudentName: c.Query("student")}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	entries := h.activity.List(c.Request.Context(), filter)
	response.JSON(c, http.StatusOK, entries, nil)
}
