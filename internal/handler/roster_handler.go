package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courtmaster/courtledger-api/internal/service"
	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
	"github.com/courtmaster/courtledger-api/pkg/response"
)

// RosterHandler exposes student roster endpoints.
type RosterHandler struct {
	ledger *service.LedgerService
}

// NewRosterHandler constructs RosterHandler.
func NewRosterHandler(ledger *service.LedgerService) *RosterHandler {
	return &RosterHandler{ledger: ledger}
}

// List godoc
// @Summary List students
// @Description Returns full rows for the coach, a reduced projection otherwise.
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *RosterHandler) List(c *gin.Context) {
	actor := claimsFromContext(c)
	full, views := h.ledger.List(c.Request.Context(), actor)
	if actor.IsCoach() {
		response.JSON(c, http.StatusOK, full, nil)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Get godoc
// @Summary Get one student
// @Tags Roster
// @Produce json
// @Param name path string true "Student name"
// @Success 200 {object} response.Envelope
// @Router /students/{name} [get]
func (h *RosterHandler) Get(c *gin.Context) {
	actor := claimsFromContext(c)
	st, err := h.ledger.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !actor.IsCoach() {
		response.JSON(c, http.StatusOK, st.Public(), nil)
		return
	}
	response.JSON(c, http.StatusOK, st, nil)
}

// Register godoc
// @Summary Register a new student
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body service.RegisterStudentRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *RosterHandler) Register(c *gin.Context) {
	var req service.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	st, err := h.ledger.Register(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, st)
}

// Delete godoc
// @Summary Remove a student
// @Tags Roster
// @Produce json
// @Param name path string true "Student name"
// @Success 204
// @Router /students/{name} [delete]
func (h *RosterHandler) Delete(c *gin.Context) {
	if err := h.ledger.Delete(c.Request.Context(), c.Param("name"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetFrozen godoc
// @Summary Freeze or unfreeze a student
// @Tags Roster
// @Accept json
// @Produce json
// @Param name path string true "Student name"
// @Param payload body service.SetFrozenRequest true "Frozen flag"
// @Success 200 {object} response.Envelope
// @Router /students/{name}/frozen [put]
func (h *RosterHandler) SetFrozen(c *gin.Context) {
	var req service.SetFrozenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	st, err := h.ledger.SetFrozen(c.Request.Context(), c.Param("name"), req.Frozen, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, st, nil)
}

// Adjust godoc
// @Summary Manually adjust a student row
// @Tags Roster
// @Accept json
// @Produce json
// @Param name path string true "Student name"
// @Param payload body service.ManualAdjustRequest true "Adjustment payload"
// @Success 200 {object} response.Envelope
// @Router /students/{name} [patch]
func (h *RosterHandler) Adjust(c *gin.Context) {
	var req service.ManualAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	st, err := h.ledger.ManualAdjust(c.Request.Context(), c.Param("name"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, st, nil)
}
