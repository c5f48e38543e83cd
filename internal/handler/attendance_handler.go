package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courtmaster/courtledger-api/internal/service"
	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
	"github.com/courtmaster/courtledger-api/pkg/response"
)

// AttendanceHandler exposes the lesson-credit and payment operations.
type AttendanceHandler struct {
	ledger *service.LedgerService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(ledger *service.LedgerService) *AttendanceHandler {
	return &AttendanceHandler{ledger: ledger}
}

// Consume godoc
// @Summary Deduct one lesson
// @Tags Attendance
// @Produce json
// @Param name path string true "Student name"
// @Success 200 {object} response.Envelope
// @Router /students/{name}/consume [post]
func (h *AttendanceHandler) Consume(c *gin.Context) {
	st, err := h.ledger.ConsumeLesson(c.Request.Context(), c.Param("name"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, st, nil)
}

// Refund godoc
// @Summary Refund one lesson
// @Tags Attendance
// @Produce json
// @Param name path string true "Student name"
// @Success 200 {object} response.Envelope
// @Router /students/{name}/refund [post]
func (h *AttendanceHandler) Refund(c *gin.Context) {
	st, err := h.ledger.RefundLesson(c.Request.Context(), c.Param("name"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, st, nil)
}

// AddPackage godoc
// @Summary Add lessons to a student's package
// @Tags Attendance
// @Accept json
// @Produce json
// @Param name path string true "Student name"
// @Param payload body service.AddPackageRequest true "Package payload"
// @Success 200 {object} response.Envelope
// @Router /students/{name}/packages [post]
func (h *AttendanceHandler) AddPackage(c *gin.Context) {
	var req service.AddPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	st, err := h.ledger.AddPackage(c.Request.Context(), c.Param("name"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, st, nil)
}

// RecordPayment godoc
// @Summary Record a payment for a student
// @Tags Attendance
// @Accept json
// @Produce json
// @Param name path string true "Student name"
// @Param payload body service.RecordPaymentRequest true "Payment payload"
// @Success 200 {object} response.Envelope
// @Router /students/{name}/payments [post]
func (h *AttendanceHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	st, err := h.ledger.RecordPayment(c.Request.Context(), c.Param("name"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, st, nil)
}
