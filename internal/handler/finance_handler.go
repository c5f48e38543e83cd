package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courtmaster/courtledger-api/internal/service"
	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
	"github.com/courtmaster/courtledger-api/pkg/response"
)

// FinanceHandler exposes the cash panel endpoints.
type FinanceHandler struct {
	finance *service.FinanceService
}

// NewFinanceHandler constructs FinanceHandler.
func NewFinanceHandler(finance *service.FinanceService) *FinanceHandler {
	return &FinanceHandler{finance: finance}
}

// Summary godoc
// @Summary Monthly revenue summary
// @Tags Finance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /finance/summary [get]
func (h *FinanceHandler) Summary(c *gin.Context) {
	summary, err := h.finance.Summary(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Transactions godoc
// @Summary Raw transaction ledger
// @Tags Finance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /finance/transactions [get]
func (h *FinanceHandler) Transactions(c *gin.Context) {
	txns, err := h.finance.ListTransactions(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, txns, nil)
}

// RecordExpense godoc
// @Summary Record a bookkeeping expense
// @Tags Finance
// @Accept json
// @Produce json
// @Param payload body service.RecordExpenseRequest true "Expense payload"
// @Success 201 {object} response.Envelope
// @Router /finance/expenses [post]
func (h *FinanceHandler) RecordExpense(c *gin.Context) {
	var req service.RecordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	txn, err := h.finance.RecordExpense(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, txn)
}
