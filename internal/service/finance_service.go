package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/courtmaster/courtledger-api/internal/models"
	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
)

type transactionRepository interface {
	List(ctx context.Context) []models.Transaction
	Append(ctx context.Context, txn models.Transaction) error
}

// RecordExpenseRequest describes a standalone bookkeeping expense.
type RecordExpenseRequest struct {
	Amount string `json:"amount" validate:"required"`
	Memo   string `json:"memo" validate:"required"`
}

// FinanceService aggregates the transactions ledger for the cash panel.
// Everything here is coach-only: the ledger holds per-student amounts.
type FinanceService struct {
	transactions transactionRepository
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewFinanceService constructs FinanceService.
func NewFinanceService(transactions transactionRepository, validate *validator.Validate, logger *zap.Logger) *FinanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinanceService{transactions: transactions, validator: validate, logger: logger, now: time.Now}
}

// Summary returns monthly revenue buckets and running totals.
func (s *FinanceService) Summary(ctx context.Context, actor *models.JWTClaims) (*models.FinanceSummary, error) {
	if !actor.IsCoach() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "coach role required")
	}
	txns := s.transactions.List(ctx)

	byMonth := make(map[string]*models.MonthTotal)
	summary := &models.FinanceSummary{
		CurrentMonth:     models.MonthBucket(s.now()),
		TransactionCount: len(txns),
	}
	for _, txn := range txns {
		bucket, ok := byMonth[txn.Month]
		if !ok {
			bucket = &models.MonthTotal{Month: txn.Month}
			byMonth[txn.Month] = bucket
		}
		switch txn.Kind {
		case models.KindExpense:
			bucket.Expense = bucket.Expense.Add(txn.Amount)
			summary.TotalExpense = summary.TotalExpense.Add(txn.Amount)
		default:
			bucket.Income = bucket.Income.Add(txn.Amount)
			summary.TotalIncome = summary.TotalIncome.Add(txn.Amount)
			if txn.Month == summary.CurrentMonth {
				summary.CurrentMonthIncome = summary.CurrentMonthIncome.Add(txn.Amount)
			}
		}
	}

	months := make([]models.MonthTotal, 0, len(byMonth))
	for _, bucket := range byMonth {
		months = append(months, *bucket)
	}
	// YYYY-MM buckets sort chronologically as strings.
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	summary.Months = months
	return summary, nil
}

// ListTransactions returns the raw ledger in insertion order.
func (s *FinanceService) ListTransactions(ctx context.Context, actor *models.JWTClaims) ([]models.Transaction, error) {
	if !actor.IsCoach() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "coach role required")
	}
	return s.transactions.List(ctx), nil
}

// RecordExpense appends a standalone expense row not tied to any student.
func (s *FinanceService) RecordExpense(ctx context.Context, req RecordExpenseRequest, actor *models.JWTClaims) (*models.Transaction, error) {
	if !actor.IsCoach() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "coach role required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid expense payload")
	}
	amount := models.ParseAmount(req.Amount)
	if !amount.IsPositive() {
		return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "expense amount must be positive")
	}
	txn := models.NewTransaction(s.now(), "", amount, req.Memo, models.KindExpense)
	if err := s.transactions.Append(ctx, txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

// Balance is a convenience for the cash headline figure.
func (s *FinanceService) Balance(ctx context.Context, actor *models.JWTClaims) (decimal.Decimal, error) {
	summary, err := s.Summary(ctx, actor)
	if err != nil {
		return decimal.Zero, err
	}
	return summary.TotalIncome.Sub(summary.TotalExpense), nil
}
