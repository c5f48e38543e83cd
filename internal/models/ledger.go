package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is a closed set: the old sheet distinguished entry types
// by free-text matching on a "Tip" column, which broke every time a column
// moved. The engine only ever produces these two values.
type TransactionKind string

const (
	KindIncome  TransactionKind = "Income"
	KindExpense TransactionKind = "Expense"
)

// Transaction is one immutable ledger row. Appended by the engine, never
// mutated or deleted.
type Transaction struct {
	Date        string          `json:"date"`
	Month       string          `json:"month"`
	StudentName string          `json:"student_name"`
	Amount      decimal.Decimal `json:"amount"`
	Memo        string          `json:"memo"`
	Kind        TransactionKind `json:"kind"`
}

// NewTransaction stamps a ledger row with the date and month bucket.
func NewTransaction(now time.Time, student string, amount decimal.Decimal, memo string, kind TransactionKind) Transaction {
	return Transaction{
		Date:        now.Format("2006-01-02"),
		Month:       MonthBucket(now),
		StudentName: student,
		Amount:      amount,
		Memo:        memo,
		Kind:        kind,
	}
}

// MonthBucket derives the aggregation key for monthly revenue summaries.
func MonthBucket(t time.Time) string {
	return t.Format("2006-01")
}

// MonthTotal is one bar of the revenue chart data.
type MonthTotal struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// FinanceSummary aggregates the transactions table for the cash panel.
type FinanceSummary struct {
	CurrentMonth       string          `json:"current_month"`
	CurrentMonthIncome decimal.Decimal `json:"current_month_income"`
	TotalIncome        decimal.Decimal `json:"total_income"`
	TotalExpense       decimal.Decimal `json:"total_expense"`
	Months             []MonthTotal    `json:"months"`
	TransactionCount   int             `json:"transaction_count"`
}
