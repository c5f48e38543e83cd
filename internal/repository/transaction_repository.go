package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/courtmaster/courtledger-api/internal/models"
	"github.com/courtmaster/courtledger-api/internal/store"
	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
)

// TransactionRepository appends to and lists the append-only ledger table.
type TransactionRepository struct {
	store  store.TableStore
	logger *zap.Logger
}

// NewTransactionRepository constructs a TransactionRepository.
func NewTransactionRepository(st store.TableStore, logger *zap.Logger) *TransactionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionRepository{store: st, logger: logger}
}

// List returns all ledger rows in insertion order, degrading to empty on
// read failure.
func (r *TransactionRepository) List(ctx context.Context) []models.Transaction {
	rows, err := r.store.ReadTable(ctx, store.TableTransactions)
	if err != nil {
		r.logger.Warn("transactions read failed, serving empty ledger", zap.Error(err))
		return nil
	}
	txns := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, decodeTransaction(row))
	}
	return txns
}

// Append writes one immutable ledger row.
func (r *TransactionRepository) Append(ctx context.Context, txn models.Transaction) error {
	if err := r.store.AppendRow(ctx, store.TableTransactions, encodeTransaction(txn)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to append transaction")
	}
	return nil
}

func decodeTransaction(row store.Row) models.Transaction {
	kind := models.KindIncome
	if models.TransactionKind(row["kind"]) == models.KindExpense {
		kind = models.KindExpense
	}
	return models.Transaction{
		Date:        cell(row, "date"),
		Month:       cell(row, "month"),
		StudentName: cell(row, "student"),
		Amount:      models.ParseAmount(row["amount"]),
		Memo:        cell(row, "memo"),
		Kind:        kind,
	}
}

func encodeTransaction(txn models.Transaction) store.Row {
	return store.Row{
		"date":    txn.Date,
		"month":   txn.Month,
		"student": txn.StudentName,
		"amount":  models.FormatAmount(txn.Amount),
		"memo":    txn.Memo,
		"kind":    string(txn.Kind),
	}
}
