package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/courtmaster/courtledger-api/internal/models"
	"github.com/courtmaster/courtledger-api/internal/store"
	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
)

// ActivityRepository manages the append-only audit trail table.
type ActivityRepository struct {
	store  store.TableStore
	logger *zap.Logger
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(st store.TableStore, logger *zap.Logger) *ActivityRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityRepository{store: st, logger: logger}
}

// List returns all audit rows in insertion order, degrading to empty on
// read failure.
func (r *ActivityRepository) List(ctx context.Context) []models.ActivityLogEntry {
	rows, err := r.store.ReadTable(ctx, store.TableActivityLog)
	if err != nil {
		r.logger.Warn("activity log read failed, serving empty log", zap.Error(err))
		return nil
	}
	entries := make([]models.ActivityLogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, models.ActivityLogEntry{
			Date:        cell(row, "date"),
			Time:        cell(row, "time"),
			StudentName: cell(row, "student"),
			Action:      cell(row, "action"),
			Detail:      cell(row, "detail"),
		})
	}
	return entries
}

// Append writes one immutable audit row.
func (r *ActivityRepository) Append(ctx context.Context, entry models.ActivityLogEntry) error {
	row := store.Row{
		"date":    entry.Date,
		"time":    entry.Time,
		"student": entry.StudentName,
		"action":  entry.Action,
		"detail":  entry.Detail,
	}
	if err := r.store.AppendRow(ctx, store.TableActivityLog, row); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to append activity entry")
	}
	return nil
}
