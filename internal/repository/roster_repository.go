package repository

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/courtmaster/courtledger-api/internal/models"
	"github.com/courtmaster/courtledger-api/internal/store"
	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
)

// RosterRepository reads and writes the roster table as a typed snapshot.
type RosterRepository struct {
	store  store.TableStore
	logger *zap.Logger
}

// NewRosterRepository constructs a RosterRepository.
func NewRosterRepository(st store.TableStore, logger *zap.Logger) *RosterRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterRepository{store: st, logger: logger}
}

// Load returns the current roster snapshot. A failed read degrades to an
// empty roster so the caller can still render: the store owns durability,
// not availability.
func (r *RosterRepository) Load(ctx context.Context) *models.Roster {
	rows, err := r.store.ReadTable(ctx, store.TableRoster)
	if err != nil {
		r.logger.Warn("roster read failed, serving empty snapshot", zap.Error(err))
		return models.NewRoster(nil)
	}
	students := make([]models.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, decodeStudent(row))
	}
	return models.NewRoster(students)
}

// Save overwrites the whole roster table with the snapshot. Rows are
// addressed by position in the store, so there is no per-row update path.
func (r *RosterRepository) Save(ctx context.Context, roster *models.Roster) error {
	students := roster.Students()
	rows := make([]store.Row, 0, len(students))
	for _, s := range students {
		rows = append(rows, encodeStudent(s))
	}
	if err := r.store.OverwriteTable(ctx, store.TableRoster, rows); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to write roster")
	}
	return nil
}

func decodeStudent(row store.Row) models.Student {
	s := models.Student{
		Name:             cell(row, "name"),
		PackageSize:      models.ParseCount(row["package_size"]),
		RemainingLessons: models.ParseCount(row["remaining_lessons"]),
		LastActivity:     cell(row, "last_activity"),
		Notes:            cell(row, "notes"),
	}
	switch models.StudentStatus(row["status"]) {
	case models.StatusFrozen:
		s.Status = models.StatusFrozen
	case models.StatusFinished:
		s.Status = models.StatusFinished
	default:
		s.Status = models.StatusActive
	}
	if models.PaymentStatus(row["payment_status"]) == models.PaymentPaid {
		s.PaymentStatus = models.PaymentPaid
	} else {
		s.PaymentStatus = models.PaymentUnpaid
	}
	return s
}

func encodeStudent(s models.Student) store.Row {
	return store.Row{
		"name":              s.Name,
		"package_size":      strconv.Itoa(s.PackageSize),
		"remaining_lessons": strconv.Itoa(s.RemainingLessons),
		"last_activity":     s.LastActivity,
		"status":            string(s.Status),
		"payment_status":    string(s.PaymentStatus),
		"notes":             s.Notes,
	}
}

// cell returns the raw value with the sentinel mapped to empty.
func cell(row store.Row, col string) string {
	v := row[col]
	if v == store.Sentinel {
		return ""
	}
	return v
}
