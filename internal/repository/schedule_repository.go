package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/courtmaster/courtledger-api/internal/models"
	"github.com/courtmaster/courtledger-api/internal/store"
	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
)

// ScheduleRepository reads and replaces the weekly training grid.
type ScheduleRepository struct {
	store  store.TableStore
	logger *zap.Logger
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(st store.TableStore, logger *zap.Logger) *ScheduleRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleRepository{store: st, logger: logger}
}

// Load returns the grid rows, degrading to empty on read failure.
func (r *ScheduleRepository) Load(ctx context.Context) []models.ScheduleSlot {
	rows, err := r.store.ReadTable(ctx, store.TableSchedule)
	if err != nil {
		r.logger.Warn("schedule read failed, serving empty grid", zap.Error(err))
		return nil
	}
	slots := make([]models.ScheduleSlot, 0, len(rows))
	for _, row := range rows {
		slots = append(slots, models.ScheduleSlot{
			TimeSlot:  cell(row, "time_slot"),
			Monday:    cell(row, "monday"),
			Tuesday:   cell(row, "tuesday"),
			Wednesday: cell(row, "wednesday"),
			Thursday:  cell(row, "thursday"),
			Friday:    cell(row, "friday"),
			Saturday:  cell(row, "saturday"),
			Sunday:    cell(row, "sunday"),
		})
	}
	return slots
}

// Save replaces the whole grid.
func (r *ScheduleRepository) Save(ctx context.Context, slots []models.ScheduleSlot) error {
	rows := make([]store.Row, 0, len(slots))
	for _, s := range slots {
		rows = append(rows, store.Row{
			"time_slot": s.TimeSlot,
			"monday":    s.Monday,
			"tuesday":   s.Tuesday,
			"wednesday": s.Wednesday,
			"thursday":  s.Thursday,
			"friday":    s.Friday,
			"saturday":  s.Saturday,
			"sunday":    s.Sunday,
		})
	}
	if err := r.store.OverwriteTable(ctx, store.TableSchedule, rows); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to write schedule")
	}
	return nil
}
