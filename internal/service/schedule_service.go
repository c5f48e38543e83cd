package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/courtmaster/courtledger-api/internal/models"
	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
)

type scheduleRepository interface {
	Load(ctx context.Context) []models.ScheduleSlot
	Save(ctx context.Context, slots []models.ScheduleSlot) error
}

// ScheduleService manages the weekly training grid. The grid is small and
// edited as a whole, so the only write is a full replacement.
type ScheduleService struct {
	schedule scheduleRepository
	logger   *zap.Logger
}

// NewScheduleService constructs ScheduleService.
func NewScheduleService(schedule scheduleRepository, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{schedule: schedule, logger: logger}
}

// Get returns the current grid. Public: the schedule is what students
// check to find their slot.
func (s *ScheduleService) Get(ctx context.Context) []models.ScheduleSlot {
	return s.schedule.Load(ctx)
}

// Replace swaps in a new grid.
func (s *ScheduleService) Replace(ctx context.Context, slots []models.ScheduleSlot, actor *models.JWTClaims) error {
	if !actor.IsCoach() {
		return appErrors.Clone(appErrors.ErrForbidden, "coach role required")
	}
	for _, slot := range slots {
		if strings.TrimSpace(slot.TimeSlot) == "" {
			return appErrors.Clone(appErrors.ErrValidation, "every row needs a time slot label")
		}
	}
	return s.schedule.Save(ctx, slots)
}
