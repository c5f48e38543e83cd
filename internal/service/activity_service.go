package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/courtmaster/courtledger-api/internal/models"
)

type activityLister interface {
	List(ctx context.Context) []models.ActivityLogEntry
}

// ActivityFilter narrows the history listing.
type ActivityFilter struct {
	StudentName string
	Limit       int
}

// ActivityService serves the audit trail newest-first.
type ActivityService struct {
	activity activityLister
	logger   *zap.Logger
}

// NewActivityService constructs ActivityService.
func NewActivityService(activity activityLister, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{activity: activity, logger: logger}
}

// List returns audit entries most recent first. The store appends
// chronologically, so reversing the read order is sufficient.
func (s *ActivityService) List(ctx context.Context, filter ActivityFilter) []models.ActivityLogEntry {
	entries := s.activity.List(ctx)

	out := make([]models.ActivityLogEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if filter.StudentName != "" && entries[i].StudentName != filter.StudentName {
			continue
		}
		out = append(out, entries[i])
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out
}
