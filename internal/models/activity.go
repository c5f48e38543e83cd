package models

import "time"

// Activity log action categories. The detail column stays free text (it
// usually embeds the resulting balance) but the action names are fixed so
// consumers can filter without string guessing.
const (
	ActionLessonConsumed  = "Lesson Consumed"
	ActionLessonRefunded  = "Lesson Refunded"
	ActionPackageAdded    = "Package Added"
	ActionPaymentReceived = "Payment Received"
	ActionRegistration    = "New Registration"
	ActionStatusChanged   = "Status Changed"
	ActionStudentRemoved  = "Student Removed"
	ActionManualAdjust    = "Manual Adjustment"
)

// ActivityLogEntry is one immutable audit trail row, chronological by
// insertion order. Read-back ordering guarantees nothing beyond that, so
// display layers reverse it for most-recent-first views.
type ActivityLogEntry struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	StudentName string `json:"student_name"`
	Action      string `json:"action"`
	Detail      string `json:"detail"`
}

// NewActivityLogEntry stamps an audit row with the current date and time.
func NewActivityLogEntry(now time.Time, student, action, detail string) ActivityLogEntry {
	return ActivityLogEntry{
		Date:        now.Format("2006-01-02"),
		Time:        now.Format("15:04"),
		StudentName: student,
		Action:      action,
		Detail:      detail,
	}
}
