package models

// ScheduleSlot is one row of the weekly training grid: a time slot and
// whatever the coach typed into each weekday cell.
type ScheduleSlot struct {
	TimeSlot  string `json:"time_slot"`
	Monday    string `json:"monday"`
	Tuesday   string `json:"tuesday"`
	Wednesday string `json:"wednesday"`
	Thursday  string `json:"thursday"`
	Friday    string `json:"friday"`
	Saturday  string `json:"saturday"`
	Sunday    string `json:"sunday"`
}
