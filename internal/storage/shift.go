package storage

import "time"

const (
	ShiftActive    = "active"
	ShiftCompleted = "completed"
	ShiftCancelled = "cancelled"
)

type Shift struct {
	ID                  int64      `json:"id"`
	UserID              int64      `json:"user_id"`
	Date                time.Time  `json:"date"`
	StartTime           time.Time  `json:"start_time"`
	EndTime             *time.Time `json:"end_time"`
	TotalWorkingMinutes int        `json:"total_working_minutes"`
	Status              string     `json:"status"`
}

// DayRange returns the [start, end) window of the calendar day of t.
func DayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
