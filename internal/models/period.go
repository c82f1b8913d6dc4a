// internal/models/period.go
package models

import "time"

// Period keywords accepted by the sales endpoints.
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// PeriodStart resolves a period keyword to the inclusive lower bound of
// the window ending at now. "week" is a trailing 7-day window, "month" is
// the current calendar month. Unrecognized or empty keywords mean no
// filter and return the zero time.
func PeriodStart(period string, now time.Time) time.Time {
	switch period {
	case PeriodToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}
	}
}
