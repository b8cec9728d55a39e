package finance

import (
	"time"

	"github.com/subscriptio/subscriptio/internal/models"
)

// NextOccurrence computes the next billing date after from for the given
// recurrence descriptor. Monthly and custom recurrences advance by Interval
// months, annual by Interval*12 months; the day of month is then set to the
// anchor day. Anchor days past the end of the target month clamp to the last
// day of that month (day 31 in April yields April 30).
//
// A nil descriptor or an unknown kind yields ok=false: no next occurrence.
func NextOccurrence(r *models.Recurrence, from time.Time) (time.Time, bool) {
	if r == nil {
		return time.Time{}, false
	}

	months := r.Interval
	switch r.Kind {
	case models.RecurrenceMonthly, models.RecurrenceCustom:
	case models.RecurrenceAnnual:
		months = r.Interval * 12
	default:
		return time.Time{}, false
	}

	// Normalize year/month first, then clamp the anchor day. Adding months
	// and days in one time.Date call would overflow day 31 into the next
	// month instead of clamping.
	anchor := time.Date(from.Year(), from.Month()+time.Month(months), 1,
		from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location())

	day := r.AnchorDay
	if last := daysInMonth(anchor.Year(), anchor.Month()); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}

	return anchor.AddDate(0, 0, day-1), true
}

// daysInMonth returns the number of days in the given month.
// Day 0 of the following month is the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfMonth truncates t to the first of its month.
func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
