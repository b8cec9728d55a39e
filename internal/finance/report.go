package finance

import (
	"math"
	"sort"
	"time"

	"github.com/subscriptio/subscriptio/internal/models"
)

// ForecastMonth is one month of projected aggregate spend.
type ForecastMonth struct {
	// Month is the first day of the forecasted calendar month.
	Month time.Time `json:"month"`

	// MonthName is a short display label, e.g. "Sep 2026".
	MonthName string `json:"monthName"`

	// Total is the summed monthly-equivalent cost of all active
	// subscriptions, rounded to cents.
	Total float64 `json:"total"`

	// ActiveSubscriptions is how many subscriptions contributed.
	ActiveSubscriptions int `json:"activeSubscriptions"`

	// Trend is this month's total minus the previous month's (0 for the
	// first month).
	Trend float64 `json:"trend"`
}

// CategoryTotal is the aggregate for one subscription category.
type CategoryTotal struct {
	Category string `json:"category"`

	// Total is the summed per-occurrence amount of the category's active
	// subscriptions.
	Total float64 `json:"total"`

	// MonthlyEquivalent is the summed normalized per-month cost.
	MonthlyEquivalent float64 `json:"monthlyEquivalent"`

	// Count is the number of active subscriptions in the category.
	Count int `json:"count"`
}

// ExpiringSubscription annotates a subscription whose next renewal falls
// within the lookahead window.
type ExpiringSubscription struct {
	models.Subscription

	// NextRenewal is the upcoming renewal date derived from the anchor day.
	NextRenewal time.Time `json:"nextRenewalDate"`

	// DaysUntilRenewal counts whole days from today to NextRenewal.
	DaysUntilRenewal int `json:"daysUntilRenewal"`
}

// MonthlyEquivalent normalizes a subscription's cost to a per-month figure
// regardless of its billing period: monthly and custom recurrences divide the
// amount by the interval, annual by 12*interval. A subscription without a
// recurrence descriptor contributes 0.
func MonthlyEquivalent(sub models.Subscription) float64 {
	if sub.Recurrence == nil {
		return 0
	}
	interval := sub.Recurrence.Interval
	if interval < 1 {
		return 0
	}
	switch sub.Recurrence.Kind {
	case models.RecurrenceMonthly, models.RecurrenceCustom:
		return sub.Amount / float64(interval)
	case models.RecurrenceAnnual:
		return sub.Amount / float64(12*interval)
	default:
		return sub.Amount
	}
}

// Forecast projects aggregate monthly spend over the given number of calendar
// months starting from now's month. Every active subscription contributes its
// monthly-equivalent cost to every forecasted month, independent of when its
// billing actually falls; the projection is a smoothed spend rate, not a cash
// flow calendar.
func Forecast(subs []models.Subscription, months int, now time.Time) []ForecastMonth {
	if months < 0 {
		months = 0
	}

	result := make([]ForecastMonth, 0, months)
	base := startOfMonth(now)
	for i := 0; i < months; i++ {
		month := base.AddDate(0, i, 0)

		var total float64
		var active int
		for _, sub := range subs {
			if !sub.Active() {
				continue
			}
			total += MonthlyEquivalent(sub)
			active++
		}

		entry := ForecastMonth{
			Month:               month,
			MonthName:           month.Format("Jan 2006"),
			Total:               RoundCents(total),
			ActiveSubscriptions: active,
		}
		if i > 0 {
			entry.Trend = RoundCents(entry.Total - result[i-1].Total)
		}
		result = append(result, entry)
	}

	return result
}

// CategoryBreakdown groups active subscriptions by category and sums their
// per-occurrence amounts and monthly equivalents, sorted descending by
// monthly-equivalent total. Subscriptions without a category land in "Other".
func CategoryBreakdown(subs []models.Subscription) []CategoryTotal {
	byCategory := make(map[string]*CategoryTotal)
	for _, sub := range subs {
		if !sub.Active() {
			continue
		}
		category := sub.Category
		if category == "" {
			category = "Other"
		}
		entry, ok := byCategory[category]
		if !ok {
			entry = &CategoryTotal{Category: category}
			byCategory[category] = entry
		}
		entry.Total += sub.Amount
		entry.MonthlyEquivalent += MonthlyEquivalent(sub)
		entry.Count++
	}

	result := make([]CategoryTotal, 0, len(byCategory))
	for _, entry := range byCategory {
		entry.Total = RoundCents(entry.Total)
		entry.MonthlyEquivalent = RoundCents(entry.MonthlyEquivalent)
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].MonthlyEquivalent != result[j].MonthlyEquivalent {
			return result[i].MonthlyEquivalent > result[j].MonthlyEquivalent
		}
		return result[i].Category < result[j].Category
	})
	return result
}

// ExpiringSubscriptions selects active subscriptions whose next renewal falls
// within [today, today+daysThreshold]. The next renewal is the anchor day in
// the current month, rolling to the next month when the day has already
// passed (clamped to month end either way). Results are sorted ascending by
// days until renewal.
func ExpiringSubscriptions(subs []models.Subscription, daysThreshold int, now time.Time) []ExpiringSubscription {
	today := startOfDay(now)
	limit := today.AddDate(0, 0, daysThreshold)

	var expiring []ExpiringSubscription
	for _, sub := range subs {
		if !sub.Active() || sub.Recurrence == nil || sub.Recurrence.AnchorDay < 1 {
			continue
		}

		next := renewalInMonth(today.Year(), today.Month(), sub.Recurrence.AnchorDay, today.Location())
		if next.Before(today) {
			next = renewalInMonth(today.Year(), today.Month()+1, sub.Recurrence.AnchorDay, today.Location())
		}

		if next.Before(today) || next.After(limit) {
			continue
		}
		expiring = append(expiring, ExpiringSubscription{
			Subscription:     sub,
			NextRenewal:      next,
			DaysUntilRenewal: int(math.Round(next.Sub(today).Hours() / 24)),
		})
	}

	sort.Slice(expiring, func(i, j int) bool {
		if expiring[i].DaysUntilRenewal != expiring[j].DaysUntilRenewal {
			return expiring[i].DaysUntilRenewal < expiring[j].DaysUntilRenewal
		}
		return expiring[i].Name < expiring[j].Name
	})
	return expiring
}

// renewalInMonth returns the anchor day within the given month, clamped to
// the month's last day. time.Date normalizes month overflow (month 13 is
// January of the next year).
func renewalInMonth(year int, month time.Month, anchorDay int, loc *time.Location) time.Time {
	norm := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	day := anchorDay
	if last := daysInMonth(norm.Year(), norm.Month()); day > last {
		day = last
	}
	return time.Date(norm.Year(), norm.Month(), day, 0, 0, 0, 0, loc)
}

// UpcomingDuePayments returns the unpaid payments due within the next
// thresholdDays, sorted ascending by due date.
func UpcomingDuePayments(payments []models.Payment, thresholdDays int, now time.Time) []models.Payment {
	if thresholdDays <= 0 {
		return []models.Payment{}
	}
	today := startOfDay(now)
	limit := today.AddDate(0, 0, thresholdDays)

	upcoming := make([]models.Payment, 0)
	for _, p := range payments {
		if p.Paid {
			continue
		}
		due := startOfDay(p.DueDate)
		if due.Before(today) || due.After(limit) {
			continue
		}
		upcoming = append(upcoming, p)
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].DueDate.Before(upcoming[j].DueDate)
	})
	return upcoming
}

// PeriodExpenses sums the amounts of payments due within [start, end].
func PeriodExpenses(payments []models.Payment, start, end time.Time) float64 {
	var total float64
	for _, p := range payments {
		if p.DueDate.Before(start) || p.DueDate.After(end) {
			continue
		}
		total += p.Amount
	}
	return RoundCents(total)
}
