package expense

import (
	"time"

	"github.com/magabrotheeeer/barbershop-manager/internal/models"
)

// maxOccurrences caps a single expansion.
const maxOccurrences = 10000

// Occurrences returns the dates in [from, to) on which the expense falls,
// bounded by its start and end dates. Days past the end of a short month are
// clamped to the month's last day.
func Occurrences(e models.RecurringExpense, from, to time.Time) []time.Time {
	start := dateOf(e.StartDate)
	from, to = dateOf(from), dateOf(to)
	if from.Before(start) {
		from = start
	}
	if e.EndDate != nil {
		// end_date is inclusive
		if end := dateOf(*e.EndDate).AddDate(0, 0, 1); end.Before(to) {
			to = end
		}
	}
	if !from.Before(to) {
		return nil
	}

	var out []time.Time
	add := func(d time.Time) bool {
		if d.Before(from) {
			return true
		}
		if !d.Before(to) || len(out) >= maxOccurrences {
			return false
		}
		out = append(out, d)
		return true
	}

	switch e.Frequency {
	case models.FrequencyOnce:
		add(start)
	case models.FrequencyWeekly:
		if len(e.WeeklyDays) == 0 {
			return nil
		}
		for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
			if containsWeekday(e.WeeklyDays, d.Weekday()) && !add(d) {
				break
			}
		}
	case models.FrequencyMonthly:
		if e.MonthlyDay == nil {
			return nil
		}
		for y, m := from.Year(), from.Month(); ; m++ {
			if m > time.December {
				y, m = y+1, time.January
			}
			if !add(clampedDate(y, m, *e.MonthlyDay)) {
				break
			}
		}
	case models.FrequencyYearly:
		if e.YearlyMonth == nil || e.YearlyDay == nil {
			return nil
		}
		month := time.Month(*e.YearlyMonth + 1)
		for y := from.Year(); ; y++ {
			if !add(clampedDate(y, month, *e.YearlyDay)) {
				break
			}
		}
	}
	return out
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clampedDate(year int, month time.Month, day int) time.Time {
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func containsWeekday(days []time.Weekday, wd time.Weekday) bool {
	for _, d := range days {
		if d == wd {
			return true
		}
	}
	return false
}
