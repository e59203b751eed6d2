// Package expense validates and normalises recurring-expense rules and expands
// them into concrete dates for read-side projections.
package expense

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/barbershop-manager/internal/models"
)

// DateLayout is the wire format of start_date and end_date.
const DateLayout = "2006-01-02"

// Amounts are stored as NUMERIC(12, 2).
const (
	AmountScale     = 2
	amountPrecision = 12
)

var maxAmount = decimal.New(1, amountPrecision-AmountScale)

// ErrValidation is wrapped by every rule validation failure.
var ErrValidation = errors.New("invalid recurring expense")

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Build validates the editor input and returns a record in which only the rule
// fields matching the frequency are set. Stale fields from a previously
// selected frequency are dropped.
func Build(in models.RecurringExpenseInput) (models.RecurringExpense, error) {
	var e models.RecurringExpense

	label := strings.TrimSpace(in.Label)
	if label == "" {
		return e, invalid("label", "must not be empty")
	}
	e.Label = label

	amount, err := decimal.NewFromString(strings.TrimSpace(in.Amount))
	if err != nil {
		return e, invalid("amount", "%q is not a decimal number", in.Amount)
	}
	if !amount.Equal(amount.Round(AmountScale)) {
		return e, invalid("amount", "at most %d decimal places", AmountScale)
	}
	if amount.Abs().GreaterThanOrEqual(maxAmount) {
		return e, invalid("amount", "must be below %s", maxAmount)
	}
	e.Amount = amount.Round(AmountScale)

	start, err := time.Parse(DateLayout, strings.TrimSpace(in.StartDate))
	if err != nil {
		return e, invalid("start_date", "expected YYYY-MM-DD, got %q", in.StartDate)
	}
	e.StartDate = start

	if in.EndDate != nil && strings.TrimSpace(*in.EndDate) != "" {
		end, err := time.Parse(DateLayout, strings.TrimSpace(*in.EndDate))
		if err != nil {
			return e, invalid("end_date", "expected YYYY-MM-DD, got %q", *in.EndDate)
		}
		if end.Before(start) {
			return e, invalid("end_date", "must not be before start_date")
		}
		e.EndDate = &end
	}

	e.Frequency = models.Frequency(strings.ToLower(strings.TrimSpace(in.Frequency)))
	switch e.Frequency {
	case models.FrequencyOnce:
	case models.FrequencyWeekly:
		days, err := weekdays(in.WeeklyDays)
		if err != nil {
			return e, err
		}
		e.WeeklyDays = days
	case models.FrequencyMonthly:
		if in.MonthlyDay == nil || *in.MonthlyDay < 1 || *in.MonthlyDay > 31 {
			return e, invalid("monthly_day", "must be between 1 and 31")
		}
		e.MonthlyDay = intPtr(*in.MonthlyDay)
	case models.FrequencyYearly:
		if in.YearlyDay == nil || *in.YearlyDay < 1 || *in.YearlyDay > 31 {
			return e, invalid("yearly_day", "must be between 1 and 31")
		}
		if in.YearlyMonth == nil || *in.YearlyMonth < 0 || *in.YearlyMonth > 11 {
			return e, invalid("yearly_month", "must be between 0 (January) and 11 (December)")
		}
		e.YearlyDay = intPtr(*in.YearlyDay)
		e.YearlyMonth = intPtr(*in.YearlyMonth)
	default:
		return e, invalid("frequency", "unknown frequency %q", in.Frequency)
	}

	return e, nil
}

func weekdays(in []int) ([]time.Weekday, error) {
	if len(in) == 0 {
		return nil, invalid("weekly_days", "at least one weekday is required")
	}
	days := make([]time.Weekday, 0, len(in))
	for _, d := range in {
		if d < int(time.Sunday) || d > int(time.Saturday) {
			return nil, invalid("weekly_days", "weekday %d out of range 0..6", d)
		}
		days = append(days, time.Weekday(d))
	}
	slices.Sort(days)
	return slices.Compact(days), nil
}

func intPtr(v int) *int { return &v }
