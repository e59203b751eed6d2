package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency discriminates which rule fields of a RecurringExpense are meaningful.
type Frequency string

// Supported recurrence frequencies.
const (
	FrequencyOnce    Frequency = "once"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// RecurringExpense is a user-authored template for a repeating cost.
// Exactly the rule fields matching Frequency are non-nil.
type RecurringExpense struct {
	ID          int             `json:"id"`
	UserUID     string          `json:"user_id"`
	Label       string          `json:"label"`
	Amount      decimal.Decimal `json:"amount"`
	Frequency   Frequency       `json:"frequency"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     *time.Time      `json:"end_date"`
	WeeklyDays  []time.Weekday  `json:"weekly_days"`
	MonthlyDay  *int            `json:"monthly_day"`
	YearlyMonth *int            `json:"yearly_month"` // 0 = January
	YearlyDay   *int            `json:"yearly_day"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// RecurringExpenseInput is the editor form as received from the client.
// It may carry stale rule fields from a previously selected frequency.
type RecurringExpenseInput struct {
	Label       string  `json:"label" validate:"required"`
	Amount      string  `json:"amount" validate:"required"`
	Frequency   string  `json:"frequency" validate:"required"`
	StartDate   string  `json:"start_date" validate:"required"`
	EndDate     *string `json:"end_date,omitempty"`
	WeeklyDays  []int   `json:"weekly_days,omitempty"`
	MonthlyDay  *int    `json:"monthly_day,omitempty"`
	YearlyMonth *int    `json:"yearly_month,omitempty"`
	YearlyDay   *int    `json:"yearly_day,omitempty"`
}

// RecurringExpensePage is one page of a user's recurring expenses.
type RecurringExpensePage struct {
	Items    []*RecurringExpense `json:"items"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}
