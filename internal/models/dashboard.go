package models

import "github.com/shopspring/decimal"

// MonthlyData holds the aggregated figures of one calendar month for a shop.
type MonthlyData struct {
	UserUID          string          `json:"-"`
	Year             int             `json:"year"`
	Month            int             `json:"month"`
	Revenue          decimal.Decimal `json:"revenue"`
	Expenses         decimal.Decimal `json:"expenses"`
	Appointments     int             `json:"appointments"`
	NewClients       int             `json:"new_clients"`
	ReturningClients int             `json:"returning_clients"`
}

// FunnelRow is the number of clients a marketing source brought in a month.
type FunnelRow struct {
	Source           string `json:"source" validate:"required"`
	NewClients       int    `json:"new_clients" validate:"min=0"`
	ReturningClients int    `json:"returning_clients" validate:"min=0"`
}

// MetricDelta compares a metric with the previous month.
type MetricDelta struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Percent  float64 `json:"percent"`
}

// Dashboard is the response of the dashboard endpoint.
type Dashboard struct {
	Year          int         `json:"year"`
	Month         int         `json:"month"`
	Revenue       MetricDelta `json:"revenue"`
	Appointments  MetricDelta `json:"appointments"`
	NewClients    MetricDelta `json:"new_clients"`
	RetentionRate float64     `json:"retention_rate"`
}

// FinanceSummary is the monthly profit view including projected recurring costs.
type FinanceSummary struct {
	Year              int             `json:"year"`
	Month             int             `json:"month"`
	Revenue           decimal.Decimal `json:"revenue"`
	OneOffExpenses    decimal.Decimal `json:"one_off_expenses"`
	RecurringExpenses decimal.Decimal `json:"recurring_expenses"`
	NetProfit         decimal.Decimal `json:"net_profit"`
}

// MonthlyReport is the payload of the dashboard import: the month's figures and
// its marketing funnel.
type MonthlyReport struct {
	Year             int             `json:"year" validate:"required"`
	Month            int             `json:"month" validate:"required,min=1,max=12"`
	Revenue          decimal.Decimal `json:"revenue"`
	Expenses         decimal.Decimal `json:"expenses"`
	Appointments     int             `json:"appointments" validate:"min=0"`
	NewClients       int             `json:"new_clients" validate:"min=0"`
	ReturningClients int             `json:"returning_clients" validate:"min=0"`
	Funnel           []FunnelRow     `json:"funnel,omitempty" validate:"dive"`
}
