// Package services собирает отчёты дашборда: сравнение с прошлым месяцем,
// маркетинговые воронки и финансовую сводку с учётом регулярных расходов.
package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/barbershop-manager/internal/expense"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/month"
	"github.com/magabrotheeeer/barbershop-manager/internal/models"
	"github.com/magabrotheeeer/barbershop-manager/internal/realtime"
	"github.com/magabrotheeeer/barbershop-manager/internal/storage/repository"
)

// OtherSource имя строки, в которую суммируются источники за пределами top N.
const OtherSource = "Other"

// DefaultTopSources количество источников воронки по умолчанию.
const DefaultTopSources = 5

var hundred = decimal.NewFromInt(100)

// Repository описывает хранилище агрегатов.
type Repository interface {
	GetMonthlyData(ctx context.Context, userUID string, year, month int) (*models.MonthlyData, error)
	ListFunnel(ctx context.Context, userUID string, year, month int) ([]models.FunnelRow, error)
	ImportMonth(ctx context.Context, d models.MonthlyData, funnel []models.FunnelRow) error
}

// ExpenseLister возвращает все регулярные расходы пользователя.
type ExpenseLister interface {
	All(ctx context.Context, userUID string) ([]*models.RecurringExpense, error)
}

// ChangePublisher рассылает изменение строк подписчикам пользователя.
type ChangePublisher interface {
	Publish(userUID, table, action, id string, row any)
}

// Service сервис дашборда.
type Service struct {
	repo     Repository
	expenses ExpenseLister
	feed     ChangePublisher
	log      *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, expenses ExpenseLister, feed ChangePublisher, log *slog.Logger) *Service {
	return &Service{repo: repo, expenses: expenses, feed: feed, log: log}
}

// monthly возвращает агрегаты месяца; отсутствующий месяц считается нулевым.
func (s *Service) monthly(ctx context.Context, userUID string, year, mon int) (models.MonthlyData, error) {
	d, err := s.repo.GetMonthlyData(ctx, userUID, year, mon)
	if errors.Is(err, repository.ErrNotFound) {
		return models.MonthlyData{UserUID: userUID, Year: year, Month: mon}, nil
	}
	if err != nil {
		return models.MonthlyData{}, err
	}
	return *d, nil
}

// Dashboard сравнивает месяц с предыдущим.
func (s *Service) Dashboard(ctx context.Context, userUID string, year, mon int) (*models.Dashboard, error) {
	const op = "services.dashboard.Dashboard"
	if err := month.Validate(year, mon); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cur, err := s.monthly(ctx, userUID, year, mon)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	py, pm := month.Previous(year, mon)
	prev, err := s.monthly(ctx, userUID, py, pm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.Dashboard{
		Year:          year,
		Month:         mon,
		Revenue:       delta(cur.Revenue, prev.Revenue),
		Appointments:  delta(decimal.NewFromInt(int64(cur.Appointments)), decimal.NewFromInt(int64(prev.Appointments))),
		NewClients:    delta(decimal.NewFromInt(int64(cur.NewClients)), decimal.NewFromInt(int64(prev.NewClients))),
		RetentionRate: RetentionRate(cur.NewClients, cur.ReturningClients),
	}, nil
}

// PercentChange возвращает (cur-prev)/prev*100 с округлением до сотых.
// При prev=0 результат 0, если cur тоже 0, иначе 100.
func PercentChange(cur, prev decimal.Decimal) float64 {
	if prev.IsZero() {
		if cur.IsZero() {
			return 0
		}
		return 100
	}
	return cur.Sub(prev).Div(prev.Abs()).Mul(hundred).Round(2).InexactFloat64()
}

// RetentionRate доля вернувшихся клиентов в процентах; 0 без клиентов.
func RetentionRate(newClients, returning int) float64 {
	total := newClients + returning
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(returning)).
		Div(decimal.NewFromInt(int64(total))).
		Mul(hundred).Round(2).InexactFloat64()
}

func delta(cur, prev decimal.Decimal) models.MetricDelta {
	return models.MetricDelta{
		Current:  cur.InexactFloat64(),
		Previous: prev.InexactFloat64(),
		Percent:  PercentChange(cur, prev),
	}
}

// Funnels возвращает top источников по новым клиентам, остальные суммируются в "Other".
func (s *Service) Funnels(ctx context.Context, userUID string, year, mon, top int) ([]models.FunnelRow, error) {
	const op = "services.dashboard.Funnels"
	if err := month.Validate(year, mon); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := s.repo.ListFunnel(ctx, userUID, year, mon)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return TopSources(rows, top), nil
}

// TopSources сортирует строки по новым клиентам (при равенстве по имени источника)
// и сворачивает хвост после top строк в одну строку "Other".
func TopSources(rows []models.FunnelRow, top int) []models.FunnelRow {
	if top <= 0 {
		top = DefaultTopSources
	}
	sorted := slices.Clone(rows)
	slices.SortFunc(sorted, func(a, b models.FunnelRow) int {
		if c := cmp.Compare(b.NewClients, a.NewClients); c != 0 {
			return c
		}
		return cmp.Compare(a.Source, b.Source)
	})
	if len(sorted) <= top {
		return sorted
	}
	other := models.FunnelRow{Source: OtherSource}
	for _, r := range sorted[top:] {
		other.NewClients += r.NewClients
		other.ReturningClients += r.ReturningClients
	}
	return append(sorted[:top:top], other)
}

// FinanceSummary считает прибыль месяца: выручка минус разовые расходы и
// прогноз регулярных расходов, попадающих в месяц.
func (s *Service) FinanceSummary(ctx context.Context, userUID string, year, mon int) (*models.FinanceSummary, error) {
	const op = "services.dashboard.FinanceSummary"
	if err := month.Validate(year, mon); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	data, err := s.monthly(ctx, userUID, year, mon)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rules, err := s.expenses.All(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	from, to := month.Bounds(year, mon)
	recurring := decimal.Zero
	for _, e := range rules {
		n := len(expense.Occurrences(*e, from, to))
		if n > 0 {
			recurring = recurring.Add(e.Amount.Mul(decimal.NewFromInt(int64(n))))
		}
	}

	return &models.FinanceSummary{
		Year:              year,
		Month:             mon,
		Revenue:           data.Revenue,
		OneOffExpenses:    data.Expenses,
		RecurringExpenses: recurring,
		NetProfit:         data.Revenue.Sub(data.Expenses).Sub(recurring),
	}, nil
}

// Import атомарно сохраняет агрегаты месяца и строки воронки и уведомляет подписчиков.
func (s *Service) Import(ctx context.Context, userUID string, report models.MonthlyReport) error {
	const op = "services.dashboard.Import"
	if err := month.Validate(report.Year, report.Month); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err := s.repo.ImportMonth(ctx, models.MonthlyData{
		UserUID:          userUID,
		Year:             report.Year,
		Month:            report.Month,
		Revenue:          report.Revenue,
		Expenses:         report.Expenses,
		Appointments:     report.Appointments,
		NewClients:       report.NewClients,
		ReturningClients: report.ReturningClients,
	}, report.Funnel)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("imported monthly report",
		slog.String("user_uid", userUID),
		slog.Int("year", report.Year),
		slog.Int("month", report.Month),
		slog.Int("funnel_rows", len(report.Funnel)))

	id := fmt.Sprintf("%d-%02d", report.Year, report.Month)
	s.feed.Publish(userUID, "monthly_data", realtime.ActionUpdate, id, report)
	return nil
}
