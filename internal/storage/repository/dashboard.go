package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/barbershop-manager/internal/models"
)

const (
	upsertMonthlyDataQuery = `INSERT INTO monthly_data (user_uid, year, month, revenue, expenses, appointments,
			      new_clients, returning_clients)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (user_uid, year, month) DO UPDATE
			  SET revenue = EXCLUDED.revenue, expenses = EXCLUDED.expenses,
			      appointments = EXCLUDED.appointments, new_clients = EXCLUDED.new_clients,
			      returning_clients = EXCLUDED.returning_clients`

	upsertFunnelRowQuery = `INSERT INTO marketing_funnels (user_uid, year, month, source, new_clients, returning_clients)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (user_uid, year, month, source) DO UPDATE
			  SET new_clients = EXCLUDED.new_clients, returning_clients = EXCLUDED.returning_clients`
)

// GetMonthlyData возвращает агрегаты пользователя за месяц.
func (s *Storage) GetMonthlyData(ctx context.Context, userUID string, year, month int) (*models.MonthlyData, error) {
	const op = "storage.GetMonthlyData"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, year, month, revenue, expenses, appointments, new_clients, returning_clients
			  FROM monthly_data
			  WHERE user_uid = $1 AND year = $2 AND month = $3`
	var d models.MonthlyData
	err := s.DB.QueryRowContext(ctx, query, userUID, year, month).Scan(
		&d.UserUID, &d.Year, &d.Month, &d.Revenue, &d.Expenses,
		&d.Appointments, &d.NewClients, &d.ReturningClients)
	if err != nil {
		return nil, notFound(op, err)
	}
	return &d, nil
}

// ImportMonth в одной транзакции перезаписывает агрегаты месяца и строки воронки.
// При ошибке любой строки месяц остаётся в прежнем состоянии.
func (s *Storage) ImportMonth(ctx context.Context, d models.MonthlyData, funnel []models.FunnelRow) (err error) {
	const op = "storage.ImportMonth"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, upsertMonthlyDataQuery, d.UserUID, d.Year, d.Month, d.Revenue, d.Expenses,
		d.Appointments, d.NewClients, d.ReturningClients)
	if err != nil {
		return fmt.Errorf("%s: monthly data: %w", op, err)
	}
	for _, r := range funnel {
		_, err = tx.ExecContext(ctx, upsertFunnelRowQuery, d.UserUID, d.Year, d.Month,
			r.Source, r.NewClients, r.ReturningClients)
		if err != nil {
			return fmt.Errorf("%s: funnel %q: %w", op, r.Source, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListFunnel возвращает строки маркетинговой воронки за месяц.
func (s *Storage) ListFunnel(ctx context.Context, userUID string, year, month int) ([]models.FunnelRow, error) {
	const op = "storage.ListFunnel"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT source, new_clients, returning_clients
			  FROM marketing_funnels
			  WHERE user_uid = $1 AND year = $2 AND month = $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, year, month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.FunnelRow
	for rows.Next() {
		var r models.FunnelRow
		if err := rows.Scan(&r.Source, &r.NewClients, &r.ReturningClients); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
