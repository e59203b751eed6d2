package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/magabrotheeeer/barbershop-manager/internal/models"
)

const expenseColumns = `id, user_uid, label, amount, frequency, start_date, end_date,
	weekly_days, monthly_day, yearly_month, yearly_day, created_at, updated_at`

var typeMap = pgtype.NewMap()

func scanExpense(row rowScanner) (*models.RecurringExpense, error) {
	var (
		e                                models.RecurringExpense
		end                              sql.NullTime
		weekly                           []int32
		monthlyDay, yearlyMonth, yearDay sql.NullInt16
	)
	if err := row.Scan(&e.ID, &e.UserUID, &e.Label, &e.Amount, &e.Frequency, &e.StartDate, &end,
		typeMap.SQLScanner(&weekly), &monthlyDay, &yearlyMonth, &yearDay,
		&e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if end.Valid {
		e.EndDate = &end.Time
	}
	if weekly != nil {
		e.WeeklyDays = make([]time.Weekday, len(weekly))
		for i, d := range weekly {
			e.WeeklyDays[i] = time.Weekday(d)
		}
	}
	e.MonthlyDay = nullInt(monthlyDay)
	e.YearlyMonth = nullInt(yearlyMonth)
	e.YearlyDay = nullInt(yearDay)
	return &e, nil
}

func nullInt(v sql.NullInt16) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int16)
	return &i
}

// weeklyArg превращает набор дней недели в аргумент SMALLINT[]; nil пишется как NULL.
func weeklyArg(days []time.Weekday) any {
	if days == nil {
		return nil
	}
	out := make([]int16, len(days))
	for i, d := range days {
		out[i] = int16(d)
	}
	return out
}

// CreateRecurringExpense вставляет новое правило расхода и возвращает его ID.
func (s *Storage) CreateRecurringExpense(ctx context.Context, e models.RecurringExpense) (int, error) {
	const op = "storage.CreateRecurringExpense"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO recurring_expenses (user_uid, label, amount, frequency, start_date, end_date,
			      weekly_days, monthly_day, yearly_month, yearly_day, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		e.UserUID, e.Label, e.Amount, string(e.Frequency), e.StartDate, e.EndDate,
		weeklyArg(e.WeeklyDays), e.MonthlyDay, e.YearlyMonth, e.YearlyDay, e.CreatedAt).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetRecurringExpense возвращает правило расхода владельца по ID.
func (s *Storage) GetRecurringExpense(ctx context.Context, userUID string, id int) (*models.RecurringExpense, error) {
	const op = "storage.GetRecurringExpense"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + expenseColumns + ` FROM recurring_expenses WHERE id = $1 AND user_uid = $2`
	e, err := scanExpense(s.DB.QueryRowContext(ctx, query, id, userUID))
	if err != nil {
		return nil, notFound(op, err)
	}
	return e, nil
}

// UpdateRecurringExpense полностью перезаписывает правило расхода и возвращает его created_at.
// Версии не проверяются: побеждает последняя запись.
func (s *Storage) UpdateRecurringExpense(ctx context.Context, e models.RecurringExpense) (time.Time, error) {
	const op = "storage.UpdateRecurringExpense"
	select {
	case <-ctx.Done():
		return time.Time{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE recurring_expenses
			  SET label = $1, amount = $2, frequency = $3, start_date = $4, end_date = $5,
			      weekly_days = $6, monthly_day = $7, yearly_month = $8, yearly_day = $9,
			      updated_at = $10
			  WHERE id = $11 AND user_uid = $12
			  RETURNING created_at`
	var createdAt time.Time
	err := s.DB.QueryRowContext(ctx, query,
		e.Label, e.Amount, string(e.Frequency), e.StartDate, e.EndDate,
		weeklyArg(e.WeeklyDays), e.MonthlyDay, e.YearlyMonth, e.YearlyDay,
		e.UpdatedAt, e.ID, e.UserUID).Scan(&createdAt)
	if err != nil {
		return time.Time{}, notFound(op, err)
	}
	return createdAt.UTC(), nil
}

// DeleteRecurringExpense удаляет правило расхода владельца по ID.
func (s *Storage) DeleteRecurringExpense(ctx context.Context, userUID string, id int) error {
	const op = "storage.DeleteRecurringExpense"
	return s.execOne(ctx, op, `DELETE FROM recurring_expenses WHERE id = $1 AND user_uid = $2`, id, userUID)
}

// CountRecurringExpenses возвращает количество правил пользователя.
func (s *Storage) CountRecurringExpenses(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountRecurringExpenses"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var total int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM recurring_expenses WHERE user_uid = $1`, userUID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

// ListRecurringExpenses возвращает страницу правил пользователя. limit <= 0 означает «все».
func (s *Storage) ListRecurringExpenses(ctx context.Context, userUID string, limit, offset int) ([]*models.RecurringExpense, error) {
	const op = "storage.ListRecurringExpenses"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + expenseColumns + `
			  FROM recurring_expenses
			  WHERE user_uid = $1
			  ORDER BY id
			  LIMIT $2 OFFSET $3`
	var lim any = limit
	if limit <= 0 {
		lim = nil
	}
	rows, err := s.DB.QueryContext(ctx, query, userUID, lim, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.RecurringExpense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
