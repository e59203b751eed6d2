package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/barbershop-manager/internal/models"
)

const userColumns = `uid, email, username, password_hash, role, stripe_customer_id,
	trial_active, trial_start, trial_end, stripe_subscription_status,
	has_payment_method, last_prompt_mode, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                  models.User
		customerID, status sql.NullString
		trialActive        sql.NullBool
		start, end         sql.NullTime
	)
	if err := row.Scan(&u.UUID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &customerID,
		&trialActive, &start, &end, &status,
		&u.HasPaymentMethod, &u.LastPromptMode, &u.CreatedAt); err != nil {
		return nil, err
	}
	if customerID.Valid {
		u.StripeCustomerID = &customerID.String
	}
	if trialActive.Valid {
		u.Trial.TrialActive = &trialActive.Bool
	}
	if start.Valid {
		u.Trial.TrialStart = &start.Time
	}
	if end.Valid {
		u.Trial.TrialEnd = &end.Time
	}
	if status.Valid {
		u.Trial.StripeSubscriptionStatus = &status.String
	}
	return &u, nil
}

// RegisterUser сохраняет нового пользователя вместе с окном пробного периода и возвращает его ID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO users (email, username, password_hash, role,
			      trial_active, trial_start, trial_end)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role,
		user.Trial.TrialActive, user.Trial.TrialStart, user.Trial.TrialEnd).Scan(&newID); err != nil {
		return "", conflict(op, err)
	}
	return newID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, notFound(op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, notFound(op, err)
	}
	return u, nil
}

// GetUserByStripeCustomer возвращает пользователя по идентификатору клиента Stripe.
func (s *Storage) GetUserByStripeCustomer(ctx context.Context, customerID string) (*models.User, error) {
	const op = "storage.GetUserByStripeCustomer"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE stripe_customer_id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, customerID))
	if err != nil {
		return nil, notFound(op, err)
	}
	return u, nil
}

// ListTrialCandidates находит пользователей без способа оплаты, у которых начат пробный период
// и нет активной подписки.
func (s *Storage) ListTrialCandidates(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListTrialCandidates"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE trial_start IS NOT NULL
			    AND has_payment_method = false
			    AND (stripe_subscription_status IS NULL OR stripe_subscription_status <> 'active')
			  ORDER BY trial_start`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateLastPromptMode запоминает последний отправленный уровень напоминания.
func (s *Storage) UpdateLastPromptMode(ctx context.Context, userUID, mode string) error {
	const op = "storage.UpdateLastPromptMode"
	return s.execOne(ctx, op, `UPDATE users SET last_prompt_mode = $1 WHERE uid = $2`, mode, userUID)
}

// SetStripeCustomerID привязывает клиента Stripe к пользователю.
func (s *Storage) SetStripeCustomerID(ctx context.Context, userUID, customerID string) error {
	const op = "storage.SetStripeCustomerID"
	return s.execOne(ctx, op, `UPDATE users SET stripe_customer_id = $1 WHERE uid = $2`, customerID, userUID)
}

// UpdateSubscriptionStatus сохраняет статус подписки Stripe клиента.
func (s *Storage) UpdateSubscriptionStatus(ctx context.Context, customerID, status string) error {
	const op = "storage.UpdateSubscriptionStatus"
	return s.execOne(ctx, op,
		`UPDATE users SET stripe_subscription_status = $1 WHERE stripe_customer_id = $2`, status, customerID)
}

// SetHasPaymentMethod отмечает, что у клиента Stripe есть способ оплаты.
func (s *Storage) SetHasPaymentMethod(ctx context.Context, customerID string, has bool) error {
	const op = "storage.SetHasPaymentMethod"
	return s.execOne(ctx, op,
		`UPDATE users SET has_payment_method = $1 WHERE stripe_customer_id = $2`, has, customerID)
}

func (s *Storage) execOne(ctx context.Context, op, query string, args ...any) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
