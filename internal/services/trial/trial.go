// Package services отдаёт состояние пробного периода пользователя.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/barbershop-manager/internal/lib/sl"
	"github.com/magabrotheeeer/barbershop-manager/internal/models"
	"github.com/magabrotheeeer/barbershop-manager/internal/trial"
)

const profileTTL = 5 * time.Minute

// UserRepository читает профиль пользователя.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// PaymentChecker определяет, привязан ли способ оплаты.
type PaymentChecker interface {
	HasPaymentMethod(ctx context.Context, user *models.User) (bool, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// snapshot то, что хранится в кэше профиля.
type snapshot struct {
	Profile          models.TrialProfile `json:"profile"`
	HasPaymentMethod bool                `json:"has_payment_method"`
}

// Service вычисляет trial.Status по профилю.
type Service struct {
	users     UserRepository
	payments  PaymentChecker
	cache     Cache
	evaluator *trial.Evaluator
	log       *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(users UserRepository, payments PaymentChecker, cache Cache, evaluator *trial.Evaluator, log *slog.Logger) *Service {
	return &Service{
		users:     users,
		payments:  payments,
		cache:     cache,
		evaluator: evaluator,
		log:       log,
	}
}

// Status возвращает состояние триала и уровень напоминания об оплате.
func (s *Service) Status(ctx context.Context, userUID string) (trial.Status, error) {
	const op = "services.trial.Status"
	key := models.ProfileCacheKey(userUID)

	var snap snapshot
	found, err := s.cache.Get(ctx, key, &snap)
	if err != nil {
		s.log.Warn("failed to read profile from cache", slog.String("user_uid", userUID), sl.Err(err))
	}
	if found {
		return s.evaluator.Evaluate(snap.Profile, snap.HasPaymentMethod), nil
	}

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return trial.Status{}, fmt.Errorf("%s: %w", op, err)
	}
	has, err := s.payments.HasPaymentMethod(ctx, user)
	if err != nil {
		// Stripe недоступен: решаем по флагу профиля и не кэшируем результат.
		s.log.Warn("payment method check failed", slog.String("user_uid", userUID), sl.Err(err))
		return s.evaluator.Evaluate(user.Trial, user.HasPaymentMethod), nil
	}

	snap = snapshot{Profile: user.Trial, HasPaymentMethod: has}
	if err := s.cache.Set(ctx, key, snap, profileTTL); err != nil {
		s.log.Warn("failed to cache profile", slog.String("user_uid", userUID), sl.Err(err))
	}
	return s.evaluator.Evaluate(snap.Profile, snap.HasPaymentMethod), nil
}
