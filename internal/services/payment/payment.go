// Package payment реализует биллинг: тарифы, создание платежей через Stripe,
// проверку способа оплаты и обработку webhook-событий.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/magabrotheeeer/barbershop-manager/internal/config"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/sl"
	"github.com/magabrotheeeer/barbershop-manager/internal/models"
	"github.com/magabrotheeeer/barbershop-manager/internal/paymentprovider"
	"github.com/magabrotheeeer/barbershop-manager/internal/storage/repository"
)

// ErrUnknownPlan возвращается для тарифа, которого нет в конфигурации.
var ErrUnknownPlan = errors.New("unknown plan")

// UserRepository описывает операции с профилем, нужные биллингу.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByStripeCustomer(ctx context.Context, customerID string) (*models.User, error)
	SetStripeCustomerID(ctx context.Context, userUID, customerID string) error
	UpdateSubscriptionStatus(ctx context.Context, customerID, status string) error
	SetHasPaymentMethod(ctx context.Context, customerID string, has bool) error
}

// Provider платёжный провайдер.
type Provider interface {
	CreateCustomer(ctx context.Context, email, userUID string) (string, error)
	HasPaymentMethod(ctx context.Context, customerID string) (bool, error)
	CreatePaymentIntent(ctx context.Context, req paymentprovider.IntentRequest) (*paymentprovider.Intent, error)
	ParseWebhook(payload []byte, sigHeader string) (*paymentprovider.WebhookEvent, error)
}

// Cache сбрасывает закэшированный профиль и отмечает обработанные события Stripe.
type Cache interface {
	Invalidate(ctx context.Context, key string) error
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Stripe повторяет доставку webhook до трёх суток.
const eventClaimTTL = 72 * time.Hour

// Service сервис биллинга.
type Service struct {
	repo     UserRepository
	provider Provider
	cache    Cache
	plans    []config.Plan
	currency string
	log      *slog.Logger
}

// New создаёт сервис биллинга.
func New(repo UserRepository, provider Provider, cache Cache, cfg config.Stripe, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		cache:    cache,
		plans:    slices.Clone(cfg.Plans),
		currency: cfg.Currency,
		log:      log,
	}
}

// Pricing возвращает доступные тарифы.
func (s *Service) Pricing() []config.Plan {
	return slices.Clone(s.plans)
}

func (s *Service) plan(id string) (config.Plan, bool) {
	for _, p := range s.plans {
		if p.ID == id {
			return p, true
		}
	}
	return config.Plan{}, false
}

// HasPaymentMethod сначала смотрит на флаг профиля, затем спрашивает Stripe.
// Положительный ответ Stripe сохраняется в профиль.
func (s *Service) HasPaymentMethod(ctx context.Context, user *models.User) (bool, error) {
	const op = "services.payment.HasPaymentMethod"
	if user.HasPaymentMethod {
		return true, nil
	}
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		return false, nil
	}
	has, err := s.provider.HasPaymentMethod(ctx, *user.StripeCustomerID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if has {
		if err := s.repo.SetHasPaymentMethod(ctx, *user.StripeCustomerID, true); err != nil {
			s.log.Warn("failed to store payment method flag", slog.String("user_uid", user.UUID), sl.Err(err))
		}
		s.invalidate(ctx, user.UUID)
	}
	return has, nil
}

// CreatePaymentIntent создаёт клиента Stripe при первом обращении и возвращает
// данные для payment sheet.
func (s *Service) CreatePaymentIntent(ctx context.Context, userUID, planID string) (*paymentprovider.Intent, error) {
	const op = "services.payment.CreatePaymentIntent"
	plan, ok := s.plan(planID)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownPlan, planID)
	}
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var customerID string
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		customerID = *user.StripeCustomerID
	} else {
		customerID, err = s.provider.CreateCustomer(ctx, user.Email, user.UUID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := s.repo.SetStripeCustomerID(ctx, user.UUID, customerID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("created stripe customer", slog.String("user_uid", user.UUID))
	}

	intent, err := s.provider.CreatePaymentIntent(ctx, paymentprovider.IntentRequest{
		CustomerID:  customerID,
		AmountCents: plan.AmountCents,
		Currency:    s.currency,
		UserUID:     user.UUID,
		PlanID:      plan.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return intent, nil
}

// HandleWebhook применяет событие Stripe к профилю. События по неизвестным клиентам
// подтверждаются без изменений, чтобы Stripe не повторял доставку. Повторная доставка
// уже применённого события пропускается.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	const op = "services.payment.HandleWebhook"
	ev, err := s.provider.ParseWebhook(payload, sigHeader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log := s.log.With(slog.String("event_id", ev.ID), slog.String("event_type", ev.Type))

	if ev.Kind == paymentprovider.EventIgnored {
		log.Debug("webhook event ignored")
		return nil
	}
	if ev.CustomerID == "" {
		log.Warn("webhook event without customer")
		return nil
	}

	claimKey := EventClaimKey(ev.ID)
	fresh, err := s.cache.Claim(ctx, claimKey, eventClaimTTL)
	if err != nil {
		log.Warn("failed to claim webhook event, applying anyway", sl.Err(err))
		fresh = true
	}
	if !fresh {
		log.Info("duplicate webhook event skipped")
		return nil
	}

	if err := s.apply(ctx, log, ev); err != nil {
		// снимаем отметку, иначе повтор от Stripe будет пропущен
		if relErr := s.cache.Invalidate(ctx, claimKey); relErr != nil {
			log.Warn("failed to release webhook claim", sl.Err(relErr))
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// EventClaimKey ключ отметки об обработанном событии Stripe.
func EventClaimKey(eventID string) string {
	return "stripe:event:" + eventID
}

func (s *Service) apply(ctx context.Context, log *slog.Logger, ev *paymentprovider.WebhookEvent) error {
	user, err := s.repo.GetUserByStripeCustomer(ctx, ev.CustomerID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("webhook for unknown customer", slog.String("customer_id", ev.CustomerID))
		return nil
	}
	if err != nil {
		return err
	}

	switch ev.Kind {
	case paymentprovider.EventSubscriptionChanged:
		err = s.repo.UpdateSubscriptionStatus(ctx, ev.CustomerID, ev.SubscriptionStatus)
	case paymentprovider.EventPaymentMethodAdded:
		err = s.repo.SetHasPaymentMethod(ctx, ev.CustomerID, true)
	case paymentprovider.EventPaymentMethodRemoved:
		var has bool
		has, err = s.provider.HasPaymentMethod(ctx, ev.CustomerID)
		if err == nil {
			err = s.repo.SetHasPaymentMethod(ctx, ev.CustomerID, has)
		}
	}
	if err != nil {
		return err
	}

	s.invalidate(ctx, user.UUID)
	log.Info("webhook applied", slog.String("user_uid", user.UUID))
	return nil
}

func (s *Service) invalidate(ctx context.Context, userUID string) {
	if err := s.cache.Invalidate(ctx, models.ProfileCacheKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate profile cache", slog.String("user_uid", userUID), sl.Err(err))
	}
}
