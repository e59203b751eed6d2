// Package services содержит планировщик напоминаний о пробном периоде.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/barbershop-manager/internal/lib/metrics"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/sl"
	"github.com/magabrotheeeer/barbershop-manager/internal/models"
	"github.com/magabrotheeeer/barbershop-manager/internal/trial"
)

// UserRepository выбирает кандидатов и запоминает отправленный уровень.
type UserRepository interface {
	ListTrialCandidates(ctx context.Context) ([]*models.User, error)
	UpdateLastPromptMode(ctx context.Context, userUID, mode string) error
}

// Publisher публикует сообщение в exchange уведомлений.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// SchedulerService периодически проверяет профили с открытым триалом и публикует
// напоминание, когда уровень напоминания повышается.
type SchedulerService struct {
	repo      UserRepository
	publisher Publisher
	evaluator *trial.Evaluator
	interval  time.Duration
	log       *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo UserRepository, publisher Publisher, evaluator *trial.Evaluator, interval time.Duration, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:      repo,
		publisher: publisher,
		evaluator: evaluator,
		interval:  interval,
		log:       log,
	}
}

// Run выполняет проверку сразу и затем с заданным интервалом до отмены ctx.
func (s *SchedulerService) Run(ctx context.Context) {
	s.runOnceLogged(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("trial prompt scheduler stopped")
			return
		case <-ticker.C:
			s.runOnceLogged(ctx)
		}
	}
}

func (s *SchedulerService) runOnceLogged(ctx context.Context) {
	published, err := s.RunOnce(ctx)
	if err != nil {
		s.log.Error("trial prompt sweep failed", sl.Err(err))
		return
	}
	s.log.Info("trial prompt sweep finished", slog.Int("published", published))
}

// RunOnce проходит по кандидатам один раз и возвращает число опубликованных
// напоминаний. Ошибка публикации одного пользователя не прерывает проход.
func (s *SchedulerService) RunOnce(ctx context.Context) (int, error) {
	const op = "services.scheduler.RunOnce"
	s.log.Info("starting trial prompt sweep")
	users, err := s.repo.ListTrialCandidates(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(users) == 0 {
		s.log.Info("no trial candidates found")
		return 0, nil
	}
	s.log.Info("found trial candidates", slog.Int("count", len(users)))

	published := 0
	for _, u := range users {
		if ctx.Err() != nil {
			return published, fmt.Errorf("%s: %w", op, ctx.Err())
		}
		mode := s.evaluator.PromptMode(u.Trial, u.HasPaymentMethod)
		if mode.Severity() <= trial.Mode(u.LastPromptMode).Severity() {
			continue
		}

		msg := models.TrialPromptMessage{
			UserUID:       u.UUID,
			Email:         u.Email,
			Username:      u.Username,
			Mode:          string(mode),
			DayNumber:     s.evaluator.DayNumber(u.Trial),
			DaysRemaining: s.evaluator.DaysRemaining(u.Trial),
		}
		if err := s.publisher.Publish(rabbitmq.RoutingKeyTrialPrompt, msg); err != nil {
			s.log.Error("failed to publish message", slog.String("user_uid", u.UUID), sl.Err(err))
			continue
		}
		metrics.TrialPromptsPublished.WithLabelValues(string(mode)).Inc()
		published++

		if err := s.repo.UpdateLastPromptMode(ctx, u.UUID, string(mode)); err != nil {
			s.log.Error("failed to store prompt mode", slog.String("user_uid", u.UUID), sl.Err(err))
		}
	}
	return published, nil
}
