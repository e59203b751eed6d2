// Package services отправляет напоминания о пробном периоде: письмо по SMTP
// и запись во входящие уведомления приложения.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/barbershop-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/sl"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/smtp"
	"github.com/magabrotheeeer/barbershop-manager/internal/models"
)

// KindTrialPrompt тип уведомления о пробном периоде.
const KindTrialPrompt = "trial_prompt"

// NotificationRepository сохраняет уведомления.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n models.Notification) (int, error)
}

// SenderService обрабатывает сообщения очереди notifications.trial_prompt.
type SenderService struct {
	transport smtp.Mailer
	repo      NotificationRepository
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.Mailer, repo NotificationRepository, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		repo:      repo,
		log:       log,
	}
}

// HandleTrialPrompt отправляет письмо и создаёт уведомление. Ошибка SMTP
// возвращается, чтобы сообщение вернулось в очередь. Сообщение, которое нельзя
// разобрать, отклоняется через rabbitmq.ErrReject.
func (s *SenderService) HandleTrialPrompt(ctx context.Context, body []byte) error {
	const op = "services.sender.HandleTrialPrompt"
	var msg models.TrialPromptMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%s: malformed message: %w: %w", op, rabbitmq.ErrReject, err)
	}
	if msg.Email == "" || msg.UserUID == "" {
		return fmt.Errorf("%s: message without recipient: %w", op, rabbitmq.ErrReject)
	}

	subject, text := Compose(msg)
	if err := s.sendEmail(ctx, []string{msg.Email}, subject, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err := s.repo.CreateNotification(ctx, models.Notification{
		UserUID: msg.UserUID,
		Title:   subject,
		Body:    text,
		Kind:    KindTrialPrompt,
	})
	if err != nil {
		// письмо уже ушло, повторная доставка продублировала бы его
		s.log.Error("failed to store notification", slog.String("user_uid", msg.UserUID), sl.Err(err))
	}
	return nil
}

// Compose формирует тему и текст письма для уровня напоминания.
func Compose(msg models.TrialPromptMessage) (string, string) {
	switch msg.Mode {
	case "strong":
		return "Your free trial has ended",
			fmt.Sprintf("Hi %s,\n\nYour free trial is over. Add a payment method to keep your bookings, "+
				"expenses and reports available.", msg.Username)
	case "urgent":
		return fmt.Sprintf("Only %d days left in your trial", msg.DaysRemaining),
			fmt.Sprintf("Hi %s,\n\nYour free trial ends in %d days. Add a payment method now so your shop "+
				"keeps running without interruption.", msg.Username, msg.DaysRemaining)
	default:
		return "How is your trial going?",
			fmt.Sprintf("Hi %s,\n\nYou are on day %d of your free trial. You can add a payment method at any "+
				"time and you will only be charged when the trial ends.", msg.Username, msg.DayNumber)
	}
}

func (s *SenderService) sendEmail(ctx context.Context, to []string, subject, bodyText string) error {
	from := s.transport.Sender()
	msg := strings.Join([]string{
		"From: " + from.String(),
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect(ctx)
	if err != nil {
		s.log.Error("Failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(from.Address); err != nil {
		s.log.Error("Failed to set MAIL FROM", slog.String("from", from.Address), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("Failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("Failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("Failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("Failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("Failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
