// Package services выдаёт одноразовые коды перехода из мобильного приложения
// в веб-версию и обменивает их на JWT.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/barbershop-manager/internal/session"
)

// ErrCodeNotFound код не существует, истёк или уже использован.
var ErrCodeNotFound = errors.New("handoff code not found")

// Store хранилище одноразовых кодов.
type Store interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Take(ctx context.Context, key string, result any) (bool, error)
}

// TokenIssuer подписывает JWT для сессии.
type TokenIssuer interface {
	IssueToken(sess session.Session) (string, error)
}

// Service сервис одноразовых кодов.
type Service struct {
	store  Store
	tokens TokenIssuer
	ttl    time.Duration
	log    *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(store Store, tokens TokenIssuer, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{store: store, tokens: tokens, ttl: ttl, log: log}
}

func key(code string) string {
	return "handoff:" + code
}

// Create сохраняет сессию под случайным кодом и возвращает код.
func (s *Service) Create(ctx context.Context, sess session.Session) (string, time.Time, error) {
	const op = "services.handoff.Create"
	code := uuid.NewString()
	if err := s.store.Set(ctx, key(code), sess, s.ttl); err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("handoff code issued", slog.String("user_uid", sess.UserUID))
	return code, time.Now().Add(s.ttl), nil
}

// Redeem атомарно забирает код и выдаёт по нему JWT. Повторный вызов с тем же
// кодом возвращает ErrCodeNotFound.
func (s *Service) Redeem(ctx context.Context, code string) (string, session.Session, error) {
	const op = "services.handoff.Redeem"
	if _, err := uuid.Parse(code); err != nil {
		return "", session.Session{}, fmt.Errorf("%s: %w", op, ErrCodeNotFound)
	}
	var sess session.Session
	found, err := s.store.Take(ctx, key(code), &sess)
	if err != nil {
		return "", session.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return "", session.Session{}, fmt.Errorf("%s: %w", op, ErrCodeNotFound)
	}
	token, err := s.tokens.IssueToken(sess)
	if err != nil {
		return "", session.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return token, sess, nil
}
