// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/barbershop-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/password"
	"github.com/magabrotheeeer/barbershop-manager/internal/models"
	"github.com/magabrotheeeer/barbershop-manager/internal/session"
	"github.com/magabrotheeeer/barbershop-manager/internal/storage/repository"
)

// ErrInvalidCredentials возвращается при неверной паре логин/пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его ID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users     UserRepository
	jwtMaker  jwt.Maker
	trialDays int
	now       func() time.Time
}

// NewAuthService создает новый экземпляр AuthService. trialDays задаёт длину пробного
// периода, который активируется при регистрации.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, trialDays int) *AuthService {
	return &AuthService{
		users:     users,
		jwtMaker:  jwtMaker,
		trialDays: trialDays,
		now:       time.Now,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью "user"
// и сразу открывает пробный период.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	const op = "services.AuthService.Register"
	hashed, err := password.Hash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	start := s.now().UTC()
	end := start.AddDate(0, 0, s.trialDays)
	active := true
	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         "user", // дефолтная роль при регистрации
		Trial: models.TrialProfile{
			TrialActive: &active,
			TrialStart:  &start,
			TrialEnd:    &end,
		},
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// Login проверяет пароль пользователя и выдаёт JWT.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (string, session.Session, error) {
	const op = "services.AuthService.Login"
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return "", session.Session{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", session.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.Verify(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return "", session.Session{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", session.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	sess := session.Session{UserUID: user.UUID, Username: user.Username, Role: user.Role}
	token, err := s.IssueToken(sess)
	if err != nil {
		return "", session.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return token, sess, nil
}

// IssueToken подписывает JWT для уже установленной сессии.
func (s *AuthService) IssueToken(sess session.Session) (string, error) {
	return s.jwtMaker.Issue(sess)
}

// ValidateToken проверяет JWT и восстанавливает из него сессию.
func (s *AuthService) ValidateToken(token string) (session.Session, error) {
	const op = "services.AuthService.ValidateToken"
	sess, err := s.jwtMaker.Parse(token)
	if err != nil {
		return session.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}
