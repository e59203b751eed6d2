// Package jwt подписывает и проверяет сессионные JWT. Токен несёт session.Session:
// uid пользователя в sub, имя и роль в собственных claims.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/barbershop-manager/internal/session"
)

// Issuer значение iss, которое выставляется и требуется при проверке.
const Issuer = "barbershop-manager"

// ErrNoSubject токен подписан верно, но не содержит uid пользователя.
var ErrNoSubject = errors.New("token has no subject")

// Claims содержимое токена.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Maker выпускает и разбирает токены сессии.
type Maker interface {
	Issue(sess session.Session) (string, error)
	Parse(token string) (session.Session, error)
}

// HMACMaker реализует Maker на HS256 с общим секретом.
type HMACMaker struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTMaker создаёт HMACMaker с секретом и временем жизни токена.
func NewJWTMaker(secret string, ttl time.Duration) *HMACMaker {
	return &HMACMaker{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue подписывает токен для сессии.
func (m *HMACMaker) Issue(sess session.Session) (string, error) {
	const op = "jwt.Issue"
	now := m.now()
	claims := Claims{
		Username: sess.Username,
		Role:     sess.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   sess.UserUID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// Parse проверяет подпись, алгоритм, издателя и срок действия и восстанавливает сессию.
func (m *HMACMaker) Parse(token string) (session.Session, error) {
	const op = "jwt.Parse"
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return session.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if claims.Subject == "" {
		return session.Session{}, fmt.Errorf("%s: %w", op, ErrNoSubject)
	}
	return session.Session{
		UserUID:  claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}
