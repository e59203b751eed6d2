// Package password хэширует пароли владельцев bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength bcrypt учитывает только первые 72 байта.
const MaxLength = 72

var (
	// ErrTooLong пароль длиннее MaxLength байт.
	ErrTooLong = errors.New("password is longer than 72 bytes")
	// ErrMismatch пароль не соответствует хэшу.
	ErrMismatch = errors.New("password does not match")
)

// Hash возвращает bcrypt-хэш пароля.
func Hash(raw string) (string, error) {
	const op = "password.Hash"
	if len(raw) > MaxLength {
		return "", fmt.Errorf("%s: %w", op, ErrTooLong)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(h), nil
}

// Verify сверяет пароль с хэшем. Несовпадение даёт ErrMismatch, битый хэш
// возвращается как есть.
func Verify(hash, raw string) error {
	const op = "password.Verify"
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return fmt.Errorf("%s: %w", op, ErrMismatch)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
