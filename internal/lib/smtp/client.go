// Package smtp отправляет письма через SMTP-релей.
package smtp

import (
	"context"
	"io"
	"net/mail"
	"net/smtp"
)

// Client подмножество *smtp.Client, нужное для отправки одного письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Mailer открывает сессию с релеем и знает адрес отправителя.
type Mailer interface {
	Connect(ctx context.Context) (Client, error)
	Sender() mail.Address
}

var _ Client = (*smtp.Client)(nil)
