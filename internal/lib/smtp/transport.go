package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	"net/smtp"
	"time"

	"github.com/magabrotheeeer/barbershop-manager/internal/config"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/sl"
)

const defaultDialTimeout = 10 * time.Second

// ErrNoStartTLS возвращается, когда релей не объявил STARTTLS, а конфиг его требует.
var ErrNoStartTLS = errors.New("smtp relay does not advertise STARTTLS")

// Transport подключается к релею из config.SMTP.
type Transport struct {
	cfg  config.SMTP
	log  *slog.Logger
	from mail.Address
}

// NewTransport собирает транспорт. Если from_address не задан, отправителем считается SMTP-пользователь.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	if cfg.SMTPTimeout <= 0 {
		cfg.SMTPTimeout = defaultDialTimeout
	}
	addr := cfg.FromAddress
	if addr == "" {
		addr = cfg.SMTPUser
	}
	return &Transport{
		cfg:  cfg,
		log:  log.With(slog.String("component", "smtp"), slog.String("relay", cfg.SMTPHost)),
		from: mail.Address{Name: cfg.FromName, Address: addr},
	}
}

// Sender адрес для заголовка From и команды MAIL FROM.
func (t *Transport) Sender() mail.Address {
	return t.from
}

// Connect открывает сессию: STARTTLS, если включен, и AUTH PLAIN, если задан пользователь.
// Дедлайн контекста переносится на соединение.
func (t *Transport) Connect(ctx context.Context) (Client, error) {
	const op = "lib.smtp.Connect"

	dialer := net.Dialer{Timeout: t.cfg.SMTPTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort))
	if err != nil {
		return nil, fmt.Errorf("%s: dial: %w", op, err)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: greeting: %w", op, err)
	}

	if err := t.handshake(client); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			t.log.Warn("failed to close smtp session", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return client, nil
}

func (t *Transport) handshake(client *smtp.Client) error {
	if t.cfg.StartTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return ErrNoStartTLS
		}
		err := client.StartTLS(&tls.Config{ServerName: t.cfg.SMTPHost, MinVersion: tls.VersionTLS12})
		if err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if t.cfg.SMTPUser == "" {
		return nil
	}
	if err := client.Auth(smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}
