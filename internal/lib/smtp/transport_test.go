package smtp

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/barbershop-manager/internal/config"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRelay принимает одну сессию и отвечает 250 на всё, кроме DATA и QUIT.
// Тело письма отправляется в канал после завершающей точки.
func fakeRelay(t *testing.T, extensions ...string) (config.SMTP, <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	bodies := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		r := bufio.NewReader(conn)
		reply := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
		reply("220 localhost ESMTP")

		var body strings.Builder
		inData := false
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if inData {
				if line == ".\r\n" {
					inData = false
					bodies <- body.String()
					reply("250 queued")
					continue
				}
				body.WriteString(line)
				continue
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				reply("500 empty command")
				continue
			}
			switch strings.ToUpper(fields[0]) {
			case "EHLO":
				if len(extensions) == 0 {
					reply("250 localhost")
					continue
				}
				reply("250-localhost")
				for i, ext := range extensions {
					if i == len(extensions)-1 {
						reply("250 " + ext)
					} else {
						reply("250-" + ext)
					}
				}
			case "DATA":
				inData = true
				reply("354 end with <CRLF>.<CRLF>")
			case "QUIT":
				reply("221 bye")
				return
			default:
				reply("250 ok")
			}
		}
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return config.SMTP{SMTPHost: host, SMTPPort: port}, bodies
}

func TestTransport_ConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	tr := NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port}, newNoopLogger())
	client, err := tr.Connect(context.Background())
	assert.Nil(t, client)
	assert.ErrorContains(t, err, "dial")
}

func TestTransport_StartTLSRequired(t *testing.T) {
	cfg, _ := fakeRelay(t, "PIPELINING")
	cfg.StartTLS = true

	tr := NewTransport(cfg, newNoopLogger())
	client, err := tr.Connect(context.Background())
	assert.Nil(t, client)
	assert.ErrorIs(t, err, ErrNoStartTLS)
}

func TestTransport_PlainRelayDelivers(t *testing.T) {
	cfg, bodies := fakeRelay(t)
	cfg.FromAddress = "noreply@example.com"
	cfg.FromName = "Barbershop Manager"

	tr := NewTransport(cfg, newNoopLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := tr.Connect(ctx)
	require.NoError(t, err)

	require.NoError(t, client.Mail(tr.Sender().Address))
	require.NoError(t, client.Rcpt("barber@example.com"))
	wc, err := client.Data()
	require.NoError(t, err)
	_, err = wc.Write([]byte("Subject: hi\r\n\r\nyour trial ends soon\r\n"))
	require.NoError(t, err)
	require.NoError(t, wc.Close())
	require.NoError(t, client.Quit())

	select {
	case body := <-bodies:
		assert.Contains(t, body, "your trial ends soon")
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not receive the message")
	}
}

func TestTransport_Sender(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SMTP
		want string
	}{
		{
			name: "explicit from address",
			cfg:  config.SMTP{SMTPUser: "relay-user", FromAddress: "noreply@example.com", FromName: "Barbershop Manager"},
			want: `"Barbershop Manager" <noreply@example.com>`,
		},
		{
			name: "falls back to smtp user",
			cfg:  config.SMTP{SMTPUser: "shop@example.com"},
			want: "<shop@example.com>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := NewTransport(tt.cfg, newNoopLogger()).Sender()
			assert.Equal(t, tt.want, sender.String())
		})
	}
}
