// Package stream отдаёт ленту изменений пользователя через websocket.
package stream

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/barbershop-manager/internal/http/response"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/metrics"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/sl"
	"github.com/magabrotheeeer/barbershop-manager/internal/realtime"
	"github.com/magabrotheeeer/barbershop-manager/internal/session"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// Feed выдаёт подписки на ленту пользователя.
type Feed interface {
	Subscribe(userUID string, since uint64) *realtime.Subscription
	Seq(userUID string) uint64
}

// Handler обрабатывает GET /realtime.
type Handler struct {
	log          *slog.Logger
	feed         Feed
	pingInterval time.Duration
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, feed Feed) *Handler {
	return &Handler{log: log, feed: feed, pingInterval: pingInterval}
}

// ServeHTTP godoc
// @Summary Лента изменений
// @Description Websocket. Параметр since задаёт последний применённый номер события;
// @Description без него лента начинается с текущего момента. Событие resync означает,
// @Description что данные нужно перечитать целиком.
// @Tags Realtime
// @Security BearerAuth
// @Param since query int false "Последний применённый seq"
// @Success 101
// @Failure 400 {object} response.ErrorResponse
// @Router /realtime [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.realtime.stream"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := session.FromContext(r.Context())
	if !ok {
		log.Error("session missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	since := h.feed.Seq(sess.UserUID)
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("since must be a non-negative integer"))
			return
		}
		since = n
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error("websocket accept failed", sl.Err(err))
		return
	}
	defer func() {
		_ = conn.CloseNow()
	}()

	sub := h.feed.Subscribe(sess.UserUID, since)
	defer sub.Close()

	metrics.RealtimeConnections.Inc()
	defer metrics.RealtimeConnections.Dec()
	log.Info("realtime client connected", slog.String("user_uid", sess.UserUID), slog.Uint64("since", since))

	// клиент ничего не присылает; CloseRead обрабатывает control-фреймы и
	// отменяет ctx, когда соединение закрыто
	ctx := conn.CloseRead(r.Context())

	err = h.pump(ctx, conn, sub)
	switch {
	case errors.Is(err, errSubscriberDropped):
		log.Warn("realtime client fell behind", slog.String("user_uid", sess.UserUID))
		_ = conn.Close(websocket.StatusTryAgainLater, "fell behind, reconnect with since")
	case err != nil && ctx.Err() == nil:
		log.Error("realtime stream failed", sl.Err(err))
	default:
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}
}

var errSubscriberDropped = errors.New("subscriber dropped")

func (h *Handler) pump(ctx context.Context, conn *websocket.Conn, sub *realtime.Subscription) error {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return errSubscriberDropped
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, conn, ev)
			cancel()
			if err != nil {
				return err
			}
		case <-ticker.C:
			if err := conn.Ping(ctx); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}
