// Package list отдаёт входящие уведомления пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/barbershop-manager/internal/http/response"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/sl"
	"github.com/magabrotheeeer/barbershop-manager/internal/models"
	"github.com/magabrotheeeer/barbershop-manager/internal/session"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Repository читает уведомления.
type Repository interface {
	ListNotifications(ctx context.Context, userUID string, limit int) ([]*models.Notification, error)
}

// Handler обрабатывает GET /notifications.
type Handler struct {
	log  *slog.Logger
	repo Repository
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, repo Repository) *Handler {
	return &Handler{log: log, repo: repo}
}

// ServeHTTP godoc
// @Summary Уведомления пользователя
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Количество, до 100"
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /notifications [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notifications.list"

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

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	res, err := h.repo.ListNotifications(r.Context(), sess.UserUID, limit)
	if err != nil {
		log.Error("failed to list notifications", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list notifications"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":         len(res),
		"notifications": res,
	}))
}
