// Package funnels отдаёт источники новых клиентов за месяц.
package funnels

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/barbershop-manager/internal/http/response"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/month"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/sl"
	"github.com/magabrotheeeer/barbershop-manager/internal/models"
	dashboard "github.com/magabrotheeeer/barbershop-manager/internal/services/dashboard"
	"github.com/magabrotheeeer/barbershop-manager/internal/session"
)

// Service возвращает воронку месяца.
type Service interface {
	Funnels(ctx context.Context, userUID string, year, mon, top int) ([]models.FunnelRow, error)
}

// Handler обрабатывает GET /marketing/funnels.
type Handler struct {
	log     *slog.Logger
	service Service
	loc     *time.Location
	now     func() time.Time
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, loc *time.Location) *Handler {
	return &Handler{log: log, service: service, loc: loc, now: time.Now}
}

// ServeHTTP godoc
// @Summary Источники клиентов
// @Description Top N источников по новым клиентам, остальные объединены в "Other".
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param year query int false "Год"
// @Param month query int false "Месяц 1-12"
// @Param top query int false "Количество источников, по умолчанию 5"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /marketing/funnels [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard.funnels"

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

	defYear, defMonth := month.Of(h.now(), h.loc)
	year, mon, err := month.FromQuery(r.URL.Query(), defYear, defMonth)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}
	top, err := strconv.Atoi(r.URL.Query().Get("top"))
	if err != nil || top <= 0 {
		top = dashboard.DefaultTopSources
	}

	rows, err := h.service.Funnels(r.Context(), sess.UserUID, year, mon, top)
	if err != nil {
		log.Error("failed to load funnels", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load funnels"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"year":    year,
		"month":   mon,
		"sources": rows,
	}))
}
