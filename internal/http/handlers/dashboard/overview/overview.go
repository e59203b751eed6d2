// Package overview отдаёт показатели дашборда за месяц в сравнении с предыдущим.
package overview

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/barbershop-manager/internal/http/response"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/month"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/sl"
	"github.com/magabrotheeeer/barbershop-manager/internal/models"
	"github.com/magabrotheeeer/barbershop-manager/internal/session"
)

// Service строит дашборд.
type Service interface {
	Dashboard(ctx context.Context, userUID string, year, mon int) (*models.Dashboard, error)
}

// Handler обрабатывает GET /dashboard.
type Handler struct {
	log     *slog.Logger
	service Service
	loc     *time.Location
	now     func() time.Time
}

// New создает новый экземпляр Handler. loc задаёт текущий месяц по умолчанию.
func New(log *slog.Logger, service Service, loc *time.Location) *Handler {
	return &Handler{log: log, service: service, loc: loc, now: time.Now}
}

// ServeHTTP godoc
// @Summary Дашборд за месяц
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param year query int false "Год, по умолчанию текущий"
// @Param month query int false "Месяц 1-12, по умолчанию текущий"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard.overview"

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

	res, err := h.service.Dashboard(r.Context(), sess.UserUID, year, mon)
	if errors.Is(err, month.ErrInvalidMonth) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}
	if err != nil {
		log.Error("failed to build dashboard", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to build dashboard"))
		return
	}

	render.JSON(w, r, response.OKWithData(res))
}
