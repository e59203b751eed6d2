// Package finances отдаёт финансовую сводку месяца с учётом регулярных расходов.
package finances

import (
	"context"
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

// Service считает сводку.
type Service interface {
	FinanceSummary(ctx context.Context, userUID string, year, mon int) (*models.FinanceSummary, error)
}

// Handler обрабатывает GET /finances/summary.
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
// @Summary Финансовая сводка месяца
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param year query int false "Год"
// @Param month query int false "Месяц 1-12"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /finances/summary [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard.finances"

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

	res, err := h.service.FinanceSummary(r.Context(), sess.UserUID, year, mon)
	if err != nil {
		log.Error("failed to build finance summary", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to build finance summary"))
		return
	}

	render.JSON(w, r, response.OKWithData(res))
}
