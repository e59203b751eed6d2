// Package list реализует HTTP-обработчик постраничного списка регулярных расходов.
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
	defaultPageSize = 20
	maxPageSize     = 100
	// (maxPage-1)*maxPageSize должен помещаться в OFFSET.
	maxPage         = 1_000_000
)

// Service описывает бизнес-логику списка правил.
type Service interface {
	List(ctx context.Context, userUID string, page, pageSize int) (*models.RecurringExpensePage, error)
}

// Handler обрабатывает GET /recurring-expenses.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список регулярных расходов
// @Tags RecurringExpenses
// @Produce json
// @Security BearerAuth
// @Param page query int false "Номер страницы, с 1 до 1000000"
// @Param page_size query int false "Размер страницы, до 100"
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /recurring-expenses [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expense.list"

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

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page <= 0 {
		page = 1
	}
	page = min(page, maxPage)
	pageSize, err := strconv.Atoi(r.URL.Query().Get("page_size"))
	if err != nil || pageSize <= 0 {
		pageSize = defaultPageSize
	}
	pageSize = min(pageSize, maxPageSize)

	res, err := h.service.List(r.Context(), sess.UserUID, page, pageSize)
	if err != nil {
		log.Error("failed to list recurring expenses", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list recurring expenses"))
		return
	}

	log.Info("listed recurring expenses", slog.Int("count", len(res.Items)), slog.Int("total", res.Total))
	render.JSON(w, r, response.OKWithData(res))
}
