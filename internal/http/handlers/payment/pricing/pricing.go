// Package pricing отдаёт список тарифов.
package pricing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/barbershop-manager/internal/config"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/response"
)

// Service возвращает тарифы.
type Service interface {
	Pricing() []config.Plan
}

// Handler обрабатывает GET /pricing.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Тарифы
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Response
// @Router /pricing [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(map[string]any{
		"plans": h.service.Pricing(),
	}))
}
