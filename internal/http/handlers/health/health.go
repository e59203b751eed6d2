// Package health отдаёт состояние сервиса и его зависимостей.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/barbershop-manager/internal/http/response"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/sl"
)

const checkTimeout = 2 * time.Second

// Check проверка одной зависимости.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Handler обрабатывает GET /health.
type Handler struct {
	log    *slog.Logger
	checks []Check
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, checks ...Check) *Handler {
	return &Handler{
		log:    log,
		checks: checks,
	}
}

// ServeHTTP godoc
// @Summary Проверка состояния
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for _, c := range h.checks {
		if err := c.Ping(ctx); err != nil {
			h.log.Error("dependency unavailable", slog.String("op", op), slog.String("dependency", c.Name), sl.Err(err))
			deps[c.Name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[c.Name] = "ok"
	}

	w.WriteHeader(status)
	if status != http.StatusOK {
		render.JSON(w, r, response.Response{Status: response.StatusError, Error: "dependency unavailable", Data: deps})
		return
	}
	render.JSON(w, r, response.OKWithData(deps))
}
