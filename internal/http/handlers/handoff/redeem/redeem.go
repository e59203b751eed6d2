// Package redeem обменивает одноразовый код на JWT.
package redeem

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/barbershop-manager/internal/http/response"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/sl"
	handoff "github.com/magabrotheeeer/barbershop-manager/internal/services/handoff"
	"github.com/magabrotheeeer/barbershop-manager/internal/session"
)

// Request тело запроса.
type Request struct {
	Code string `json:"code" validate:"required"`
}

// Service погашает коды.
type Service interface {
	Redeem(ctx context.Context, code string) (string, session.Session, error)
}

// Handler обрабатывает POST /handoff/redeem.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Погасить код перехода
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Код"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Код не найден, истёк или уже использован"
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /handoff/redeem [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.handoff.redeem"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	token, sess, err := h.service.Redeem(r.Context(), req.Code)
	if errors.Is(err, handoff.ErrCodeNotFound) {
		log.Warn("handoff code rejected")
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("code not found or expired"))
		return
	}
	if err != nil {
		log.Error("failed to redeem handoff code", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to redeem code"))
		return
	}

	log.Info("handoff code redeemed", slog.String("user_uid", sess.UserUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token":    token,
		"user_uid": sess.UserUID,
		"username": sess.Username,
		"role":     sess.Role,
	}))
}
