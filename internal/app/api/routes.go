package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/dashboard/finances"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/dashboard/funnels"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/dashboard/importreport"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/dashboard/overview"
	expensecreate "github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/expense/create"
	expenselist "github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/expense/list"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/expense/read"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/expense/remove"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/expense/update"
	handoffcreate "github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/handoff/create"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/handoff/redeem"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/health"
	notificationlist "github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/notifications/list"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/payment/intent"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/payment/pricing"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/payment/webhook"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/realtime/stream"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/trial/status"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/metrics"
	"github.com/magabrotheeeer/barbershop-manager/internal/realtime"
	authservice "github.com/magabrotheeeer/barbershop-manager/internal/services/auth"
	dashboardservice "github.com/magabrotheeeer/barbershop-manager/internal/services/dashboard"
	expenseservice "github.com/magabrotheeeer/barbershop-manager/internal/services/expense"
	handoffservice "github.com/magabrotheeeer/barbershop-manager/internal/services/handoff"
	paymentservice "github.com/magabrotheeeer/barbershop-manager/internal/services/payment"
	trialservice "github.com/magabrotheeeer/barbershop-manager/internal/services/trial"
	"github.com/magabrotheeeer/barbershop-manager/internal/storage/repository"
)

// Services набор зависимостей, которые нужны обработчикам.
type Services struct {
	Auth          *authservice.AuthService
	Trial         *trialservice.Service
	Expenses      *expenseservice.Service
	Dashboard     *dashboardservice.Service
	Payments      *paymentservice.Service
	Handoff       *handoffservice.Service
	Notifications *repository.Storage
	Feed          *realtime.Hub
	Limiter       *middlewarectx.RateLimiter
	Location      *time.Location
	Checks        []health.Check
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		metrics.Middleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Post("/handoff/redeem", redeem.New(logger, s.Handoff).ServeHTTP)
		r.Get("/pricing", pricing.New(logger, s.Payments).ServeHTTP)

		// Webhook без аутентификации, подлинность проверяется подписью Stripe
		r.Post("/payments/webhook", webhook.New(logger, s.Payments).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(s.Limiter.Middleware(logger))

			r.Get("/trial", status.New(logger, s.Trial).ServeHTTP)

			r.Post("/recurring-expenses", expensecreate.New(logger, s.Expenses).ServeHTTP)
			r.Get("/recurring-expenses", expenselist.New(logger, s.Expenses).ServeHTTP)
			r.Get("/recurring-expenses/{id}", read.New(logger, s.Expenses).ServeHTTP)
			r.Put("/recurring-expenses/{id}", update.New(logger, s.Expenses).ServeHTTP)
			r.Delete("/recurring-expenses/{id}", remove.New(logger, s.Expenses).ServeHTTP)

			r.Get("/dashboard", overview.New(logger, s.Dashboard, s.Location).ServeHTTP)
			r.Put("/dashboard", importreport.New(logger, s.Dashboard).ServeHTTP)
			r.Get("/marketing/funnels", funnels.New(logger, s.Dashboard, s.Location).ServeHTTP)
			r.Get("/finances/summary", finances.New(logger, s.Dashboard, s.Location).ServeHTTP)

			r.Post("/payments/intent", intent.New(logger, s.Payments).ServeHTTP)
			r.Post("/handoff", handoffcreate.New(logger, s.Handoff).ServeHTTP)
			r.Get("/notifications", notificationlist.New(logger, s.Notifications).ServeHTTP)
			r.Get("/realtime", stream.New(logger, s.Feed).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, s.Checks...).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
