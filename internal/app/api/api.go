// Package api собирает HTTP-приложение: хранилище, кэш, сервисы и маршруты.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/barbershop-manager/internal/cache"
	"github.com/magabrotheeeer/barbershop-manager/internal/config"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/handlers/health"
	"github.com/magabrotheeeer/barbershop-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/sl"
	"github.com/magabrotheeeer/barbershop-manager/internal/migrations"
	"github.com/magabrotheeeer/barbershop-manager/internal/paymentprovider"
	"github.com/magabrotheeeer/barbershop-manager/internal/realtime"
	auditservice "github.com/magabrotheeeer/barbershop-manager/internal/services/audit"
	authservice "github.com/magabrotheeeer/barbershop-manager/internal/services/auth"
	dashboardservice "github.com/magabrotheeeer/barbershop-manager/internal/services/dashboard"
	expenseservice "github.com/magabrotheeeer/barbershop-manager/internal/services/expense"
	handoffservice "github.com/magabrotheeeer/barbershop-manager/internal/services/handoff"
	paymentservice "github.com/magabrotheeeer/barbershop-manager/internal/services/payment"
	trialservice "github.com/magabrotheeeer/barbershop-manager/internal/services/trial"
	"github.com/magabrotheeeer/barbershop-manager/internal/storage/repository"
	"github.com/magabrotheeeer/barbershop-manager/internal/trial"
)

const shutdownTimeout = 15 * time.Second

// App HTTP-приложение.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New подключается к зависимостям, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.api.New"

	loc, err := cfg.Trial.Location()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	evaluator, err := trial.New(trial.Thresholds{
		TrialDays:       cfg.TrialDays,
		SoftPromptDay:   cfg.SoftPromptDay,
		UrgentPromptDay: cfg.UrgentPromptDay,
		StrongPromptDay: cfg.StrongPromptDay,
	}, trial.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err = migrations.Run(db.DB, cfg.MigrationsPath, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	feed := realtime.NewHub(logger, 0)
	audit := auditservice.NewLogger(db, logger)

	authService := authservice.NewAuthService(db, jwtMaker, cfg.TrialDays)
	paymentService := paymentservice.New(db, paymentprovider.NewClient(cfg.Stripe), cacheRedis, cfg.Stripe, logger)
	expenseService := expenseservice.NewService(db, cacheRedis, audit, feed, logger)

	services := Services{
		Auth:          authService,
		Trial:         trialservice.NewService(db, paymentService, cacheRedis, evaluator, logger),
		Expenses:      expenseService,
		Dashboard:     dashboardservice.NewService(db, expenseService, feed, logger),
		Payments:      paymentService,
		Handoff:       handoffservice.NewService(cacheRedis, authService, cfg.CodeTTL, logger),
		Notifications: db,
		Feed:          feed,
		Limiter:       middlewarectx.NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
		Location:      loc,
		Checks: []health.Check{
			{Name: "postgres", Ping: db.DB.PingContext},
			{Name: "redis", Ping: cacheRedis.Ping},
		},
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, services)

	srv := &http.Server{
		Addr:              cfg.AddressHTTP,
		Handler:           router,
		ReadHeaderTimeout: cfg.TimeoutHTTP,
		ReadTimeout:       cfg.TimeoutHTTP,
		IdleTimeout:       cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и корректно останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
}
