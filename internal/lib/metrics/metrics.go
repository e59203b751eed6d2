// Package metrics объявляет метрики Prometheus сервиса и middleware для HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal считает входящие запросы по методу, шаблону маршрута и коду ответа.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "code"},
	)

	// HTTPRequestDuration латентность запросов.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "code"},
	)

	// AuditFailures число записей аудита, которые не удалось сохранить.
	AuditFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_log_failures_total",
		Help: "Audit rows that could not be written.",
	})

	// TrialPromptsPublished число опубликованных напоминаний о триале по уровню.
	TrialPromptsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trial_prompts_published_total",
			Help: "Trial prompt messages published to the broker.",
		},
		[]string{"mode"},
	)

	// RealtimeConnections текущее число websocket-подписчиков.
	RealtimeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_connections",
		Help: "Open realtime websocket connections.",
	})
)

// Middleware собирает метрики запроса. Путь берётся из шаблона маршрута chi,
// чтобы ID в URL не размножали серии.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				path = p
			}
		}
		code := strconv.Itoa(ww.Status())
		HTTPRequestsTotal.WithLabelValues(r.Method, path, code).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path, code).Observe(time.Since(start).Seconds())
	})
}
