// Package services записывает журнал изменений пользовательских данных.
package services

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/barbershop-manager/internal/lib/metrics"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/sl"
	"github.com/magabrotheeeer/barbershop-manager/internal/models"
)

// Repository сохраняет строки system_logs.
type Repository interface {
	InsertSystemLog(ctx context.Context, entry models.AuditEntry) (int, error)
}

// Logger пишет аудит в режиме best-effort: ошибка записи не возвращается
// вызывающему и не отменяет уже выполненное изменение.
type Logger struct {
	repo Repository
	log  *slog.Logger
}

// NewLogger создает новый экземпляр Logger.
func NewLogger(repo Repository, log *slog.Logger) *Logger {
	return &Logger{repo: repo, log: log}
}

// Record сохраняет запись аудита.
func (l *Logger) Record(ctx context.Context, entry models.AuditEntry) {
	const op = "services.audit.Record"
	if _, err := l.repo.InsertSystemLog(ctx, entry); err != nil {
		metrics.AuditFailures.Inc()
		l.log.Warn("failed to write audit log",
			slog.String("op", op),
			slog.String("action", entry.Action),
			slog.String("entity", entry.Entity),
			slog.String("entity_id", entry.EntityID),
			sl.Err(err))
	}
}
