// Package migrations применяет SQL-миграции из каталога migrations/ к базе PostgreSQL.
package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	pgxv5 "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrDirty схема осталась в состоянии недокатанной миграции, нужен ручной migrate force.
var ErrDirty = errors.New("database schema is dirty")

// Run накатывает все непримененные миграции и возвращает текущую версию схемы.
// Повторный запуск ничего не меняет.
func Run(db *sql.DB, path string, log *slog.Logger) (uint, error) {
	const op = "migrations.Run"

	m, err := open(db, path, log)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	// m.Close не вызывается: драйвер закрыл бы и общий *sql.DB.

	upErr := m.Up()
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		version = 0
	case err != nil:
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if dirty {
		return version, fmt.Errorf("%s: version %d: %w", op, version, ErrDirty)
	}
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return version, fmt.Errorf("%s: %w", op, upErr)
	}

	log.Info("database schema is up to date", slog.Uint64("version", uint64(version)))
	return version, nil
}

func open(db *sql.DB, path string, log *slog.Logger) (*migrate.Migrate, error) {
	driver, err := pgxv5.WithInstance(db, &pgxv5.Config{})
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+path, "pgx_v5", driver)
	if err != nil {
		return nil, err
	}
	m.Log = migrateLogger{log: log}
	return m, nil
}

// migrateLogger направляет вывод golang-migrate в slog на уровне debug.
type migrateLogger struct {
	log *slog.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrate"))
}

func (l migrateLogger) Verbose() bool {
	return l.log.Enabled(context.Background(), slog.LevelDebug)
}
