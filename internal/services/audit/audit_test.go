package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/barbershop-manager/internal/lib/metrics"
	"github.com/magabrotheeeer/barbershop-manager/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) InsertSystemLog(ctx context.Context, entry models.AuditEntry) (int, error) {
	args := m.Called(ctx, entry)
	return args.Int(0), args.Error(1)
}

func TestLogger_Record(t *testing.T) {
	entry := models.AuditEntry{UserUID: "u1", Action: models.AuditCreate, Entity: "recurring_expense", EntityID: "5"}

	t.Run("success", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("InsertSystemLog", mock.Anything, entry).Return(1, nil).Once()
		var buf bytes.Buffer
		l := NewLogger(repo, slog.New(slog.NewTextHandler(&buf, nil)))

		before := testutil.ToFloat64(metrics.AuditFailures)
		l.Record(context.Background(), entry)

		assert.Equal(t, before, testutil.ToFloat64(metrics.AuditFailures))
		assert.Empty(t, buf.String())
		repo.AssertExpectations(t)
	})

	t.Run("failure is logged and counted", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("InsertSystemLog", mock.Anything, entry).Return(0, errors.New("db down")).Once()
		var buf bytes.Buffer
		l := NewLogger(repo, slog.New(slog.NewTextHandler(&buf, nil)))

		before := testutil.ToFloat64(metrics.AuditFailures)
		l.Record(context.Background(), entry)

		assert.Equal(t, before+1, testutil.ToFloat64(metrics.AuditFailures))
		assert.Contains(t, buf.String(), "level=WARN")
		assert.Contains(t, buf.String(), "db down")
		repo.AssertExpectations(t)
	})
}
