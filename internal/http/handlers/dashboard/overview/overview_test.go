package overview

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/barbershop-manager/internal/models"
	"github.com/magabrotheeeer/barbershop-manager/internal/session"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Dashboard(ctx context.Context, userUID string, year, mon int) (*models.Dashboard, error) {
	args := m.Called(ctx, userUID, year, mon)
	if res := args.Get(0); res != nil {
		return res.(*models.Dashboard), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestOverviewHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	// 2025-04-01 02:00 UTC is still March in the shop's zone.
	clock := time.Date(2025, 4, 1, 2, 0, 0, 0, time.UTC)
	shop := time.FixedZone("shop", -5*3600)

	tests := []struct {
		name         string
		query        string
		setupMock    func(m *MockService)
		wantStatus   int
		wantContains string
	}{
		{
			name: "defaults to the shop's current month",
			setupMock: func(m *MockService) {
				m.On("Dashboard", mock.Anything, "uid-1", 2025, 3).
					Return(&models.Dashboard{Year: 2025, Month: 3, RetentionRate: 40}, nil).Once()
			},
			wantStatus:   http.StatusOK,
			wantContains: `"retention_rate":40`,
		},
		{
			name:  "explicit month",
			query: "?year=2024&month=1",
			setupMock: func(m *MockService) {
				m.On("Dashboard", mock.Anything, "uid-1", 2024, 1).Return(&models.Dashboard{Year: 2024, Month: 1}, nil).Once()
			},
			wantStatus:   http.StatusOK,
			wantContains: `"year":2024`,
		},
		{
			name:         "invalid month",
			query:        "?month=13",
			setupMock:    func(_ *MockService) {},
			wantStatus:   http.StatusUnprocessableEntity,
			wantContains: "invalid month",
		},
		{
			name: "storage error",
			setupMock: func(m *MockService) {
				m.On("Dashboard", mock.Anything, "uid-1", 2025, 3).Return(nil, errors.New("db down")).Once()
			},
			wantStatus:   http.StatusInternalServerError,
			wantContains: "failed to build dashboard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)
			h := New(logger, svc, shop)
			h.now = func() time.Time { return clock }

			req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard"+tt.query, nil)
			req = req.WithContext(session.WithSession(req.Context(), session.Session{UserUID: "uid-1"}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantContains)
			svc.AssertExpectations(t)
		})
	}
}
