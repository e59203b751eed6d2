package update

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/barbershop-manager/internal/expense"
	"github.com/magabrotheeeer/barbershop-manager/internal/models"
	"github.com/magabrotheeeer/barbershop-manager/internal/session"
	"github.com/magabrotheeeer/barbershop-manager/internal/storage/repository"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, userUID string, id int, in models.RecurringExpenseInput) (*models.RecurringExpense, error) {
	args := m.Called(ctx, userUID, id, in)
	if res := args.Get(0); res != nil {
		return res.(*models.RecurringExpense), args.Error(1)
	}
	return nil, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestUpdateHandler(t *testing.T) {
	const body = `{"label":"Towels","amount":"25.5","frequency":"weekly","start_date":"2025-01-06","weekly_days":[1,4]}`

	tests := []struct {
		name         string
		id           string
		body         string
		setupMock    func(m *MockService)
		wantStatus   int
		wantContains string
	}{
		{
			name: "updated",
			id:   "3",
			body: body,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, "uid-1", 3, mock.MatchedBy(func(in models.RecurringExpenseInput) bool {
					return in.Frequency == "weekly" && len(in.WeeklyDays) == 2
				})).Return(&models.RecurringExpense{ID: 3, Label: "Towels"}, nil).Once()
			},
			wantStatus:   http.StatusOK,
			wantContains: `"label":"Towels"`,
		},
		{
			name:         "bad id",
			id:           "x",
			body:         body,
			setupMock:    func(_ *MockService) {},
			wantStatus:   http.StatusBadRequest,
			wantContains: "failed to decode id from url",
		},
		{
			name:         "broken json",
			id:           "3",
			body:         `[]`,
			setupMock:    func(_ *MockService) {},
			wantStatus:   http.StatusBadRequest,
			wantContains: "invalid request body",
		},
		{
			name: "weekly without days",
			id:   "3",
			body: body,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, "uid-1", 3, mock.Anything).
					Return(nil, fmt.Errorf("services.expense.Update: %w", &expense.ValidationError{Field: "weekly_days", Message: "pick at least one day"})).Once()
			},
			wantStatus:   http.StatusUnprocessableEntity,
			wantContains: "weekly_days: pick at least one day",
		},
		{
			name: "not found",
			id:   "3",
			body: body,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, "uid-1", 3, mock.Anything).Return(nil, fmt.Errorf("x: %w", repository.ErrNotFound)).Once()
			},
			wantStatus:   http.StatusNotFound,
			wantContains: "recurring expense not found",
		},
		{
			name: "storage error",
			id:   "3",
			body: body,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, "uid-1", 3, mock.Anything).Return(nil, errors.New("db down")).Once()
			},
			wantStatus:   http.StatusInternalServerError,
			wantContains: "failed to save recurring expense",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPut, "/api/v1/recurring-expenses/"+tt.id, bytes.NewBufferString(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(session.WithSession(ctx, session.Session{UserUID: "uid-1"}))

			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantContains)
			svc.AssertExpectations(t)
		})
	}
}
