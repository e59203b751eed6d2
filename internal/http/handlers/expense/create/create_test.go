package create

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

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/barbershop-manager/internal/expense"
	"github.com/magabrotheeeer/barbershop-manager/internal/models"
	"github.com/magabrotheeeer/barbershop-manager/internal/session"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, userUID string, in models.RecurringExpenseInput) (*models.RecurringExpense, error) {
	args := m.Called(ctx, userUID, in)
	if res := args.Get(0); res != nil {
		return res.(*models.RecurringExpense), args.Error(1)
	}
	return nil, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestCreateHandler(t *testing.T) {
	const body = `{"label":"Rent","amount":"1000","frequency":"monthly","start_date":"2025-01-01","monthly_day":1}`

	tests := []struct {
		name         string
		body         string
		anonymous    bool
		setupMock    func(m *MockService)
		wantStatus   int
		wantContains string
	}{
		{
			name: "created",
			body: body,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "uid-1", mock.MatchedBy(func(in models.RecurringExpenseInput) bool {
					return in.Label == "Rent" && in.MonthlyDay != nil && *in.MonthlyDay == 1
				})).Return(&models.RecurringExpense{ID: 7, Label: "Rent", Amount: decimal.NewFromInt(1000)}, nil).Once()
			},
			wantStatus:   http.StatusCreated,
			wantContains: `"id":7`,
		},
		{
			name:         "no session",
			body:         body,
			anonymous:    true,
			setupMock:    func(_ *MockService) {},
			wantStatus:   http.StatusUnauthorized,
			wantContains: "unauthorized",
		},
		{
			name:         "broken json",
			body:         `{`,
			setupMock:    func(_ *MockService) {},
			wantStatus:   http.StatusBadRequest,
			wantContains: "invalid request body",
		},
		{
			name:         "missing label",
			body:         `{"amount":"1000","frequency":"once","start_date":"2025-01-01"}`,
			setupMock:    func(_ *MockService) {},
			wantStatus:   http.StatusUnprocessableEntity,
			wantContains: "field Label is a required field",
		},
		{
			name: "rule rejected",
			body: body,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "uid-1", mock.Anything).
					Return(nil, fmt.Errorf("services.expense.Create: %w", &expense.ValidationError{Field: "amount", Message: "must be positive"})).Once()
			},
			wantStatus:   http.StatusUnprocessableEntity,
			wantContains: "amount: must be positive",
		},
		{
			name: "storage error",
			body: body,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "uid-1", mock.Anything).Return(nil, errors.New("db down")).Once()
			},
			wantStatus:   http.StatusInternalServerError,
			wantContains: "failed to save recurring expense",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/recurring-expenses", bytes.NewBufferString(tt.body))
			if !tt.anonymous {
				req = req.WithContext(session.WithSession(req.Context(), session.Session{UserUID: "uid-1"}))
			}
			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantContains)
			svc.AssertExpectations(t)
		})
	}
}
