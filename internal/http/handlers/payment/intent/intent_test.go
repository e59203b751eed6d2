package intent

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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/barbershop-manager/internal/paymentprovider"
	"github.com/magabrotheeeer/barbershop-manager/internal/services/payment"
	"github.com/magabrotheeeer/barbershop-manager/internal/session"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreatePaymentIntent(ctx context.Context, userUID, planID string) (*paymentprovider.Intent, error) {
	args := m.Called(ctx, userUID, planID)
	if res := args.Get(0); res != nil {
		return res.(*paymentprovider.Intent), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestIntentHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name         string
		body         string
		anonymous    bool
		setupMock    func(m *MockService)
		wantStatus   int
		wantContains string
	}{
		{
			name: "intent created",
			body: `{"plan_id":"price_monthly"}`,
			setupMock: func(m *MockService) {
				m.On("CreatePaymentIntent", mock.Anything, "uid-1", "price_monthly").Return(&paymentprovider.Intent{
					PaymentIntentID: "pi_1", ClientSecret: "pi_1_secret", EphemeralKey: "ek_1", CustomerID: "cus_1",
				}, nil).Once()
			},
			wantStatus:   http.StatusOK,
			wantContains: `"client_secret":"pi_1_secret"`,
		},
		{
			name:         "anonymous",
			body:         `{"plan_id":"price_monthly"}`,
			anonymous:    true,
			setupMock:    func(_ *MockService) {},
			wantStatus:   http.StatusUnauthorized,
			wantContains: "unauthorized",
		},
		{
			name:         "missing plan",
			body:         `{}`,
			setupMock:    func(_ *MockService) {},
			wantStatus:   http.StatusUnprocessableEntity,
			wantContains: "field PlanID is a required field",
		},
		{
			name: "unknown plan",
			body: `{"plan_id":"gold"}`,
			setupMock: func(m *MockService) {
				m.On("CreatePaymentIntent", mock.Anything, "uid-1", "gold").
					Return(nil, fmt.Errorf("services.payment.CreatePaymentIntent: %w", payment.ErrUnknownPlan)).Once()
			},
			wantStatus:   http.StatusUnprocessableEntity,
			wantContains: "unknown plan",
		},
		{
			name: "stripe error",
			body: `{"plan_id":"price_monthly"}`,
			setupMock: func(m *MockService) {
				m.On("CreatePaymentIntent", mock.Anything, "uid-1", "price_monthly").Return(nil, errors.New("card_declined")).Once()
			},
			wantStatus:   http.StatusInternalServerError,
			wantContains: "payment provider error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/intent", bytes.NewBufferString(tt.body))
			if !tt.anonymous {
				req = req.WithContext(session.WithSession(req.Context(), session.Session{UserUID: "uid-1"}))
			}
			rec := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantContains)
			svc.AssertExpectations(t)
		})
	}
}
