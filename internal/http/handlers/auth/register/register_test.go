package register

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

	"github.com/magabrotheeeer/barbershop-manager/internal/storage/repository"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, email, username, password string) (string, error) {
	args := m.Called(ctx, email, username, password)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRegisterHandler(t *testing.T) {
	const validBody = `{"email":"barber@example.com","username":"barber1","password":"password123"}`

	tests := []struct {
		name         string
		body         string
		setupMock    func(m *ServiceMock)
		wantStatus   int
		wantContains string
	}{
		{
			name: "created",
			body: validBody,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, "barber@example.com", "barber1", "password123").Return("uid-1", nil).Once()
			},
			wantStatus:   http.StatusCreated,
			wantContains: `"user_uid":"uid-1"`,
		},
		{
			name:         "broken json",
			body:         `{"email":`,
			setupMock:    func(_ *ServiceMock) {},
			wantStatus:   http.StatusBadRequest,
			wantContains: "invalid request body",
		},
		{
			name:         "invalid email and short password",
			body:         `{"email":"nope","username":"barber1","password":"123"}`,
			setupMock:    func(_ *ServiceMock) {},
			wantStatus:   http.StatusUnprocessableEntity,
			wantContains: "field Email must be a valid email",
		},
		{
			name: "duplicate username",
			body: validBody,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, "barber@example.com", "barber1", "password123").
					Return("", fmt.Errorf("services.auth.Register: %w", repository.ErrAlreadyExists)).Once()
			},
			wantStatus:   http.StatusConflict,
			wantContains: "user already exists",
		},
		{
			name: "storage error",
			body: validBody,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, "barber@example.com", "barber1", "password123").
					Return("", errors.New("db down")).Once()
			},
			wantStatus:   http.StatusInternalServerError,
			wantContains: "failed to register user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantContains)
			svc.AssertExpectations(t)
		})
	}
}
