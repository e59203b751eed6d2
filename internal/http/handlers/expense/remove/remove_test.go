package remove

import (
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

	"github.com/magabrotheeeer/barbershop-manager/internal/session"
	"github.com/magabrotheeeer/barbershop-manager/internal/storage/repository"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Delete(ctx context.Context, userUID string, id int) error {
	return m.Called(ctx, userUID, id).Error(0)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name         string
		id           string
		anonymous    bool
		setupMock    func(m *MockService)
		wantStatus   int
		wantContains string
	}{
		{
			name: "deleted",
			id:   "9",
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, "uid-1", 9).Return(nil).Once()
			},
			wantStatus:   http.StatusOK,
			wantContains: `"deleted_id":9`,
		},
		{
			name:         "anonymous",
			id:           "9",
			anonymous:    true,
			setupMock:    func(_ *MockService) {},
			wantStatus:   http.StatusUnauthorized,
			wantContains: "unauthorized",
		},
		{
			name:         "bad id",
			id:           "nine",
			setupMock:    func(_ *MockService) {},
			wantStatus:   http.StatusBadRequest,
			wantContains: "failed to decode id from url",
		},
		{
			name: "not found",
			id:   "9",
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, "uid-1", 9).Return(fmt.Errorf("x: %w", repository.ErrNotFound)).Once()
			},
			wantStatus:   http.StatusNotFound,
			wantContains: "recurring expense not found",
		},
		{
			name: "storage error",
			id:   "9",
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, "uid-1", 9).Return(errors.New("db down")).Once()
			},
			wantStatus:   http.StatusInternalServerError,
			wantContains: "failed to delete recurring expense",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/recurring-expenses/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if !tt.anonymous {
				ctx = session.WithSession(ctx, session.Session{UserUID: "uid-1"})
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantContains)
			svc.AssertExpectations(t)
		})
	}
}
