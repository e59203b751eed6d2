package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     []Check
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no dependencies",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"OK","data":{}}`,
		},
		{
			name:       "all up",
			checks:     []Check{{Name: "postgres", Ping: ok}, {Name: "redis", Ping: ok}},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"OK","data":{"postgres":"ok","redis":"ok"}}`,
		},
		{
			name:       "redis down",
			checks:     []Check{{Name: "postgres", Ping: ok}, {Name: "redis", Ping: down}},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"Error","error":"dependency unavailable","data":{"postgres":"ok","redis":"down"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			New(logger, tt.checks...).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
