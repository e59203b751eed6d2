package sl_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/barbershop-manager/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	err := errors.New("something went wrong")
	attr := sl.Err(err)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	assert.Panics(t, func() {
		_ = sl.Err(nil)
	})
}

func TestNew_FormatAndLevelPerEnv(t *testing.T) {
	tests := []struct {
		env     string
		json    bool
		debugOn bool
	}{
		{env: sl.EnvLocal, json: false, debugOn: true},
		{env: sl.EnvDev, json: true, debugOn: true},
		{env: sl.EnvProd, json: true, debugOn: false},
		{env: "staging", json: true, debugOn: false},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			log := sl.New(tt.env, &buf)

			assert.Equal(t, tt.debugOn, log.Enabled(context.Background(), slog.LevelDebug))

			log.Info("hello", slog.String("k", "v"))
			require.NotEmpty(t, buf.String())
			if tt.json {
				assert.Contains(t, buf.String(), `"msg":"hello"`)
			} else {
				assert.Contains(t, buf.String(), "msg=hello")
			}
		})
	}
}
