package response

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopes_JSON(t *testing.T) {
	tests := []struct {
		name string
		resp any
		want string
	}{
		{
			name: "ok with data",
			resp: OKWithData(map[string]int{"day_number": 15}),
			want: `{"status":"OK","data":{"day_number":15}}`,
		},
		{
			name: "plain error",
			resp: Error("recurring expense not found"),
			want: `{"status":"Error","error":"recurring expense not found"}`,
		},
		{
			name: "field error",
			resp: FieldError("weekly_days", "pick at least one day"),
			want: `{"status":"Error","error":"weekly_days: pick at least one day","fields":{"weekly_days":"pick at least one day"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.resp)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Label      string `validate:"required"`
		Email      string `validate:"email"`
		Username   string `validate:"alphanum"`
		Password   string `validate:"min=8"`
		MonthlyDay int    `validate:"gte=1,lte=31"`
		Frequency  string `validate:"oneof=once weekly monthly"`
		Code       string `validate:"len=6"`
	}

	err := validator.New().Struct(payload{
		Email:      "nope",
		Username:   "!!!",
		Password:   "123",
		MonthlyDay: 32,
		Frequency:  "daily",
		Code:       "ABC",
	})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, StatusError, resp.Status)
	for _, want := range []string{
		"field Label is a required field",
		"field Email must be a valid email",
		"field Username can contain only numbers and letters",
		"field Password must be at least 8",
		"field MonthlyDay must be at most 31",
		"field Frequency must be one of [once weekly monthly]",
		"field Code must be exactly 6 long",
	} {
		assert.Contains(t, resp.Error, want)
	}
	assert.Equal(t, "is a required field", resp.Fields["Label"])
	assert.Len(t, resp.Fields, 7)
}
