package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrialProfile_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantStart *time.Time
		wantEnd   *time.Time
	}{
		{
			name:      "rfc3339",
			input:     `{"trial_start":"2025-01-01T09:30:00Z","trial_end":"2025-01-22T09:30:00Z"}`,
			wantStart: ptrTime(time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)),
			wantEnd:   ptrTime(time.Date(2025, 1, 22, 9, 30, 0, 0, time.UTC)),
		},
		{
			name:      "date only",
			input:     `{"trial_start":"2025-01-01"}`,
			wantStart: ptrTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:  "garbage becomes nil",
			input: `{"trial_start":"not a date","trial_end":"2025-02-30"}`,
		},
		{
			name:  "empty and null",
			input: `{"trial_start":"","trial_end":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p TrialProfile
			require.NoError(t, json.Unmarshal([]byte(tt.input), &p))

			if tt.wantStart == nil {
				assert.Nil(t, p.TrialStart)
			} else {
				require.NotNil(t, p.TrialStart)
				assert.True(t, tt.wantStart.Equal(*p.TrialStart))
			}
			if tt.wantEnd == nil {
				assert.Nil(t, p.TrialEnd)
			} else {
				require.NotNil(t, p.TrialEnd)
				assert.True(t, tt.wantEnd.Equal(*p.TrialEnd))
			}
		})
	}
}

func TestTrialProfile_UnmarshalJSON_KeepsOtherFields(t *testing.T) {
	var p TrialProfile
	require.NoError(t, json.Unmarshal([]byte(`{"trial_active":true,"stripe_subscription_status":"trialing","trial_start":"??"}`), &p))

	require.NotNil(t, p.TrialActive)
	assert.True(t, *p.TrialActive)
	assert.Equal(t, SubscriptionTrialing, p.Status())
	assert.Nil(t, p.TrialStart)
}

func TestTrialProfile_RoundTrip(t *testing.T) {
	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	active := true
	in := TrialProfile{TrialActive: &active, TrialStart: &start}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out TrialProfile
	require.NoError(t, json.Unmarshal(data, &out))
	require.NotNil(t, out.TrialStart)
	assert.True(t, start.Equal(*out.TrialStart))
	assert.Equal(t, "", out.Status())
}

func ptrTime(t time.Time) *time.Time { return &t }
