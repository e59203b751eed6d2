package month

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		month   int
		wantErr bool
	}{
		{name: "january", year: 2025, month: 1},
		{name: "december", year: 2025, month: 12},
		{name: "month zero", year: 2025, month: 0, wantErr: true},
		{name: "month thirteen", year: 2025, month: 13, wantErr: true},
		{name: "year too small", year: 1900, month: 5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.year, tt.month)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMonth)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBounds(t *testing.T) {
	from, to := Bounds(2024, 2)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), to)

	from, to = Bounds(2024, 12)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestPrevious(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     int
		wantYear  int
		wantMonth int
	}{
		{name: "mid year", year: 2025, month: 6, wantYear: 2025, wantMonth: 5},
		{name: "year transition", year: 2025, month: 1, wantYear: 2024, wantMonth: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, m := Previous(tt.year, tt.month)
			assert.Equal(t, tt.wantYear, y)
			assert.Equal(t, tt.wantMonth, m)
		})
	}
}

func TestOf(t *testing.T) {
	// 2025-01-01 02:00 UTC is still December in New York.
	loc := time.FixedZone("EST", -5*3600)
	y, m := Of(time.Date(2025, 1, 1, 2, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, 2024, y)
	assert.Equal(t, 12, m)
}

func TestFromQuery(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantYear  int
		wantMonth int
		wantErr   bool
	}{
		{name: "defaults", query: "", wantYear: 2025, wantMonth: 3},
		{name: "explicit", query: "year=2024&month=12", wantYear: 2024, wantMonth: 12},
		{name: "only month", query: "month=1", wantYear: 2025, wantMonth: 1},
		{name: "not a number", query: "month=jan", wantErr: true},
		{name: "out of range", query: "month=13", wantErr: true},
		{name: "bad year", query: "year=20x4", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)

			y, m, err := FromQuery(q, 2025, 3)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMonth)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantYear, y)
			assert.Equal(t, tt.wantMonth, m)
		})
	}
}
