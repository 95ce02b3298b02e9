package timeparsing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompactDuration(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: "+6h", want: time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)},
		{input: "+1d", want: time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)},
		{input: "+2w", want: time.Date(2025, 6, 29, 12, 0, 0, 0, time.UTC)},
		{input: "3m", want: time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)},
		{input: "1y", want: time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)},
		{input: "-1d", want: time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)},
		{input: "-6h", want: time.Date(2025, 6, 15, 6, 0, 0, 0, time.UTC)},
		{input: "+365d", want: time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)},
		{input: "6h+", wantErr: true},
		{input: "++1d", wantErr: true},
		{input: "1x", wantErr: true},
		{input: "", wantErr: true},
		{input: "6", wantErr: true},
		{input: "+ 6h", wantErr: true},
		{input: "2025-01-15", wantErr: true},
		{input: "tomorrow", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCompactDuration(tt.input, now)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, IsCompactDuration(tt.input))
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
			assert.True(t, IsCompactDuration(tt.input))
		})
	}
}

func TestParseCompactDurationLeapYear(t *testing.T) {
	got, err := ParseCompactDuration("+1d", time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC), got)
}

func TestParseCompactDurationPreservesZone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("timezone America/New_York not available")
	}
	got, err := ParseCompactDuration("+1d", time.Date(2025, 6, 15, 12, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Equal(t, loc, got.Location())
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2017-05-01T10:11:12Z", time.Date(2017, 5, 1, 10, 11, 12, 0, time.UTC)},
		{"2017-05-01T10:11:12.5+02:00", time.Date(2017, 5, 1, 8, 11, 12, 500_000_000, time.UTC)},
		{"2017-05-01T10:11:12", time.Date(2017, 5, 1, 10, 11, 12, 0, time.UTC)},
		{"2017-05-01 10:11", time.Date(2017, 5, 1, 10, 11, 0, 0, time.UTC)},
		{"2017-05-01", time.Date(2017, 5, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input, time.UTC)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}

	_, err := ParseTimestamp("last week", time.UTC)
	assert.Error(t, err)
}
