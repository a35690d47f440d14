package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpiresIn(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: "12h", want: 12 * time.Hour},
		{in: "30m", want: 30 * time.Minute},
		{in: "45s", want: 45 * time.Second},
		{in: "2w", want: 14 * 24 * time.Hour},
		{in: "1y", want: time.Duration(365.25 * float64(24*time.Hour))},
		{in: "2 days", want: 48 * time.Hour},
		{in: "1 hour", want: time.Hour},
		{in: "10 Minutes", want: 10 * time.Minute},
		{in: "1.5h", want: 90 * time.Minute},
		{in: "1h30m", want: 90 * time.Minute},
		{in: "120", want: 120 * time.Millisecond},
		{in: "250ms", want: 250 * time.Millisecond},
		{in: " 7d ", want: 7 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExpiresIn(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseExpiresIn_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "forever", "7 fortnights", "-1h", "0", "0d", "d", "300y", "1e30ms"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseExpiresIn(in)
			assert.Error(t, err)
		})
	}
}

func TestParseExpiresIn_OutOfRange(t *testing.T) {
	for _, in := range []string{"300y", "20000w", "106752 days"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseExpiresIn(in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "out of range")
		})
	}

	d, err := ParseExpiresIn("290y")
	require.NoError(t, err)
	assert.Greater(t, d, time.Duration(0))
}
