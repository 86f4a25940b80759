package services

import (
	"testing"
	"time"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"123", 123},
		{"5B", 5},
		{"1KB", 1000},
		{"1.5KB", 1500},
		{"1.5kb", 1500},
		{"10MB", 10_000_000},
		{" 2GB ", 2_000_000_000},
		{"0.5 MB", 500_000},
	}
	for _, tt := range tests {
		got, err := ParseSize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "abc", "1TB", "-5", "-1KB", "KB", "1.2.3MB"} {
		_, err := ParseSize(bad)
		assert.ErrorIs(t, err, common.ErrInvalidSize, bad)
	}
}

func TestParseTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got, err := ParseTime("2024-01-01", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"7d", now.Add(-168 * time.Hour)},
		{"24h", now.Add(-24 * time.Hour)},
		{"30m", now.Add(-30 * time.Minute)},
		{"0d", now},
	}
	for _, tt := range tests {
		got, err := ParseTime(tt.in, now)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "yesterday", "2024-13-01", "1960-01-01", "7w", "-3d", "d"} {
		_, err := ParseTime(bad, now)
		assert.ErrorIs(t, err, common.ErrInvalidTime, bad)
	}
}
