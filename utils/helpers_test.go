package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidInterval(t *testing.T) {
	assert.True(t, IsValidInterval("Day"))
	assert.True(t, IsValidInterval("Hour"))
	assert.False(t, IsValidInterval("day"))
	assert.False(t, IsValidInterval(""))
}

func TestParseTimeRange(t *testing.T) {
	start, end, err := ParseTimeRange("2025-01-01T00:00:00Z", "2025-01-02T00:00:00Z", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), end)

	start, end, err = ParseTimeRange("", "2025-01-02T00:00:00Z", 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, end.Add(-24*time.Hour), start)

	_, end, err = ParseTimeRange("", "", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), end, time.Minute)
}

func TestParseTimeRange_Errors(t *testing.T) {
	_, _, err := ParseTimeRange("yesterday", "", time.Hour)
	assert.Error(t, err)

	_, _, err = ParseTimeRange("", "tomorrow", time.Hour)
	assert.Error(t, err)

	_, _, err = ParseTimeRange("2025-01-03T00:00:00Z", "2025-01-02T00:00:00Z", time.Hour)
	assert.Error(t, err)
}
