package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthKeysTrailingYear(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	keys := MonthKeys(now, 12)
	assert.Len(t, keys, 12)
	assert.Equal(t, "2025-09", keys[0])
	assert.Equal(t, "2026-08", keys[11])
}

func TestMonthKeysCrossesYearBoundary(t *testing.T) {
	now := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	keys := MonthKeys(now, 3)
	assert.Equal(t, []string{"2025-11", "2025-12", "2026-01"}, keys)
}

func TestMonthKeysSingleMonth(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	keys := MonthKeys(now, 1)
	assert.Equal(t, []string{"2026-03"}, keys)
}
