package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsTradingDayWeekend(t *testing.T) {
	saturday := time.Date(2026, 8, 1, 10, 0, 0, 0, Location())
	assert.False(t, IsTradingDay(saturday))
	assert.Contains(t, SkipReason(saturday), "Saturday")
}

func TestIsTradingDayHoliday(t *testing.T) {
	newYears := time.Date(2026, 1, 1, 10, 0, 0, 0, Location())
	assert.False(t, IsTradingDay(newYears))
}

func TestIsTradingDayOrdinaryWeekday(t *testing.T) {
	wed := time.Date(2026, 7, 29, 10, 0, 0, 0, Location())
	assert.True(t, IsTradingDay(wed))
}

func TestTradingSessionBoundaries(t *testing.T) {
	wed := func(h, m int) time.Time {
		return time.Date(2026, 7, 29, h, m, 0, 0, Location())
	}
	assert.True(t, TradingSession(wed(9, 30)))
	assert.True(t, TradingSession(wed(11, 30)))
	assert.False(t, TradingSession(wed(12, 0)))
	assert.True(t, TradingSession(wed(13, 0)))
	assert.True(t, TradingSession(wed(15, 0)))
	assert.False(t, TradingSession(wed(15, 1)))
	assert.False(t, TradingSession(wed(9, 29)))
}

func TestPreviousTradingDaySkipsWeekend(t *testing.T) {
	monday := time.Date(2026, 8, 3, 10, 0, 0, 0, Location())
	prev := PreviousTradingDay(monday)
	assert.Equal(t, time.Friday, prev.Weekday())
}
