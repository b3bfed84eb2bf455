package schedule

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateEndTime(t *testing.T) {
	cases := []struct {
		start    string
		duration int
		want     string
	}{
		{"11:00", 120, "13:00"},
		{"09:00", 60, "10:00"},
		{"09:30", 45, "10:15"},
		{"00:00", 1, "00:01"},
		{"08:15", 0, "08:15"},
		{"23:00", 59, "23:59"},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s+%dm", tc.start, tc.duration), func(t *testing.T) {
			assert.Equal(t, tc.want, CalculateEndTime(tc.start, tc.duration))
		})
	}
}

func TestCalculateEndTimeMatchesMinuteArithmetic(t *testing.T) {
	// Chained placements must agree with direct minute arithmetic for any
	// same-day duration.
	for _, d := range []int{1, 30, 59, 60, 90, 240, 719, 1439} {
		start := "00:00"
		want := fmt.Sprintf("%02d:%02d", d/60, d%60)
		assert.Equal(t, want, CalculateEndTime(start, d), "duration %d", d)
	}

	// Back-to-back chaining: (t + d1) + d2 == t + (d1 + d2).
	chained := CalculateEndTime(CalculateEndTime("09:00", 75), 45)
	assert.Equal(t, CalculateEndTime("09:00", 120), chained)
}

func TestCalculateEndTimeClampsAtMidnight(t *testing.T) {
	// Cross-midnight lessons are unsupported: the end clamps at 23:59 and
	// never wraps into the next day.
	assert.Equal(t, "23:59", CalculateEndTime("23:00", 120))
	assert.Equal(t, "23:59", CalculateEndTime("23:59", 1))
	assert.True(t, CrossesMidnight("23:00", 120))
	assert.True(t, CrossesMidnight("23:59", 1))
	assert.False(t, CrossesMidnight("22:00", 119))
}

func TestAdjustTime(t *testing.T) {
	cases := []struct {
		name       string
		time       string
		hours      int
		minutes    int
		want       string
	}{
		{"plain hour nudge", "10:00", 1, 0, "11:00"},
		{"plain minute nudge", "10:00", 0, 30, "10:30"},
		{"minute overflow carries hour", "10:45", 0, 30, "11:00"},
		{"minute underflow borrows hour", "10:00", 0, -30, "09:30"},
		{"hour clamps high", "23:30", 2, 0, "23:30"},
		{"hour clamps low", "00:15", -3, 0, "00:15"},
		{"overflow at top of day clamps", "23:45", 0, 30, "23:00"},
		{"underflow at bottom clamps", "00:10", 0, -30, "00:30"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AdjustTime(tc.time, tc.hours, tc.minutes))
		})
	}
}
