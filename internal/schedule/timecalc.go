package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// Clock times are wall-clock "HH:MM" strings within a single day. Callers are
// expected to supply well-formed values; malformed input is a precondition
// violation, not a runtime-checked error.

const minutesPerDay = 24 * 60

// lastMinute is the latest representable clock value. End times that would
// cross midnight clamp here; nothing in this package wraps around.
const lastMinute = minutesPerDay - 1

func clockToMinutes(t string) int {
	parts := strings.SplitN(t, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h*60 + m
}

func minutesToClock(m int) string {
	if m < 0 {
		m = 0
	}
	if m > lastMinute {
		m = lastMinute
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// CalculateEndTime adds a duration in minutes to an "HH:MM" start time.
// Results past midnight clamp to "23:59"; CrossesMidnight lets callers detect
// and surface that case instead of silently wrapping.
func CalculateEndTime(start string, duration int) string {
	return minutesToClock(clockToMinutes(start) + duration)
}

// CrossesMidnight reports whether start plus duration spills past 24:00.
func CrossesMidnight(start string, duration int) bool {
	return clockToMinutes(start)+duration > lastMinute
}

// AdjustTime nudges a clock time by whole hours and minutes with clamping
// rather than wraparound: the hour stays in [0,23]; a minute overflow past 59
// resets the minute to 0 and carries one hour, a minute underflow below 0
// resets the minute to 30 and borrows one hour. The UI uses this for bounded
// nudge controls, so the edges stick instead of rolling over.
func AdjustTime(t string, hourDelta, minuteDelta int) string {
	parts := strings.SplitN(t, ":", 2)
	if len(parts) != 2 {
		return t
	}
	hour, _ := strconv.Atoi(parts[0])
	minute, _ := strconv.Atoi(parts[1])

	hour += hourDelta
	minute += minuteDelta

	if minute > 59 {
		minute = 0
		hour++
	}
	if minute < 0 {
		minute = 30
		hour--
	}
	if hour > 23 {
		hour = 23
	}
	if hour < 0 {
		hour = 0
	}

	return fmt.Sprintf("%02d:%02d", hour, minute)
}
