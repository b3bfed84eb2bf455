package schedule

// gapStep is the granularity of operator-specified pre-event buffers.
const gapStep = 30

// ReflowEvent pairs an existing event with the operator's per-event extra gap:
// idle minutes inserted before the event, in 30-minute steps, floor zero.
type ReflowEvent struct {
	Event
	Gap int
}

// ReflowOptions governs a pushback recalculation.
type ReflowOptions struct {
	Anchor   string
	Settings DurationSettings
	Location string
	// Date retargets the reflowed events; empty keeps each event's own date.
	Date string
	// KeepDurations preserves original durations instead of recomputing them
	// from current student-count rules.
	KeepDurations bool
}

// Recalculated carries an event's proposed new schedule alongside the
// original. Nothing is mutated until the caller diffs and confirms.
type Recalculated struct {
	Event
	Gap         int    `json:"gap"`
	NewTime     string `json:"new_time"`
	NewEndTime  string `json:"new_end_time"`
	NewDuration int    `json:"new_duration"`
	NewLocation string `json:"new_location"`
	NewDate     string `json:"new_date"`
}

// NormalizeGap snaps a requested gap to 30-minute increments, floor zero.
func NormalizeGap(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	return (minutes / gapStep) * gapStep
}

// SwapAdjacent swaps events i and i+1 in place, the manual reordering
// primitive exposed to the operator.
func SwapAdjacent(events []ReflowEvent, i int) {
	if i < 0 || i+1 >= len(events) {
		return
	}
	events[i], events[i+1] = events[i+1], events[i]
}

// Reflow walks the (possibly reordered) event list and recomputes every
// start/end against the anchor: the first event starts at anchor plus its own
// gap, each subsequent event at the previous event's new end plus its own gap.
// Pre-existing idle time between events collapses unless re-introduced through
// an explicit gap. Durations are recomputed from current student-count rules
// unless KeepDurations is set; the target location applies uniformly.
func Reflow(events []ReflowEvent, opts ReflowOptions) []Recalculated {
	result := make([]Recalculated, 0, len(events))
	current := opts.Anchor

	for _, ev := range events {
		start := current
		if gap := NormalizeGap(ev.Gap); gap > 0 {
			start = CalculateEndTime(start, gap)
		}

		duration := ev.Duration
		if !opts.KeepDurations {
			duration = opts.Settings.DurationFor(len(ev.Students))
		}

		date := ev.Date
		if opts.Date != "" {
			date = opts.Date
		}

		end := CalculateEndTime(start, duration)
		result = append(result, Recalculated{
			Event:       ev.Event,
			Gap:         NormalizeGap(ev.Gap),
			NewTime:     start,
			NewEndTime:  end,
			NewDuration: duration,
			NewLocation: opts.Location,
			NewDate:     date,
		})
		current = end
	}

	return result
}

// HasChanges reports whether confirming the reflow would actually update
// anything: at least one event's time, duration, location, or date differs
// from the recalculated value. Drives whether the confirm action is enabled.
func HasChanges(recalc []Recalculated) bool {
	for _, rc := range recalc {
		if rc.Start != rc.NewTime {
			return true
		}
		if rc.Duration != rc.NewDuration {
			return true
		}
		if rc.Location != rc.NewLocation {
			return true
		}
		if rc.Date != rc.NewDate {
			return true
		}
	}
	return false
}
