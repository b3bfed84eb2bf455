package schedule

// Conflict types surfaced by availability scans. Conflicts are ordinary data
// for human review, never errors.
const (
	ConflictTypeEvent       = "event"
	ConflictTypeDayOverflow = "day-overflow"
)

// Conflict describes what a proposed time window collided with.
type Conflict struct {
	Type     string `json:"type"`
	Time     string `json:"time"`
	Duration int    `json:"duration,omitempty"`
}

// Availability is the result of probing a sequence for a start time.
type Availability struct {
	CalculatedTime string     `json:"calculated_time"`
	EndTime        string     `json:"end_time"`
	Conflicts      []Conflict `json:"conflicts"`
}

// Event is a scheduled teaching session as seen by the scheduling core.
// GapAfter holds the idle minutes before the next event in the owning
// sequence and is recomputed on every insert.
type Event struct {
	ID       string
	Teacher  string
	Date     string
	Start    string
	Duration int
	Location string
	Status   string
	Students []string
	GapAfter int
}

func (e Event) startMinutes() int { return clockToMinutes(e.Start) }
func (e Event) endMinutes() int   { return clockToMinutes(e.Start) + e.Duration }

// EventSequence holds one teacher's sessions for a day, ordered by start time.
// Daily per-teacher counts stay in the single digits to low tens, so the O(n)
// gap recompute on insert is fine.
type EventSequence struct {
	teacherID string
	events    []Event
}

// NewEventSequence returns an empty sequence for the teacher.
func NewEventSequence(teacherID string) *EventSequence {
	return &EventSequence{teacherID: teacherID}
}

// TeacherID returns the owning teacher's identifier.
func (s *EventSequence) TeacherID() string { return s.teacherID }

// Len returns the number of scheduled events.
func (s *EventSequence) Len() int { return len(s.events) }

// Add appends an event and recomputes the gap-after of every event.
func (s *EventSequence) Add(ev Event) {
	ev.Teacher = s.teacherID
	s.events = append(s.events, ev)
	s.recomputeGaps()
}

// Replace swaps the whole sequence contents, used after a confirmed reflow.
func (s *EventSequence) Replace(events []Event) {
	s.events = make([]Event, len(events))
	copy(s.events, events)
	for i := range s.events {
		s.events[i].Teacher = s.teacherID
	}
	s.recomputeGaps()
}

// Events returns the events in schedule order.
func (s *EventSequence) Events() []Event {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Gaps returns the strictly positive gap-after values, in schedule order.
// Zero gaps are omitted, not zero-padded; the rendering layer sizes its free
// slot markers from this list.
func (s *EventSequence) Gaps() []int {
	var gaps []int
	for _, ev := range s.events {
		if ev.GapAfter > 0 {
			gaps = append(gaps, ev.GapAfter)
		}
	}
	return gaps
}

func (s *EventSequence) recomputeGaps() {
	for i := range s.events {
		if i == len(s.events)-1 {
			s.events[i].GapAfter = 0
			continue
		}
		gap := s.events[i+1].startMinutes() - s.events[i].endMinutes()
		if gap < 0 {
			gap = 0
		}
		s.events[i].GapAfter = gap
	}
}

// AvailabilityAt probes the sequence for a proposed [start, start+duration)
// window. Each colliding event is reported once and the calculated time
// advances past it; the scan then restarts so the suggested time is checked
// against the whole sequence again, not just the last collision encountered.
// The returned time is therefore conflict-free with respect to every event
// already in the sequence.
func (s *EventSequence) AvailabilityAt(start string, duration int) Availability {
	calc := clockToMinutes(start)
	var conflicts []Conflict
	reported := make(map[int]bool)

	for moved := true; moved; {
		moved = false
		for i, ev := range s.events {
			if ev.startMinutes() < calc+duration && calc < ev.endMinutes() {
				if !reported[i] {
					conflicts = append(conflicts, Conflict{
						Type:     ConflictTypeEvent,
						Time:     ev.Start,
						Duration: ev.Duration,
					})
					reported[i] = true
				}
				calc = ev.endMinutes()
				moved = true
				break
			}
		}
	}

	calculated := minutesToClock(calc)
	if CrossesMidnight(calculated, duration) {
		conflicts = append(conflicts, Conflict{Type: ConflictTypeDayOverflow, Time: calculated})
	}

	return Availability{
		CalculatedTime: calculated,
		EndTime:        CalculateEndTime(calculated, duration),
		Conflicts:      conflicts,
	}
}
