package schedule

// TeacherRef is the minimal teacher identity the registry needs.
type TeacherRef struct {
	ID   string
	Name string
}

// Registry aggregates one EventSequence per teacher for a single day. It is
// the object queried for "can lesson X start at time T for teacher Y". A
// registry is owned by exactly one scheduling session at a time and is never
// shared across sessions.
type Registry struct {
	sequences map[string]*EventSequence
	names     map[string]string
	order     []string
}

// NewRegistry buckets the given events into their owning teacher's sequence.
// Every known teacher gets a sequence, empty or not; events referencing an
// unknown teacher are silently dropped.
func NewRegistry(teachers []TeacherRef, events []Event) *Registry {
	r := &Registry{
		sequences: make(map[string]*EventSequence, len(teachers)),
		names:     make(map[string]string, len(teachers)),
	}
	for _, t := range teachers {
		if _, exists := r.sequences[t.ID]; exists {
			continue
		}
		r.sequences[t.ID] = NewEventSequence(t.ID)
		r.names[t.ID] = t.Name
		r.order = append(r.order, t.ID)
	}
	for _, ev := range events {
		seq, ok := r.sequences[ev.Teacher]
		if !ok {
			continue
		}
		seq.Add(ev)
	}
	return r
}

// Sequence returns the teacher's event sequence, if the teacher is known.
func (r *Registry) Sequence(teacherID string) (*EventSequence, bool) {
	seq, ok := r.sequences[teacherID]
	return seq, ok
}

// TeacherName returns the display name recorded for the teacher.
func (r *Registry) TeacherName(teacherID string) string {
	return r.names[teacherID]
}

// TeacherIDs lists the known teachers in registration order.
func (r *Registry) TeacherIDs() []string {
	return append([]string(nil), r.order...)
}

// TeacherLessonAvailability probes a teacher's sequence for the requested
// window. An unknown teacher is treated as fully available (fail-open) so that
// stale or late-arriving teacher data never halts scheduling. The pending
// batch is accepted for interface symmetry but not consulted: the scan only
// inspects persisted events, and same-teacher batch sequencing is enforced by
// the availability calculator, not here.
func (r *Registry) TeacherLessonAvailability(teacherID, requestedTime string, duration int, pending []Event) Availability {
	_ = pending
	seq, ok := r.sequences[teacherID]
	if !ok {
		return Availability{
			CalculatedTime: requestedTime,
			EndTime:        CalculateEndTime(requestedTime, duration),
		}
	}
	return seq.AvailabilityAt(requestedTime, duration)
}
