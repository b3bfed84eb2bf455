package schedule

// DurationSettings holds the minutes allotted per lesson depending on party
// size. Supplied by the operator per scheduling session.
type DurationSettings struct {
	Single   int `json:"single"`
	Multiple int `json:"multiple"`
}

// DurationFor picks the allotted minutes for a party of the given size.
func (d DurationSettings) DurationFor(studentCount int) int {
	if studentCount > 1 {
		return d.Multiple
	}
	return d.Single
}

// PendingRequest is an in-memory, not-yet-persisted intent to schedule a
// lesson for a party of students with a specific teacher.
type PendingRequest struct {
	ID          string   `json:"id"`
	TeacherID   string   `json:"teacher_id"`
	TeacherName string   `json:"teacher_name"`
	Students    []string `json:"students"`
}

// Placement is the computed result for one pending request. It is derived
// data: recomputed whenever the submit time, durations, or the request batch
// changes, and never persisted directly.
type Placement struct {
	CalculatedTime string     `json:"calculated_time"`
	EndTime        string     `json:"end_time"`
	Duration       int        `json:"duration"`
	Conflicts      []Conflict `json:"conflicts"`
	BatchIndex     int        `json:"batch_index"`
	BatchSize      int        `json:"batch_size"`
}

// ComputePlacements places a batch of pending requests against the registry.
//
// Requests are grouped by teacher preserving their relative order. The first
// request per teacher anchors at submitTime exactly, even when the registry
// reports a conflict there: first-in-batch placements across different
// teachers are always simultaneous, so one teacher's queue never pushes
// another's start time. Every subsequent same-teacher request starts at the
// end of the previous one, strictly back-to-back. The registry is still
// queried for each request so its conflicts reach the operator, but its
// suggested adjustment is discarded; conflicts inform, they never shift a
// placement.
func ComputePlacements(requests []PendingRequest, submitTime string, settings DurationSettings, reg *Registry) map[string]Placement {
	batchSize := make(map[string]int, len(requests))
	for _, req := range requests {
		batchSize[req.TeacherID]++
	}

	placements := make(map[string]Placement, len(requests))
	nextStart := make(map[string]string)
	index := make(map[string]int)

	for _, req := range requests {
		duration := settings.DurationFor(len(req.Students))

		start := submitTime
		if idx := index[req.TeacherID]; idx > 0 {
			start = nextStart[req.TeacherID]
		}

		probe := reg.TeacherLessonAvailability(req.TeacherID, start, duration, nil)
		end := CalculateEndTime(start, duration)

		conflicts := probe.Conflicts
		if CrossesMidnight(start, duration) && !hasConflictType(conflicts, ConflictTypeDayOverflow) {
			conflicts = append(conflicts, Conflict{Type: ConflictTypeDayOverflow, Time: start})
		}

		placements[req.ID] = Placement{
			CalculatedTime: start,
			EndTime:        end,
			Duration:       duration,
			Conflicts:      conflicts,
			BatchIndex:     index[req.TeacherID],
			BatchSize:      batchSize[req.TeacherID],
		}

		nextStart[req.TeacherID] = end
		index[req.TeacherID]++
	}

	return placements
}

func hasConflictType(conflicts []Conflict, kind string) bool {
	for _, c := range conflicts {
		if c.Type == kind {
			return true
		}
	}
	return false
}
