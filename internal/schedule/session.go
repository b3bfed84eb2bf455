package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/windward-labs/kiteschool-api/pkg/errors"
)

// Session states. Calculating is transient: placement math is synchronous and
// re-run eagerly on every input change, so a session is only ever observed in
// Calculating from inside the recalculation itself.
type State string

const (
	StateIdle           State = "idle"
	StateComposing      State = "composing"
	StateCalculating    State = "calculating"
	StateReadyToConfirm State = "ready_to_confirm"
	StateSubmitting     State = "submitting"
)

// Pushback sub-states.
type PushbackState string

const (
	PushbackClosed         PushbackState = "closed"
	PushbackAwaitingAnchor PushbackState = "awaiting_anchor_time"
	PushbackPreviewing     PushbackState = "previewing"
	PushbackConfirming     PushbackState = "confirming"
)

// ConfirmedPlacement is the plain tuple handed to the persistence boundary on
// confirm. RequestID is set for new lessons, EventID for pushback updates.
type ConfirmedPlacement struct {
	RequestID string   `json:"request_id,omitempty"`
	EventID   string   `json:"event_id,omitempty"`
	TeacherID string   `json:"teacher_id"`
	Date      string   `json:"date"`
	Time      string   `json:"time"`
	EndTime   string   `json:"end_time"`
	Duration  int      `json:"duration"`
	Location  string   `json:"location"`
	Students  []string `json:"students"`
}

// Result reports a confirm outcome. Persistence failures are data, not
// panics: the session returns to its editing state with everything intact so
// the operator can retry without re-entering anything.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Persister is the outbound persistence boundary. The core never talks to a
// database; it hands off plain tuples and awaits success or failure.
// CreateEvents returns the stored event IDs in input order so the session can
// absorb the new lessons as addressable events; a later pushback updates them
// by those IDs.
type Persister interface {
	CreateEvents(ctx context.Context, placements []ConfirmedPlacement) ([]string, error)
	UpdateEvents(ctx context.Context, placements []ConfirmedPlacement) error
}

// SessionConfig seeds a scheduling session with its day and defaults.
type SessionConfig struct {
	Date       string
	SubmitTime string
	Settings   DurationSettings
	Location   string
}

// Session drives one day's scheduling workflow: compose a batch of pending
// lesson requests, eagerly recalculate placements on every input change,
// confirm to persistence, and run pushback previews. Each session owns its
// own registry snapshot; simultaneous admin sessions are not reconciled here.
type Session struct {
	mu sync.Mutex

	id         string
	date       string
	submitTime string
	settings   DurationSettings
	location   string

	registry   *Registry
	requests   []PendingRequest
	placements map[string]Placement

	state     State
	pushState PushbackState

	preview []Recalculated

	persister Persister
	logger    *zap.Logger
	createdAt time.Time
}

// NewSession builds an idle session over the given registry snapshot.
func NewSession(cfg SessionConfig, registry *Registry, persister Persister, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SubmitTime == "" {
		cfg.SubmitTime = "09:00"
	}
	if cfg.Settings.Single <= 0 {
		cfg.Settings.Single = 120
	}
	if cfg.Settings.Multiple <= 0 {
		cfg.Settings.Multiple = cfg.Settings.Single
	}
	return &Session{
		id:         uuid.NewString(),
		date:       cfg.Date,
		submitTime: cfg.SubmitTime,
		settings:   cfg.Settings,
		location:   cfg.Location,
		registry:   registry,
		placements: make(map[string]Placement),
		state:      StateIdle,
		pushState:  PushbackClosed,
		persister:  persister,
		logger:     logger,
		createdAt:  time.Now().UTC(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Date returns the day being scheduled.
func (s *Session) Date() string { return s.date }

// CreatedAt returns when the session was opened.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// State returns the current main state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PushbackStatus returns the current pushback sub-state.
func (s *Session) PushbackStatus() PushbackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushState
}

// Registry exposes the session's schedule snapshot.
func (s *Session) Registry() *Registry { return s.registry }

// Requests returns the pending batch in insertion order.
func (s *Session) Requests() []PendingRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PendingRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// Placements returns the latest computed placements keyed by request id.
func (s *Session) Placements() map[string]Placement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Placement, len(s.placements))
	for k, v := range s.placements {
		out[k] = v
	}
	return out
}

// Settings returns the current submit time, durations and location.
func (s *Session) Settings() (string, DurationSettings, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitTime, s.settings, s.location
}

// AddRequest appends a pending lesson request and recalculates. Blocked while
// a confirm is in flight.
func (s *Session) AddRequest(teacherID, teacherName string, students []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		return "", appErrors.Clone(appErrors.ErrConflict, "confirm in flight, request batch is locked")
	}
	if teacherID == "" || len(students) == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "teacher and at least one student are required")
	}
	req := PendingRequest{
		ID:          uuid.NewString(),
		TeacherID:   teacherID,
		TeacherName: teacherName,
		Students:    append([]string(nil), students...),
	}
	s.requests = append(s.requests, req)
	s.recalculate()
	return req.ID, nil
}

// RemoveRequest drops a pending request and recalculates.
func (s *Session) RemoveRequest(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		return appErrors.Clone(appErrors.ErrConflict, "confirm in flight, request batch is locked")
	}
	for i, req := range s.requests {
		if req.ID == id {
			s.requests = append(s.requests[:i], s.requests[i+1:]...)
			s.recalculate()
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "pending request not found")
}

// SetSubmitTime updates the batch anchor time and recalculates.
func (s *Session) SetSubmitTime(t string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		return appErrors.Clone(appErrors.ErrConflict, "confirm in flight, settings are locked")
	}
	s.submitTime = t
	s.recalculate()
	return nil
}

// SetDurations updates the single/multiple duration settings and recalculates.
func (s *Session) SetDurations(single, multiple int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		return appErrors.Clone(appErrors.ErrConflict, "confirm in flight, settings are locked")
	}
	if single <= 0 || multiple <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "durations must be positive minutes")
	}
	s.settings = DurationSettings{Single: single, Multiple: multiple}
	s.recalculate()
	return nil
}

// SetLocation updates the default teaching site for confirmed lessons.
func (s *Session) SetLocation(location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		return appErrors.Clone(appErrors.ErrConflict, "confirm in flight, settings are locked")
	}
	s.location = location
	return nil
}

// Calculate re-runs the availability pass on demand. The session already
// recalculates on every input change; this is the explicit retry path after
// a failed confirm returns the session to Composing.
func (s *Session) Calculate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		return appErrors.Clone(appErrors.ErrConflict, "confirm in flight")
	}
	if len(s.requests) == 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "no pending requests to calculate")
	}
	s.recalculate()
	return nil
}

// recalculate re-runs the availability calculator. Caller holds the lock.
func (s *Session) recalculate() {
	if len(s.requests) == 0 {
		s.placements = make(map[string]Placement)
		s.state = StateIdle
		return
	}
	s.state = StateCalculating
	s.placements = ComputePlacements(s.requests, s.submitTime, s.settings, s.registry)
	s.state = StateReadyToConfirm
}

// Confirm hands the computed placements to the persistence boundary. On
// success the session empties back to Idle and the registry absorbs the new
// events; on failure the batch and placements survive untouched for retry.
// Cancellation of an in-flight confirm is not supported.
func (s *Session) Confirm(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.state != StateReadyToConfirm {
		s.mu.Unlock()
		return Result{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "no calculated placements to confirm")
	}
	confirmed := make([]ConfirmedPlacement, 0, len(s.requests))
	for _, req := range s.requests {
		placement := s.placements[req.ID]
		confirmed = append(confirmed, ConfirmedPlacement{
			RequestID: req.ID,
			TeacherID: req.TeacherID,
			Date:      s.date,
			Time:      placement.CalculatedTime,
			EndTime:   placement.EndTime,
			Duration:  placement.Duration,
			Location:  s.location,
			Students:  req.Students,
		})
	}
	s.state = StateSubmitting
	s.mu.Unlock()

	ids, err := s.persister.CreateEvents(ctx, confirmed)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateComposing
		s.logger.Warn("confirm failed", zap.String("session_id", s.id), zap.Error(err))
		return Result{Success: false, Error: err.Error()}, nil
	}

	for i, cp := range confirmed {
		seq, ok := s.registry.Sequence(cp.TeacherID)
		if !ok {
			continue
		}
		ev := Event{
			Teacher:  cp.TeacherID,
			Date:     cp.Date,
			Start:    cp.Time,
			Duration: cp.Duration,
			Location: cp.Location,
			Status:   "planned",
			Students: cp.Students,
		}
		if i < len(ids) {
			ev.ID = ids[i]
		}
		seq.Add(ev)
	}
	s.requests = nil
	s.placements = make(map[string]Placement)
	s.state = StateIdle
	s.logger.Info("placements confirmed",
		zap.String("session_id", s.id),
		zap.String("date", s.date),
		zap.Int("lessons", len(confirmed)))
	return Result{Success: true}, nil
}

// OpenPushback starts the pushback workflow.
func (s *Session) OpenPushback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pushState != PushbackClosed {
		return appErrors.Clone(appErrors.ErrConflict, "pushback already open")
	}
	s.pushState = PushbackAwaitingAnchor
	return nil
}

// PushbackInput carries the operator's reflow instructions: a new anchor
// time, optional extra gaps keyed by event id, and optional adjacent swaps
// given as positions in the teacher's current event order.
type PushbackInput struct {
	TeacherID     string
	Anchor        string
	Gaps          map[string]int
	Swaps         []int
	KeepDurations bool
}

// PreviewPushback recalculates a teacher's full remaining schedule against
// the anchor without mutating the registry. Re-previewing with new inputs is
// allowed until the preview is confirmed or closed.
func (s *Session) PreviewPushback(in PushbackInput) ([]Recalculated, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pushState != PushbackAwaitingAnchor && s.pushState != PushbackPreviewing {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "pushback preview requires an open pushback")
	}
	seq, ok := s.registry.Sequence(in.TeacherID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found in schedule")
	}
	if seq.Len() == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "teacher has no events to push back")
	}

	events := make([]ReflowEvent, 0, seq.Len())
	for _, ev := range seq.Events() {
		events = append(events, ReflowEvent{Event: ev, Gap: in.Gaps[ev.ID]})
	}
	for _, idx := range in.Swaps {
		SwapAdjacent(events, idx)
	}

	s.preview = Reflow(events, ReflowOptions{
		Anchor:        in.Anchor,
		Settings:      s.settings,
		Location:      s.location,
		Date:          s.date,
		KeepDurations: in.KeepDurations,
	})
	s.pushState = PushbackPreviewing
	return append([]Recalculated(nil), s.preview...), nil
}

// PreviewPushbackAll reflows every teacher's full event list against the same
// anchor, the "push the whole beach back" mode used when the wind window
// shifts. Returns the recalculated lists keyed by teacher.
func (s *Session) PreviewPushbackAll(anchor string, keepDurations bool) (map[string][]Recalculated, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pushState != PushbackAwaitingAnchor && s.pushState != PushbackPreviewing {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "pushback preview requires an open pushback")
	}

	byTeacher := make(map[string][]Recalculated)
	var combined []Recalculated
	for _, teacherID := range s.registry.TeacherIDs() {
		seq, _ := s.registry.Sequence(teacherID)
		if seq.Len() == 0 {
			continue
		}
		events := make([]ReflowEvent, 0, seq.Len())
		for _, ev := range seq.Events() {
			events = append(events, ReflowEvent{Event: ev})
		}
		recalc := Reflow(events, ReflowOptions{
			Anchor:        anchor,
			Settings:      s.settings,
			Location:      s.location,
			Date:          s.date,
			KeepDurations: keepDurations,
		})
		byTeacher[teacherID] = recalc
		combined = append(combined, recalc...)
	}
	if len(combined) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no events to push back")
	}

	s.preview = combined
	s.pushState = PushbackPreviewing
	return byTeacher, nil
}

// Preview returns the current pushback preview, if any.
func (s *Session) Preview() []Recalculated {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recalculated(nil), s.preview...)
}

// ConfirmPushback persists the previewed reflow. Requires the preview to
// carry at least one actual update; on failure the preview survives for
// retry.
func (s *Session) ConfirmPushback(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.pushState != PushbackPreviewing {
		s.mu.Unlock()
		return Result{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "no pushback preview to confirm")
	}
	if !HasChanges(s.preview) {
		s.mu.Unlock()
		return Result{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "pushback preview contains no changes")
	}
	updates := make([]ConfirmedPlacement, 0, len(s.preview))
	for _, rc := range s.preview {
		updates = append(updates, ConfirmedPlacement{
			EventID:   rc.ID,
			TeacherID: rc.Teacher,
			Date:      rc.NewDate,
			Time:      rc.NewTime,
			EndTime:   rc.NewEndTime,
			Duration:  rc.NewDuration,
			Location:  rc.NewLocation,
			Students:  rc.Students,
		})
	}
	preview := append([]Recalculated(nil), s.preview...)
	s.pushState = PushbackConfirming
	s.mu.Unlock()

	err := s.persister.UpdateEvents(ctx, updates)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.pushState = PushbackPreviewing
		s.logger.Warn("pushback confirm failed", zap.String("session_id", s.id), zap.Error(err))
		return Result{Success: false, Error: err.Error()}, nil
	}

	reflowedByTeacher := make(map[string][]Event)
	for _, rc := range preview {
		ev := rc.Event
		ev.Start = rc.NewTime
		ev.Duration = rc.NewDuration
		ev.Location = rc.NewLocation
		ev.Date = rc.NewDate
		reflowedByTeacher[ev.Teacher] = append(reflowedByTeacher[ev.Teacher], ev)
	}
	for teacherID, reflowed := range reflowedByTeacher {
		if seq, ok := s.registry.Sequence(teacherID); ok {
			seq.Replace(reflowed)
		}
	}
	s.preview = nil
	s.pushState = PushbackClosed
	s.recalculate()
	s.logger.Info("pushback confirmed",
		zap.String("session_id", s.id),
		zap.Int("events", len(updates)))
	return Result{Success: true}, nil
}

// ClosePushback abandons the pushback workflow and any preview.
func (s *Session) ClosePushback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pushState == PushbackConfirming {
		return
	}
	s.preview = nil
	s.pushState = PushbackClosed
}
