package dto

import "github.com/windward-labs/kiteschool-api/internal/schedule"

// StartSessionRequest opens a scheduling session for one day.
type StartSessionRequest struct {
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	SubmitTime string `json:"submitTime" validate:"omitempty,len=5"`
	Location   string `json:"location"`
}

// SessionResponse is the full observable state of a scheduling session.
type SessionResponse struct {
	SessionID      string                        `json:"sessionId"`
	Date           string                        `json:"date"`
	State          string                        `json:"state"`
	PushbackState  string                        `json:"pushbackState"`
	SubmitTime     string                        `json:"submitTime"`
	SingleDuration int                           `json:"singleDuration"`
	MultiDuration  int                           `json:"multiDuration"`
	Location       string                        `json:"location"`
	Requests       []PendingRequestResponse      `json:"requests"`
	Placements     map[string]PlacementResponse  `json:"placements"`
	Teachers       []TeacherScheduleResponse     `json:"teachers"`
}

// PendingRequestResponse echoes one queued lesson request.
type PendingRequestResponse struct {
	ID          string   `json:"id"`
	TeacherID   string   `json:"teacherId"`
	TeacherName string   `json:"teacherName"`
	Students    []string `json:"students"`
}

// PlacementResponse carries a computed placement with its conflicts.
type PlacementResponse struct {
	CalculatedTime string              `json:"calculatedTime"`
	EndTime        string              `json:"endTime"`
	Duration       int                 `json:"duration"`
	Conflicts      []schedule.Conflict `json:"conflicts"`
	BatchIndex     int                 `json:"batchIndex"`
	BatchSize      int                 `json:"batchSize"`
}

// TeacherScheduleResponse renders one teacher's day with its free-slot gaps.
type TeacherScheduleResponse struct {
	TeacherID   string                  `json:"teacherId"`
	TeacherName string                  `json:"teacherName"`
	Events      []ScheduleEventResponse `json:"events"`
	Gaps        []int                   `json:"gaps"`
}

// ScheduleEventResponse is one event as rendered on the day board.
type ScheduleEventResponse struct {
	ID       string   `json:"id"`
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Duration int      `json:"duration"`
	Location string   `json:"location"`
	Status   string   `json:"status"`
	Students []string `json:"students"`
	GapAfter int      `json:"gapAfter,omitempty"`
}

// AddRequestRequest queues a lesson request in the session batch.
type AddRequestRequest struct {
	TeacherID string   `json:"teacherId" validate:"required"`
	Students  []string `json:"students" validate:"required,min=1,dive,required"`
}

// UpdateSettingsRequest changes the batch anchor time, durations or site.
// Zero-valued fields are left untouched.
type UpdateSettingsRequest struct {
	SubmitTime     string `json:"submitTime" validate:"omitempty,len=5"`
	SingleDuration int    `json:"singleDuration" validate:"omitempty,min=15,max=480"`
	MultiDuration  int    `json:"multiDuration" validate:"omitempty,min=15,max=480"`
	Location       string `json:"location"`
}

// ConfirmResponse reports the outcome of a confirm attempt.
type ConfirmResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	State   string `json:"state"`
}

// PushbackPreviewRequest asks for a reflow preview. TeacherID empty means all
// teachers are pushed back against the same anchor.
type PushbackPreviewRequest struct {
	TeacherID     string         `json:"teacherId"`
	Anchor        string         `json:"anchor" validate:"required,len=5"`
	Gaps          map[string]int `json:"gaps" validate:"omitempty,dive,min=0"`
	Swaps         []int          `json:"swaps" validate:"omitempty,dive,min=0"`
	KeepDurations bool           `json:"keepDurations"`
}

// PushbackPreviewResponse returns the recalculated events per teacher.
type PushbackPreviewResponse struct {
	PushbackState string                            `json:"pushbackState"`
	Preview       map[string][]RecalculatedResponse `json:"preview"`
}

// RecalculatedResponse shows an event's old and new placement side by side.
type RecalculatedResponse struct {
	EventID     string   `json:"eventId"`
	TeacherID   string   `json:"teacherId"`
	Students    []string `json:"students"`
	OldTime     string   `json:"oldTime"`
	OldDuration int      `json:"oldDuration"`
	NewTime     string   `json:"newTime"`
	NewEndTime  string   `json:"newEndTime"`
	NewDuration int      `json:"newDuration"`
	NewLocation string   `json:"newLocation"`
	NewDate     string   `json:"newDate"`
	Changed     bool     `json:"changed"`
}
