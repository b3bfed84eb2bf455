package models

import (
	"time"

	"github.com/lib/pq"
)

// EventStatus tracks the lifecycle of a scheduled teaching session.
type EventStatus string

const (
	EventStatusPlanned             EventStatus = "planned"
	EventStatusCompleted           EventStatus = "completed"
	EventStatusTeacherConfirmation EventStatus = "teacher_confirmation_pending"
	EventStatusAutoPlanned         EventStatus = "auto_planned"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusPlanned, EventStatusCompleted, EventStatusTeacherConfirmation, EventStatusAutoPlanned:
		return true
	}
	return false
}

// Teaching sites. The closed set mirrors the spots the school operates on.
const (
	LocationLosLances     = "Los Lances"
	LocationValdevaqueros = "Valdevaqueros"
	LocationBalneario     = "Balneario"
	LocationCanos         = "Canos"
)

// KnownLocation reports whether the location names one of the school's sites.
func KnownLocation(loc string) bool {
	switch loc {
	case LocationLosLances, LocationValdevaqueros, LocationBalneario, LocationCanos:
		return true
	}
	return false
}

// KiteEvent represents a single scheduled teaching session.
// StartTime is a wall-clock "HH:MM" value within Date; Duration is whole minutes.
type KiteEvent struct {
	ID        string         `db:"id" json:"id"`
	TeacherID string         `db:"teacher_id" json:"teacher_id"`
	Date      time.Time      `db:"date" json:"date"`
	StartTime string         `db:"start_time" json:"start_time"`
	Duration  int            `db:"duration" json:"duration"`
	Location  string         `db:"location" json:"location"`
	Status    EventStatus    `db:"status" json:"status"`
	Students  pq.StringArray `db:"students" json:"students"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// KiteEventFilter describes query params for listing events.
type KiteEventFilter struct {
	TeacherID string
	Date      *time.Time
	Status    EventStatus
	Location  string
	Page      int
	PageSize  int
}
