package models

import (
	"time"

	"github.com/lib/pq"
)

// BookingStatus tracks a booking through its stay.
type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking ties one or more students to a lesson package over a date range.
type Booking struct {
	ID         string         `db:"id" json:"id"`
	PackageID  string         `db:"package_id" json:"package_id"`
	StudentIDs pq.StringArray `db:"student_ids" json:"student_ids"`
	DateStart  time.Time      `db:"date_start" json:"date_start"`
	DateEnd    time.Time      `db:"date_end" json:"date_end"`
	Status     BookingStatus  `db:"status" json:"status"`
	Note       *string        `db:"note" json:"note,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// LessonPackage describes a sellable block of instruction hours.
type LessonPackage struct {
	ID          string    `db:"id" json:"id"`
	Description string    `db:"description" json:"description"`
	Hours       int       `db:"hours" json:"hours"`
	Capacity    int       `db:"capacity" json:"capacity"`
	PriceCents  int       `db:"price_cents" json:"price_cents"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// BookingFilter describes query params for listing bookings.
type BookingFilter struct {
	StudentID string
	Status    BookingStatus
	ActiveOn  *time.Time
	Page      int
	PageSize  int
}
