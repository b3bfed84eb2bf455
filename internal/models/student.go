package models

import "time"

// Student represents a learner registered with the school.
type Student struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Level     string    `db:"level" json:"level"`
	WeightKg  *int      `db:"weight_kg" json:"weight_kg,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Student experience levels. Gear sizing and group composition depend on these.
const (
	StudentLevelBeginner     = "beginner"
	StudentLevelIntermediate = "intermediate"
	StudentLevelAdvanced     = "advanced"
)

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Level     string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
