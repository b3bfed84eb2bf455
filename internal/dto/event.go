package dto

// CreateEventRequest schedules one lesson directly, outside a session batch.
type CreateEventRequest struct {
	TeacherID string   `json:"teacherId" validate:"required"`
	Date      string   `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string   `json:"startTime" validate:"required,len=5"`
	Duration  int      `json:"duration" validate:"required,min=15,max=480"`
	Location  string   `json:"location" validate:"required"`
	Students  []string `json:"students" validate:"required,min=1,dive,required"`
}

// UpdateEventStatusRequest moves an event through its lifecycle.
type UpdateEventStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=planned completed teacher_confirmation_pending auto_planned"`
}

// EventListQuery filters the event listing.
type EventListQuery struct {
	TeacherID string `form:"teacherId"`
	Date      string `form:"date" validate:"omitempty,datetime=2006-01-02"`
	Status    string `form:"status"`
	Location  string `form:"location"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}
