package dto

// CreateBookingRequest ties students to a lesson package over a stay.
type CreateBookingRequest struct {
	PackageID  string   `json:"packageId" validate:"required"`
	StudentIDs []string `json:"studentIds" validate:"required,min=1,dive,required"`
	DateStart  string   `json:"dateStart" validate:"required,datetime=2006-01-02"`
	DateEnd    string   `json:"dateEnd" validate:"required,datetime=2006-01-02"`
	Note       *string  `json:"note" validate:"omitempty,max=500"`
}

// UpdateBookingStatusRequest moves a booking through its lifecycle.
type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active completed cancelled"`
}

// CreatePackageRequest defines a sellable block of instruction hours.
type CreatePackageRequest struct {
	Description string `json:"description" validate:"required,min=2,max=240"`
	Hours       int    `json:"hours" validate:"required,min=1,max=100"`
	Capacity    int    `json:"capacity" validate:"required,min=1,max=8"`
	PriceCents  int    `json:"priceCents" validate:"required,min=0"`
}

// BookingListQuery filters the booking listing.
type BookingListQuery struct {
	StudentID string `form:"studentId"`
	Status    string `form:"status"`
	ActiveOn  string `form:"activeOn" validate:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}
