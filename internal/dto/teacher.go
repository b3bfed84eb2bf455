package dto

// CreateTeacherRequest registers a new instructor.
type CreateTeacherRequest struct {
	Email         string  `json:"email" validate:"required,email"`
	FullName      string  `json:"fullName" validate:"required,min=2,max=120"`
	Phone         *string `json:"phone" validate:"omitempty,max=32"`
	Certification *string `json:"certification" validate:"omitempty,max=120"`
	Languages     *string `json:"languages" validate:"omitempty,max=240"`
	Active        *bool   `json:"active"`
}

// UpdateTeacherRequest modifies an instructor. Nil fields are left untouched.
type UpdateTeacherRequest struct {
	Email         *string `json:"email" validate:"omitempty,email"`
	FullName      *string `json:"fullName" validate:"omitempty,min=2,max=120"`
	Phone         *string `json:"phone" validate:"omitempty,max=32"`
	Certification *string `json:"certification" validate:"omitempty,max=120"`
	Languages     *string `json:"languages" validate:"omitempty,max=240"`
	Active        *bool   `json:"active"`
}

// TeacherListQuery filters the teacher listing.
type TeacherListQuery struct {
	Search    string `form:"search"`
	Active    *bool  `form:"active"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}
