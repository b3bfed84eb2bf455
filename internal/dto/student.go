package dto

// CreateStudentRequest registers a new student.
type CreateStudentRequest struct {
	FullName string  `json:"fullName" validate:"required,min=2,max=120"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Level    string  `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	WeightKg *int    `json:"weightKg" validate:"omitempty,min=20,max=200"`
}

// UpdateStudentRequest modifies a student. Nil fields are left untouched.
type UpdateStudentRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,min=2,max=120"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Level    *string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	WeightKg *int    `json:"weightKg" validate:"omitempty,min=20,max=200"`
	Active   *bool   `json:"active"`
}

// StudentListQuery filters the student listing.
type StudentListQuery struct {
	Search    string `form:"search"`
	Level     string `form:"level"`
	Active    *bool  `form:"active"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}
