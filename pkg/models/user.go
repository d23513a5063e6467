package models

import "time"

// User represents a row in the users table joined with the manager relation.
type User struct {
	ID             int        `json:"id"`
	Email          string     `json:"email"`
	FirstName      *string    `json:"first_name"`
	LastName       *string    `json:"last_name"`
	FullName       *string    `json:"full_name"`
	Role           string     `json:"role"`
	IsActive       bool       `json:"is_active"`
	ReportsToID    *int       `json:"reports_to_id"`
	ReportsToName  *string    `json:"reports_to_name,omitempty"`
	ReportsToEmail *string    `json:"reports_to_email,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// UserListFilters are the optional filters of the user list.
type UserListFilters struct {
	Search string `query:"search"`
	Role   string `query:"role"`
	Status string `query:"status"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// CreateUserRequest represents an admin user-create request
type CreateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	FullName    *string `json:"full_name"`
	Role        *string `json:"role"`
	IsActive    *bool   `json:"is_active"`
	ReportsToID *int    `json:"reports_to_id"`
	Password    *string `json:"password"`
}

// UpdateUserRequest represents an admin user-update request
type UpdateUserRequest struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	FullName    *string `json:"full_name"`
	Role        *string `json:"role"`
	IsActive    *bool   `json:"is_active"`
	ReportsToID *int    `json:"reports_to_id"`
}
