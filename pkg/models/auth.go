package models

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// ChangePasswordRequest represents a password rotation request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthResponse represents a successful login response
type AuthResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// UserInfo is the public projection of a user. The password hash is never
// part of this shape.
type UserInfo struct {
	ID                     int     `json:"id"`
	Email                  string  `json:"email"`
	FullName               *string `json:"full_name"`
	Role                   string  `json:"role"`
	PasswordChangeRequired bool    `json:"password_change_required"`
}

// ErrorResponse represents an expected-failure response. Uncaught failures
// go through the catch-all handler instead, which nests the message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}
