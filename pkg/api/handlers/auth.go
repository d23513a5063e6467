package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/tallacworks/titan-crm/config"
	apierrors "github.com/tallacworks/titan-crm/pkg/api/errors"
	"github.com/tallacworks/titan-crm/pkg/auth"
	"github.com/tallacworks/titan-crm/pkg/middleware"
	"github.com/tallacworks/titan-crm/pkg/models"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	db        *sql.DB
	config    *config.Config
	validator *validator.Validate
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *sql.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		db:        db,
		config:    cfg,
		validator: validator.New(),
	}
}

// Login validates an email/password pair and issues a session token. A
// login with the provisioning default password flips the forced-change flag
// on before the token is minted, so the requirement travels in the claims.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Email and password are required")
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.BadRequest(c, "Email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		userID       int
		email        string
		fullName     *string
		role         string
		passwordHash string
		flagStored   *bool
	)
	err := h.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, role, password_hash, password_change_required
		 FROM users WHERE email = $1 AND is_active = true`,
		req.Email,
	).Scan(&userID, &email, &fullName, &role, &passwordHash, &flagStored)
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.Unauthorized(c, "Invalid credentials")
	}
	if err != nil {
		return apierrors.Internal(c, err)
	}

	if !auth.CheckPassword(passwordHash, req.Password) {
		return apierrors.Unauthorized(c, "Invalid credentials")
	}

	passwordChangeRequired := false
	if req.Password == auth.DefaultPassword {
		if _, err := h.db.ExecContext(ctx,
			"UPDATE users SET password_change_required = true WHERE id = $1", userID); err != nil {
			return apierrors.Internal(c, err)
		}
		passwordChangeRequired = true
	} else if flagStored == nil {
		// Existing accounts predate the flag; a successful non-default
		// login normalizes it to false.
		if _, err := h.db.ExecContext(ctx,
			"UPDATE users SET password_change_required = false WHERE id = $1", userID); err != nil {
			return apierrors.Internal(c, err)
		}
	} else {
		passwordChangeRequired = *flagStored
	}

	token, err := auth.GenerateJWT(userID, email, role, passwordChangeRequired,
		h.config.JWTSecret, h.config.JWTExpirationDays)
	if err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusOK, models.AuthResponse{
		Token: token,
		User: &models.UserInfo{
			ID:                     userID,
			Email:                  email,
			FullName:               fullName,
			Role:                   role,
			PasswordChangeRequired: passwordChangeRequired,
		},
	})
}

// Register creates an account directly. Kept for development and testing;
// production accounts come from the admin user routes.
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Email and password are required")
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.BadRequest(c, "Email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var existingID int
	err := h.db.QueryRowContext(ctx, "SELECT id FROM users WHERE email = $1", req.Email).Scan(&existingID)
	if err == nil {
		return apierrors.BadRequest(c, "User already exists")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return apierrors.Internal(c, err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return apierrors.Internal(c, err)
	}

	fullName := req.FullName
	if fullName == "" {
		fullName = req.Email
	}
	role := req.Role
	if role == "" {
		role = "Sales User"
	}

	var user models.UserInfo
	err = h.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, full_name, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, email, full_name, role`,
		req.Email, passwordHash, fullName, role,
	).Scan(&user.ID, &user.Email, &user.FullName, &user.Role)
	if err != nil {
		return apierrors.Conflict(c, err, "User already exists")
	}

	return c.JSON(http.StatusCreated, map[string]any{"user": user})
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return apierrors.Unauthorized(c, "Not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		user models.UserInfo
		flag *bool
		active bool
	)
	err := h.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, role, password_change_required, is_active
		 FROM users WHERE id = $1`,
		claims.UserID,
	).Scan(&user.ID, &user.Email, &user.FullName, &user.Role, &flag, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(c, "User not found")
	}
	if err != nil {
		return apierrors.Internal(c, err)
	}
	if flag != nil {
		user.PasswordChangeRequired = *flag
	}

	return c.JSON(http.StatusOK, map[string]any{"user": map[string]any{
		"id":                       user.ID,
		"email":                    user.Email,
		"full_name":                user.FullName,
		"role":                     user.Role,
		"password_change_required": user.PasswordChangeRequired,
		"is_active":                active,
	}})
}

// ChangePassword rotates the caller's password. When the forced-change flag
// is set (first login with the default password) the current-password check
// is skipped entirely.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return apierrors.Unauthorized(c, "Not authenticated")
	}

	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "New password is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		passwordHash string
		flagStored   *bool
	)
	err := h.db.QueryRowContext(ctx,
		"SELECT password_hash, password_change_required FROM users WHERE id = $1",
		claims.UserID,
	).Scan(&passwordHash, &flagStored)
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(c, "User not found")
	}
	if err != nil {
		return apierrors.Internal(c, err)
	}

	passwordChangeRequired := flagStored != nil && *flagStored

	if req.NewPassword == "" {
		return apierrors.BadRequest(c, "New password is required")
	}
	if len(req.NewPassword) < auth.MinPasswordLength {
		return apierrors.BadRequest(c, "New password must be at least 6 characters long")
	}
	if req.NewPassword == auth.DefaultPassword {
		return apierrors.BadRequest(c, "New password cannot be the default password. Please choose a different password.")
	}

	if !passwordChangeRequired {
		if req.CurrentPassword == "" {
			return apierrors.BadRequest(c, "Current password is required")
		}
		if !auth.CheckPassword(passwordHash, req.CurrentPassword) {
			return apierrors.Unauthorized(c, "Current password is incorrect")
		}
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apierrors.Internal(c, err)
	}

	_, err = h.db.ExecContext(ctx,
		`UPDATE users SET
			password_hash = $1,
			password_change_required = false,
			last_password_change = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2`,
		newHash, claims.UserID)
	if err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{Message: "Password changed successfully"})
}

// Logout is a no-op for stateless tokens; the client discards its copy.
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, models.SuccessResponse{Message: "Logged out successfully"})
}
