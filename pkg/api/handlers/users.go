package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	apierrors "github.com/tallacworks/titan-crm/pkg/api/errors"
	"github.com/tallacworks/titan-crm/pkg/auth"
	appmiddleware "github.com/tallacworks/titan-crm/pkg/middleware"
	"github.com/tallacworks/titan-crm/pkg/models"
)

// UserHandler handles admin user-management endpoints.
type UserHandler struct {
	db        *sql.DB
	validator *validator.Validate
}

// NewUserHandler creates a new user handler
func NewUserHandler(db *sql.DB) *UserHandler {
	return &UserHandler{
		db:        db,
		validator: validator.New(),
	}
}

const userColumns = `u.id, u.email, u.first_name, u.last_name, u.full_name,
	u.role, u.is_active, u.reports_to_id, u.created_at, u.updated_at`

func userDests(u *models.User) []any {
	return []any{
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.FullName,
		&u.Role, &u.IsActive, &u.ReportsToID, &u.CreatedAt, &u.UpdatedAt,
	}
}

// fullName derives full_name from first/last when it is not supplied.
func fullName(req models.CreateUserRequest) *string {
	if req.FullName != nil && strings.TrimSpace(*req.FullName) != "" {
		return req.FullName
	}
	var parts []string
	if req.FirstName != nil && *req.FirstName != "" {
		parts = append(parts, *req.FirstName)
	}
	if req.LastName != nil && *req.LastName != "" {
		parts = append(parts, *req.LastName)
	}
	if len(parts) == 0 {
		return nil
	}
	joined := strings.Join(parts, " ")
	return &joined
}

// List returns every user joined with its manager.
func (h *UserHandler) List(c echo.Context) error {
	var filters models.UserListFilters
	if err := c.Bind(&filters); err != nil {
		return apierrors.BadRequest(c, "Invalid query parameters")
	}

	query := fmt.Sprintf(`SELECT %s,
		m.full_name AS reports_to_name,
		m.email AS reports_to_email
	FROM users u
	LEFT JOIN users m ON u.reports_to_id = m.id
	WHERE 1=1`, userColumns)

	var params []any
	if filters.Search != "" {
		params = append(params, "%"+filters.Search+"%")
		n := len(params)
		query += fmt.Sprintf(" AND (u.email ILIKE $%d OR u.full_name ILIKE $%d OR u.first_name ILIKE $%d OR u.last_name ILIKE $%d)", n, n, n, n)
	}
	if filters.Role != "" && filters.Role != "all" {
		params = append(params, filters.Role)
		query += fmt.Sprintf(" AND u.role = $%d", len(params))
	}
	switch filters.Status {
	case "active":
		query += " AND u.is_active = TRUE"
	case "inactive":
		query += " AND u.is_active = FALSE"
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}
	params = append(params, limit, filters.Offset)
	query += fmt.Sprintf(" ORDER BY u.created_at DESC LIMIT $%d OFFSET $%d", len(params)-1, len(params))

	rows, err := h.db.QueryContext(c.Request().Context(), query, params...)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		dests := append(userDests(&u), &u.ReportsToName, &u.ReportsToEmail)
		if err := rows.Scan(dests...); err != nil {
			return apierrors.Internal(c, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusOK, users)
}

// Get returns one user by id.
func (h *UserHandler) Get(c echo.Context) error {
	id := c.Param("id")

	var u models.User
	dests := append(userDests(&u), &u.ReportsToName, &u.ReportsToEmail)
	err := h.db.QueryRowContext(c.Request().Context(), fmt.Sprintf(`SELECT %s,
		m.full_name AS reports_to_name,
		m.email AS reports_to_email
	FROM users u
	LEFT JOIN users m ON u.reports_to_id = m.id
	WHERE u.id::text = $1`, userColumns), id).Scan(dests...)
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(c, "User not found")
	}
	if err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusOK, u)
}

// Create inserts a user. Without an explicit password the account starts on
// the shared default password and must rotate it at first login.
func (h *UserHandler) Create(c echo.Context) error {
	var req models.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.BadRequest(c, "Valid email is required")
	}

	ctx := c.Request().Context()

	var exists bool
	if err := h.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", req.Email).Scan(&exists); err != nil {
		return apierrors.Internal(c, err)
	}
	if exists {
		return apierrors.BadRequest(c, "User already exists")
	}

	password := auth.DefaultPassword
	passwordChangeRequired := true
	if req.Password != nil && *req.Password != "" {
		password = *req.Password
		passwordChangeRequired = false
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return apierrors.Internal(c, err)
	}

	role := "Sales User"
	if req.Role != nil && *req.Role != "" {
		role = *req.Role
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	var u models.User
	err = h.db.QueryRowContext(ctx,
		`INSERT INTO users (
			email, password_hash, first_name, last_name, full_name, role,
			is_active, reports_to_id, password_change_required
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+stripAlias(userColumns, "u."),
		req.Email, hash, req.FirstName, req.LastName, fullName(req), role,
		isActive, req.ReportsToID, passwordChangeRequired,
	).Scan(userDests(&u)...)
	if err != nil {
		return apierrors.Conflict(c, err, "User already exists")
	}

	return c.JSON(http.StatusCreated, u)
}

// Update patches a user; absent fields keep their stored values.
func (h *UserHandler) Update(c echo.Context) error {
	id := c.Param("id")

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.BadRequest(c, "Valid email is required")
	}

	var u models.User
	err := h.db.QueryRowContext(c.Request().Context(),
		`UPDATE users SET
			email = COALESCE($1, email),
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			full_name = COALESCE($4, full_name),
			role = COALESCE($5, role),
			is_active = COALESCE($6, is_active),
			reports_to_id = COALESCE($7, reports_to_id),
			updated_at = CURRENT_TIMESTAMP
		WHERE id::text = $8
		RETURNING `+stripAlias(userColumns, "u."),
		req.Email, req.FirstName, req.LastName, req.FullName, req.Role,
		req.IsActive, req.ReportsToID, id,
	).Scan(userDests(&u)...)
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(c, "User not found")
	}
	if err != nil {
		return apierrors.Conflict(c, err, "Email already in use")
	}

	return c.JSON(http.StatusOK, u)
}

// ResetPassword puts a user back on the default password, forcing a rotation
// at their next login.
func (h *UserHandler) ResetPassword(c echo.Context) error {
	id := c.Param("id")

	hash, err := auth.HashPassword(auth.DefaultPassword)
	if err != nil {
		return apierrors.Internal(c, err)
	}

	result, err := h.db.ExecContext(c.Request().Context(),
		`UPDATE users SET
			password_hash = $1,
			password_change_required = TRUE,
			updated_at = CURRENT_TIMESTAMP
		WHERE id::text = $2`, hash, id)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierrors.Internal(c, err)
	}
	if affected == 0 {
		return apierrors.NotFound(c, "User not found")
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Password reset successfully",
	})
}

// Delete removes a user. Deleting the calling account is rejected.
func (h *UserHandler) Delete(c echo.Context) error {
	id := c.Param("id")

	claims := appmiddleware.ClaimsFrom(c)
	if claims != nil && strconv.Itoa(claims.UserID) == id {
		return apierrors.BadRequest(c, "Cannot delete your own account")
	}

	result, err := h.db.ExecContext(c.Request().Context(),
		"DELETE FROM users WHERE id::text = $1", id)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierrors.Internal(c, err)
	}
	if affected == 0 {
		return apierrors.NotFound(c, "User not found")
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "User deleted successfully",
	})
}
