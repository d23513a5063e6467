package errors

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"github.com/tallacworks/titan-crm/pkg/models"
)

// uniqueViolation is the Postgres error code for a unique-constraint breach.
const uniqueViolation = "23505"

// BadRequest returns a 400 with the given message.
func BadRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: message})
}

// Unauthorized returns a 401 with the given message.
func Unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: message})
}

// Forbidden returns a 403 with the given message.
func Forbidden(c echo.Context, message string) error {
	return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: message})
}

// NotFound returns a 404 with the given message.
func NotFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: message})
}

// Internal logs the underlying error and returns a generic 500 without
// exposing internal details.
func Internal(c echo.Context, err error) error {
	log.Printf("[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
}

// Conflict maps a store-level unique violation to a 400 with a
// domain-specific message, falling back to Internal for anything else.
func Conflict(c echo.Context, err error, message string) error {
	if IsUniqueViolation(err) {
		return BadRequest(c, message)
	}
	return Internal(c, err)
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}
