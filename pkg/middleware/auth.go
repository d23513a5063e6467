package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/tallacworks/titan-crm/pkg/auth"
	"github.com/tallacworks/titan-crm/pkg/models"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextKeyClaims = "claims"
	ContextKeyUserID = "user_id"
	ContextKeyEmail  = "email"
	ContextKeyRole   = "role"
)

// Authenticate verifies the bearer token and attaches the decoded identity
// to the request context.
func Authenticate(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token := ""
			if strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
			if token == "" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Access token required"})
			}

			claims, err := auth.ValidateJWT(token, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid or expired token"})
			}

			c.Set(ContextKeyClaims, claims)
			c.Set(ContextKeyUserID, claims.UserID)
			c.Set(ContextKeyEmail, claims.Email)
			c.Set(ContextKeyRole, claims.Role)

			return next(c)
		}
	}
}

// RequireRole fails with 403 unless the authenticated identity's role is in
// the allowed set. Must run after Authenticate.
func RequireRole(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, role := range allowedRoles {
		allowed[role] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ContextKeyRole).(string)
			if !ok {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Not authenticated"})
			}
			if _, ok := allowed[role]; !ok {
				return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "Insufficient permissions"})
			}
			return next(c)
		}
	}
}

// ClaimsFrom returns the decoded identity attached by Authenticate, or nil.
func ClaimsFrom(c echo.Context) *auth.Claims {
	claims, _ := c.Get(ContextKeyClaims).(*auth.Claims)
	return claims
}
