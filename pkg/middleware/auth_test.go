package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tallacworks/titan-crm/pkg/auth"
)

const testSecret = "middleware-test-secret"

func runAuthenticated(t *testing.T, authHeader string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Authenticate(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, handler(c)
}

func TestAuthenticate(t *testing.T) {
	t.Run("valid_token_passes_and_sets_identity", func(t *testing.T) {
		token, err := auth.GenerateJWT(9, "rep@tallacworks.com", "Sales User", false, testSecret, 7)
		require.NoError(t, err)

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var seen *auth.Claims
		handler := Authenticate(testSecret)(func(c echo.Context) error {
			seen = ClaimsFrom(c)
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, 9, seen.UserID)
		assert.Equal(t, "Sales User", seen.Role)
		assert.Equal(t, 9, c.Get(ContextKeyUserID))
		assert.Equal(t, "rep@tallacworks.com", c.Get(ContextKeyEmail))
	})

	t.Run("missing_header", func(t *testing.T) {
		rec, err := runAuthenticated(t, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Access token required", resp["error"])
	})

	t.Run("malformed_header", func(t *testing.T) {
		rec, err := runAuthenticated(t, "Token abc")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid_token", func(t *testing.T) {
		rec, err := runAuthenticated(t, "Bearer garbage")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Invalid or expired token", resp["error"])
	})

	t.Run("token_signed_with_other_secret", func(t *testing.T) {
		token, err := auth.GenerateJWT(9, "rep@tallacworks.com", "Sales User", false, "other-secret", 7)
		require.NoError(t, err)

		rec, err := runAuthenticated(t, "Bearer "+token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	run := func(t *testing.T, role any, allowed ...string) *httptest.ResponseRecorder {
		t.Helper()
		e := echo.New()
		req := httptest.NewRequest(http.MethodDelete, "/api/users/1", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set(ContextKeyRole, role)
		}

		handler := RequireRole(allowed...)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, handler(c))
		return rec
	}

	t.Run("allowed_role", func(t *testing.T) {
		rec := run(t, "Corporate Admin", "Corporate Admin", "Territory Admin")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("forbidden_role", func(t *testing.T) {
		rec := run(t, "Sales User", "Corporate Admin", "Territory Admin")
		assert.Equal(t, http.StatusForbidden, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Insufficient permissions", resp["error"])
	})

	t.Run("no_identity", func(t *testing.T) {
		rec := run(t, nil, "Corporate Admin")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestClaimsFrom(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Nil(t, ClaimsFrom(c))
}
