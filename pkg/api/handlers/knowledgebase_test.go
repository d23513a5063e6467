package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tallacworks/titan-crm/pkg/auth"
	"github.com/tallacworks/titan-crm/pkg/logger"
	appmiddleware "github.com/tallacworks/titan-crm/pkg/middleware"
)

func TestParseRoles(t *testing.T) {
	t.Run("json_string", func(t *testing.T) {
		roles, err := parseRoles(`["Sales User","Territory Manager"]`)
		require.NoError(t, err)
		assert.Equal(t, []string{"Sales User", "Territory Manager"}, roles)
	})

	t.Run("native_array", func(t *testing.T) {
		roles, err := parseRoles([]any{"Sales User", "Territory Manager"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Sales User", "Territory Manager"}, roles)
	})

	t.Run("nil_means_unrestricted", func(t *testing.T) {
		roles, err := parseRoles(nil)
		require.NoError(t, err)
		assert.Nil(t, roles)
	})

	t.Run("blank_string_means_unrestricted", func(t *testing.T) {
		roles, err := parseRoles("  ")
		require.NoError(t, err)
		assert.Nil(t, roles)
	})

	t.Run("malformed_json_string", func(t *testing.T) {
		_, err := parseRoles(`["Sales User"`)
		assert.Error(t, err)
	})

	t.Run("non_string_entry", func(t *testing.T) {
		_, err := parseRoles([]any{"Sales User", 42})
		assert.Error(t, err)
	})

	t.Run("unsupported_type", func(t *testing.T) {
		_, err := parseRoles(42)
		assert.Error(t, err)
	})
}

func TestIsAdminRole(t *testing.T) {
	assert.True(t, isAdminRole(RoleCorporateAdmin))
	assert.True(t, isAdminRole(RoleTerritoryAdmin))
	assert.False(t, isAdminRole(RoleTerritoryManager))
	assert.False(t, isAdminRole(RoleSalesUser))
	assert.False(t, isAdminRole(""))
}

func TestVisibleFileClause(t *testing.T) {
	t.Run("binds_role_at_given_ordinal", func(t *testing.T) {
		clause := visibleFileClause(2)
		assert.Contains(t, clause, "r.role = $2")
	})

	t.Run("carries_both_arms", func(t *testing.T) {
		clause := visibleFileClause(1)
		assert.Contains(t, clause, "NOT EXISTS")
		assert.Contains(t, clause, "OR EXISTS")
	})
}

func TestBuildFileListQuery(t *testing.T) {
	// The visibility predicate applies to every role, admins included;
	// the unrestricted view is a separate, gated listing.
	for _, role := range []string{
		RoleCorporateAdmin, RoleTerritoryAdmin, RoleTerritoryManager, RoleSalesUser,
	} {
		t.Run(role, func(t *testing.T) {
			query, params := buildFileListQuery(role)
			assert.Contains(t, query, "NOT EXISTS")
			assert.Contains(t, query, "r.role = $1")
			assert.Contains(t, query, "ORDER BY f.created_at DESC")
			assert.Equal(t, []any{role}, params)
		})
	}
}

type stubStore struct {
	uploads int
	deletes int
}

func (s *stubStore) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	s.uploads++
	return "https://bucket.example/" + key, nil
}

func (s *stubStore) Delete(ctx context.Context, pathOrURL string) error {
	s.deletes++
	return nil
}

func TestUploadValidatesRolesBeforeStoring(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "handbook.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("pdf bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("roles", `["Sales User"`))
	require.NoError(t, mw.Close())

	store := &stubStore{}
	h := NewKnowledgeBaseHandler(nil, store, logger.NewWithWriter(io.Discard, "error"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/knowledge-base/upload", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(appmiddleware.ContextKeyClaims, &auth.Claims{UserID: 1, Role: RoleCorporateAdmin})

	require.NoError(t, h.Upload(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid roles format")
	assert.Zero(t, store.uploads, "object store must not be written for a rejected request")
}
