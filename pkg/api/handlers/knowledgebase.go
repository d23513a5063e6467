package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	apierrors "github.com/tallacworks/titan-crm/pkg/api/errors"
	appmiddleware "github.com/tallacworks/titan-crm/pkg/middleware"
	"github.com/tallacworks/titan-crm/pkg/logger"
	"github.com/tallacworks/titan-crm/pkg/models"
	"github.com/tallacworks/titan-crm/pkg/storage"
)

// MaxUploadSize caps knowledge-base uploads at 50MB.
const MaxUploadSize = 50 << 20

// ObjectStore is the slice of the S3 store the knowledge base needs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Delete(ctx context.Context, pathOrURL string) error
}

// KnowledgeBaseHandler handles knowledge-base file endpoints.
type KnowledgeBaseHandler struct {
	db    *sql.DB
	store ObjectStore
	log   logger.Logger
}

// NewKnowledgeBaseHandler creates a new knowledge base handler
func NewKnowledgeBaseHandler(db *sql.DB, store ObjectStore, log logger.Logger) *KnowledgeBaseHandler {
	return &KnowledgeBaseHandler{db: db, store: store, log: log}
}

func isAdminRole(role string) bool {
	return role == RoleCorporateAdmin || role == RoleTerritoryAdmin
}

const kbColumns = `f.id, f.file_name, f.original_name, f.file_path, f.file_size,
	f.file_type, f.mime_type, f.description, f.uploaded_by_id, f.created_at, f.updated_at`

func kbDests(f *models.KnowledgeBaseFile) []any {
	return []any{
		&f.ID, &f.FileName, &f.OriginalName, &f.FilePath, &f.FileSize,
		&f.FileType, &f.MimeType, &f.Description, &f.UploadedByID,
		&f.CreatedAt, &f.UpdatedAt,
	}
}

func (h *KnowledgeBaseHandler) loadRoles(ctx context.Context, f *models.KnowledgeBaseFile) error {
	rows, err := h.db.QueryContext(ctx,
		"SELECT role FROM knowledge_base_file_roles WHERE file_id = $1 ORDER BY role", f.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	f.AssignedRoles = []models.FileRole{}
	for rows.Next() {
		var r models.FileRole
		if err := rows.Scan(&r.Role); err != nil {
			return err
		}
		f.AssignedRoles = append(f.AssignedRoles, r)
	}
	return rows.Err()
}

// visibleFileClause is the role-visibility predicate on knowledge_base_files
// (aliased f): a file with no role rows is visible to every role, otherwise
// only to roles with a matching row. The caller's role binds at ordinal n.
// It applies to every caller — admins get their unrestricted view through
// the separately gated /all listing.
func visibleFileClause(n int) string {
	return fmt.Sprintf(`(
		NOT EXISTS (SELECT 1 FROM knowledge_base_file_roles r WHERE r.file_id = f.id)
		OR EXISTS (SELECT 1 FROM knowledge_base_file_roles r WHERE r.file_id = f.id AND r.role = $%d)
	)`, n)
}

// buildFileListQuery returns the visibility-filtered list query for one role.
func buildFileListQuery(role string) (string, []any) {
	query := fmt.Sprintf(`SELECT %s,
		u.full_name AS uploaded_by_name,
		u.email AS uploaded_by_email
	FROM knowledge_base_files f
	LEFT JOIN users u ON f.uploaded_by_id = u.id
	WHERE %s
	ORDER BY f.created_at DESC`, kbColumns, visibleFileClause(1))
	return query, []any{role}
}

// List returns the files visible to the caller's role: unrestricted files
// plus files assigned to that role.
func (h *KnowledgeBaseHandler) List(c echo.Context) error {
	claims := appmiddleware.ClaimsFrom(c)
	if claims == nil {
		return apierrors.Unauthorized(c, "Not authenticated")
	}

	ctx := c.Request().Context()
	query, params := buildFileListQuery(claims.Role)

	rows, err := h.db.QueryContext(ctx, query, params...)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	defer rows.Close()

	files := []models.KnowledgeBaseFile{}
	for rows.Next() {
		var f models.KnowledgeBaseFile
		dests := append(kbDests(&f), &f.UploadedByName, &f.UploadedByEmail)
		if err := rows.Scan(dests...); err != nil {
			return apierrors.Internal(c, err)
		}
		f.IsOwner = f.UploadedByID == claims.UserID
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return apierrors.Internal(c, err)
	}

	for i := range files {
		if err := h.loadRoles(ctx, &files[i]); err != nil {
			return apierrors.Internal(c, err)
		}
	}

	return c.JSON(http.StatusOK, files)
}

// ListAll returns every file regardless of role restrictions. Route-gated
// to admin roles.
func (h *KnowledgeBaseHandler) ListAll(c echo.Context) error {
	claims := appmiddleware.ClaimsFrom(c)
	if claims == nil {
		return apierrors.Unauthorized(c, "Not authenticated")
	}

	ctx := c.Request().Context()
	rows, err := h.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s,
		u.full_name AS uploaded_by_name,
		u.email AS uploaded_by_email
	FROM knowledge_base_files f
	LEFT JOIN users u ON f.uploaded_by_id = u.id
	ORDER BY f.created_at DESC`, kbColumns))
	if err != nil {
		return apierrors.Internal(c, err)
	}
	defer rows.Close()

	files := []models.KnowledgeBaseFile{}
	for rows.Next() {
		var f models.KnowledgeBaseFile
		dests := append(kbDests(&f), &f.UploadedByName, &f.UploadedByEmail)
		if err := rows.Scan(dests...); err != nil {
			return apierrors.Internal(c, err)
		}
		f.IsOwner = f.UploadedByID == claims.UserID
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return apierrors.Internal(c, err)
	}

	for i := range files {
		if err := h.loadRoles(ctx, &files[i]); err != nil {
			return apierrors.Internal(c, err)
		}
	}

	return c.JSON(http.StatusOK, files)
}

// parseRoles accepts a role set either as a JSON array or as a JSON-encoded
// string of one (multipart forms send the latter).
func parseRoles(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		var roles []string
		if err := json.Unmarshal([]byte(v), &roles); err != nil {
			return nil, err
		}
		return roles, nil
	case []any:
		roles := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("role entries must be strings")
			}
			roles = append(roles, s)
		}
		return roles, nil
	default:
		return nil, fmt.Errorf("unsupported roles format %T", raw)
	}
}

func (h *KnowledgeBaseHandler) replaceRoles(ctx context.Context, tx *sql.Tx, fileID int, roles []string) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM knowledge_base_file_roles WHERE file_id = $1", fileID); err != nil {
		return err
	}
	for _, role := range roles {
		if strings.TrimSpace(role) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO knowledge_base_file_roles (file_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			fileID, role); err != nil {
			return err
		}
	}
	return nil
}

// Upload stores a multipart file in the object store and records its
// metadata plus optional role restrictions.
func (h *KnowledgeBaseHandler) Upload(c echo.Context) error {
	claims := appmiddleware.ClaimsFrom(c)
	if claims == nil {
		return apierrors.Unauthorized(c, "Not authenticated")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apierrors.BadRequest(c, "No file uploaded")
	}
	if fileHeader.Size > MaxUploadSize {
		return apierrors.BadRequest(c, "File too large. Maximum size is 50MB")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return apierrors.Internal(c, err)
	}
	defer src.Close()

	body, err := io.ReadAll(io.LimitReader(src, MaxUploadSize+1))
	if err != nil {
		return apierrors.Internal(c, err)
	}
	if len(body) > MaxUploadSize {
		return apierrors.BadRequest(c, "File too large. Maximum size is 50MB")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var description *string
	if d := c.FormValue("description"); d != "" {
		description = &d
	}
	// All form input is validated before the object store is touched, so a
	// bad request never leaves an orphaned object behind.
	roles, err := parseRoles(c.FormValue("roles"))
	if err != nil {
		return apierrors.BadRequest(c, "Invalid roles format")
	}

	ctx := c.Request().Context()
	key := storage.GenerateKey(fileHeader.Filename)
	url, err := h.store.Upload(ctx, key, body, contentType)
	if err != nil {
		return apierrors.Internal(c, err)
	}

	fileType := strings.TrimPrefix(filepath.Ext(fileHeader.Filename), ".")

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	defer tx.Rollback()

	var f models.KnowledgeBaseFile
	err = tx.QueryRowContext(ctx,
		`INSERT INTO knowledge_base_files (
			file_name, original_name, file_path, file_size, file_type,
			mime_type, description, uploaded_by_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+stripAlias(kbColumns, "f."),
		key, fileHeader.Filename, url, fileHeader.Size, fileType,
		contentType, description, claims.UserID,
	).Scan(kbDests(&f)...)
	if err != nil {
		return apierrors.Internal(c, err)
	}

	if err := h.replaceRoles(ctx, tx, f.ID, roles); err != nil {
		return apierrors.Internal(c, err)
	}

	if err := tx.Commit(); err != nil {
		return apierrors.Internal(c, err)
	}

	f.IsOwner = true
	if err := h.loadRoles(ctx, &f); err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusCreated, f)
}

// fetchFile loads one file row without its joins.
func (h *KnowledgeBaseHandler) fetchFile(ctx context.Context, id string) (*models.KnowledgeBaseFile, error) {
	var f models.KnowledgeBaseFile
	err := h.db.QueryRowContext(ctx,
		"SELECT "+stripAlias(kbColumns, "f.")+" FROM knowledge_base_files WHERE id::text = $1",
		id).Scan(kbDests(&f)...)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateRoles replaces a file's role assignments. Only an admin or the
// uploader may change them.
func (h *KnowledgeBaseHandler) UpdateRoles(c echo.Context) error {
	claims := appmiddleware.ClaimsFrom(c)
	if claims == nil {
		return apierrors.Unauthorized(c, "Not authenticated")
	}

	var req models.UpdateFileRolesRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Invalid request body")
	}
	roles, err := parseRoles(req.Roles)
	if err != nil {
		return apierrors.BadRequest(c, "Invalid roles format")
	}

	ctx := c.Request().Context()
	f, err := h.fetchFile(ctx, c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(c, "File not found")
	}
	if err != nil {
		return apierrors.Internal(c, err)
	}

	if !isAdminRole(claims.Role) && f.UploadedByID != claims.UserID {
		return apierrors.Forbidden(c, "Insufficient permissions")
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	defer tx.Rollback()

	if err := h.replaceRoles(ctx, tx, f.ID, roles); err != nil {
		return apierrors.Internal(c, err)
	}
	if err := tx.Commit(); err != nil {
		return apierrors.Internal(c, err)
	}

	f.IsOwner = f.UploadedByID == claims.UserID
	if err := h.loadRoles(ctx, f); err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusOK, f)
}

// Download redirects to the stored object if the caller may see the file.
func (h *KnowledgeBaseHandler) Download(c echo.Context) error {
	claims := appmiddleware.ClaimsFrom(c)
	if claims == nil {
		return apierrors.Unauthorized(c, "Not authenticated")
	}

	ctx := c.Request().Context()
	id := c.Param("id")

	query := fmt.Sprintf(
		"SELECT %s FROM knowledge_base_files f WHERE f.id::text = $1 AND %s",
		kbColumns, visibleFileClause(2))

	var f models.KnowledgeBaseFile
	err := h.db.QueryRowContext(ctx, query, id, claims.Role).Scan(kbDests(&f)...)
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(c, "File not found or access denied")
	}
	if err != nil {
		return apierrors.Internal(c, err)
	}

	return c.Redirect(http.StatusFound, f.FilePath)
}

// Delete removes a file record and best-effort deletes the stored object.
// Only an admin or the uploader may delete.
func (h *KnowledgeBaseHandler) Delete(c echo.Context) error {
	claims := appmiddleware.ClaimsFrom(c)
	if claims == nil {
		return apierrors.Unauthorized(c, "Not authenticated")
	}

	ctx := c.Request().Context()
	f, err := h.fetchFile(ctx, c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(c, "File not found")
	}
	if err != nil {
		return apierrors.Internal(c, err)
	}

	if !isAdminRole(claims.Role) && f.UploadedByID != claims.UserID {
		return apierrors.Forbidden(c, "Insufficient permissions")
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM knowledge_base_file_roles WHERE file_id = $1", f.ID); err != nil {
		return apierrors.Internal(c, err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM knowledge_base_files WHERE id = $1", f.ID); err != nil {
		return apierrors.Internal(c, err)
	}
	if err := tx.Commit(); err != nil {
		return apierrors.Internal(c, err)
	}

	// The database row is authoritative; a failed object delete only leaves
	// an orphan in the bucket.
	if err := h.store.Delete(ctx, f.FilePath); err != nil {
		h.log.Warn("failed to delete stored object", "file_path", f.FilePath, "error", err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "File deleted successfully",
	})
}
