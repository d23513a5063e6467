package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	apierrors "github.com/tallacworks/titan-crm/pkg/api/errors"
	"github.com/tallacworks/titan-crm/pkg/models"
)

// TerritoryHandler handles territory endpoints.
type TerritoryHandler struct {
	db *sql.DB
}

// NewTerritoryHandler creates a new territory handler
func NewTerritoryHandler(db *sql.DB) *TerritoryHandler {
	return &TerritoryHandler{db: db}
}

const territoryColumns = `id, territory_name, doing_business_as, status,
	territory_owner, mobile, address, territory_manager_email, email,
	map_address, description, created_at, updated_at`

func territoryDests(t *models.Territory) []any {
	return []any{
		&t.ID, &t.TerritoryName, &t.DoingBusinessAs, &t.Status,
		&t.TerritoryOwner, &t.Mobile, &t.Address, &t.TerritoryManagerEmail,
		&t.Email, &t.MapAddress, &t.Description, &t.CreatedAt, &t.UpdatedAt,
	}
}

func (h *TerritoryHandler) loadChildren(ctx context.Context, t *models.Territory) error {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, territory_id, owner_name, owner_email, owner_phone
		 FROM territory_owners WHERE territory_id = $1 ORDER BY owner_name`, t.ID)
	if err != nil {
		return err
	}
	t.Owners = []models.TerritoryOwner{}
	for rows.Next() {
		var o models.TerritoryOwner
		if err := rows.Scan(&o.ID, &o.TerritoryID, &o.OwnerName, &o.OwnerEmail, &o.OwnerPhone); err != nil {
			rows.Close()
			return err
		}
		t.Owners = append(t.Owners, o)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	rows, err = h.db.QueryContext(ctx,
		`SELECT id, territory_id, zip_code, city, state
		 FROM territory_zip_codes WHERE territory_id = $1 ORDER BY zip_code`, t.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	t.ZipCodes = []models.TerritoryZipCode{}
	for rows.Next() {
		var z models.TerritoryZipCode
		if err := rows.Scan(&z.ID, &z.TerritoryID, &z.ZipCode, &z.City, &z.State); err != nil {
			return err
		}
		t.ZipCodes = append(t.ZipCodes, z)
	}
	return rows.Err()
}

// List returns every territory with its owners and zip codes.
func (h *TerritoryHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	search := c.QueryParam("search")
	status := c.QueryParam("status")

	query := fmt.Sprintf("SELECT %s FROM tallac_territories WHERE 1=1", territoryColumns)
	var params []any
	if search != "" {
		params = append(params, "%"+search+"%")
		n := len(params)
		query += fmt.Sprintf(" AND (territory_name ILIKE $%d OR doing_business_as ILIKE $%d)", n, n)
	}
	if status != "" && status != "all" {
		params = append(params, status)
		query += fmt.Sprintf(" AND status = $%d", len(params))
	}
	query += " ORDER BY territory_name"

	rows, err := h.db.QueryContext(ctx, query, params...)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	defer rows.Close()

	territories := []models.Territory{}
	for rows.Next() {
		var t models.Territory
		if err := rows.Scan(territoryDests(&t)...); err != nil {
			return apierrors.Internal(c, err)
		}
		territories = append(territories, t)
	}
	if err := rows.Err(); err != nil {
		return apierrors.Internal(c, err)
	}

	for i := range territories {
		if err := h.loadChildren(ctx, &territories[i]); err != nil {
			return apierrors.Internal(c, err)
		}
	}

	return c.JSON(http.StatusOK, territories)
}

// Get returns one territory by id with its owners and zip codes.
func (h *TerritoryHandler) Get(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	var t models.Territory
	err := h.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT %s FROM tallac_territories WHERE id::text = $1 OR territory_name = $1",
		territoryColumns), id).Scan(territoryDests(&t)...)
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(c, "Territory not found")
	}
	if err != nil {
		return apierrors.Internal(c, err)
	}

	if err := h.loadChildren(ctx, &t); err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusOK, t)
}

func insertTerritoryChildren(ctx context.Context, tx *sql.Tx, territoryID int,
	owners []models.TerritoryOwner, zipCodes []models.TerritoryZipCode) error {
	for _, o := range owners {
		if strings.TrimSpace(o.OwnerName) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO territory_owners (territory_id, owner_name, owner_email, owner_phone)
			 VALUES ($1, $2, $3, $4)`,
			territoryID, o.OwnerName, o.OwnerEmail, o.OwnerPhone); err != nil {
			return err
		}
	}
	for _, z := range zipCodes {
		if strings.TrimSpace(z.ZipCode) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO territory_zip_codes (territory_id, zip_code, city, state)
			 VALUES ($1, $2, $3, $4)`,
			territoryID, z.ZipCode, z.City, z.State); err != nil {
			return err
		}
	}
	return nil
}

// Create inserts a territory with its children in one transaction.
func (h *TerritoryHandler) Create(c echo.Context) error {
	var req models.TerritoryRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Invalid request body")
	}
	if req.TerritoryName == nil || strings.TrimSpace(*req.TerritoryName) == "" {
		return apierrors.BadRequest(c, "territory_name is required")
	}

	ctx := c.Request().Context()

	var exists bool
	if err := h.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM tallac_territories WHERE territory_name = $1)",
		*req.TerritoryName).Scan(&exists); err != nil {
		return apierrors.Internal(c, err)
	}
	if exists {
		return apierrors.BadRequest(c, "Territory name already exists. Select another name")
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	defer tx.Rollback()

	var t models.Territory
	err = tx.QueryRowContext(ctx,
		`INSERT INTO tallac_territories (
			territory_name, doing_business_as, status, territory_owner, mobile,
			address, territory_manager_email, email, map_address
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+territoryColumns,
		req.TerritoryName, req.DoingBusinessAs, req.Status, req.TerritoryOwner,
		req.Mobile, req.Address, req.TerritoryManagerEmail, req.Email, req.MapAddress,
	).Scan(territoryDests(&t)...)
	if err != nil {
		if apierrors.IsUniqueViolation(err) {
			return apierrors.BadRequest(c, "Territory name already exists. Select another name")
		}
		return apierrors.Internal(c, err)
	}

	var owners []models.TerritoryOwner
	if req.Owners != nil {
		owners = *req.Owners
	}
	var zipCodes []models.TerritoryZipCode
	if req.ZipCodes != nil {
		zipCodes = *req.ZipCodes
	}
	if err := insertTerritoryChildren(ctx, tx, t.ID, owners, zipCodes); err != nil {
		return apierrors.Internal(c, err)
	}

	if err := tx.Commit(); err != nil {
		return apierrors.Internal(c, err)
	}

	if err := h.loadChildren(ctx, &t); err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusCreated, t)
}

// Update patches a territory and, when the body carries owners or zip_codes,
// replaces those child collections wholesale in the same transaction.
func (h *TerritoryHandler) Update(c echo.Context) error {
	id := c.Param("id")

	var req models.TerritoryRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Invalid request body")
	}

	ctx := c.Request().Context()

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	defer tx.Rollback()

	var t models.Territory
	err = tx.QueryRowContext(ctx,
		`UPDATE tallac_territories SET
			territory_name = COALESCE($1, territory_name),
			doing_business_as = COALESCE($2, doing_business_as),
			status = COALESCE($3, status),
			territory_owner = COALESCE($4, territory_owner),
			mobile = COALESCE($5, mobile),
			address = COALESCE($6, address),
			territory_manager_email = COALESCE($7, territory_manager_email),
			email = COALESCE($8, email),
			map_address = COALESCE($9, map_address),
			updated_at = CURRENT_TIMESTAMP
		WHERE id::text = $10 OR territory_name = $10
		RETURNING `+territoryColumns,
		req.TerritoryName, req.DoingBusinessAs, req.Status, req.TerritoryOwner,
		req.Mobile, req.Address, req.TerritoryManagerEmail, req.Email,
		req.MapAddress, id,
	).Scan(territoryDests(&t)...)
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(c, "Territory not found")
	}
	if err != nil {
		if apierrors.IsUniqueViolation(err) {
			return apierrors.BadRequest(c, "Territory name already exists. Select another name")
		}
		return apierrors.Internal(c, err)
	}

	if req.Owners != nil {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM territory_owners WHERE territory_id = $1", t.ID); err != nil {
			return apierrors.Internal(c, err)
		}
		if err := insertTerritoryChildren(ctx, tx, t.ID, *req.Owners, nil); err != nil {
			return apierrors.Internal(c, err)
		}
	}
	if req.ZipCodes != nil {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM territory_zip_codes WHERE territory_id = $1", t.ID); err != nil {
			return apierrors.Internal(c, err)
		}
		if err := insertTerritoryChildren(ctx, tx, t.ID, nil, *req.ZipCodes); err != nil {
			return apierrors.Internal(c, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apierrors.Internal(c, err)
	}

	if err := h.loadChildren(ctx, &t); err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusOK, t)
}

// Delete removes a territory and its children.
func (h *TerritoryHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	defer tx.Rollback()

	var territoryID int
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM tallac_territories WHERE id::text = $1 OR territory_name = $1",
		id).Scan(&territoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(c, "Territory not found")
	}
	if err != nil {
		return apierrors.Internal(c, err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM territory_owners WHERE territory_id = $1", territoryID); err != nil {
		return apierrors.Internal(c, err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM territory_zip_codes WHERE territory_id = $1", territoryID); err != nil {
		return apierrors.Internal(c, err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM tallac_territories WHERE id = $1", territoryID); err != nil {
		return apierrors.Internal(c, err)
	}

	if err := tx.Commit(); err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Territory deleted successfully",
	})
}
