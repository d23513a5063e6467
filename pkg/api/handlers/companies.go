package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	apierrors "github.com/tallacworks/titan-crm/pkg/api/errors"
	appmiddleware "github.com/tallacworks/titan-crm/pkg/middleware"
	"github.com/tallacworks/titan-crm/pkg/models"
)

// CompanyHandler handles company endpoints.
type CompanyHandler struct {
	db *sql.DB
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(db *sql.DB) *CompanyHandler {
	return &CompanyHandler{db: db}
}

const companyColumns = `co.id, co.company_name, co.doing_business_as, co.industry,
	co.status, co.territory_owner, co.mobile, co.address,
	co.territory_manager_email, co.email, co.map_address, co.full_address,
	co.location_summary, co.zip_code, co.city, co.state, co.territory_id,
	co.truck_count, co.driver_count, co.employee_count, co.annual_revenue,
	co.years_in_business, co.business_type, co.organization_id,
	co.created_by_id, co.created_at, co.updated_at`

func companyDests(co *models.Company) []any {
	return []any{
		&co.ID, &co.CompanyName, &co.DoingBusinessAs, &co.Industry,
		&co.Status, &co.TerritoryOwner, &co.Mobile, &co.Address,
		&co.TerritoryManagerEmail, &co.Email, &co.MapAddress, &co.FullAddress,
		&co.LocationSummary, &co.ZipCode, &co.City, &co.State, &co.TerritoryID,
		&co.TruckCount, &co.DriverCount, &co.EmployeeCount, &co.AnnualRevenue,
		&co.YearsInBusiness, &co.BusinessType, &co.OrganizationID,
		&co.CreatedByID, &co.CreatedAt, &co.UpdatedAt,
	}
}

// applyCompanyAliases mirrors the stored columns into the legacy field names.
func applyCompanyAliases(co *models.Company) {
	co.Name = co.CompanyName
	co.Industries = co.Industry
}

// coalesceCompanyRequest folds the alias fields into the canonical ones.
func coalesceCompanyRequest(req *models.CompanyRequest) {
	if req.CompanyName == nil {
		req.CompanyName = req.Name
	}
	if req.Industry == nil {
		req.Industry = req.Industries
	}
}

// List returns companies with optional search, status and territory filters.
func (h *CompanyHandler) List(c echo.Context) error {
	var filters models.CompanyListFilters
	if err := c.Bind(&filters); err != nil {
		return apierrors.BadRequest(c, "Invalid query parameters")
	}

	query := fmt.Sprintf(`SELECT %s,
		t.territory_name,
		o.organization_name
	FROM companies co
	LEFT JOIN tallac_territories t ON co.territory_id = t.id
	LEFT JOIN tallac_organizations o ON co.organization_id = o.id
	WHERE 1=1`, companyColumns)

	var params []any

	if filters.Search != "" {
		params = append(params, "%"+filters.Search+"%")
		n := len(params)
		query += fmt.Sprintf(" AND (co.company_name ILIKE $%d OR co.doing_business_as ILIKE $%d OR co.industry ILIKE $%d)", n, n, n)
	}
	if filters.Status != "" && filters.Status != "all" {
		params = append(params, filters.Status)
		query += fmt.Sprintf(" AND co.status = $%d", len(params))
	}
	if filters.TerritoryID != "" && filters.TerritoryID != "all" {
		params = append(params, filters.TerritoryID)
		query += fmt.Sprintf(" AND co.territory_id::text = $%d", len(params))
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}
	params = append(params, limit, filters.Offset)
	query += fmt.Sprintf(" ORDER BY co.created_at DESC LIMIT $%d OFFSET $%d", len(params)-1, len(params))

	rows, err := h.db.QueryContext(c.Request().Context(), query, params...)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	defer rows.Close()

	companies := []models.Company{}
	for rows.Next() {
		var co models.Company
		dests := append(companyDests(&co), &co.TerritoryName, &co.OrganizationName)
		if err := rows.Scan(dests...); err != nil {
			return apierrors.Internal(c, err)
		}
		applyCompanyAliases(&co)
		companies = append(companies, co)
	}
	if err := rows.Err(); err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusOK, companies)
}

// Get returns one company by id.
func (h *CompanyHandler) Get(c echo.Context) error {
	id := c.Param("id")

	query := fmt.Sprintf(`SELECT %s,
		t.territory_name,
		o.organization_name
	FROM companies co
	LEFT JOIN tallac_territories t ON co.territory_id = t.id
	LEFT JOIN tallac_organizations o ON co.organization_id = o.id
	WHERE co.id::text = $1`, companyColumns)

	var co models.Company
	dests := append(companyDests(&co), &co.TerritoryName, &co.OrganizationName)
	err := h.db.QueryRowContext(c.Request().Context(), query, id).Scan(dests...)
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(c, "Company not found")
	}
	if err != nil {
		return apierrors.Internal(c, err)
	}
	applyCompanyAliases(&co)

	return c.JSON(http.StatusOK, co)
}

// Create inserts a company.
func (h *CompanyHandler) Create(c echo.Context) error {
	var req models.CompanyRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Invalid request body")
	}
	coalesceCompanyRequest(&req)
	if req.CompanyName == nil || *req.CompanyName == "" {
		return apierrors.BadRequest(c, "company_name is required")
	}

	claims := appmiddleware.ClaimsFrom(c)
	var createdByID *int
	if claims != nil {
		createdByID = &claims.UserID
	}

	var co models.Company
	err := h.db.QueryRowContext(c.Request().Context(),
		`INSERT INTO companies (
			company_name, doing_business_as, industry, status, territory_owner,
			mobile, address, territory_manager_email, email, map_address,
			full_address, location_summary, zip_code, city, state, territory_id,
			truck_count, driver_count, employee_count, annual_revenue,
			years_in_business, business_type, organization_id, created_by_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING `+stripAlias(companyColumns, "co."),
		req.CompanyName, req.DoingBusinessAs, req.Industry, req.Status,
		req.TerritoryOwner, req.Mobile, req.Address, req.TerritoryManagerEmail,
		req.Email, req.MapAddress, req.FullAddress, req.LocationSummary,
		req.ZipCode, req.City, req.State, req.TerritoryID, req.TruckCount,
		req.DriverCount, req.EmployeeCount, req.AnnualRevenue,
		req.YearsInBusiness, req.BusinessType, req.OrganizationID, createdByID,
	).Scan(companyDests(&co)...)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	applyCompanyAliases(&co)

	return c.JSON(http.StatusCreated, co)
}

// Update patches a company; absent fields keep their stored values.
func (h *CompanyHandler) Update(c echo.Context) error {
	id := c.Param("id")

	var req models.CompanyRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Invalid request body")
	}
	coalesceCompanyRequest(&req)

	var co models.Company
	err := h.db.QueryRowContext(c.Request().Context(),
		`UPDATE companies SET
			company_name = COALESCE($1, company_name),
			doing_business_as = COALESCE($2, doing_business_as),
			industry = COALESCE($3, industry),
			status = COALESCE($4, status),
			territory_owner = COALESCE($5, territory_owner),
			mobile = COALESCE($6, mobile),
			address = COALESCE($7, address),
			territory_manager_email = COALESCE($8, territory_manager_email),
			email = COALESCE($9, email),
			map_address = COALESCE($10, map_address),
			full_address = COALESCE($11, full_address),
			location_summary = COALESCE($12, location_summary),
			zip_code = COALESCE($13, zip_code),
			city = COALESCE($14, city),
			state = COALESCE($15, state),
			territory_id = COALESCE($16, territory_id),
			truck_count = COALESCE($17, truck_count),
			driver_count = COALESCE($18, driver_count),
			employee_count = COALESCE($19, employee_count),
			annual_revenue = COALESCE($20, annual_revenue),
			years_in_business = COALESCE($21, years_in_business),
			business_type = COALESCE($22, business_type),
			organization_id = COALESCE($23, organization_id),
			updated_at = CURRENT_TIMESTAMP
		WHERE id::text = $24
		RETURNING `+stripAlias(companyColumns, "co."),
		req.CompanyName, req.DoingBusinessAs, req.Industry, req.Status,
		req.TerritoryOwner, req.Mobile, req.Address, req.TerritoryManagerEmail,
		req.Email, req.MapAddress, req.FullAddress, req.LocationSummary,
		req.ZipCode, req.City, req.State, req.TerritoryID, req.TruckCount,
		req.DriverCount, req.EmployeeCount, req.AnnualRevenue,
		req.YearsInBusiness, req.BusinessType, req.OrganizationID, id,
	).Scan(companyDests(&co)...)
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(c, "Company not found")
	}
	if err != nil {
		return apierrors.Internal(c, err)
	}
	applyCompanyAliases(&co)

	return c.JSON(http.StatusOK, co)
}

// Delete removes a company by id.
func (h *CompanyHandler) Delete(c echo.Context) error {
	id := c.Param("id")

	result, err := h.db.ExecContext(c.Request().Context(),
		"DELETE FROM companies WHERE id::text = $1", id)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierrors.Internal(c, err)
	}
	if affected == 0 {
		return apierrors.NotFound(c, "Company not found")
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Company deleted successfully",
	})
}

// BulkTerritory moves a set of companies into one territory.
func (h *CompanyHandler) BulkTerritory(c echo.Context) error {
	var req models.BulkTerritoryRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Invalid request body")
	}
	if len(req.CompanyIDs) == 0 {
		return apierrors.BadRequest(c, "company_ids array is required")
	}

	result, err := h.db.ExecContext(c.Request().Context(),
		`UPDATE companies
		 SET territory_id = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ANY($2)`,
		req.TerritoryID, pq.Array(req.CompanyIDs))
	if err != nil {
		return apierrors.Internal(c, err)
	}
	affected, _ := result.RowsAffected()

	return c.JSON(http.StatusOK, models.BulkResult{
		Success: true,
		Message: fmt.Sprintf("Updated territory for %d companies", affected),
		Count:   int(affected),
	})
}
