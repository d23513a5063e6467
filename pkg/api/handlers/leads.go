package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	apierrors "github.com/tallacworks/titan-crm/pkg/api/errors"
	"github.com/tallacworks/titan-crm/pkg/models"
)

// LeadHandler handles lead/prospect endpoints
type LeadHandler struct {
	db *sql.DB
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(db *sql.DB) *LeadHandler {
	return &LeadHandler{db: db}
}

const leadBaseColumns = `l.id, l.name, l.company_name, l.industry, l.status,
	l.lead_owner_id, l.assigned_to_id, l.assigned_date, l.primary_contact_id,
	l.primary_contact_name, l.primary_title, l.primary_phone, l.primary_email,
	l.city, l.state, l.zip_code, l.territory_id, l.organization_id,
	l.callback_date, l.callback_time, l.created_at, l.updated_at`

const leadJoins = `FROM tallac_leads l
	LEFT JOIN users u1 ON l.assigned_to_id = u1.id
	LEFT JOIN users u2 ON l.lead_owner_id = u2.id
	LEFT JOIN tallac_territories t ON l.territory_id = t.id
	LEFT JOIN tallac_organizations o ON l.organization_id = o.id
	LEFT JOIN tallac_contacts c ON l.primary_contact_id = c.id`

func leadBaseDests(l *models.Lead) []any {
	return []any{
		&l.ID, &l.Name, &l.CompanyName, &l.Industry, &l.Status,
		&l.LeadOwnerID, &l.AssignedToID, &l.AssignedDate, &l.PrimaryContactID,
		&l.PrimaryContactName, &l.PrimaryTitle, &l.PrimaryPhone, &l.PrimaryEmail,
		&l.City, &l.State, &l.ZipCode, &l.TerritoryID, &l.OrganizationID,
		&l.CallbackDate, &l.CallbackTime, &l.CreatedAt, &l.UpdatedAt,
	}
}

// applyAliases populates the legacy duplicate fields the frontend consumes.
func applyAliases(l *models.Lead) {
	l.LeadName = l.PrimaryContactName
	l.Title = l.PrimaryTitle
	l.EmailID = l.PrimaryEmail
	l.Phone = l.PrimaryPhone
	l.LeadOwner = l.LeadOwnerName
	l.Territory = l.TerritoryName
}

// buildLeadListQuery composes the dynamic filtered list query. Filters are
// optional and conjunctive; the queue/scheduled status filters match on the
// derived queue-status expression instead of the stored status.
func buildLeadListQuery(f models.LeadListFilters) (string, []any) {
	query := fmt.Sprintf(`SELECT %s,
		u1.full_name AS assigned_to_name,
		u2.full_name AS lead_owner_name,
		t.territory_name,
		o.organization_name,
		c.full_name AS primary_contact_full_name,
		c.job_title AS primary_contact_designation,
		%s AS queue_status,
		%s AS queue_message
	%s
	WHERE 1=1`, leadBaseColumns, queueStatusExpr, queueMessageExpr, leadJoins)

	var params []any

	switch f.StatusFilter {
	case "", "all":
	case "queue":
		query += fmt.Sprintf(" AND (%s) IN ('overdue', 'today')", queueStatusExpr)
	case "scheduled":
		query += fmt.Sprintf(" AND (%s) = 'scheduled'", queueStatusExpr)
	default:
		params = append(params, canonicalStatus(f.StatusFilter))
		query += fmt.Sprintf(" AND LOWER(l.status) = LOWER($%d)", len(params))
	}

	if f.Territory != "" && f.Territory != "all" {
		params = append(params, f.Territory)
		query += fmt.Sprintf(" AND l.territory_id = (SELECT id FROM tallac_territories WHERE territory_name = $%d)", len(params))
	}

	if f.Industry != "" && f.Industry != "all" {
		params = append(params, f.Industry)
		query += fmt.Sprintf(" AND l.industry = $%d", len(params))
	}

	if f.Owner != "" && f.Owner != "all" {
		if f.Owner == "Unassigned" {
			query += " AND (l.lead_owner_id IS NULL OR u2.full_name = 'Administrator')"
		} else {
			params = append(params, f.Owner)
			query += fmt.Sprintf(" AND u2.full_name = $%d", len(params))
		}
	}

	if f.SearchText != "" {
		params = append(params, "%"+f.SearchText+"%")
		n := len(params)
		query += fmt.Sprintf(" AND (l.company_name ILIKE $%d OR l.primary_contact_name ILIKE $%d OR l.primary_email ILIKE $%d)", n, n, n)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 1000
	}
	params = append(params, limit, f.Start)
	query += fmt.Sprintf(" ORDER BY l.updated_at DESC LIMIT $%d OFFSET $%d", len(params)-1, len(params))

	return query, params
}

// List returns leads matching the optional conjunctive filters, each
// augmented with its ordered contact path.
func (h *LeadHandler) List(c echo.Context) error {
	var filters models.LeadListFilters
	if err := c.Bind(&filters); err != nil {
		return apierrors.BadRequest(c, "Invalid query parameters")
	}

	ctx := c.Request().Context()
	query, params := buildLeadListQuery(filters)

	rows, err := h.db.QueryContext(ctx, query, params...)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	defer rows.Close()

	leads := []models.Lead{}
	for rows.Next() {
		var l models.Lead
		dests := append(leadBaseDests(&l),
			&l.AssignedToName, &l.LeadOwnerName, &l.TerritoryName,
			&l.OrganizationName, &l.PrimaryContactFullName, &l.PrimaryContactDesignation,
			&l.QueueStatus, &l.QueueMessage,
		)
		if err := rows.Scan(dests...); err != nil {
			return apierrors.Internal(c, err)
		}
		applyAliases(&l)
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return apierrors.Internal(c, err)
	}

	for i := range leads {
		path, err := h.contactPath(ctx, leads[i].ID)
		if err != nil {
			return apierrors.Internal(c, err)
		}
		leads[i].ContactPath = path
	}

	return c.JSON(http.StatusOK, leads)
}

func (h *LeadHandler) contactPath(ctx context.Context, leadID int) ([]models.ContactPathStep, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT cp.contact_name, cp.status, cp.sequence
		 FROM tallac_lead_contact_paths cp
		 WHERE cp.lead_id = $1
		 ORDER BY cp.sequence ASC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	path := []models.ContactPathStep{}
	for rows.Next() {
		var step models.ContactPathStep
		if err := rows.Scan(&step.ContactName, &step.Status, &step.Sequence); err != nil {
			return nil, err
		}
		path = append(path, step)
	}
	return path, rows.Err()
}

// PipelineCounts returns per-status lead counts in pipeline order,
// optionally scoped to a territory by name.
func (h *LeadHandler) PipelineCounts(c echo.Context) error {
	territory := c.QueryParam("territory")

	query := "SELECT status, COUNT(*) AS count FROM tallac_leads WHERE 1=1"
	var params []any
	if territory != "" {
		params = append(params, territory)
		query += " AND territory_id = (SELECT id FROM tallac_territories WHERE territory_name = $1)"
	}
	query += ` GROUP BY status ORDER BY
		CASE status
			WHEN 'New' THEN 1
			WHEN 'Contacted' THEN 2
			WHEN 'Interested' THEN 3
			WHEN 'Qualified' THEN 4
			WHEN 'Proposal' THEN 5
			WHEN 'Negotiation' THEN 6
			WHEN 'Closed Won' THEN 7
			WHEN 'Closed Lost' THEN 8
			ELSE 9
		END`

	rows, err := h.db.QueryContext(c.Request().Context(), query, params...)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	defer rows.Close()

	counts := []models.PipelineCount{}
	for rows.Next() {
		var pc models.PipelineCount
		if err := rows.Scan(&pc.Status, &pc.Count); err != nil {
			return apierrors.Internal(c, err)
		}
		counts = append(counts, pc)
	}
	if err := rows.Err(); err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusOK, counts)
}

// Get returns a single lead by numeric id or code, with its contact path.
func (h *LeadHandler) Get(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	query := fmt.Sprintf(`SELECT %s,
		u1.full_name AS assigned_to_name,
		u2.full_name AS lead_owner_name,
		t.territory_name,
		o.organization_name,
		c.full_name AS primary_contact_full_name,
		c.job_title AS primary_contact_designation
	%s
	WHERE l.id::text = $1 OR l.name = $1`, leadBaseColumns, leadJoins)

	var l models.Lead
	dests := append(leadBaseDests(&l),
		&l.AssignedToName, &l.LeadOwnerName, &l.TerritoryName,
		&l.OrganizationName, &l.PrimaryContactFullName, &l.PrimaryContactDesignation,
	)
	err := h.db.QueryRowContext(ctx, query, id).Scan(dests...)
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(c, "Lead not found")
	}
	if err != nil {
		return apierrors.Internal(c, err)
	}

	path, err := h.contactPath(ctx, l.ID)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	l.ContactPath = path

	return c.JSON(http.StatusOK, l)
}

// Create inserts a lead. The human-readable code comes from a dedicated
// sequence so concurrent creates cannot collide.
func (h *LeadHandler) Create(c echo.Context) error {
	var req models.CreateLeadRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Invalid request body")
	}

	status := "New"
	if req.Status != nil && *req.Status != "" {
		status = *req.Status
	}

	var l models.Lead
	err := h.db.QueryRowContext(c.Request().Context(),
		`INSERT INTO tallac_leads (
			name, company_name, industry, status, organization_id,
			territory_id, primary_contact_name, primary_title,
			primary_phone, primary_email, city, state, zip_code
		) VALUES (
			'TLEAD-' || lpad(nextval('tallac_lead_code_seq')::text, 5, '0'),
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING `+stripAlias(leadBaseColumns, "l."),
		req.CompanyName, req.Industry, status, req.OrganizationID,
		req.TerritoryID, req.PrimaryContactName, req.PrimaryTitle,
		req.PrimaryPhone, req.PrimaryEmail, req.City, req.State, req.ZipCode,
	).Scan(leadBaseDests(&l)...)
	if err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusCreated, l)
}

// leadUpdateColumns is the allow-listed patch surface of a lead. Anything
// else in the body (id, name, created_at, unknown keys) is dropped.
var leadUpdateColumns = map[string]struct{}{
	"company_name":         {},
	"industry":             {},
	"status":               {},
	"lead_owner_id":        {},
	"assigned_to_id":       {},
	"assigned_date":        {},
	"primary_contact_id":   {},
	"primary_contact_name": {},
	"primary_title":        {},
	"primary_phone":        {},
	"primary_email":        {},
	"city":                 {},
	"state":                {},
	"zip_code":             {},
	"territory_id":         {},
	"organization_id":      {},
	"callback_date":        {},
	"callback_time":        {},
}

// Update patches a lead by id or code from an allow-listed field set.
func (h *LeadHandler) Update(c echo.Context) error {
	id := c.Param("id")

	var body map[string]any
	if err := c.Bind(&body); err != nil {
		return apierrors.BadRequest(c, "Invalid request body")
	}

	assignments, values := buildPatch(body, leadUpdateColumns, 1)
	if len(assignments) == 0 {
		return apierrors.BadRequest(c, "No fields to update")
	}

	assignments = append(assignments, "updated_at = CURRENT_TIMESTAMP")
	values = append(values, id)

	query := fmt.Sprintf(
		`UPDATE tallac_leads SET %s WHERE id::text = $%d OR name = $%d RETURNING %s`,
		strings.Join(assignments, ", "), len(values), len(values),
		stripAlias(leadBaseColumns, "l."),
	)

	var l models.Lead
	err := h.db.QueryRowContext(c.Request().Context(), query, values...).Scan(leadBaseDests(&l)...)
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(c, "Lead not found")
	}
	if err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusOK, l)
}

// Assign sets the assignee of one lead and stamps the assignment date.
func (h *LeadHandler) Assign(c echo.Context) error {
	id := c.Param("id")

	var req struct {
		UserID *int `json:"user_id"`
	}
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Invalid request body")
	}

	var l models.Lead
	err := h.db.QueryRowContext(c.Request().Context(),
		`UPDATE tallac_leads
		 SET assigned_to_id = $1, assigned_date = CURRENT_DATE, updated_at = CURRENT_TIMESTAMP
		 WHERE id::text = $2 OR name = $2
		 RETURNING `+stripAlias(leadBaseColumns, "l."),
		req.UserID, id,
	).Scan(leadBaseDests(&l)...)
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(c, "Lead not found")
	}
	if err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Lead assigned successfully",
		"lead":    l,
	})
}

// Delete removes a lead by id or code.
func (h *LeadHandler) Delete(c echo.Context) error {
	id := c.Param("id")

	result, err := h.db.ExecContext(c.Request().Context(),
		"DELETE FROM tallac_leads WHERE id::text = $1 OR name = $1", id)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierrors.Internal(c, err)
	}
	if affected == 0 {
		return apierrors.NotFound(c, "Lead not found")
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Lead deleted successfully",
	})
}

// resolveUserID accepts a numeric id or an email-shaped identifier and
// resolves it to a user id.
func (h *LeadHandler) resolveUserID(ctx context.Context, userID any) (int, error) {
	switch v := userID.(type) {
	case float64:
		return int(v), nil
	case string:
		if strings.Contains(v, "@") {
			var id int
			err := h.db.QueryRowContext(ctx, "SELECT id FROM users WHERE email = $1", v).Scan(&id)
			if err != nil {
				return 0, err
			}
			return id, nil
		}
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("unsupported user_id type %T", userID)
	}
}

// BulkAssign assigns every named lead to one user in a single statement.
func (h *LeadHandler) BulkAssign(c echo.Context) error {
	var req models.BulkAssignRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Invalid request body")
	}
	if len(req.LeadNames) == 0 {
		return apierrors.BadRequest(c, "lead_names array is required")
	}

	ctx := c.Request().Context()

	assignedToID, err := h.resolveUserID(ctx, req.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(c, "User not found")
	}
	if err != nil {
		return apierrors.BadRequest(c, "Invalid user_id")
	}

	result, err := h.db.ExecContext(ctx,
		`UPDATE tallac_leads
		 SET assigned_to_id = $1, assigned_date = CURRENT_DATE, updated_at = CURRENT_TIMESTAMP
		 WHERE name = ANY($2)`,
		assignedToID, pq.Array(req.LeadNames))
	if err != nil {
		return apierrors.Internal(c, err)
	}
	affected, _ := result.RowsAffected()

	return c.JSON(http.StatusOK, models.BulkResult{
		Success: true,
		Message: fmt.Sprintf("Assigned %d leads successfully", affected),
		Count:   int(affected),
	})
}

// BulkStatus moves every named lead to one pipeline status.
func (h *LeadHandler) BulkStatus(c echo.Context) error {
	var req models.BulkStatusRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Invalid request body")
	}
	if len(req.LeadNames) == 0 {
		return apierrors.BadRequest(c, "lead_names array is required")
	}
	if req.Status == "" {
		return apierrors.BadRequest(c, "status is required")
	}

	dbStatus := canonicalStatus(req.Status)

	result, err := h.db.ExecContext(c.Request().Context(),
		`UPDATE tallac_leads
		 SET status = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE name = ANY($2)`,
		dbStatus, pq.Array(req.LeadNames))
	if err != nil {
		return apierrors.Internal(c, err)
	}
	affected, _ := result.RowsAffected()

	return c.JSON(http.StatusOK, models.BulkResult{
		Success: true,
		Message: fmt.Sprintf("Updated %d leads to %s", affected, dbStatus),
		Count:   int(affected),
	})
}

// BulkDelete removes every named lead.
func (h *LeadHandler) BulkDelete(c echo.Context) error {
	var req models.BulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Invalid request body")
	}
	if len(req.LeadNames) == 0 {
		return apierrors.BadRequest(c, "lead_names array is required")
	}

	result, err := h.db.ExecContext(c.Request().Context(),
		"DELETE FROM tallac_leads WHERE name = ANY($1)", pq.Array(req.LeadNames))
	if err != nil {
		return apierrors.Internal(c, err)
	}
	affected, _ := result.RowsAffected()

	return c.JSON(http.StatusOK, models.BulkResult{
		Success: true,
		Message: fmt.Sprintf("Deleted %d leads successfully", affected),
		Count:   int(affected),
	})
}
