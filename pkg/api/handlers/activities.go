package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	apierrors "github.com/tallacworks/titan-crm/pkg/api/errors"
	"github.com/tallacworks/titan-crm/pkg/models"
)

// ActivityHandler handles activity, call log and note endpoints, including
// the aggregated timeline.
type ActivityHandler struct {
	db *sql.DB
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(db *sql.DB) *ActivityHandler {
	return &ActivityHandler{db: db}
}

const activityColumns = `a.id, a.name, a.activity_type, a.title, a.status_id,
	a.priority, a.scheduled_date, a.scheduled_time, a.assigned_to_id,
	a.created_by_id, a.description, a.reference_doctype, a.reference_docname,
	a.contact_person_id, a.organization_id, a.completed_on, a.created_at, a.updated_at`

func activityDests(a *models.Activity) []any {
	return []any{
		&a.ID, &a.Name, &a.ActivityType, &a.Title, &a.StatusID,
		&a.Priority, &a.ScheduledDate, &a.ScheduledTime, &a.AssignedToID,
		&a.CreatedByID, &a.Description, &a.ReferenceDoctype, &a.ReferenceDocname,
		&a.ContactPersonID, &a.OrganizationID, &a.CompletedOn, &a.CreatedAt, &a.UpdatedAt,
	}
}

// List returns activities with optional filters, joined with display names
// and the company the activity references.
func (h *ActivityHandler) List(c echo.Context) error {
	var filters models.ActivityListFilters
	if err := c.Bind(&filters); err != nil {
		return apierrors.BadRequest(c, "Invalid query parameters")
	}

	query := fmt.Sprintf(`SELECT %s,
		s.status_name,
		u.full_name AS assigned_to_name,
		u2.full_name AS created_by_name,
		ct.full_name AS contact_name,
		o.organization_name,
		COALESCE(o.organization_name, l.company_name) AS company
	FROM tallac_activities a
	LEFT JOIN activity_statuses s ON a.status_id = s.id
	LEFT JOIN users u ON a.assigned_to_id = u.id
	LEFT JOIN users u2 ON a.created_by_id = u2.id
	LEFT JOIN tallac_contacts ct ON a.contact_person_id = ct.id
	LEFT JOIN tallac_organizations o ON a.organization_id = o.id
	LEFT JOIN tallac_leads l ON a.reference_doctype = 'Tallac Lead' AND a.reference_docname = l.name
	WHERE 1=1`, activityColumns)

	var params []any

	if filters.ActivityType != "" && filters.ActivityType != "all" {
		params = append(params, filters.ActivityType)
		query += fmt.Sprintf(" AND a.activity_type = $%d", len(params))
	}
	if filters.Status != "" && filters.Status != "all" {
		params = append(params, filters.Status)
		query += fmt.Sprintf(" AND s.status_name = $%d", len(params))
	}
	if filters.AssignedTo != "" && filters.AssignedTo != "all" {
		params = append(params, filters.AssignedTo)
		query += fmt.Sprintf(" AND a.assigned_to_id::text = $%d", len(params))
	}
	if filters.ScheduledDateFrom != "" {
		params = append(params, filters.ScheduledDateFrom)
		query += fmt.Sprintf(" AND a.scheduled_date >= $%d", len(params))
	}
	if filters.ScheduledDateTo != "" {
		params = append(params, filters.ScheduledDateTo)
		query += fmt.Sprintf(" AND a.scheduled_date <= $%d", len(params))
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	params = append(params, limit, filters.Offset)
	query += fmt.Sprintf(" ORDER BY a.scheduled_date DESC NULLS LAST, a.created_at DESC LIMIT $%d OFFSET $%d",
		len(params)-1, len(params))

	rows, err := h.db.QueryContext(c.Request().Context(), query, params...)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		var a models.Activity
		dests := append(activityDests(&a),
			&a.StatusName, &a.AssignedToName, &a.CreatedByName,
			&a.ContactName, &a.OrganizationName, &a.Company,
		)
		if err := rows.Scan(dests...); err != nil {
			return apierrors.Internal(c, err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusOK, activities)
}

// resolveStatusID maps a status name to its id; unknown names resolve to nil.
func (h *ActivityHandler) resolveStatusID(c echo.Context, name *string) (*int, error) {
	if name == nil || *name == "" {
		return nil, nil
	}
	var id int
	err := h.db.QueryRowContext(c.Request().Context(),
		"SELECT id FROM activity_statuses WHERE status_name = $1", *name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// Create inserts an activity. The code comes from a dedicated sequence.
func (h *ActivityHandler) Create(c echo.Context) error {
	var req models.CreateActivityRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Invalid request body")
	}
	activityType := "Callback"
	if req.ActivityType != nil && *req.ActivityType != "" {
		activityType = *req.ActivityType
	}
	priority := "Medium"
	if req.Priority != nil && *req.Priority != "" {
		priority = *req.Priority
	}
	statusName := "Open"
	if req.Status != nil && *req.Status != "" {
		statusName = *req.Status
	}

	statusID, err := h.resolveStatusID(c, &statusName)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	if statusID == nil {
		return apierrors.BadRequest(c, "Invalid status")
	}

	var a models.Activity
	err = h.db.QueryRowContext(c.Request().Context(),
		`INSERT INTO tallac_activities (
			name, activity_type, title, status_id, priority, scheduled_date,
			scheduled_time, assigned_to_id, created_by_id, description,
			reference_doctype, reference_docname, contact_person_id, organization_id
		) VALUES (
			'TACT-' || lpad(nextval('tallac_activity_code_seq')::text, 5, '0'),
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		RETURNING `+stripAlias(activityColumns, "a."),
		activityType, req.Title, statusID, priority, req.ScheduledDate,
		req.ScheduledTime, req.AssignedToID, req.CreatedByID, req.Description,
		req.ReferenceDoctype, req.ReferenceDocname, req.ContactPersonID, req.OrganizationID,
	).Scan(activityDests(&a)...)
	if err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusCreated, a)
}

// activityUpdateColumns is the allow-listed patch surface of an activity.
var activityUpdateColumns = map[string]struct{}{
	"activity_type":     {},
	"title":             {},
	"status_id":         {},
	"priority":          {},
	"scheduled_date":    {},
	"scheduled_time":    {},
	"assigned_to_id":    {},
	"description":       {},
	"reference_doctype": {},
	"reference_docname": {},
	"contact_person_id": {},
	"organization_id":   {},
	"completed_on":      {},
}

// Update patches an activity by id or code. A "status" name in the body is
// resolved to its status_id first.
func (h *ActivityHandler) Update(c echo.Context) error {
	id := c.Param("id")

	var body map[string]any
	if err := c.Bind(&body); err != nil {
		return apierrors.BadRequest(c, "Invalid request body")
	}

	if raw, ok := body["status"]; ok {
		if name, ok := raw.(string); ok && name != "" {
			statusID, err := h.resolveStatusID(c, &name)
			if err != nil {
				return apierrors.Internal(c, err)
			}
			if statusID != nil {
				body["status_id"] = *statusID
				if name == "Completed" {
					body["completed_on"] = time.Now().UTC()
				}
			}
		}
		delete(body, "status")
	}

	assignments, values := buildPatch(body, activityUpdateColumns, 1)
	if len(assignments) == 0 {
		return apierrors.BadRequest(c, "No fields to update")
	}

	assignments = append(assignments, "updated_at = CURRENT_TIMESTAMP")
	values = append(values, id)

	query := fmt.Sprintf(
		`UPDATE tallac_activities SET %s WHERE id::text = $%d OR name = $%d RETURNING %s`,
		strings.Join(assignments, ", "), len(values), len(values),
		stripAlias(activityColumns, "a."),
	)

	var a models.Activity
	err := h.db.QueryRowContext(c.Request().Context(), query, values...).Scan(activityDests(&a)...)
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(c, "Activity not found")
	}
	if err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusOK, a)
}

// Delete removes an activity by id or code.
func (h *ActivityHandler) Delete(c echo.Context) error {
	id := c.Param("id")

	result, err := h.db.ExecContext(c.Request().Context(),
		"DELETE FROM tallac_activities WHERE id::text = $1 OR name = $1", id)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierrors.Internal(c, err)
	}
	if affected == 0 {
		return apierrors.NotFound(c, "Activity not found")
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Activity deleted successfully",
	})
}

// parseActivityTypes accepts the activity_types query parameter either as
// a JSON array string or as a comma-separated list.
func parseActivityTypes(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(strings.TrimSpace(raw), "[") {
		var types []string
		if err := json.Unmarshal([]byte(raw), &types); err != nil {
			return nil, err
		}
		return types, nil
	}
	parts := strings.Split(raw, ",")
	types := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			types = append(types, t)
		}
	}
	return types, nil
}

// timelineEntry pairs an item with its effective sort date.
type timelineEntry struct {
	date *time.Time
	item any
}

// sortTimeline orders entries newest first. Entries without a usable date
// sink to the end; ties keep their relative order.
func sortTimeline(entries []timelineEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].date, entries[j].date
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
}

// Timeline returns the merged activity/call/note history of one reference
// document, newest first.
func (h *ActivityHandler) Timeline(c echo.Context) error {
	doctype := c.QueryParam("reference_doctype")
	docname := c.QueryParam("reference_docname")
	if doctype == "" || docname == "" {
		return apierrors.BadRequest(c, "reference_doctype and reference_docname are required")
	}

	types, err := parseActivityTypes(c.QueryParam("activity_types"))
	if err != nil {
		return apierrors.BadRequest(c, "Invalid activity_types format")
	}

	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &limit); err != nil || limit <= 0 {
			limit = 100
		}
	}

	ctx := c.Request().Context()
	var entries []timelineEntry

	// activity_types picks which record kinds to merge; absent means all.
	wanted := func(kind string) bool {
		if len(types) == 0 {
			return true
		}
		for _, t := range types {
			if t == kind {
				return true
			}
		}
		return false
	}

	if wanted("activity") {
		query := fmt.Sprintf(`SELECT %s,
			s.status_name,
			u.full_name AS assigned_to_name,
			u2.full_name AS created_by_name
		FROM tallac_activities a
		LEFT JOIN activity_statuses s ON a.status_id = s.id
		LEFT JOIN users u ON a.assigned_to_id = u.id
		LEFT JOIN users u2 ON a.created_by_id = u2.id
		WHERE a.reference_doctype = $1 AND a.reference_docname = $2
		ORDER BY a.scheduled_date DESC, a.scheduled_time DESC
		LIMIT $3`, activityColumns)

		rows, err := h.db.QueryContext(ctx, query, doctype, docname, limit)
		if err != nil {
			return apierrors.Internal(c, err)
		}
		for rows.Next() {
			var a models.Activity
			dests := append(activityDests(&a), &a.StatusName, &a.AssignedToName, &a.CreatedByName)
			if err := rows.Scan(dests...); err != nil {
				rows.Close()
				return apierrors.Internal(c, err)
			}
			a.TimelineType = "activity"
			if a.ScheduledDate != nil {
				a.DisplayDate = a.ScheduledDate
			} else {
				created := a.CreatedAt
				a.DisplayDate = &created
			}
			entries = append(entries, timelineEntry{date: a.DisplayDate, item: a})
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return apierrors.Internal(c, err)
		}
		rows.Close()
	}

	if wanted("call_log") {
		rows, err := h.db.QueryContext(ctx,
			`SELECT cl.id, cl.name, cl.call_type, cl.call_status_id, cl.call_date,
				cl.call_time, cl.call_outcome, cl.handled_by_id, cl.caller_number,
				cl.receiver_number, cl.call_duration, cl.call_summary,
				cl.reference_doctype, cl.reference_docname, cl.contact_person_id,
				cl.organization_id, cl.created_at,
				cs.status_name AS call_status_name,
				u.full_name AS handled_by_name
			FROM tallac_call_logs cl
			LEFT JOIN call_statuses cs ON cl.call_status_id = cs.id
			LEFT JOIN users u ON cl.handled_by_id = u.id
			WHERE cl.reference_doctype = $1 AND cl.reference_docname = $2
			ORDER BY cl.call_date DESC, cl.call_time DESC
			LIMIT $3`, doctype, docname, limit)
		if err != nil {
			return apierrors.Internal(c, err)
		}
		for rows.Next() {
			var cl models.CallLog
			if err := rows.Scan(
				&cl.ID, &cl.Name, &cl.CallType, &cl.CallStatusID, &cl.CallDate,
				&cl.CallTime, &cl.CallOutcome, &cl.HandledByID, &cl.CallerNumber,
				&cl.ReceiverNumber, &cl.CallDuration, &cl.CallSummary,
				&cl.ReferenceDoctype, &cl.ReferenceDocname, &cl.ContactPersonID,
				&cl.OrganizationID, &cl.CreatedAt,
				&cl.CallStatusName, &cl.HandledByName,
			); err != nil {
				rows.Close()
				return apierrors.Internal(c, err)
			}
			cl.TimelineType = "call_log"
			if cl.CallDate != nil {
				cl.DisplayDate = cl.CallDate
			} else {
				created := cl.CreatedAt
				cl.DisplayDate = &created
			}
			entries = append(entries, timelineEntry{date: cl.DisplayDate, item: cl})
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return apierrors.Internal(c, err)
		}
		rows.Close()
	}

	if wanted("note") {
		rows, err := h.db.QueryContext(ctx,
			`SELECT n.id, n.title, n.content, n.reference_doctype, n.reference_docname,
				n.created_by_id, n.created_at, n.updated_at,
				u.full_name AS created_by_name
			FROM tallac_notes n
			LEFT JOIN users u ON n.created_by_id = u.id
			WHERE n.reference_doctype = $1 AND n.reference_docname = $2
			ORDER BY n.created_at DESC
			LIMIT $3`, doctype, docname, limit)
		if err != nil {
			return apierrors.Internal(c, err)
		}
		for rows.Next() {
			var n models.Note
			if err := rows.Scan(
				&n.ID, &n.Title, &n.Content, &n.ReferenceDoctype, &n.ReferenceDocname,
				&n.CreatedByID, &n.CreatedAt, &n.UpdatedAt, &n.CreatedByName,
			); err != nil {
				rows.Close()
				return apierrors.Internal(c, err)
			}
			n.TimelineType = "note"
			created := n.CreatedAt
			n.DisplayDate = &created
			entries = append(entries, timelineEntry{date: n.DisplayDate, item: n})
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return apierrors.Internal(c, err)
		}
		rows.Close()
	}

	sortTimeline(entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}

	items := make([]any, len(entries))
	for i, e := range entries {
		items[i] = e.item
	}

	return c.JSON(http.StatusOK, items)
}

// CreateNote inserts a note attached to a reference document.
func (h *ActivityHandler) CreateNote(c echo.Context) error {
	var req struct {
		Title            *string `json:"title"`
		Content          *string `json:"content"`
		ReferenceDoctype *string `json:"reference_doctype"`
		ReferenceDocname *string `json:"reference_docname"`
		CreatedByID      *int    `json:"created_by_id"`
	}
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Invalid request body")
	}
	if req.Content == nil || *req.Content == "" {
		return apierrors.BadRequest(c, "content is required")
	}

	var n models.Note
	err := h.db.QueryRowContext(c.Request().Context(),
		`INSERT INTO tallac_notes (title, content, reference_doctype, reference_docname, created_by_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, title, content, reference_doctype, reference_docname,
			created_by_id, created_at, updated_at`,
		req.Title, req.Content, req.ReferenceDoctype, req.ReferenceDocname, req.CreatedByID,
	).Scan(&n.ID, &n.Title, &n.Content, &n.ReferenceDoctype, &n.ReferenceDocname,
		&n.CreatedByID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusCreated, n)
}

// CreateCallLog inserts a call log attached to a reference document.
func (h *ActivityHandler) CreateCallLog(c echo.Context) error {
	var req struct {
		CallType         *string `json:"call_type"`
		CallStatus       *string `json:"call_status"`
		CallDate         *string `json:"call_date"`
		CallTime         *string `json:"call_time"`
		CallOutcome      *string `json:"call_outcome"`
		HandledByID      *int    `json:"handled_by_id"`
		CallerNumber     *string `json:"caller_number"`
		ReceiverNumber   *string `json:"receiver_number"`
		CallDuration     *int    `json:"call_duration"`
		CallSummary      *string `json:"call_summary"`
		ReferenceDoctype *string `json:"reference_doctype"`
		ReferenceDocname *string `json:"reference_docname"`
		ContactPersonID  *int    `json:"contact_person_id"`
		OrganizationID   *int    `json:"organization_id"`
	}
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Invalid request body")
	}

	var callStatusID *int
	if req.CallStatus != nil && *req.CallStatus != "" {
		var id int
		err := h.db.QueryRowContext(c.Request().Context(),
			"SELECT id FROM call_statuses WHERE status_name = $1", *req.CallStatus).Scan(&id)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return apierrors.Internal(c, err)
		}
		if err == nil {
			callStatusID = &id
		}
	}

	var cl models.CallLog
	err := h.db.QueryRowContext(c.Request().Context(),
		`INSERT INTO tallac_call_logs (
			name, call_type, call_status_id, call_date, call_time, call_outcome,
			handled_by_id, caller_number, receiver_number, call_duration,
			call_summary, reference_doctype, reference_docname,
			contact_person_id, organization_id
		) VALUES (
			'TCALL-' || lpad(nextval('tallac_activity_code_seq')::text, 5, '0'),
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
		RETURNING id, name, call_type, call_status_id, call_date, call_time,
			call_outcome, handled_by_id, caller_number, receiver_number,
			call_duration, call_summary, reference_doctype, reference_docname,
			contact_person_id, organization_id, created_at`,
		req.CallType, callStatusID, req.CallDate, req.CallTime, req.CallOutcome,
		req.HandledByID, req.CallerNumber, req.ReceiverNumber, req.CallDuration,
		req.CallSummary, req.ReferenceDoctype, req.ReferenceDocname,
		req.ContactPersonID, req.OrganizationID,
	).Scan(&cl.ID, &cl.Name, &cl.CallType, &cl.CallStatusID, &cl.CallDate,
		&cl.CallTime, &cl.CallOutcome, &cl.HandledByID, &cl.CallerNumber,
		&cl.ReceiverNumber, &cl.CallDuration, &cl.CallSummary,
		&cl.ReferenceDoctype, &cl.ReferenceDocname, &cl.ContactPersonID,
		&cl.OrganizationID, &cl.CreatedAt)
	if err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusCreated, cl)
}
