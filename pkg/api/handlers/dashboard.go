package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	apierrors "github.com/tallacworks/titan-crm/pkg/api/errors"
	"github.com/tallacworks/titan-crm/pkg/models"
)

// DashboardHandler serves the aggregate dashboard view.
type DashboardHandler struct {
	db *sql.DB
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(db *sql.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

const territoryScope = " AND territory_id = (SELECT id FROM tallac_territories WHERE territory_name = $1)"

// Stats computes the dashboard KPIs, pipeline buckets and activity
// breakdown. Lead counts are optionally scoped to one territory by name.
func (h *DashboardHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	territory := c.QueryParam("territory")

	var stats models.DashboardStats

	leadsQuery := "SELECT COUNT(*) FROM tallac_leads WHERE 1=1"
	var leadParams []any
	if territory != "" {
		leadsQuery += territoryScope
		leadParams = append(leadParams, territory)
	}
	if err := h.db.QueryRowContext(ctx, leadsQuery, leadParams...).Scan(&stats.KPIs.TotalProspects); err != nil {
		return apierrors.Internal(c, err)
	}

	if err := h.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tallac_activities").Scan(&stats.KPIs.TotalActivities); err != nil {
		return apierrors.Internal(c, err)
	}
	if err := h.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE is_active = TRUE").Scan(&stats.KPIs.ActiveUsers); err != nil {
		return apierrors.Internal(c, err)
	}

	pipelineQuery := "SELECT status, COUNT(*) FROM tallac_leads WHERE 1=1"
	if territory != "" {
		pipelineQuery += territoryScope
	}
	pipelineQuery += " GROUP BY status"

	rows, err := h.db.QueryContext(ctx, pipelineQuery, leadParams...)
	if err != nil {
		return apierrors.Internal(c, err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return apierrors.Internal(c, err)
		}
		switch strings.ToLower(status) {
		case "new":
			stats.Pipeline.New = count
		case "contacted":
			stats.Pipeline.Contacted = count
		case "interested":
			stats.Pipeline.Interested = count
		case "proposal":
			stats.Pipeline.Proposal = count
		case "closed won", "won":
			stats.Pipeline.Won = count
		case "closed lost", "lost":
			stats.Pipeline.Lost = count
		}
	}
	if err := rows.Err(); err != nil {
		return apierrors.Internal(c, err)
	}

	if stats.KPIs.TotalProspects > 0 {
		stats.KPIs.ConversionRate = stats.Pipeline.Won * 100 / stats.KPIs.TotalProspects
	}

	err = h.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM tallac_activities a
			LEFT JOIN activity_statuses s ON a.status_id = s.id
			WHERE s.status_name IN ('Open', 'In Progress') AND a.scheduled_date < CURRENT_DATE),
		(SELECT COUNT(*) FROM tallac_activities a
			LEFT JOIN activity_statuses s ON a.status_id = s.id
			WHERE s.status_name IN ('Open', 'In Progress') AND a.scheduled_date >= CURRENT_DATE),
		(SELECT COUNT(*) FROM tallac_activities a
			LEFT JOIN activity_statuses s ON a.status_id = s.id
			WHERE s.status_name = 'Completed' AND a.completed_on::date = CURRENT_DATE)`,
	).Scan(&stats.ActivityBreakdown.Queue, &stats.ActivityBreakdown.Scheduled,
		&stats.ActivityBreakdown.CompletedToday)
	if err != nil {
		return apierrors.Internal(c, err)
	}

	return c.JSON(http.StatusOK, stats)
}
