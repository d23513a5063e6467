package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tallacworks/titan-crm/pkg/models"
)

func TestBuildLeadListQuery(t *testing.T) {
	t.Run("no_filters_defaults", func(t *testing.T) {
		query, params := buildLeadListQuery(models.LeadListFilters{})

		assert.Contains(t, query, "FROM tallac_leads l")
		assert.Contains(t, query, "ORDER BY l.updated_at DESC LIMIT $1 OFFSET $2")
		assert.Equal(t, []any{1000, 0}, params)
		assert.NotContains(t, query, "LOWER(l.status)")
	})

	t.Run("status_alias_resolution", func(t *testing.T) {
		query, params := buildLeadListQuery(models.LeadListFilters{StatusFilter: "won"})

		assert.Contains(t, query, "LOWER(l.status) = LOWER($1)")
		assert.Equal(t, "Closed Won", params[0])
	})

	t.Run("all_status_is_no_filter", func(t *testing.T) {
		query, _ := buildLeadListQuery(models.LeadListFilters{StatusFilter: "all"})
		assert.NotContains(t, query, "LOWER(l.status)")
	})

	t.Run("queue_uses_derived_expression", func(t *testing.T) {
		query, params := buildLeadListQuery(models.LeadListFilters{StatusFilter: "queue"})

		assert.Contains(t, query, "IN ('overdue', 'today')")
		assert.Equal(t, []any{1000, 0}, params)
	})

	t.Run("scheduled_uses_derived_expression", func(t *testing.T) {
		query, _ := buildLeadListQuery(models.LeadListFilters{StatusFilter: "scheduled"})
		assert.Contains(t, query, "= 'scheduled'")
	})

	t.Run("territory_by_name", func(t *testing.T) {
		query, params := buildLeadListQuery(models.LeadListFilters{Territory: "North Valley"})

		assert.Contains(t, query, "l.territory_id = (SELECT id FROM tallac_territories WHERE territory_name = $1)")
		assert.Equal(t, "North Valley", params[0])
	})

	t.Run("unassigned_owner", func(t *testing.T) {
		query, params := buildLeadListQuery(models.LeadListFilters{Owner: "Unassigned"})

		assert.Contains(t, query, "(l.lead_owner_id IS NULL OR u2.full_name = 'Administrator')")
		assert.Equal(t, []any{1000, 0}, params)
	})

	t.Run("named_owner", func(t *testing.T) {
		query, params := buildLeadListQuery(models.LeadListFilters{Owner: "Pat Jones"})

		assert.Contains(t, query, "u2.full_name = $1")
		assert.Equal(t, "Pat Jones", params[0])
	})

	t.Run("search_text_wildcards", func(t *testing.T) {
		query, params := buildLeadListQuery(models.LeadListFilters{SearchText: "acme"})

		assert.Contains(t, query, "l.company_name ILIKE $1")
		assert.Contains(t, query, "l.primary_contact_name ILIKE $1")
		assert.Contains(t, query, "l.primary_email ILIKE $1")
		assert.Equal(t, "%acme%", params[0])
	})

	t.Run("combined_filters_number_placeholders_in_order", func(t *testing.T) {
		query, params := buildLeadListQuery(models.LeadListFilters{
			StatusFilter: "contacted",
			Territory:    "North Valley",
			Industry:     "Trucking",
			Owner:        "Pat Jones",
			SearchText:   "haul",
			Limit:        25,
			Start:        50,
		})

		assert.Equal(t, []any{"Contacted", "North Valley", "Trucking", "Pat Jones", "%haul%", 25, 50}, params)
		assert.Contains(t, query, "LIMIT $6 OFFSET $7")
	})

	t.Run("selects_queue_columns", func(t *testing.T) {
		query, _ := buildLeadListQuery(models.LeadListFilters{})
		assert.Contains(t, query, "AS queue_status")
		assert.Contains(t, query, "AS queue_message")
	})
}

func TestApplyAliases(t *testing.T) {
	contact := "Pat Jones"
	title := "Fleet Manager"
	email := "pat@acme.com"
	phone := "555-0100"
	owner := "Dana Smith"
	territory := "North Valley"

	l := models.Lead{
		PrimaryContactName: &contact,
		PrimaryTitle:       &title,
		PrimaryEmail:       &email,
		PrimaryPhone:       &phone,
		LeadOwnerName:      &owner,
		TerritoryName:      &territory,
	}
	applyAliases(&l)

	assert.Equal(t, &contact, l.LeadName)
	assert.Equal(t, &title, l.Title)
	assert.Equal(t, &email, l.EmailID)
	assert.Equal(t, &phone, l.Phone)
	assert.Equal(t, &owner, l.LeadOwner)
	assert.Equal(t, &territory, l.Territory)
}

func TestLeadUpdateColumns(t *testing.T) {
	t.Run("identity_columns_not_patchable", func(t *testing.T) {
		for _, col := range []string{"id", "name", "created_at", "updated_at"} {
			_, ok := leadUpdateColumns[col]
			assert.False(t, ok, col)
		}
	})

	t.Run("callback_fields_patchable", func(t *testing.T) {
		for _, col := range []string{"callback_date", "callback_time", "status"} {
			_, ok := leadUpdateColumns[col]
			assert.True(t, ok, col)
		}
	})
}

func TestLeadBaseColumnsMatchDests(t *testing.T) {
	var l models.Lead
	count := len(strings.Split(leadBaseColumns, ","))
	assert.Equal(t, count, len(leadBaseDests(&l)))
}
