package handlers

import (
	"fmt"
	"sort"
	"strings"
)

// Pipeline role names used by the role-gated routes.
const (
	RoleCorporateAdmin   = "Corporate Admin"
	RoleTerritoryAdmin   = "Territory Admin"
	RoleTerritoryManager = "Territory Manager"
	RoleSalesUser        = "Sales User"
)

// statusAliases maps the lowercase filter vocabulary to the canonical
// pipeline status values stored on leads.
var statusAliases = map[string]string{
	"new":        "New",
	"contacted":  "Contacted",
	"interested": "Interested",
	"proposal":   "Proposal",
	"won":        "Closed Won",
	"lost":       "Closed Lost",
}

// canonicalStatus resolves a status filter value through the alias table,
// passing unknown values through unchanged.
func canonicalStatus(status string) string {
	if mapped, ok := statusAliases[strings.ToLower(status)]; ok {
		return mapped
	}
	return status
}

// queueStatusExpr derives a lead's queue status from its callback date at
// query time. The value is a read-only view and is never persisted.
const queueStatusExpr = `CASE
	WHEN l.callback_date < CURRENT_DATE THEN 'overdue'
	WHEN l.callback_date = CURRENT_DATE THEN 'today'
	WHEN l.callback_date > CURRENT_DATE THEN 'scheduled'
	ELSE 'none'
END`

// queueMessageExpr is the human-readable companion of queueStatusExpr.
const queueMessageExpr = `CASE
	WHEN l.callback_date < CURRENT_DATE THEN 'Overdue: Action required'
	WHEN l.callback_date = CURRENT_DATE THEN 'Due Today: Action required'
	WHEN l.callback_date > CURRENT_DATE THEN 'Scheduled: ' || l.callback_date::text
	ELSE NULL
END`

// stripAlias removes a table alias prefix from a column list so the same
// list serves both aliased SELECTs and RETURNING clauses.
func stripAlias(columns, alias string) string {
	return strings.ReplaceAll(columns, alias, "")
}

// buildPatch turns a request body into "col = $n" assignments restricted to
// an allow-listed column set. Keys outside the allowlist are dropped, which
// closes the mass-assignment hole of patching arbitrary columns. Assignments
// come out in stable (sorted) order so tests and query plans are
// deterministic. startIndex is the first placeholder ordinal to use.
func buildPatch(body map[string]any, allowed map[string]struct{}, startIndex int) ([]string, []any) {
	keys := make([]string, 0, len(body))
	for key := range body {
		if _, ok := allowed[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	assignments := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for i, key := range keys {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", key, startIndex+i))
		args = append(args, body[key])
	}
	return assignments, args
}
