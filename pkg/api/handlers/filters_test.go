package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalStatus(t *testing.T) {
	cases := map[string]string{
		"new":        "New",
		"NEW":        "New",
		"contacted":  "Contacted",
		"interested": "Interested",
		"proposal":   "Proposal",
		"won":        "Closed Won",
		"Won":        "Closed Won",
		"lost":       "Closed Lost",
		"Qualified":  "Qualified",
		"":           "",
	}
	for input, want := range cases {
		assert.Equal(t, want, canonicalStatus(input), "input %q", input)
	}
}

func TestBuildPatch(t *testing.T) {
	allowed := map[string]struct{}{
		"status": {},
		"city":   {},
	}

	t.Run("drops_disallowed_keys", func(t *testing.T) {
		assignments, args := buildPatch(map[string]any{
			"status":     "Contacted",
			"id":         99,
			"created_at": "2020-01-01",
		}, allowed, 1)

		assert.Equal(t, []string{"status = $1"}, assignments)
		assert.Equal(t, []any{"Contacted"}, args)
	})

	t.Run("sorted_deterministic_order", func(t *testing.T) {
		assignments, args := buildPatch(map[string]any{
			"status": "New",
			"city":   "Reno",
		}, allowed, 1)

		assert.Equal(t, []string{"city = $1", "status = $2"}, assignments)
		assert.Equal(t, []any{"Reno", "New"}, args)
	})

	t.Run("respects_start_index", func(t *testing.T) {
		assignments, _ := buildPatch(map[string]any{"city": "Reno"}, allowed, 5)
		assert.Equal(t, []string{"city = $5"}, assignments)
	})

	t.Run("empty_body", func(t *testing.T) {
		assignments, args := buildPatch(map[string]any{}, allowed, 1)
		assert.Empty(t, assignments)
		assert.Empty(t, args)
	})

	t.Run("null_values_pass_through", func(t *testing.T) {
		assignments, args := buildPatch(map[string]any{"city": nil}, allowed, 1)
		assert.Equal(t, []string{"city = $1"}, assignments)
		assert.Equal(t, []any{nil}, args)
	})
}

func TestStripAlias(t *testing.T) {
	assert.Equal(t, "id, name, company_name", stripAlias("l.id, l.name, l.company_name", "l."))
}
