package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActivityTypes(t *testing.T) {
	t.Run("json_array", func(t *testing.T) {
		types, err := parseActivityTypes(`["Call","Email"]`)
		require.NoError(t, err)
		assert.Equal(t, []string{"Call", "Email"}, types)
	})

	t.Run("comma_separated", func(t *testing.T) {
		types, err := parseActivityTypes("Call, Email ,Task")
		require.NoError(t, err)
		assert.Equal(t, []string{"Call", "Email", "Task"}, types)
	})

	t.Run("empty", func(t *testing.T) {
		types, err := parseActivityTypes("")
		require.NoError(t, err)
		assert.Nil(t, types)
	})

	t.Run("malformed_json", func(t *testing.T) {
		_, err := parseActivityTypes(`["Call"`)
		assert.Error(t, err)
	})
}

func datePtr(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return &parsed
}

func TestSortTimeline(t *testing.T) {
	t.Run("newest_first", func(t *testing.T) {
		entries := []timelineEntry{
			{date: datePtr(t, "2025-01-01"), item: "old"},
			{date: datePtr(t, "2025-06-01"), item: "new"},
			{date: datePtr(t, "2025-03-01"), item: "mid"},
		}
		sortTimeline(entries)

		assert.Equal(t, "new", entries[0].item)
		assert.Equal(t, "mid", entries[1].item)
		assert.Equal(t, "old", entries[2].item)
	})

	t.Run("nil_dates_sink_to_end", func(t *testing.T) {
		entries := []timelineEntry{
			{date: nil, item: "undated"},
			{date: datePtr(t, "2025-06-01"), item: "dated"},
		}
		sortTimeline(entries)

		assert.Equal(t, "dated", entries[0].item)
		assert.Equal(t, "undated", entries[1].item)
	})

	t.Run("ties_keep_relative_order", func(t *testing.T) {
		same := datePtr(t, "2025-06-01")
		entries := []timelineEntry{
			{date: same, item: "first"},
			{date: same, item: "second"},
			{date: same, item: "third"},
		}
		sortTimeline(entries)

		assert.Equal(t, "first", entries[0].item)
		assert.Equal(t, "second", entries[1].item)
		assert.Equal(t, "third", entries[2].item)
	})

	t.Run("all_nil_stays_stable", func(t *testing.T) {
		entries := []timelineEntry{
			{date: nil, item: "a"},
			{date: nil, item: "b"},
		}
		sortTimeline(entries)

		assert.Equal(t, "a", entries[0].item)
		assert.Equal(t, "b", entries[1].item)
	})
}

func TestActivityUpdateColumns(t *testing.T) {
	for _, col := range []string{"id", "name", "created_at", "created_by_id"} {
		_, ok := activityUpdateColumns[col]
		assert.False(t, ok, col)
	}
	for _, col := range []string{"status_id", "completed_on", "scheduled_date"} {
		_, ok := activityUpdateColumns[col]
		assert.True(t, ok, col)
	}
}
