package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	t.Run("debug_suppressed_at_info", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, "info")
		log.Debug("hidden")
		log.Info("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("unknown_level_falls_back_to_info", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, "loud")
		log.Debug("hidden")
		log.Warn("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("level_name_case_insensitive", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, " DEBUG ")
		log.Debug("shown")
		assert.Contains(t, buf.String(), "shown")
	})
}

func TestWithAttachesAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info").With("component", "knowledge-base")
	log.Warn("object delete failed", "file_path", "kb/a.pdf")

	var record map[string]any
	line := strings.TrimSpace(buf.String())
	require.NoError(t, json.Unmarshal([]byte(line), &record))
	assert.Equal(t, "knowledge-base", record["component"])
	assert.Equal(t, "kb/a.pdf", record["file_path"])
	assert.Equal(t, "WARN", record["level"])
}
