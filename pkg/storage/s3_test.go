package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKey(t *testing.T) {
	t.Run("keeps_extension", func(t *testing.T) {
		key := GenerateKey("Q3 Playbook.pdf")
		assert.True(t, strings.HasPrefix(key, "knowledge-base/"))
		assert.True(t, strings.HasSuffix(key, ".pdf"))
	})

	t.Run("no_extension", func(t *testing.T) {
		key := GenerateKey("README")
		assert.True(t, strings.HasPrefix(key, "knowledge-base/"))
		assert.NotContains(t, key, ".")
	})

	t.Run("keys_are_unique", func(t *testing.T) {
		assert.NotEqual(t, GenerateKey("a.pdf"), GenerateKey("a.pdf"))
	})
}

func TestPublicURL(t *testing.T) {
	s := &S3Store{bucket: "tallac-kb", region: "us-west-2"}
	url := s.PublicURL("knowledge-base/123-abc.pdf")
	assert.Equal(t, "https://tallac-kb.s3.us-west-2.amazonaws.com/knowledge-base/123-abc.pdf", url)
}

func TestKeyFromURL(t *testing.T) {
	t.Run("full_url", func(t *testing.T) {
		key := KeyFromURL("https://tallac-kb.s3.us-west-2.amazonaws.com/knowledge-base/123-abc.pdf")
		assert.Equal(t, "knowledge-base/123-abc.pdf", key)
	})

	t.Run("bare_key_passes_through", func(t *testing.T) {
		key := KeyFromURL("knowledge-base/123-abc.pdf")
		assert.Equal(t, "knowledge-base/123-abc.pdf", key)
	})
}
