package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("verifies_with_original", func(t *testing.T) {
		hash, err := HashPassword("hunter2!")
		require.NoError(t, err)
		assert.NotEqual(t, "hunter2!", hash)
		assert.True(t, CheckPassword(hash, "hunter2!"))
	})

	t.Run("hashes_are_salted", func(t *testing.T) {
		h1, err := HashPassword("same-password")
		require.NoError(t, err)
		h2, err := HashPassword("same-password")
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
	})
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword(DefaultPassword)
	require.NoError(t, err)

	t.Run("default_password", func(t *testing.T) {
		assert.True(t, CheckPassword(hash, DefaultPassword))
	})

	t.Run("wrong_password", func(t *testing.T) {
		assert.False(t, CheckPassword(hash, "wrong"))
	})

	t.Run("garbage_hash", func(t *testing.T) {
		assert.False(t, CheckPassword("not-a-bcrypt-hash", "anything"))
	})
}
