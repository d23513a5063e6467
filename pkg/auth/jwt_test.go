package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestGenerateJWT(t *testing.T) {
	t.Run("round_trip", func(t *testing.T) {
		token, err := GenerateJWT(42, "rep@tallacworks.com", "Sales User", false, testSecret, 7)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := ValidateJWT(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, 42, claims.UserID)
		assert.Equal(t, "rep@tallacworks.com", claims.Email)
		assert.Equal(t, "Sales User", claims.Role)
		assert.False(t, claims.PasswordChangeRequired)
	})

	t.Run("carries_password_change_flag", func(t *testing.T) {
		token, err := GenerateJWT(7, "new@tallacworks.com", "Territory Manager", true, testSecret, 7)
		require.NoError(t, err)

		claims, err := ValidateJWT(token, testSecret)
		require.NoError(t, err)
		assert.True(t, claims.PasswordChangeRequired)
	})

	t.Run("expiry_days", func(t *testing.T) {
		token, err := GenerateJWT(1, "a@b.com", "Sales User", false, testSecret, 7)
		require.NoError(t, err)

		claims, err := ValidateJWT(token, testSecret)
		require.NoError(t, err)

		expected := time.Now().Add(7 * 24 * time.Hour)
		assert.WithinDuration(t, expected, claims.ExpiresAt.Time, time.Minute)
	})
}

func TestValidateJWT(t *testing.T) {
	t.Run("wrong_secret", func(t *testing.T) {
		token, err := GenerateJWT(1, "a@b.com", "Sales User", false, testSecret, 7)
		require.NoError(t, err)

		_, err = ValidateJWT(token, "another-secret")
		assert.Error(t, err)
	})

	t.Run("garbage_token", func(t *testing.T) {
		_, err := ValidateJWT("not.a.token", testSecret)
		assert.Error(t, err)
	})

	t.Run("expired_token", func(t *testing.T) {
		claims := &Claims{
			UserID: 1,
			Email:  "a@b.com",
			Role:   "Sales User",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = ValidateJWT(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("rejects_unexpected_signing_method", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = ValidateJWT(signed, testSecret)
		assert.Error(t, err)
	})
}
