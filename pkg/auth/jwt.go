package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the session token claims. PasswordChangeRequired is
// resolved at login time and frozen into the token.
type Claims struct {
	UserID                 int    `json:"user_id"`
	Email                  string `json:"email"`
	Role                   string `json:"role"`
	PasswordChangeRequired bool   `json:"password_change_required"`
	jwt.RegisteredClaims
}

// GenerateJWT generates a new session token valid for expirationDays.
func GenerateJWT(userID int, email, role string, passwordChangeRequired bool, secret string, expirationDays int) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:                 userID,
		Email:                  email,
		Role:                   role,
		PasswordChangeRequired: passwordChangeRequired,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour * time.Duration(expirationDays))),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateJWT validates a session token and returns its claims.
func ValidateJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
