package auth

import "golang.org/x/crypto/bcrypt"

// DefaultPassword is the provisioning password assigned to admin-created
// accounts. Logging in with it forces a password change, and it is rejected
// as a new password.
const DefaultPassword = "12345"

// MinPasswordLength is the minimum accepted new-password length.
const MinPasswordLength = 6

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
