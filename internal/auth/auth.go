package auth

import "golang.org/x/crypto/bcrypt"

// Cost is the bcrypt work factor used by HashPassword. Tests lower it to
// bcrypt.MinCost.
var Cost = 12

// MinPasswordLength is the shortest password accepted for an account.
const MinPasswordLength = 8

// HashPassword generates a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	return string(bytes), err
}

// CheckPasswordHash compares a plaintext password with a stored bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
