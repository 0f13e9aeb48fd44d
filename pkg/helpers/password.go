package helpers

import "golang.org/x/crypto/bcrypt"

// bcrypt only looks at the first 72 bytes; longer inputs are cut to match.
const bcryptMaxBytes = 72

func truncatePassword(plain string) []byte {
	b := []byte(plain)
	if len(b) > bcryptMaxBytes {
		b = b[:bcryptMaxBytes]
	}
	return b
}

// HashPassword hashes the plain text password using bcrypt
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(truncatePassword(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncatePassword(plain)) == nil
}
