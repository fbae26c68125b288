package security

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a salted bcrypt digest. Each call salts independently,
// so hashing the same password twice yields different strings that both verify.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash reports whether password matches the stored digest.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
