package password

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a salted bcrypt digest. Two calls over the same
// plaintext yield different digests.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPasswordHash reports whether the plaintext reproduces the digest.
// Malformed digests verify as false rather than erroring out.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
