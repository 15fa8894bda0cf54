// Package password provides the one-way password hashing primitive used by
// the auth flow. Hashes are opaque to the rest of the system; nothing outside
// this package inspects or compares them directly.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes plaintext passwords and verifies them against stored hashes.
type Hasher interface {
	// Hash returns a salted one-way hash of the plaintext.
	Hash(plaintext string) (string, error)
	// Verify reports whether the plaintext matches the hash. A malformed
	// hash is treated as a mismatch, never an error.
	Verify(plaintext, hash string) bool
}

// BcryptHasher implements Hasher using bcrypt, a deliberately slow adaptive
// scheme. Each call salts independently, so hashing the same password twice
// yields different strings.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt hasher with the given cost. A cost of 0
// uses bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt hash of the plaintext
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify compares the plaintext against the stored hash
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
