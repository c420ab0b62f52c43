package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 10

// maxBcryptInput is the longest input bcrypt accepts.
const maxBcryptInput = 72

// PasswordHasher hashes and verifies passwords with bcrypt. Every hash carries
// its own random salt, so equal passwords never produce equal hashes.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher with the given work factor. Costs below
// bcrypt.MinCost fall back to DefaultBcryptCost.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost {
		cost = DefaultBcryptCost
	}
	if cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d exceeds maximum %d", cost, bcrypt.MaxCost)
	}
	return &PasswordHasher{cost: cost}, nil
}

// Cost returns the configured work factor.
func (h *PasswordHasher) Cost() int {
	return h.cost
}

// Hash returns the salted bcrypt hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(bcryptInput(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash.
func (h *PasswordHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password)) == nil
}

// bcryptInput returns password as is when bcrypt can take it whole. Longer
// passwords are reduced to the base64 SHA-256 digest so every byte counts.
func bcryptInput(password string) []byte {
	if len(password) <= maxBcryptInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
