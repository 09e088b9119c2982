package session

import "golang.org/x/crypto/bcrypt"

// Hasher is the one-way password capability used by registration and login.
type Hasher interface {
	// Hash derives a storable hash from the plaintext password.
	Hash(plaintext string) (string, error)

	// Verify reports whether the plaintext matches the stored hash.
	Verify(hash, plaintext string) bool
}

// BcryptHasher implements Hasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt hasher. A cost of 0 selects the bcrypt
// default cost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash implements Hasher.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify implements Hasher.
func (h *BcryptHasher) Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
