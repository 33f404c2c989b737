package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch means the stored hash is sound but the password is wrong.
var ErrPasswordMismatch = errors.New("password does not match")

// Hasher stores staff passwords as bcrypt hashes.
type Hasher struct {
	Cost int
}

func NewHasher(cost int) *Hasher {
	return &Hasher{Cost: clampCost(cost)}
}

func clampCost(cost int) int {
	switch {
	case cost <= 0:
		return bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		return bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		return bcrypt.MaxCost
	}
	return cost
}

func (h *Hasher) Hash(password []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", fmt.Errorf("hash staff password: %w", err)
	}
	return string(b), nil
}

// Compare returns ErrPasswordMismatch for a wrong password and a wrapped
// error when the stored hash itself is unreadable.
func (h *Hasher) Compare(hash string, password []byte) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), password)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("stored password hash: %w", err)
	}
}
