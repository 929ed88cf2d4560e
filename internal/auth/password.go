package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type VerifyResult int

const (
	VerifyFailed VerifyResult = iota
	VerifySuccess
	VerifySuccessRehash
)

// Hasher hashes and verifies passwords with bcrypt.
//
// The work factor is tuned upward over time as hardware improves. Verify
// reports VerifySuccessRehash when a matching hash was minted under a lower
// factor than the configured one, so callers can re-hash and persist the
// upgraded hash without the user noticing.
type Hasher struct {
	cost int
}

func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("auth: bcrypt cost must be in [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, cost)
	}
	return &Hasher{cost: cost}, nil
}

func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("auth: empty password")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify checks candidate against the stored hash.
// A malformed stored hash is a failed verification, not a fault; no error
// crosses this boundary.
func (h *Hasher) Verify(hash, candidate string) VerifyResult {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)); err != nil {
		return VerifyFailed
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err == nil && cost < h.cost {
		return VerifySuccessRehash
	}
	return VerifySuccess
}
