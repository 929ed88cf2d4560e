package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// Low costs keep these tests fast; the rehash contract only depends on the
// relative ordering of costs.

func TestHasher_HashAndVerify(t *testing.T) {
	h, err := NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}

	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if got := h.Verify(hash, "correct horse"); got != VerifySuccess {
		t.Fatalf("expected VerifySuccess, got %v", got)
	}
	if got := h.Verify(hash, "wrong horse"); got != VerifyFailed {
		t.Fatalf("expected VerifyFailed, got %v", got)
	}
}

func TestHasher_SignalsRehashAfterCostIncrease(t *testing.T) {
	old, err := NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	hash, err := old.Hash("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	upgraded, err := NewHasher(bcrypt.MinCost + 1)
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}

	if got := upgraded.Verify(hash, "pw"); got != VerifySuccessRehash {
		t.Fatalf("expected VerifySuccessRehash, got %v", got)
	}
	// Mismatch wins over rehash signaling.
	if got := upgraded.Verify(hash, "nope"); got != VerifyFailed {
		t.Fatalf("expected VerifyFailed, got %v", got)
	}
}

func TestHasher_MalformedHashFailsClosed(t *testing.T) {
	h, err := NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	if got := h.Verify("not-a-bcrypt-hash", "pw"); got != VerifyFailed {
		t.Fatalf("expected VerifyFailed, got %v", got)
	}
}

func TestNewHasher_RejectsOutOfRangeCost(t *testing.T) {
	if _, err := NewHasher(bcrypt.MaxCost + 1); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := NewHasher(bcrypt.MinCost - 1); err == nil {
		t.Fatalf("expected error")
	}
}
