package password

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/user-admin/internal/core/domain"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("Sales1234@@")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "Sales1234@@" {
		t.Fatalf("expected password to be hashed")
	}
	if !h.Verify(hash, "Sales1234@@") {
		t.Fatalf("hash does not verify against original password")
	}
	if h.Verify(hash, "sales1234@@") {
		t.Fatalf("hash verified against wrong password")
	}
}

func TestHasher_Salted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	a, _ := h.Hash("same-password")
	b, _ := h.Hash("same-password")
	if a == b {
		t.Fatalf("expected distinct hashes for the same password")
	}
}

func TestNewHasher_InvalidCostFallsBack(t *testing.T) {
	if h := NewHasher(0); h.cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", h.cost)
	}
	if h := NewHasher(99); h.cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", h.cost)
	}
}

func TestHasher_RejectsOverlongPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	if _, err := h.Hash(strings.Repeat("a", MaxBytes+1)); !errors.Is(err, domain.ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
	if _, err := h.Hash(strings.Repeat("a", MaxBytes)); err != nil {
		t.Fatalf("72-byte password must hash, got %v", err)
	}
}
