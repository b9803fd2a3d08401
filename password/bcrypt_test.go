package password

import (
	"strings"
	"testing"
)

func newTestHasher(t *testing.T, cost int) *Hasher {
	t.Helper()

	hasher, err := NewHasher(Config{Cost: cost})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return hasher
}

func TestHashAndVerify(t *testing.T) {
	hasher := newTestHasher(t, 4)

	hash, err := hasher.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "correct-horse" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected hash shape: %q", hash)
	}

	if !hasher.Verify("correct-horse", hash) {
		t.Fatal("correct password must verify")
	}
	if hasher.Verify("wrong-horse", hash) {
		t.Fatal("wrong password must not verify")
	}
	if hasher.Verify("correct-horse", "not-a-bcrypt-hash") {
		t.Fatal("malformed hash must not verify")
	}
}

func TestHashSaltsEveryCall(t *testing.T) {
	hasher := newTestHasher(t, 4)

	first, err := hasher.Hash("same-input")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	second, err := hasher.Hash("same-input")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same input must differ")
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	hasher := newTestHasher(t, 4)

	if _, err := hasher.Hash(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestNeedsUpgrade(t *testing.T) {
	low := newTestHasher(t, 4)
	high := newTestHasher(t, 6)

	hash, err := low.Hash("pw")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if !high.NeedsUpgrade(hash) {
		t.Fatal("low-cost hash should need an upgrade")
	}
	if low.NeedsUpgrade(hash) {
		t.Fatal("same-cost hash should not need an upgrade")
	}
	if high.NeedsUpgrade("garbage") {
		t.Fatal("malformed hash must not claim an upgrade")
	}
}

func TestNewHasherValidation(t *testing.T) {
	if _, err := NewHasher(Config{Cost: 17}); err == nil {
		t.Fatal("expected error for oversized cost")
	}
	if _, err := NewHasher(Config{Cost: -1}); err == nil {
		t.Fatal("expected error for negative cost")
	}

	hasher, err := NewHasher(Config{})
	if err != nil {
		t.Fatalf("zero cost must default: %v", err)
	}
	if hasher.config.Cost == 0 {
		t.Fatal("expected defaulted cost")
	}
}
