package auth

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"hotel_booking/internal/domain"
)

func key(b byte, n int) []byte {
	k := make([]byte, n)
	for i := range k {
		k[i] = b
	}
	return k
}

func TestTokens_IssueAndParse(t *testing.T) {
	tk := NewTokens(key(1, 32), key(2, 32), time.Hour)
	tok, exp, err := tk.Issue(domain.Requester{ID: 7, Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(exp) < 59*time.Minute {
		t.Fatalf("unexpected expiry: %v", exp)
	}
	r, err := tk.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.ID != 7 || r.Role != domain.RoleAdmin {
		t.Fatalf("unexpected requester: %+v", r)
	}
}

func TestTokens_Rejects(t *testing.T) {
	tk := NewTokens(key(1, 32), key(2, 32), time.Hour)
	other := NewTokens(key(3, 32), key(4, 32), time.Hour)
	tok, _, _ := other.Issue(domain.Requester{ID: 7, Role: domain.RoleUser})

	for name, in := range map[string]string{"empty": "", "garbage": "abc", "foreign key": tok} {
		if _, err := tk.Parse(in); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Errorf("%s: want unauthenticated, got %v", name, err)
		}
	}

	// expired claims
	good, _, _ := tk.Issue(domain.Requester{ID: 7, Role: domain.RoleUser})
	tk.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := tk.Parse(good); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expired token accepted: %v", err)
	}
}

func TestHasher(t *testing.T) {
	h := Hasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !h.Compare(hash, "secret1") || h.Compare(hash, "secret2") {
		t.Fatalf("compare mismatch")
	}
}
