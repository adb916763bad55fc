package dbtoken

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"vendor-notices/internal/ports/auth"
)

type testRepo struct {
	byID map[string]APIToken
}

func (r *testRepo) Create(ctx context.Context, t APIToken) error {
	r.byID[t.ID] = t
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (APIToken, error) {
	t, ok := r.byID[id]
	if !ok {
		return APIToken{}, ErrNotFound
	}
	return t, nil
}

func newTestVerifier() (*Verifier, *testRepo) {
	repo := &testRepo{byID: map[string]APIToken{}}
	v := NewVerifier(repo)
	v.cost = bcrypt.MinCost
	return v, repo
}

func TestVerifier_CreateThenVerify(t *testing.T) {
	v, _ := newTestVerifier()

	plain, _, err := v.Create(context.Background(), CreateInput{UserID: "7", Username: "noc", Capabilities: []string{"events:read"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	id, err := v.Verify(context.Background(), plain)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.UserID != "7" || id.Username != "noc" {
		t.Fatalf("unexpected identity %#v", id)
	}
}

func TestVerifier_Rejections(t *testing.T) {
	v, repo := newTestVerifier()
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return now }

	plain, tok, err := v.Create(context.Background(), CreateInput{UserID: "7", TTL: time.Hour})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	tokenID, _, _ := strings.Cut(plain, ".")

	cases := map[string]string{
		"garbage":      "nope",
		"wrong secret": tokenID + ".wrong",
		"unknown id":   "0b7f5a4e-8c55-4c42-9a2b-3f0e6a0c2d11.secret",
		"no secret":    tokenID + ".",
	}
	for name, candidate := range cases {
		if _, err := v.Verify(context.Background(), candidate); !errors.Is(err, auth.ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}

	// expirado
	v.now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, err := v.Verify(context.Background(), plain); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}

	// deshabilitado
	v.now = func() time.Time { return now }
	tok.Enabled = false
	repo.byID[tok.ID] = tok
	if _, err := v.Verify(context.Background(), plain); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected disabled token to fail, got %v", err)
	}
}
