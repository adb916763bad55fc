package session

import (
	"context"
	"testing"
	"time"

	"vendor-notices/internal/ports/auth"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	sid := s.Put(auth.Identity{UserID: "u-1"})

	id, ok, err := s.Lookup(context.Background(), " "+sid+" ")
	if err != nil || !ok || id.UserID != "u-1" {
		t.Fatalf("expected session, got %#v ok=%v err=%v", id, ok, err)
	}
	if _, ok, _ := s.Lookup(context.Background(), "other"); ok {
		t.Fatalf("unexpected session for unknown id")
	}
}

func TestRedisStore_UnreachableIsAnError(t *testing.T) {
	// Puerto cerrado: el lookup falla con error (el middleware lo loguea y sigue sin sesión).
	s := NewRedisStore(NewRedisClient("127.0.0.1:1", "", 0))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, ok, err := s.Lookup(ctx, "abc"); err == nil || ok {
		t.Fatalf("expected error from unreachable redis, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := s.Lookup(ctx, "  "); err != nil || ok {
		t.Fatalf("empty session id must short-circuit, got ok=%v err=%v", ok, err)
	}
	if _, err := s.Create(ctx, auth.Identity{}, time.Minute); err == nil {
		t.Fatalf("expected error without user id")
	}
}
