package main

import (
	"context"
	"reflect"
	"testing"

	"vendor-notices/internal/adapters/auth/jwttoken"
	"vendor-notices/internal/config"
)

func TestIssue_JWTRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.JWTSecret = "s3cret"

	token, err := issue(context.Background(), cfg, issueRequest{UserID: "u-1", Capabilities: []string{"events:read"}})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	id, err := jwttoken.NewVerifier("s3cret", cfg.Auth.JWTIssuer).Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.UserID != "u-1" || !reflect.DeepEqual(id.Capabilities, []string{"events:read"}) {
		t.Fatalf("unexpected identity %#v", id)
	}
}

func TestIssue_Errors(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.JWTSecret = "s3cret"
	if _, err := issue(context.Background(), cfg, issueRequest{}); err == nil {
		t.Fatalf("expected error without user")
	}

	cfg.Auth.TokenBackend = "db"
	if _, err := issue(context.Background(), cfg, issueRequest{UserID: "u-1"}); err == nil {
		t.Fatalf("expected error for db backend without dsn")
	}

	cfg.Auth.TokenBackend = "odin"
	if _, err := issue(context.Background(), cfg, issueRequest{UserID: "u-1"}); err == nil {
		t.Fatalf("expected error for odin backend")
	}
}

func TestSplitCSV(t *testing.T) {
	if got := splitCSV(" events:read, ,events:write "); !reflect.DeepEqual(got, []string{"events:read", "events:write"}) {
		t.Fatalf("unexpected %v", got)
	}
	if got := splitCSV(""); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
