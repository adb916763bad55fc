package plansfeatures

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"vendor-notices/internal/ports/auth"
	"vendor-notices/internal/ports/capabilities"
)

func TestResolver_HasFeature_Upstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("user_id") != "u-1" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(CapabilitiesResponse{Capabilities: map[string]bool{"events:read": true}})
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	r := NewResolver(client, false, nil)

	ok, err := r.HasFeature(context.Background(), capabilities.CapabilityCheck{
		Identity:   auth.Identity{UserID: "u-1"},
		Capability: capabilities.EventsRead,
	})
	if err != nil || !ok {
		t.Fatalf("expected read allowed, got ok=%v err=%v", ok, err)
	}

	ok, err = r.HasFeature(context.Background(), capabilities.CapabilityCheck{
		Identity:   auth.Identity{UserID: "u-1"},
		Capability: capabilities.EventsWrite,
	})
	if err != nil || ok {
		t.Fatalf("expected write denied, got ok=%v err=%v", ok, err)
	}

	_, err = r.HasFeature(context.Background(), capabilities.CapabilityCheck{
		Identity:   auth.Identity{UserID: "u-2"},
		Capability: capabilities.EventsRead,
	})
	if !errors.Is(err, ErrPlansUnauthorized) {
		t.Fatalf("expected ErrPlansUnauthorized, got %v", err)
	}
}

func TestResolver_AnonymousNeverHitsUpstream(t *testing.T) {
	r := NewResolver(nil, false, []string{capabilities.EventsRead})

	ok, err := r.HasFeature(context.Background(), capabilities.CapabilityCheck{
		Identity:   auth.Anonymous(),
		Capability: capabilities.EventsRead,
	})
	if err != nil || !ok {
		t.Fatalf("expected anonymous read allowed, got ok=%v err=%v", ok, err)
	}
}

func TestResolver_CachesPerUser(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(CapabilitiesResponse{Capabilities: map[string]bool{"*": true}})
	}))
	defer srv.Close()

	client, _ := NewClient(Config{BaseURL: srv.URL})
	r := NewResolver(client, false, nil).WithCache(time.Minute)

	for _, capability := range []string{capabilities.EventsRead, capabilities.EventsWrite, capabilities.EventsRead} {
		ok, err := r.HasFeature(context.Background(), capabilities.CapabilityCheck{
			Identity:   auth.Identity{UserID: "u-1"},
			Capability: capability,
		})
		if err != nil || !ok {
			t.Fatalf("expected wildcard allow, got ok=%v err=%v", ok, err)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single upstream call, got %d", calls.Load())
	}
}

func TestResolver_RetriesUpstream503(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(CapabilitiesResponse{Capabilities: map[string]bool{"events:read": true}})
	}))
	defer srv.Close()

	client, _ := NewClient(Config{BaseURL: srv.URL})
	ok, err := NewResolver(client, false, nil).HasFeature(context.Background(), capabilities.CapabilityCheck{
		Identity:   auth.Identity{UserID: "u-1"},
		Capability: capabilities.EventsRead,
	})
	if err != nil || !ok || calls.Load() != 2 {
		t.Fatalf("expected success after one retry, got ok=%v err=%v calls=%d", ok, err, calls.Load())
	}
}
