package targets

import (
	"context"
	"errors"
	"testing"
)

func newTestRegistry(allowed ...string) *Registry {
	reg := NewRegistry(NewAllowList(allowed))
	devices := map[string]string{"1": "edge-rtr-01"}
	reg.Register(KindDevice, ResolverFunc(func(ctx context.Context, id string) (Entity, error) {
		name, ok := devices[id]
		if !ok {
			return Entity{}, ErrNotFound
		}
		return Entity{Display: name}, nil
	}))
	reg.Register(KindCircuit, ResolverFunc(func(ctx context.Context, id string) (Entity, error) {
		return Entity{}, errors.New("db down")
	}))
	return reg
}

func TestRegistry_Resolve_Found(t *testing.T) {
	reg := newTestRegistry("dcim.device")

	res, err := reg.Resolve(context.Background(), NewRef(KindDevice, "1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Found || res.Display() != "edge-rtr-01" {
		t.Fatalf("expected resolved device, got %#v", res)
	}
	if res.Entity.Ref.ID != "1" {
		t.Fatalf("expected ref to be kept, got %#v", res.Entity.Ref)
	}
}

func TestRegistry_Resolve_DanglingIsNotAnError(t *testing.T) {
	reg := newTestRegistry("dcim.device")

	res, err := reg.Resolve(context.Background(), NewRef(KindDevice, "99"))
	if err != nil {
		t.Fatalf("dangling ref must not fail, got %v", err)
	}
	if res.Found {
		t.Fatalf("expected Found=false")
	}
	if res.Display() != "unknown" {
		t.Fatalf("expected unknown display, got %q", res.Display())
	}
}

func TestRegistry_Resolve_UnsupportedKind(t *testing.T) {
	reg := newTestRegistry("dcim.device")

	// Registrado pero fuera del allow-list.
	if _, err := reg.Resolve(context.Background(), NewRef(KindCircuit, "1")); !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("expected ErrUnsupportedKind, got %v", err)
	}
	// Admitido pero sin resolver registrado.
	reg.AllowList().Set([]string{"dcim.site"})
	if _, err := reg.Resolve(context.Background(), NewRef(KindSite, "1")); !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("expected ErrUnsupportedKind for unregistered kind, got %v", err)
	}
}

func TestRegistry_AllowListHotSwap(t *testing.T) {
	reg := newTestRegistry("dcim.device")
	if !reg.Supports(KindDevice) {
		t.Fatalf("expected device supported")
	}

	reg.AllowList().Set([]string{"circuits.circuit"})
	if reg.Supports(KindDevice) {
		t.Fatalf("expected device to be dropped after reload")
	}
	if !reg.Supports("Circuits.Circuit") {
		t.Fatalf("expected case-insensitive match")
	}
}

func TestRegistry_StorageErrorPropagates(t *testing.T) {
	reg := newTestRegistry("circuits.circuit")

	_, err := reg.Resolve(context.Background(), NewRef(KindCircuit, "1"))
	if err == nil || errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestRef_Validate(t *testing.T) {
	if err := (Ref{Kind: KindDevice}).Validate(); !errors.Is(err, ErrInvalidRef) {
		t.Fatalf("expected ErrInvalidRef for empty id")
	}
	if got := NewRef(" DCIM.Device ", " 7 "); got.Kind != KindDevice || got.ID != "7" {
		t.Fatalf("unexpected normalized ref %#v", got)
	}
}
