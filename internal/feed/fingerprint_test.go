package feed

import (
	"testing"
	"time"

	"vendor-notices/internal/domain/events"
	"vendor-notices/internal/domain/providers"
)

func TestFingerprint(t *testing.T) {
	latest := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	base := Spec{PastDays: 30, Statuses: []events.Status{events.StatusConfirmed}}

	a := Fingerprint(base, 3, &latest)
	if a != Fingerprint(base, 3, &latest) {
		t.Fatalf("fingerprint must be deterministic")
	}
	if len(a) != 16 {
		t.Fatalf("expected 16 hex chars, got %q", a)
	}

	newer := latest.Add(time.Second)
	if a == Fingerprint(base, 3, &newer) {
		t.Fatalf("changing latest modification must change the fingerprint")
	}
	if a == Fingerprint(base, 4, &latest) {
		t.Fatalf("changing count must change the fingerprint")
	}

	other := base
	other.PastDays = 7
	if a == Fingerprint(other, 3, &latest) {
		t.Fatalf("changing past_days must change the fingerprint")
	}

	withProvider := base
	withProvider.Provider = &providers.Provider{ID: 1}
	if a == Fingerprint(withProvider, 3, &latest) {
		t.Fatalf("changing provider must change the fingerprint")
	}

	noStatus := base
	noStatus.Statuses = nil
	if a == Fingerprint(noStatus, 3, &latest) {
		t.Fatalf("changing statuses must change the fingerprint")
	}

	if Fingerprint(base, 0, nil) == Fingerprint(base, 0, &latest) {
		t.Fatalf("empty sentinel must differ from a real timestamp")
	}
}
