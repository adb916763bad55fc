package feed

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"vendor-notices/internal/domain/events"
	"vendor-notices/internal/domain/events/details"
	"vendor-notices/internal/domain/impacts"
	"vendor-notices/internal/domain/providers"
	"vendor-notices/internal/domain/targets"
)

type stubTargets map[targets.Ref]string

func (s stubTargets) ResolveTarget(ctx context.Context, ref targets.Ref) targets.Resolution {
	name, ok := s[ref]
	if !ok {
		return targets.Resolution{Entity: targets.Entity{Ref: ref}}
	}
	return targets.Resolution{Entity: targets.Entity{Ref: ref, Display: name}, Found: true}
}

func parse(t *testing.T, body []byte) *ical.Calendar {
	t.Helper()
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("output is not a valid calendar: %v\n%s", err, body)
	}
	return cal
}

func prop(ev *ical.VEvent, p ical.ComponentProperty) string {
	if v := ev.GetProperty(p); v != nil {
		return v.Value
	}
	return ""
}

func TestRender_Empty(t *testing.T) {
	s := NewSerializer(SerializerOptions{Domain: "notices.example.net", TTL: 15 * time.Minute})

	body, err := s.Render(context.Background(), nil, "ignored:8080")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(body)
	if !strings.Contains(text, "BEGIN:VCALENDAR") || !strings.Contains(text, "END:VCALENDAR") {
		t.Fatalf("expected open/close pair, got:\n%s", text)
	}
	if n := len(parse(t, body).Events()); n != 0 {
		t.Fatalf("expected 0 events, got %d", n)
	}
}

func TestRender_Event(t *testing.T) {
	start := time.Date(2025, 2, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	end := start.Add(4 * time.Hour)
	dev := targets.NewRef(targets.KindDevice, "10")
	gone := targets.NewRef(targets.KindDevice, "11")

	item := Item{
		Event: events.Event{
			ID:             7,
			Kind:           events.KindMaintenance,
			Name:           "MAINT-001",
			Summary:        `Fiber; splice, work \ east`,
			Status:         events.StatusInProcess,
			Start:          start,
			End:            &end,
			Comments:       "line one\r\nline two\x07",
			InternalTicket: "CHG-42",
			Created:        start,
			LastModified:   start,
			Maintenance:    &details.Maintenance{},
		},
		Provider: providers.Provider{ID: 1, Slug: "aws", Name: "AWS"},
		Impacts: []impacts.Impact{
			{Target: dev, Severity: impacts.SeverityDegraded},
			{Target: gone},
		},
	}

	s := NewSerializer(SerializerOptions{Targets: stubTargets{dev: "edge-rtr-01"}})
	body, err := s.Render(context.Background(), []Item{item}, "Notices.Example.NET:8443")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if bytes.Contains(body, []byte{0x07}) {
		t.Fatalf("control characters must be stripped")
	}

	evs := parse(t, body).Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	ev := evs[0]

	if uid := ev.Id(); uid != "maintenance-7@notices.example.net" {
		t.Fatalf("unexpected uid %q", uid)
	}
	if st := prop(ev, ical.ComponentPropertyStatus); st != string(ical.ObjectStatusConfirmed) {
		t.Fatalf("expected CONFIRMED, got %q", st)
	}
	if got := prop(ev, ical.ComponentPropertyDtStart); got != "20250201T090000Z" {
		t.Fatalf("expected UTC start, got %q", got)
	}
	if got := prop(ev, ical.ComponentPropertyDtEnd); got != "20250201T130000Z" {
		t.Fatalf("expected UTC end, got %q", got)
	}
	// El parser devuelve el texto ya des-escapado: tiene que volver idéntico.
	if got, want := prop(ev, ical.ComponentPropertySummary), `MAINT-001 - Fiber; splice, work \ east`; got != want {
		t.Fatalf("summary round-trip: got %q, want %q", got, want)
	}
	if !bytes.Contains(body, []byte(`SUMMARY:MAINT-001 - Fiber\; splice\, work \\ east`)) {
		t.Fatalf("expected escaped summary on the wire:\n%s", body)
	}

	desc := prop(ev, ical.ComponentPropertyDescription)
	for _, want := range []string{"AWS", "CHG-42", "line two", "edge-rtr-01", "DEGRADED", "unknown"} {
		if !strings.Contains(desc, want) {
			t.Fatalf("description missing %q: %q", want, desc)
		}
	}
}

func TestRender_OutageUsesETRAsEnd(t *testing.T) {
	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	etr := start.Add(2 * time.Hour)
	item := Item{Event: events.Event{
		ID:           3,
		Kind:         events.KindOutage,
		Name:         "OUT-3",
		Status:       events.StatusInProcess,
		Start:        start,
		Created:      start,
		LastModified: start,
		Outage:       &details.Outage{ReportedAt: start, EstimatedTimeToRepair: &etr},
	}}

	body, _ := NewSerializer(SerializerOptions{Domain: "x.test"}).Render(context.Background(), []Item{item}, "")
	ev := parse(t, body).Events()[0]
	if ev.Id() != "outage-3@x.test" {
		t.Fatalf("unexpected uid %q", ev.Id())
	}
	if got := prop(ev, ical.ComponentPropertyDtEnd); got != "20250301T100000Z" {
		t.Fatalf("expected ETR as end, got %q", got)
	}
}

func TestWireStatus_Total(t *testing.T) {
	want := map[events.Status]ical.ObjectStatus{
		events.StatusTentative:   ical.ObjectStatusTentative,
		events.StatusConfirmed:   ical.ObjectStatusConfirmed,
		events.StatusCancelled:   ical.ObjectStatusCancelled,
		events.StatusInProcess:   ical.ObjectStatusConfirmed,
		events.StatusCompleted:   ical.ObjectStatusConfirmed,
		events.StatusUnknown:     ical.ObjectStatusTentative,
		events.StatusRescheduled: ical.ObjectStatusCancelled,
	}
	for _, st := range events.AllStatuses() {
		if got := WireStatus(st); got != want[st] {
			t.Fatalf("%s: expected %s, got %s", st, want[st], got)
		}
	}
	if got := WireStatus("SOMETHING-NEW"); got != ical.ObjectStatusTentative {
		t.Fatalf("expected fallback TENTATIVE, got %s", got)
	}
}
