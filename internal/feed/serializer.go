package feed

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
	"unicode"

	ical "github.com/arran4/golang-ical"

	"vendor-notices/internal/domain/events"
	"vendor-notices/internal/domain/targets"
)

const productID = "-//vendor-notices//Maintenance Feed//EN"

// Renderer convierte el resultado en un documento de calendario.
type Renderer interface {
	Render(ctx context.Context, items []Item, host string) ([]byte, error)
}

// TargetResolver nunca falla: un target ausente vuelve con Found=false.
type TargetResolver interface {
	ResolveTarget(ctx context.Context, ref targets.Ref) targets.Resolution
}

type SerializerOptions struct {
	// Domain para los UID; vacío => host de la request.
	Domain       string
	CalendarName string
	// TTL sugerido a los clientes (X-PUBLISHED-TTL / REFRESH-INTERVAL).
	TTL time.Duration

	Targets TargetResolver
}

// Serializer genera iCalendar (RFC 5545) con golang-ical.
type Serializer struct {
	opts SerializerOptions
}

func NewSerializer(opts SerializerOptions) *Serializer {
	if opts.CalendarName == "" {
		opts.CalendarName = "Vendor maintenance"
	}
	return &Serializer{opts: opts}
}

func (s *Serializer) Render(ctx context.Context, items []Item, host string) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetCalscale("GREGORIAN")
	cal.SetXWRCalName(clean(s.opts.CalendarName, false))
	if s.opts.TTL > 0 {
		ttl := isoDuration(s.opts.TTL)
		cal.SetXPublishedTTL(ttl)
		cal.SetRefreshInterval(ttl)
	}

	domain := s.domain(host)
	for _, it := range items {
		s.addEvent(ctx, cal, it, domain)
	}
	return []byte(cal.Serialize()), nil
}

func (s *Serializer) addEvent(ctx context.Context, cal *ical.Calendar, it Item, domain string) {
	e := it.Event

	ve := cal.AddEvent(UID(e, domain))
	ve.SetDtStampTime(e.LastModified.UTC())
	ve.SetCreatedTime(e.Created.UTC())
	ve.SetModifiedAt(e.LastModified.UTC())
	ve.SetStartAt(e.Start.UTC())
	if end := effectiveEnd(e); end != nil {
		ve.SetEndAt(end.UTC())
	}
	ve.SetSummary(summaryLine(e))
	ve.SetStatus(WireStatus(e.Status))
	ve.SetProperty(ical.ComponentPropertyCategories, strings.ToUpper(string(e.Kind)))
	ve.SetDescription(s.description(ctx, it))
}

// UID es estable por (tipo, id, dominio).
func UID(e events.Event, domain string) string {
	return fmt.Sprintf("%s-%d@%s", e.Kind, e.ID, domain)
}

// WireStatus reduce el enum interno a los tres estados de VEVENT. Total: lo
// desconocido cae en TENTATIVE.
func WireStatus(st events.Status) ical.ObjectStatus {
	switch st {
	case events.StatusConfirmed, events.StatusInProcess, events.StatusCompleted:
		return ical.ObjectStatusConfirmed
	case events.StatusCancelled, events.StatusRescheduled:
		return ical.ObjectStatusCancelled
	case events.StatusTentative, events.StatusUnknown:
		return ical.ObjectStatusTentative
	default:
		return ical.ObjectStatusTentative
	}
}

// effectiveEnd: end del evento, o ETR para outages abiertos.
func effectiveEnd(e events.Event) *time.Time {
	if e.End != nil {
		return e.End
	}
	if e.Outage != nil && e.Outage.EstimatedTimeToRepair != nil {
		return e.Outage.EstimatedTimeToRepair
	}
	return nil
}

func summaryLine(e events.Event) string {
	name := clean(e.Name, false)
	sum := clean(e.Summary, false)
	if sum == "" {
		return name
	}
	return name + " - " + sum
}

func (s *Serializer) description(ctx context.Context, it Item) string {
	e := it.Event
	var b strings.Builder

	provider := it.Provider.Name
	if provider == "" {
		provider = "unknown"
	}
	fmt.Fprintf(&b, "Provider: %s\n", clean(provider, false))
	fmt.Fprintf(&b, "Status: %s\n", e.Status)
	if e.InternalTicket != "" {
		fmt.Fprintf(&b, "Ticket: %s\n", clean(e.InternalTicket, false))
	}
	if e.Outage != nil {
		fmt.Fprintf(&b, "Reported: %s\n", e.Outage.ReportedAt.UTC().Format(time.RFC3339))
	}
	if e.OriginalTimezone != "" {
		fmt.Fprintf(&b, "Original timezone: %s\n", clean(e.OriginalTimezone, false))
	}
	if c := clean(e.Comments, true); c != "" {
		b.WriteString("\nComments:\n")
		b.WriteString(c)
		b.WriteString("\n")
	}

	if len(it.Impacts) > 0 {
		b.WriteString("\nAffected:\n")
		for _, imp := range it.Impacts {
			display := "unknown"
			if s.opts.Targets != nil {
				display = s.opts.Targets.ResolveTarget(ctx, imp.Target).Display()
			}
			line := fmt.Sprintf("- %s %s", imp.Target.Kind, clean(display, false))
			if imp.Severity != "" {
				line += fmt.Sprintf(" (%s)", imp.Severity)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Serializer) domain(host string) string {
	if d := strings.TrimSpace(s.opts.Domain); d != "" {
		return strings.ToLower(d)
	}
	h := strings.TrimSpace(host)
	if hh, _, err := net.SplitHostPort(h); err == nil {
		h = hh
	}
	h = strings.ToLower(strings.Trim(h, "[]"))
	if h == "" {
		return "localhost"
	}
	return h
}

// clean quita CR y caracteres de control. El escape de ',', ';' y '\' lo hace
// la librería al serializar.
func clean(s string, multiline bool) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			if multiline {
				return r
			}
			return ' '
		case r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s))
}

func isoDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	switch {
	case secs%3600 == 0:
		return fmt.Sprintf("PT%dH", secs/3600)
	case secs%60 == 0:
		return fmt.Sprintf("PT%dM", secs/60)
	default:
		return fmt.Sprintf("PT%dS", secs)
	}
}
