package events

import (
	"sort"
	"strings"

	"vendor-notices/internal/domain/targets"
)

// Kind distingue las variantes de evento.
type Kind string

const (
	KindMaintenance Kind = "maintenance"
	KindOutage      Kind = "outage"
)

func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindMaintenance:
		return KindMaintenance, true
	case KindOutage:
		return KindOutage, true
	}
	return "", false
}

// RefKind devuelve el tag usado en targets.Ref para este tipo de evento.
func (k Kind) RefKind() targets.Kind {
	if k == KindOutage {
		return targets.KindOutage
	}
	return targets.KindMaintenance
}

// KindFromRef es la inversa de RefKind.
func KindFromRef(k targets.Kind) (Kind, bool) {
	switch targets.ParseKind(string(k)) {
	case targets.KindMaintenance:
		return KindMaintenance, true
	case targets.KindOutage:
		return KindOutage, true
	}
	return "", false
}

// Status es cerrado y compartido por todas las variantes.
type Status string

const (
	StatusTentative   Status = "TENTATIVE"
	StatusConfirmed   Status = "CONFIRMED"
	StatusCancelled   Status = "CANCELLED"
	StatusInProcess   Status = "IN-PROCESS"
	StatusCompleted   Status = "COMPLETED"
	StatusUnknown     Status = "UNKNOWN"
	StatusRescheduled Status = "RE-SCHEDULED"
)

var allStatuses = []Status{
	StatusTentative,
	StatusConfirmed,
	StatusCancelled,
	StatusInProcess,
	StatusCompleted,
	StatusUnknown,
	StatusRescheduled,
}

// AllStatuses devuelve una copia del enum completo.
func AllStatuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// ParseStatus es case-insensitive; ok=false si no pertenece al enum.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range allStatuses {
		if v == st {
			return st, true
		}
	}
	return "", false
}

func (s Status) Valid() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

// Closed indica estados terminales: no se aceptan cambios de impacts.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// SortStatuses ordena y deduplica (forma canónica para filtros y fingerprint).
func SortStatuses(in []Status) []Status {
	seen := make(map[Status]struct{}, len(in))
	out := make([]Status, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
