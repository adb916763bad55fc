package impacts

import "strings"

// Severity clasifica cuánto afecta el evento al target. Vacío = sin clasificar.
type Severity string

const (
	SeverityNone              Severity = ""
	SeverityNoImpact          Severity = "NO-IMPACT"
	SeverityReducedRedundancy Severity = "REDUCED-REDUNDANCY"
	SeverityDegraded          Severity = "DEGRADED"
	SeverityOutage            Severity = "OUTAGE"
)

func ParseSeverity(s string) (Severity, bool) {
	sev := Severity(strings.ToUpper(strings.TrimSpace(s)))
	switch sev {
	case SeverityNone, SeverityNoImpact, SeverityReducedRedundancy, SeverityDegraded, SeverityOutage:
		return sev, true
	}
	return "", false
}
