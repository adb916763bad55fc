package details

import "time"

type Outage struct {
	// ReportedAt es cuándo se reportó, no cuándo empezó.
	ReportedAt time.Time

	EstimatedTimeToRepair *time.Time
}
