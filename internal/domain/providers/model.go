package providers

import "time"

// Provider es el proveedor externo que emite los avisos (carrier, cloud, etc.).
type Provider struct {
	ID        int64
	Slug      string
	Name      string
	CreatedAt time.Time
}
