package details

// Maintenance guarda lo propio de un mantenimiento programado.
type Maintenance struct {
	// Replaces apunta al mantenimiento que este reprograma (sin ownership).
	Replaces *int64
}
