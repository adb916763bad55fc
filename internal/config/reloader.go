package config

import (
	"context"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"vendor-notices/internal/platform/logger"
)

// KindsSetter recibe el allow-list nuevo (targets.AllowList lo implementa).
type KindsSetter interface {
	Set(kinds []string)
}

// Reloader relee el archivo de config según un cron y reemplaza el allow-list
// de tipos de target. Si la lectura falla se mantiene el anterior.
type Reloader struct {
	path   string
	target KindsSetter
	log    logger.Logger

	mu   sync.Mutex
	last string

	cron *cron.Cron
}

func NewReloader(path, schedule string, target KindsSetter, log logger.Logger) (*Reloader, error) {
	if log == nil {
		log = logger.Discard()
	}
	if strings.TrimSpace(schedule) == "" {
		schedule = DefaultReloadSchedule
	}

	r := &Reloader{
		path:   path,
		target: target,
		log:    log,
		cron:   cron.New(),
	}
	if _, err := r.cron.AddFunc(schedule, func() { _ = r.Reload() }); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload lee el archivo y aplica el allow-list. Devuelve el error de lectura.
func (r *Reloader) Reload() error {
	cfg, err := ReadFile(r.path)
	if err != nil {
		r.log.Error("config reload failed", map[string]any{"path": r.path, "err": err.Error()})
		return err
	}

	kinds := cfg.Impacts.AllowedTargetKinds
	sig := strings.Join(kinds, ",")

	r.mu.Lock()
	changed := sig != r.last
	r.last = sig
	r.mu.Unlock()

	r.target.Set(kinds)
	if changed {
		r.log.Info("target allow-list reloaded", map[string]any{"kinds": sig})
	}
	return nil
}

func (r *Reloader) Start() {
	r.cron.Start()
}

// Stop detiene el scheduler; el ctx se cierra cuando termina el job en curso.
func (r *Reloader) Stop() context.Context {
	return r.cron.Stop()
}
