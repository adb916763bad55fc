package config

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestReadFile_MissingUsesDefaults(t *testing.T) {
	cfg, err := ReadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Auth.LoginRequired || cfg.Auth.TokenBackend != "jwt" {
		t.Fatalf("unexpected auth defaults %#v", cfg.Auth)
	}
	if cfg.ICal.PastDaysDefault != DefaultPastDays || cfg.ICal.CacheMaxAge != DefaultCacheMaxAge {
		t.Fatalf("unexpected ical defaults %#v", cfg.ICal)
	}
	if !reflect.DeepEqual(cfg.Impacts.AllowedTargetKinds, DefaultAllowedTargetKinds) {
		t.Fatalf("unexpected allow-list %v", cfg.Impacts.AllowedTargetKinds)
	}
}

func TestReadFile_NormalizesOutOfRange(t *testing.T) {
	p := writeFile(t, t.TempDir(), `
listen: ":9000"
auth:
  login_required: false
  token_backend: ODIN
ical:
  past_days_default: 500
  cache_max_age: -1
impacts:
  allowed_target_kinds: ["dcim.device"]
`)
	cfg, err := ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if cfg.Listen != ":9000" || cfg.Auth.TokenBackend != "odin" {
		t.Fatalf("unexpected config %#v", cfg)
	}
	if cfg.ICal.PastDaysDefault != DefaultPastDays || cfg.ICal.CacheMaxAge != DefaultCacheMaxAge {
		t.Fatalf("expected defaults for out-of-range ical values, got %#v", cfg.ICal)
	}
	if !reflect.DeepEqual(cfg.Auth.AnonymousCapabilities, []string{"events:read"}) {
		t.Fatalf("expected anonymous read by default, got %v", cfg.Auth.AnonymousCapabilities)
	}
	if !reflect.DeepEqual(cfg.Impacts.AllowedTargetKinds, []string{"dcim.device"}) {
		t.Fatalf("unexpected allow-list %v", cfg.Impacts.AllowedTargetKinds)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	p := writeFile(t, t.TempDir(), "listen: \":9000\"\n")
	t.Setenv("LISTEN", ":7000")
	t.Setenv("LOGIN_REQUIRED", "false")
	t.Setenv("ICAL_DOMAIN", "notices.example.net")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":7000" || cfg.Auth.LoginRequired || cfg.ICal.Domain != "notices.example.net" {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
}

func TestReadFile_InvalidYAML(t *testing.T) {
	p := writeFile(t, t.TempDir(), "listen: [")
	if _, err := ReadFile(p); err == nil {
		t.Fatalf("expected yaml error")
	}
}

type recordingSetter struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recordingSetter) Set(kinds []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string(nil), kinds...))
}

func TestReloader_Reload(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "impacts:\n  allowed_target_kinds: [\"dcim.device\"]\n")

	set := &recordingSetter{}
	r, err := NewReloader(p, "@every 1h", set, nil)
	if err != nil {
		t.Fatalf("new reloader: %v", err)
	}
	if err := r.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	writeFile(t, dir, "impacts:\n  allowed_target_kinds: [\"circuits.circuit\", \"dcim.site\"]\n")
	if err := r.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	// Archivo roto: se conserva el último allow-list.
	writeFile(t, dir, "impacts: [")
	if err := r.Reload(); err == nil {
		t.Fatalf("expected reload error")
	}

	want := [][]string{{"dcim.device"}, {"circuits.circuit", "dcim.site"}}
	if !reflect.DeepEqual(set.calls, want) {
		t.Fatalf("unexpected set calls %v", set.calls)
	}
}

func TestNewReloader_BadSchedule(t *testing.T) {
	if _, err := NewReloader("x.yaml", "not a cron", &recordingSetter{}, nil); err == nil {
		t.Fatalf("expected schedule error")
	}
}

func TestReadFile_RemoteCacheTTL(t *testing.T) {
	p := writeFile(t, t.TempDir(), `
auth:
  odin:
    base_url: "https://iam.example.net"
    cache_ttl: 30s
capabilities:
  plans_features:
    cache_ttl: -1s
`)
	cfg, err := ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if cfg.Auth.Odin.CacheTTL != 30*time.Second {
		t.Fatalf("unexpected odin ttl %v", cfg.Auth.Odin.CacheTTL)
	}
	if cfg.Capabilities.PlansFeatures.CacheTTL >= 0 {
		t.Fatalf("negative ttl must be kept (cache disabled), got %v", cfg.Capabilities.PlansFeatures.CacheTTL)
	}
	if Default().Auth.Odin.CacheTTL != DefaultRemoteCacheTTL {
		t.Fatalf("expected default remote ttl")
	}
}
