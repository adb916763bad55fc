package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLogger_TextFormat_StableKeys(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Format: FormatText, App: "vendor-notices", Output: &buf})

	l.With(map[string]any{"kind": "maintenance"}).Info("feed served", map[string]any{"count": 2, "note": "two words"})

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "[INFO] feed served app=vendor-notices count=2 kind=maintenance note=\"two words\"") {
		t.Fatalf("unexpected line: %s", line)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Warn, Format: FormatText, Output: &buf})

	l.Info("hidden", nil)
	l.Debug("hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}
	l.Warn("shown", nil)
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected warn line")
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Debug, Format: FormatJSON, Output: &buf})

	l.Error("boom", Err(errString("db down")))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json line: %v", err)
	}
	if entry["level"] != "error" || entry["err"] != "db down" {
		t.Fatalf("unexpected entry %#v", entry)
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func TestLogger_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Output: &buf})

	l.With(map[string]any{"secret": "s3cret"}).Info("auth", map[string]any{"token": "tok-alice", "user": "alice"})

	line := buf.String()
	if strings.Contains(line, "tok-alice") || strings.Contains(line, "s3cret") {
		t.Fatalf("secrets leaked: %s", line)
	}
	if !strings.Contains(line, "token=[redacted]") || !strings.Contains(line, "user=alice") {
		t.Fatalf("unexpected line: %s", line)
	}
}

func TestLogger_FixedClockAndErrorValues(t *testing.T) {
	var buf bytes.Buffer
	clock := func() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) }
	l := New(Options{Level: Info, Output: &buf, Clock: clock})

	l.Warn("lookup failed", map[string]any{"cause": errString("db down")})

	if got := strings.TrimSpace(buf.String()); got != `2025-01-15T12:00:00Z [WARN] lookup failed cause="db down"` {
		t.Fatalf("unexpected line: %q", got)
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Options{Level: Info, Output: &buf})
	ctx := WithContext(context.Background(), base.With(map[string]any{"request_id": "r-1"}))

	FromContext(ctx, nil).Info("hello", nil)
	if !strings.Contains(buf.String(), "request_id=r-1") {
		t.Fatalf("expected request-scoped field, got %q", buf.String())
	}

	// Sin logger en el ctx se usa el fallback.
	if FromContext(context.Background(), base) != base {
		t.Fatalf("expected fallback logger")
	}
}
