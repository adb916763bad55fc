package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
	off
)

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

var levelNames = [...]string{Debug: "debug", Info: "info", Warn: "warn", Error: "error"}

func (l Level) String() string {
	if l < Debug || l > Error {
		return "info"
	}
	return levelNames[l]
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return FormatJSON
	}
	return FormatText
}

type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// Campos que nunca se escriben en claro (tokens del feed, secretos de config).
var redactedKeys = map[string]struct{}{
	"token":         {},
	"authorization": {},
	"secret":        {},
	"password":      {},
	"api_key":       {},
}

const redacted = "[redacted]"

type Options struct {
	Level  Level
	Format Format
	App    string

	// Output: destino de los logs (default os.Stdout).
	Output io.Writer

	// Clock para tests; default time.Now.
	Clock func() time.Time
}

// sink es compartido por todos los loggers derivados con With.
type sink struct {
	mu     sync.Mutex
	out    io.Writer
	format Format
	level  Level
	clock  func() time.Time
}

// StdLogger escribe una línea por entrada (text o json).
type StdLogger struct {
	sink   *sink
	fields map[string]any
}

func New(opts Options) Logger {
	s := &sink{
		out:    opts.Output,
		format: opts.Format,
		level:  opts.Level,
		clock:  opts.Clock,
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.format == "" {
		s.format = FormatText
	}
	if s.clock == nil {
		s.clock = time.Now
	}

	l := &StdLogger{sink: s, fields: map[string]any{}}
	if app := strings.TrimSpace(opts.App); app != "" {
		l.fields["app"] = app
	}
	return l
}

// NewFromStrings crea logger desde los valores de config (level/format/app).
func NewFromStrings(level, format, app string) Logger {
	return New(Options{
		Level:  ParseLevel(level),
		Format: ParseFormat(format),
		App:    app,
	})
}

// Discard devuelve un logger que no escribe nada (tests).
func Discard() Logger {
	return New(Options{Level: off, Output: io.Discard})
}

// Err arma el campo "err" sin romper si err es nil.
func Err(err error) map[string]any {
	if err == nil {
		return map[string]any{}
	}
	return map[string]any{"err": err.Error()}
}

func (l *StdLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	return &StdLogger{sink: l.sink, fields: merge(l.fields, fields)}
}

func (l *StdLogger) Debug(msg string, fields map[string]any) { l.log(Debug, msg, fields) }
func (l *StdLogger) Info(msg string, fields map[string]any)  { l.log(Info, msg, fields) }
func (l *StdLogger) Warn(msg string, fields map[string]any)  { l.log(Warn, msg, fields) }
func (l *StdLogger) Error(msg string, fields map[string]any) { l.log(Error, msg, fields) }

func (l *StdLogger) log(lvl Level, msg string, fields map[string]any) {
	s := l.sink
	if lvl < s.level {
		return
	}

	entry := merge(l.fields, fields)
	ts := s.clock().UTC().Format(time.RFC3339Nano)

	var line string
	switch s.format {
	case FormatJSON:
		entry["ts"] = ts
		entry["level"] = lvl.String()
		entry["msg"] = msg
		b, err := json.Marshal(entry)
		if err != nil {
			b, _ = json.Marshal(map[string]any{"ts": ts, "level": lvl.String(), "msg": msg, "log_err": err.Error()})
		}
		line = string(b)
	default:
		line = formatText(ts, lvl, msg, entry)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.out, line+"\n")
}

// merge copia base + extra, descarta keys vacías y aplica redacción.
func merge(base, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for _, m := range []map[string]any{base, extra} {
		for k, v := range m {
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			if _, ok := redactedKeys[strings.ToLower(k)]; ok {
				v = redacted
			}
			if err, ok := v.(error); ok {
				v = err.Error()
			}
			out[k] = v
		}
	}
	return out
}

// formatText: "ts [LEVEL] msg k=v ..." con keys ordenadas (salida estable en tests).
func formatText(ts string, lvl Level, msg string, fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", ts, strings.ToUpper(lvl.String()), msg)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(quoteIfNeeded(fmt.Sprint(fields[k])))
	}
	return b.String()
}

func quoteIfNeeded(v string) string {
	if v == "" || strings.ContainsAny(v, " \t\n\"=") {
		return fmt.Sprintf("%q", v)
	}
	return v
}

type ctxKey struct{}

// WithContext deja un logger (ej: con request_id) en el ctx.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext devuelve el logger del ctx o fallback.
func FromContext(ctx context.Context, fallback Logger) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok && l != nil {
		return l
	}
	if fallback == nil {
		return Discard()
	}
	return fallback
}
