package feed

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vendor-notices/internal/platform/logger"
	"vendor-notices/internal/ports/capabilities"
)

const ContentType = "text/calendar; charset=utf-8"

type Options struct {
	Auth     *Authenticator
	Caps     capabilities.CapabilitiesResolver
	Filters  *FilterResolver
	Store    Store
	Renderer Renderer

	// CacheMaxAge en segundos para Cache-Control.
	CacheMaxAge int

	Log logger.Logger
}

// NewHandler arma el endpoint del feed:
// autenticar -> autorizar -> filtros -> query -> fingerprint -> 304 | serializar.
//
// @Summary Feed iCalendar de mantenimientos y outages
// @Description Documento text/calendar. Credencial por ?token=, Authorization o sesión. Soporta If-None-Match / If-Modified-Since.
// @Tags feed
// @Produce text/calendar
// @Param token query string false "Token de API (clientes de calendario)"
// @Param past_days query int false "Días hacia atrás (0-365); inválido => default"
// @Param provider query string false "Slug del proveedor"
// @Param provider_id query int false "ID del proveedor (si no viene provider)"
// @Param status query string false "CSV de estados (ej: CONFIRMED,IN-PROCESS)"
// @Success 200 {string} string "VCALENDAR"
// @Success 304 {string} string "not modified"
// @Failure 400 {string} string "invalid provider / provider_id"
// @Failure 403 {string} string "forbidden"
// @Router /ical/events.ics [get]
func NewHandler(opts Options) http.HandlerFunc {
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	maxAge := opts.CacheMaxAge
	if maxAge <= 0 {
		maxAge = 900
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.FromContext(ctx, log)

		id, err := opts.Auth.Authenticate(r)
		if err != nil {
			log.Debug("feed authentication failed", map[string]any{"err": err.Error()})
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		allowed, err := opts.Caps.HasFeature(ctx, capabilities.CapabilityCheck{Identity: id, Capability: capabilities.EventsRead})
		if err != nil {
			log.Warn("feed capability check failed", map[string]any{"user": id.UserID, "err": err.Error()})
		}
		if err != nil || !allowed {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		spec, err := opts.Filters.Resolve(ctx, r.URL.Query())
		if err != nil {
			var pe *ParamError
			if errors.As(err, &pe) {
				http.Error(w, pe.Error(), http.StatusBadRequest)
				return
			}
			log.Error("feed filter resolution failed", map[string]any{"err": err.Error()})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		items, err := opts.Store.Find(ctx, spec)
		if err != nil {
			log.Error("feed query failed", map[string]any{"err": err.Error()})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		latest := Latest(items)
		etag := `"` + Fingerprint(spec, len(items), latest) + `"`

		h := w.Header()
		h.Set("Cache-Control", "public, max-age="+strconv.Itoa(maxAge))
		h.Set("ETag", etag)
		if latest != nil {
			h.Set("Last-Modified", latest.UTC().Format(http.TimeFormat))
		}

		if notModified(r, etag, latest) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		body, err := opts.Renderer.Render(ctx, items, r.Host)
		if err != nil {
			log.Error("feed render failed", map[string]any{"err": err.Error()})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		h.Set("Content-Type", ContentType)
		h.Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

// notModified: cualquiera de los dos validadores alcanza, salvo que venga
// If-None-Match: ahí If-Modified-Since se ignora (RFC 9110 13.1.3), así un
// ETag que no coincide nunca queda tapado por una fecha.
func notModified(r *http.Request, etag string, latest *time.Time) bool {
	if inm := strings.TrimSpace(r.Header.Get("If-None-Match")); inm != "" {
		return etagMatches(inm, etag)
	}

	ims := strings.TrimSpace(r.Header.Get("If-Modified-Since"))
	if ims == "" || latest == nil {
		return false
	}
	t, err := http.ParseTime(ims)
	if err != nil {
		return false
	}
	// Last-Modified tiene resolución de segundos.
	return !latest.UTC().Truncate(time.Second).After(t)
}

// etagMatches usa comparación débil y acepta listas y "*".
func etagMatches(header, etag string) bool {
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		c := strings.TrimSpace(candidate)
		if c == "*" {
			return true
		}
		if strings.TrimPrefix(c, "W/") == want {
			return true
		}
	}
	return false
}
