package impacts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"vendor-notices/internal/domain/targets"
	"vendor-notices/internal/middleware"
	"vendor-notices/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, caps capabilities.CapabilitiesResolver) {
	r.Get("/events/{eventID}/impacts", listEventImpactsHandler(svc, caps))
	r.Get("/targets/{kind}/{targetID}/impacts", targetHistoryHandler(svc, caps))

	r.Route("/impacts", func(ir chi.Router) {
		ir.Post("/", createImpactHandler(svc, caps))
		ir.Patch("/{impactID}", updateImpactHandler(svc, caps))
		ir.Delete("/{impactID}", deleteImpactHandler(svc, caps))
	})
}

type createImpactRequest struct {
	EventID    int64    `json:"event_id"`
	TargetKind string   `json:"target_kind" example:"dcim.device"`
	TargetID   string   `json:"target_id"`
	Severity   Severity `json:"severity" enums:"NO-IMPACT,REDUCED-REDUNDANCY,DEGRADED,OUTAGE"`
}

type updateImpactRequest struct {
	Severity Severity `json:"severity" enums:"NO-IMPACT,REDUCED-REDUNDANCY,DEGRADED,OUTAGE"`
}

type impactResponse struct {
	ID            string      `json:"id"`
	Event         targets.Ref `json:"event"`
	Target        targets.Ref `json:"target"`
	TargetDisplay string      `json:"target_display,omitempty"`
	TargetFound   *bool       `json:"target_found,omitempty"`
	Severity      Severity    `json:"severity"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type historyResponse struct {
	Impact      impactResponse `json:"impact"`
	EventID     int64          `json:"event_id"`
	EventKind   string         `json:"event_kind"`
	EventName   string         `json:"event_name"`
	EventStatus string         `json:"event_status"`
	Start       time.Time      `json:"start"`
	End         *time.Time     `json:"end,omitempty"`
}

// listEventImpactsHandler godoc
// @Summary Impacts de un evento
// @Description Lista los objetos afectados por el evento. Un target borrado o de un tipo no admitido aparece con target_found=false y display "unknown".
// @Tags impacts
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param eventID path int true "ID del evento"
// @Success 200 {array} impactResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "event not found"
// @Router /events/{eventID}/impacts [get]
func listEventImpactsHandler(svc *Service, caps capabilities.CapabilitiesResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Authorize(w, r, caps, capabilities.EventsRead); !ok {
			return
		}
		id, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
		if err != nil {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		ev, err := svc.EventByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		views, err := svc.ListByEvent(r.Context(), ev.Ref())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]impactResponse, 0, len(views))
		for _, v := range views {
			out = append(out, toViewResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// targetHistoryHandler godoc
// @Summary Historial de eventos de un objeto
// @Description Eventos que afectaron al objeto indicado (ej: /targets/dcim.device/42/impacts).
// @Tags impacts
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param kind path string true "Tipo del objeto (app.model)"
// @Param targetID path string true "ID del objeto"
// @Success 200 {array} historyResponse
// @Failure 400 {string} string "unsupported kind"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /targets/{kind}/{targetID}/impacts [get]
func targetHistoryHandler(svc *Service, caps capabilities.CapabilitiesResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Authorize(w, r, caps, capabilities.EventsRead); !ok {
			return
		}
		ref := targets.NewRef(targets.Kind(chi.URLParam(r, "kind")), chi.URLParam(r, "targetID"))

		hist, err := svc.ListByTarget(r.Context(), ref)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]historyResponse, 0, len(hist))
		for _, h := range hist {
			out = append(out, historyResponse{
				Impact:      toImpactResponse(h.Impact),
				EventID:     h.Event.ID,
				EventKind:   string(h.Event.Kind),
				EventName:   h.Event.Name,
				EventStatus: string(h.Event.Status),
				Start:       h.Event.Start,
				End:         h.Event.End,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createImpactHandler godoc
// @Summary Registrar impact
// @Description Relaciona un evento abierto con un objeto existente de un tipo admitido. Requiere capability `events:write`.
// @Tags impacts
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param payload body createImpactRequest true "Impact"
// @Success 201 {object} impactResponse
// @Failure 400 {string} string "invalid input / unsupported kind / target not found / event closed"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "event not found"
// @Failure 409 {string} string "impact already exists"
// @Router /impacts [post]
func createImpactHandler(svc *Service, caps capabilities.CapabilitiesResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Authorize(w, r, caps, capabilities.EventsWrite); !ok {
			return
		}

		var req createImpactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ev, err := svc.EventByID(r.Context(), req.EventID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		i, err := svc.Create(r.Context(), CreateInput{
			Event:    ev.Ref(),
			Target:   targets.NewRef(targets.Kind(req.TargetKind), req.TargetID),
			Severity: req.Severity,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toImpactResponse(i))
	}
}

// updateImpactHandler godoc
// @Summary Cambiar severidad de un impact
// @Tags impacts
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param impactID path string true "ID del impact"
// @Param payload body updateImpactRequest true "Severidad"
// @Success 200 {object} impactResponse
// @Failure 400 {string} string "invalid input / event closed"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "impact not found"
// @Router /impacts/{impactID} [patch]
func updateImpactHandler(svc *Service, caps capabilities.CapabilitiesResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Authorize(w, r, caps, capabilities.EventsWrite); !ok {
			return
		}

		var req updateImpactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		i, err := svc.UpdateSeverity(r.Context(), chi.URLParam(r, "impactID"), req.Severity)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toImpactResponse(i))
	}
}

// deleteImpactHandler godoc
// @Summary Borrar impact
// @Tags impacts
// @Param Authorization header string false "Bearer token"
// @Param impactID path string true "ID del impact"
// @Success 204
// @Failure 400 {string} string "event closed"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "impact not found"
// @Router /impacts/{impactID} [delete]
func deleteImpactHandler(svc *Service, caps capabilities.CapabilitiesResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Authorize(w, r, caps, capabilities.EventsWrite); !ok {
			return
		}
		if err := svc.Delete(r.Context(), chi.URLParam(r, "impactID")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrEventNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDuplicate):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrUnsupportedKind),
		errors.Is(err, ErrTargetNotFound),
		errors.Is(err, ErrEventClosed):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toImpactResponse(i Impact) impactResponse {
	return impactResponse{
		ID:        i.ID,
		Event:     i.Event,
		Target:    i.Target,
		Severity:  i.Severity,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func toViewResponse(v View) impactResponse {
	out := toImpactResponse(v.Impact)
	found := v.Target.Found
	out.TargetDisplay = v.Target.Display()
	out.TargetFound = &found
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
