package events

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"vendor-notices/internal/middleware"
	"vendor-notices/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, caps capabilities.CapabilitiesResolver) {
	r.Post("/maintenances", createMaintenanceHandler(svc, caps))
	r.Post("/outages", createOutageHandler(svc, caps))

	r.Get("/events/{eventID}", getEventHandler(svc, caps))
	r.Get("/events/{eventID}/lineage", lineageHandler(svc, caps))
	r.Post("/events/{eventID}/status", updateStatusHandler(svc, caps))
	r.Post("/events/{eventID}/acknowledge", acknowledgeHandler(svc, caps))
}

// eventRequest son los campos comunes de creación (timestamps RFC3339).
type eventRequest struct {
	Name             string  `json:"name"`
	ProviderID       int64   `json:"provider_id"`
	Status           Status  `json:"status" enums:"TENTATIVE,CONFIRMED,CANCELLED,IN-PROCESS,COMPLETED,UNKNOWN"`
	Start            string  `json:"start"`
	End              *string `json:"end"`
	OriginalTimezone string  `json:"original_timezone"`
	Summary          string  `json:"summary"`
	Comments         string  `json:"comments"`
	InternalTicket   string  `json:"internal_ticket"`
	Acknowledged     bool    `json:"acknowledged"`
}

type createMaintenanceRequest struct {
	eventRequest
	Replaces *int64 `json:"replaces"`
}

type createOutageRequest struct {
	eventRequest
	ReportedAt            string  `json:"reported_at"`
	EstimatedTimeToRepair *string `json:"estimated_time_to_repair"`
}

type updateStatusRequest struct {
	Status Status `json:"status"`
}

type acknowledgeRequest struct {
	Acknowledged *bool `json:"acknowledged"`
}

// eventResponse es la vista JSON de un evento (mantenimiento u outage).
type eventResponse struct {
	ID               int64      `json:"id"`
	Kind             Kind       `json:"kind"`
	Name             string     `json:"name"`
	ProviderID       int64      `json:"provider_id"`
	Status           Status     `json:"status"`
	Start            time.Time  `json:"start"`
	End              *time.Time `json:"end,omitempty"`
	OriginalTimezone string     `json:"original_timezone,omitempty"`
	Summary          string     `json:"summary"`
	Comments         string     `json:"comments"`
	InternalTicket   string     `json:"internal_ticket"`
	Acknowledged     bool       `json:"acknowledged"`
	Created          time.Time  `json:"created"`
	LastModified     time.Time  `json:"last_modified"`

	Replaces              *int64     `json:"replaces,omitempty"`
	ReportedAt            *time.Time `json:"reported_at,omitempty"`
	EstimatedTimeToRepair *time.Time `json:"estimated_time_to_repair,omitempty"`
}

// createMaintenanceHandler godoc
// @Summary Crear mantenimiento
// @Description Crea un mantenimiento programado. Si `replaces` viene informado, el mantenimiento reemplazado pasa a RE-SCHEDULED en la misma transacción. Requiere capability `events:write`.
// @Tags events
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param payload body createMaintenanceRequest true "Datos del mantenimiento; timestamps RFC3339"
// @Success 201 {object} eventResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 409 {string} string "event already has a replacement"
// @Router /maintenances [post]
func createMaintenanceHandler(svc *Service, caps capabilities.CapabilitiesResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Authorize(w, r, caps, capabilities.EventsWrite); !ok {
			return
		}

		var req createMaintenanceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		common, err := req.toInput()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		e, err := svc.CreateMaintenance(r.Context(), CreateMaintenanceInput{CommonInput: common, Replaces: req.Replaces})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toEventResponse(e))
	}
}

// createOutageHandler godoc
// @Summary Crear outage
// @Description Registra una caída no planificada. `end` es obligatorio si el estado es COMPLETED. Requiere capability `events:write`.
// @Tags events
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param payload body createOutageRequest true "Datos del outage; timestamps RFC3339"
// @Success 201 {object} eventResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /outages [post]
func createOutageHandler(svc *Service, caps capabilities.CapabilitiesResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Authorize(w, r, caps, capabilities.EventsWrite); !ok {
			return
		}

		var req createOutageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		common, err := req.toInput()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		in := CreateOutageInput{CommonInput: common}
		if req.ReportedAt != "" {
			t, err := time.Parse(time.RFC3339, req.ReportedAt)
			if err != nil {
				http.Error(w, "reported_at must be RFC3339", http.StatusBadRequest)
				return
			}
			in.ReportedAt = t
		}
		if req.EstimatedTimeToRepair != nil && *req.EstimatedTimeToRepair != "" {
			t, err := time.Parse(time.RFC3339, *req.EstimatedTimeToRepair)
			if err != nil {
				http.Error(w, "estimated_time_to_repair must be RFC3339", http.StatusBadRequest)
				return
			}
			in.EstimatedTimeToRepair = &t
		}

		e, err := svc.CreateOutage(r.Context(), in)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toEventResponse(e))
	}
}

// getEventHandler godoc
// @Summary Obtener evento
// @Tags events
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param eventID path int true "ID del evento"
// @Success 200 {object} eventResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "event not found"
// @Router /events/{eventID} [get]
func getEventHandler(svc *Service, caps capabilities.CapabilitiesResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Authorize(w, r, caps, capabilities.EventsRead); !ok {
			return
		}
		id, ok := eventIDParam(w, r)
		if !ok {
			return
		}

		e, err := svc.GetByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(e))
	}
}

// lineageHandler godoc
// @Summary Cadena de reprogramaciones
// @Description Devuelve el evento y los mantenimientos que reemplaza, del más nuevo al más viejo.
// @Tags events
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param eventID path int true "ID del evento"
// @Success 200 {array} eventResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "event not found"
// @Router /events/{eventID}/lineage [get]
func lineageHandler(svc *Service, caps capabilities.CapabilitiesResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Authorize(w, r, caps, capabilities.EventsRead); !ok {
			return
		}
		id, ok := eventIDParam(w, r)
		if !ok {
			return
		}

		chain, err := svc.Lineage(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]eventResponse, 0, len(chain))
		for _, e := range chain {
			out = append(out, toEventResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// updateStatusHandler godoc
// @Summary Cambiar estado
// @Description Cambia el estado de un evento. RE-SCHEDULED no se puede fijar a mano y un evento ya reemplazado no acepta cambios (409).
// @Tags events
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param eventID path int true "ID del evento"
// @Param payload body updateStatusRequest true "Nuevo estado"
// @Success 200 {object} eventResponse
// @Failure 400 {string} string "invalid status"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "event not found"
// @Failure 409 {string} string "status locked"
// @Router /events/{eventID}/status [post]
func updateStatusHandler(svc *Service, caps capabilities.CapabilitiesResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Authorize(w, r, caps, capabilities.EventsWrite); !ok {
			return
		}
		id, ok := eventIDParam(w, r)
		if !ok {
			return
		}

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		e, err := svc.UpdateStatus(r.Context(), id, req.Status)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(e))
	}
}

// acknowledgeHandler godoc
// @Summary Marcar evento como revisado
// @Tags events
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param eventID path int true "ID del evento"
// @Param payload body acknowledgeRequest false "acknowledged (default true)"
// @Success 200 {object} eventResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "event not found"
// @Router /events/{eventID}/acknowledge [post]
func acknowledgeHandler(svc *Service, caps capabilities.CapabilitiesResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Authorize(w, r, caps, capabilities.EventsWrite); !ok {
			return
		}
		id, ok := eventIDParam(w, r)
		if !ok {
			return
		}

		ack := true
		var req acknowledgeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Acknowledged != nil {
			ack = *req.Acknowledged
		}

		e, err := svc.Acknowledge(r.Context(), id, ack)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(e))
	}
}

func (req eventRequest) toInput() (CommonInput, error) {
	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		return CommonInput{}, errors.New("start must be RFC3339")
	}
	in := CommonInput{
		Name:             req.Name,
		ProviderID:       req.ProviderID,
		Status:           req.Status,
		Start:            start,
		OriginalTimezone: req.OriginalTimezone,
		Summary:          req.Summary,
		Comments:         req.Comments,
		InternalTicket:   req.InternalTicket,
		Acknowledged:     req.Acknowledged,
	}
	if req.End != nil && *req.End != "" {
		end, err := time.Parse(time.RFC3339, *req.End)
		if err != nil {
			return CommonInput{}, errors.New("end must be RFC3339")
		}
		in.End = &end
	}
	return in, nil
}

func eventIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "event not found", http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "event not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrStatusLocked), errors.Is(err, ErrAlreadyReplaced):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toEventResponse(e Event) eventResponse {
	out := eventResponse{
		ID:               e.ID,
		Kind:             e.Kind,
		Name:             e.Name,
		ProviderID:       e.ProviderID,
		Status:           e.Status,
		Start:            e.Start,
		End:              e.End,
		OriginalTimezone: e.OriginalTimezone,
		Summary:          e.Summary,
		Comments:         e.Comments,
		InternalTicket:   e.InternalTicket,
		Acknowledged:     e.Acknowledged,
		Created:          e.Created,
		LastModified:     e.LastModified,
	}
	if r, ok := e.Replaces(); ok {
		out.Replaces = &r
	}
	if e.Outage != nil {
		rep := e.Outage.ReportedAt
		out.ReportedAt = &rep
		out.EstimatedTimeToRepair = e.Outage.EstimatedTimeToRepair
	}
	return out
}

// writeJSON está duplicado a propósito en cada módulo (ver providers, impacts).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
