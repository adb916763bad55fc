package providers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"vendor-notices/internal/middleware"
	"vendor-notices/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, caps capabilities.CapabilitiesResolver) {
	r.Route("/providers", func(pr chi.Router) {
		pr.Get("/", listProvidersHandler(svc, caps))
		pr.Post("/", createProviderHandler(svc, caps))
	})
}

type createProviderRequest struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type providerResponse struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// listProvidersHandler godoc
// @Summary Listar proveedores
// @Tags providers
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Success 200 {array} providerResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /providers [get]
func listProvidersHandler(svc *Service, caps capabilities.CapabilitiesResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Authorize(w, r, caps, capabilities.EventsRead); !ok {
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]providerResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toProviderResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createProviderHandler godoc
// @Summary Crear proveedor
// @Description Slug en minúsculas ([a-z0-9_-]). Requiere capability `events:write`.
// @Tags providers
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param payload body createProviderRequest true "Proveedor"
// @Success 201 {object} providerResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 409 {string} string "provider slug already exists"
// @Router /providers [post]
func createProviderHandler(svc *Service, caps capabilities.CapabilitiesResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Authorize(w, r, caps, capabilities.EventsWrite); !ok {
			return
		}

		var req createProviderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), CreateInput{Slug: req.Slug, Name: req.Name})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "invalid input", http.StatusBadRequest)
			case errors.Is(err, ErrDuplicate):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusCreated, toProviderResponse(p))
	}
}

func toProviderResponse(p Provider) providerResponse {
	return providerResponse{ID: p.ID, Slug: p.Slug, Name: p.Name, CreatedAt: p.CreatedAt}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
