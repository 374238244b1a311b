package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mirada-interiors/cms-api/internal/platform/httpx"
	"github.com/mirada-interiors/cms-api/internal/services"
)

// ContentHandlers exposes cross-page content operations.
type ContentHandlers struct {
	composition services.CompositionService
}

// NewContentHandlers constructs handlers for cross-page content endpoints.
func NewContentHandlers(composition services.CompositionService) *ContentHandlers {
	return &ContentHandlers{composition: composition}
}

// Routes registers content endpoints against the provided router. The bulk
// delete route lives at the API root rather than under a resource prefix.
func (h *ContentHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/content:bulk-delete", h.bulkDelete)
}

type bulkDeleteRequest struct {
	InstanceIDs  []string `json:"instance_ids"`
	BlueprintIDs []string `json:"blueprint_ids"`
}

type bulkDeleteResponse struct {
	DeletedCount int `json:"deleted_count"`
}

func (h *ContentHandlers) bulkDelete(w http.ResponseWriter, r *http.Request) {
	if h.composition == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("composition_unavailable", "composition service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req bulkDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if len(req.InstanceIDs) == 0 && len(req.BlueprintIDs) == 0 {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "at least one instance or blueprint id is required", http.StatusBadRequest))
		return
	}

	result, err := h.composition.BulkDelete(r.Context(), services.BulkDeleteCommand{
		InstanceIDs:    req.InstanceIDs,
		BlueprintIDs:   req.BlueprintIDs,
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bulkDeleteResponse{DeletedCount: result.DeletedCount})
}
