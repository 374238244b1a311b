package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/mirada-interiors/cms-api/internal/domain"
	"github.com/mirada-interiors/cms-api/internal/platform/httpx"
	"github.com/mirada-interiors/cms-api/internal/services"
)

// BlockHandlers exposes instance-scoped composition endpoints.
type BlockHandlers struct {
	composition services.CompositionService
}

// NewBlockHandlers constructs handlers for block instance endpoints.
func NewBlockHandlers(composition services.CompositionService) *BlockHandlers {
	return &BlockHandlers{composition: composition}
}

// Routes registers block instance endpoints against the provided router.
func (h *BlockHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Patch("/{blockID}", h.patch)
	r.Delete("/{blockID}", h.remove)
	r.Post("/{blockID}:duplicate", h.duplicate)
}

func (h *BlockHandlers) blockID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.composition == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("composition_unavailable", "composition service is unavailable", http.StatusServiceUnavailable))
		return "", false
	}
	blockID := strings.TrimSpace(chi.URLParam(r, "blockID"))
	if blockID == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "block id is required", http.StatusBadRequest))
		return "", false
	}
	return blockID, true
}

type patchBlockRequest struct {
	Locale string         `json:"locale"`
	Patch  domain.Payload `json:"patch"`
	Status *string        `json:"status"`
}

func (h *BlockHandlers) patch(w http.ResponseWriter, r *http.Request) {
	blockID, ok := h.blockID(w, r)
	if !ok {
		return
	}

	var req patchBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	cmd := services.UpdatePayloadCommand{
		InstanceID: blockID,
		Locale:     domain.ParseLocale(req.Locale),
		Patch:      req.Patch,
	}
	if req.Status != nil {
		status := domain.ParseInstanceStatus(*req.Status)
		cmd.Status = &status
	}

	instance, warnings, err := h.composition.UpdatePayload(r.Context(), cmd)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, blockMutationResponse{
		blockInstancePayload: blockInstanceFromDomain(instance),
		Warnings:             warnings,
	})
}

func (h *BlockHandlers) remove(w http.ResponseWriter, r *http.Request) {
	blockID, ok := h.blockID(w, r)
	if !ok {
		return
	}

	if err := h.composition.RemoveInstance(r.Context(), blockID); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusNoContent, nil)
}

func (h *BlockHandlers) duplicate(w http.ResponseWriter, r *http.Request) {
	blockID, ok := h.blockID(w, r)
	if !ok {
		return
	}

	instance, err := h.composition.DuplicateInstance(r.Context(), blockID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, blockInstanceFromDomain(instance))
}
