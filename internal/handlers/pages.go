package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/mirada-interiors/cms-api/internal/domain"
	"github.com/mirada-interiors/cms-api/internal/platform/httpx"
	"github.com/mirada-interiors/cms-api/internal/services"
)

// appendOrder is beyond any live page length, so an omitted order clamps to
// the end of the page.
const appendOrder = 1 << 30

// PageHandlers exposes page-scoped composition endpoints.
type PageHandlers struct {
	composition services.CompositionService
}

// NewPageHandlers constructs handlers for page composition endpoints.
func NewPageHandlers(composition services.CompositionService) *PageHandlers {
	return &PageHandlers{composition: composition}
}

// Routes registers page composition endpoints against the provided router.
func (h *PageHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/{pageID}/blocks", h.addBlock)
	r.Get("/{pageID}/blocks", h.listBlocks)
	r.Post("/{pageID}/blocks:reorder", h.reorder)
	r.Post("/{pageID}:apply-template", h.applyTemplate)
}

func (h *PageHandlers) pageID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.composition == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("composition_unavailable", "composition service is unavailable", http.StatusServiceUnavailable))
		return "", false
	}
	pageID := strings.TrimSpace(chi.URLParam(r, "pageID"))
	if pageID == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "page id is required", http.StatusBadRequest))
		return "", false
	}
	return pageID, true
}

type addBlockRequest struct {
	BlueprintID string         `json:"blueprint_id"`
	Order       *int           `json:"order"`
	DataEn      domain.Payload `json:"data_en"`
	DataAr      domain.Payload `json:"data_ar"`
	Status      string         `json:"status"`
}

func (h *PageHandlers) addBlock(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.pageID(w, r)
	if !ok {
		return
	}

	var req addBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.BlueprintID) == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "blueprint id is required", http.StatusBadRequest))
		return
	}

	order := appendOrder
	if req.Order != nil {
		order = *req.Order
	}

	instance, warnings, err := h.composition.AddInstance(r.Context(), services.AddInstanceCommand{
		PageID:      pageID,
		BlueprintID: strings.TrimSpace(req.BlueprintID),
		Order:       order,
		DataEn:      req.DataEn,
		DataAr:      req.DataAr,
		Status:      domain.ParseInstanceStatus(req.Status),
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, blockMutationResponse{
		blockInstancePayload: blockInstanceFromDomain(instance),
		Warnings:             warnings,
	})
}

type blockListResponse struct {
	Blocks []blockInstancePayload `json:"blocks"`
}

func (h *PageHandlers) listBlocks(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.pageID(w, r)
	if !ok {
		return
	}

	blocks, err := h.composition.ListPage(r.Context(), pageID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, blockListResponse{Blocks: blockInstancesFromDomain(blocks)})
}

type reorderRequest struct {
	OrderedIDs []string `json:"ordered_ids"`
}

func (h *PageHandlers) reorder(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.pageID(w, r)
	if !ok {
		return
	}

	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	blocks, err := h.composition.Reorder(r.Context(), pageID, req.OrderedIDs)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, blockListResponse{Blocks: blockInstancesFromDomain(blocks)})
}

type applyTemplateRequest struct {
	TemplateID string `json:"template_id"`
}

func (h *PageHandlers) applyTemplate(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.pageID(w, r)
	if !ok {
		return
	}

	var req applyTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.TemplateID) == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "template id is required", http.StatusBadRequest))
		return
	}

	blocks, err := h.composition.ApplyTemplate(r.Context(), services.ApplyTemplateCommand{
		PageID:         pageID,
		TemplateID:     strings.TrimSpace(req.TemplateID),
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, blockListResponse{Blocks: blockInstancesFromDomain(blocks)})
}
