package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mirada-interiors/cms-api/internal/catalog"
	domain "github.com/mirada-interiors/cms-api/internal/domain"
	"github.com/mirada-interiors/cms-api/internal/platform/httpx"
)

const templateCacheControl = "public, max-age=3600"

// TemplateHandlers serves the read-only template catalog.
type TemplateHandlers struct {
	catalog *catalog.Catalog
}

// NewTemplateHandlers constructs handlers for template catalog endpoints.
func NewTemplateHandlers(c *catalog.Catalog) *TemplateHandlers {
	return &TemplateHandlers{catalog: c}
}

// Routes registers template catalog endpoints against the provided router.
func (h *TemplateHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.list)
	r.Get("/{templateID}", h.get)
}

type templateListResponse struct {
	Templates []templatePayload `json:"templates"`
}

func (h *TemplateHandlers) list(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("catalog_unavailable", "template catalog is unavailable", http.StatusServiceUnavailable))
		return
	}

	var templates []domain.Template
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		templateType, ok := domain.ParseTemplateType(raw)
		if !ok {
			httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", errInvalidQueryValue("type", raw).Error(), http.StatusBadRequest))
			return
		}
		templates = h.catalog.ByType(templateType)
	} else {
		templates = h.catalog.All()
	}

	items := make([]templatePayload, 0, len(templates))
	for _, template := range templates {
		items = append(items, templateFromDomain(template))
	}

	w.Header().Set("Cache-Control", templateCacheControl)
	httpx.WriteJSON(w, http.StatusOK, templateListResponse{Templates: items})
}

func (h *TemplateHandlers) get(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("catalog_unavailable", "template catalog is unavailable", http.StatusServiceUnavailable))
		return
	}

	templateID := strings.TrimSpace(chi.URLParam(r, "templateID"))
	if templateID == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "template id is required", http.StatusBadRequest))
		return
	}

	template, ok := h.catalog.ByID(templateID)
	if !ok {
		httpx.WriteError(r.Context(), w, httpx.NewError("template_not_found", "template not found", http.StatusNotFound))
		return
	}

	w.Header().Set("Cache-Control", templateCacheControl)
	httpx.WriteJSON(w, http.StatusOK, templateFromDomain(template))
}
