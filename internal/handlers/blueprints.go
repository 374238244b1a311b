package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/mirada-interiors/cms-api/internal/domain"
	"github.com/mirada-interiors/cms-api/internal/platform/httpx"
	"github.com/mirada-interiors/cms-api/internal/services"
)

// BlueprintHandlers exposes the blueprint registry endpoints. Deletion is a
// cascade and therefore routed through the composition service.
type BlueprintHandlers struct {
	blueprints  services.BlueprintService
	composition services.CompositionService
}

// BlueprintOption customises construction of BlueprintHandlers.
type BlueprintOption func(*BlueprintHandlers)

// WithBlueprintService injects the blueprint registry service.
func WithBlueprintService(svc services.BlueprintService) BlueprintOption {
	return func(h *BlueprintHandlers) {
		h.blueprints = svc
	}
}

// WithBlueprintCompositionService injects the composition service used for cascading deletes.
func WithBlueprintCompositionService(svc services.CompositionService) BlueprintOption {
	return func(h *BlueprintHandlers) {
		h.composition = svc
	}
}

// NewBlueprintHandlers constructs handlers for blueprint registry endpoints.
func NewBlueprintHandlers(opts ...BlueprintOption) *BlueprintHandlers {
	handler := &BlueprintHandlers{}
	for _, opt := range opts {
		if opt != nil {
			opt(handler)
		}
	}
	return handler
}

// Routes registers blueprint endpoints against the provided router.
func (h *BlueprintHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{blueprintID}", h.get)
	r.Patch("/{blueprintID}", h.update)
	r.Delete("/{blueprintID}", h.deleteCascade)
	r.Post("/{blueprintID}:duplicate", h.duplicate)
}

type createBlueprintRequest struct {
	Name          string         `json:"name"`
	DisplayName   string         `json:"display_name"`
	Description   string         `json:"description"`
	Type          string         `json:"type"`
	AllowMultiple bool           `json:"allow_multiple"`
	Icon          string         `json:"icon"`
	Category      string         `json:"category"`
	Fields        []fieldPayload `json:"fields"`
}

func (h *BlueprintHandlers) create(w http.ResponseWriter, r *http.Request) {
	if h.blueprints == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("registry_unavailable", "blueprint service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req createBlueprintRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "blueprint name is required", http.StatusBadRequest))
		return
	}
	blueprintType, ok := domain.ParseBlueprintType(req.Type)
	if !ok {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "type must be DOCUMENT or COMPONENT", http.StatusBadRequest))
		return
	}

	created, err := h.blueprints.Create(r.Context(), services.CreateBlueprintCommand{
		Name:          req.Name,
		DisplayName:   req.DisplayName,
		Description:   req.Description,
		Type:          blueprintType,
		AllowMultiple: req.AllowMultiple,
		Icon:          req.Icon,
		Category:      req.Category,
		Fields:        fieldsToDomain(req.Fields),
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, blueprintFromDomain(created))
}

type updateBlueprintRequest struct {
	DisplayName   *string        `json:"display_name"`
	Description   *string        `json:"description"`
	Icon          *string        `json:"icon"`
	Category      *string        `json:"category"`
	AllowMultiple *bool          `json:"allow_multiple"`
	Fields        []fieldPayload `json:"fields"`
}

func (h *BlueprintHandlers) update(w http.ResponseWriter, r *http.Request) {
	if h.blueprints == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("registry_unavailable", "blueprint service is unavailable", http.StatusServiceUnavailable))
		return
	}

	blueprintID := strings.TrimSpace(chi.URLParam(r, "blueprintID"))
	if blueprintID == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "blueprint id is required", http.StatusBadRequest))
		return
	}

	var req updateBlueprintRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	cmd := services.UpdateBlueprintCommand{
		BlueprintID:   blueprintID,
		DisplayName:   req.DisplayName,
		Description:   req.Description,
		Icon:          req.Icon,
		Category:      req.Category,
		AllowMultiple: req.AllowMultiple,
	}
	if req.Fields != nil {
		cmd.Fields = fieldsToDomain(req.Fields)
		if cmd.Fields == nil {
			// An explicit empty list clears the schema.
			cmd.Fields = []domain.Field{}
		}
	}

	updated, err := h.blueprints.Update(r.Context(), cmd)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, blueprintFromDomain(updated))
}

type blueprintListResponse struct {
	Blueprints []blueprintPayload `json:"blueprints"`
}

func (h *BlueprintHandlers) list(w http.ResponseWriter, r *http.Request) {
	if h.blueprints == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("registry_unavailable", "blueprint service is unavailable", http.StatusServiceUnavailable))
		return
	}

	filter, err := parseBlueprintFilter(r)
	if err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	blueprints, err := h.blueprints.List(r.Context(), filter)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	items := make([]blueprintPayload, 0, len(blueprints))
	for _, blueprint := range blueprints {
		items = append(items, blueprintFromDomain(blueprint))
	}
	httpx.WriteJSON(w, http.StatusOK, blueprintListResponse{Blueprints: items})
}

func (h *BlueprintHandlers) get(w http.ResponseWriter, r *http.Request) {
	if h.blueprints == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("registry_unavailable", "blueprint service is unavailable", http.StatusServiceUnavailable))
		return
	}

	blueprintID := strings.TrimSpace(chi.URLParam(r, "blueprintID"))
	if blueprintID == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "blueprint id is required", http.StatusBadRequest))
		return
	}

	blueprint, err := h.blueprints.Get(r.Context(), blueprintID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, blueprintFromDomain(blueprint))
}

type blueprintDeleteResponse struct {
	BlueprintID          string `json:"blueprint_id"`
	DeletedInstanceCount int    `json:"deleted_instance_count"`
}

func (h *BlueprintHandlers) deleteCascade(w http.ResponseWriter, r *http.Request) {
	if h.composition == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("composition_unavailable", "composition service is unavailable", http.StatusServiceUnavailable))
		return
	}

	blueprintID := strings.TrimSpace(chi.URLParam(r, "blueprintID"))
	if blueprintID == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "blueprint id is required", http.StatusBadRequest))
		return
	}

	result, err := h.composition.DeleteBlueprintCascade(r.Context(), blueprintID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, blueprintDeleteResponse{
		BlueprintID:          result.Blueprint.ID,
		DeletedInstanceCount: result.DeletedInstanceCount,
	})
}

func (h *BlueprintHandlers) duplicate(w http.ResponseWriter, r *http.Request) {
	if h.blueprints == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("registry_unavailable", "blueprint service is unavailable", http.StatusServiceUnavailable))
		return
	}

	blueprintID := strings.TrimSpace(chi.URLParam(r, "blueprintID"))
	if blueprintID == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "blueprint id is required", http.StatusBadRequest))
		return
	}

	duplicate, err := h.blueprints.Duplicate(r.Context(), blueprintID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, blueprintFromDomain(duplicate))
}

func parseBlueprintFilter(r *http.Request) (services.BlueprintFilter, error) {
	values := r.URL.Query()
	filter := services.BlueprintFilter{}

	if raw := strings.TrimSpace(values.Get("type")); raw != "" {
		blueprintType, ok := domain.ParseBlueprintType(raw)
		if !ok {
			return services.BlueprintFilter{}, errInvalidQueryValue("type", raw)
		}
		filter.Type = &blueprintType
	}
	if raw := strings.TrimSpace(values.Get("is_system")); raw != "" {
		isSystem, err := strconv.ParseBool(raw)
		if err != nil {
			return services.BlueprintFilter{}, errInvalidQueryValue("is_system", raw)
		}
		filter.IsSystem = &isSystem
	}
	return filter, nil
}
