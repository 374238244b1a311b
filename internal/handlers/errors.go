package handlers

import (
	"context"
	"errors"
	"net/http"

	domain "github.com/mirada-interiors/cms-api/internal/domain"
	"github.com/mirada-interiors/cms-api/internal/platform/httpx"
	"github.com/mirada-interiors/cms-api/internal/platform/idempotency"
	"github.com/mirada-interiors/cms-api/internal/repositories"
)

// writeServiceError translates service-layer failures into the canonical
// error envelope. The domain error taxonomy has a fixed status mapping; any
// unrecognised error falls through to a 500.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	var (
		duplicateName  *domain.DuplicateNameError
		notFound       *domain.NotFoundError
		protected      *domain.ProtectedResourceError
		cardinality    *domain.CardinalityError
		badPermutation *domain.InvalidPermutationError
		badBlueprint   *domain.BlueprintNotFoundError
	)

	switch {
	case errors.As(err, &duplicateName):
		httpx.WriteError(ctx, w, httpx.NewError("duplicate_name", err.Error(), http.StatusConflict).
			WithDetails(map[string]any{"name": duplicateName.Name}))
	case errors.As(err, &notFound):
		httpx.WriteError(ctx, w, httpx.NewError(notFound.Kind+"_not_found", err.Error(), http.StatusNotFound))
	case errors.As(err, &protected):
		httpx.WriteError(ctx, w, httpx.NewError("protected_resource", err.Error(), http.StatusForbidden).
			WithDetails(map[string]any{"name": protected.Name}))
	case errors.As(err, &cardinality):
		httpx.WriteError(ctx, w, httpx.NewError("cardinality_violation", err.Error(), http.StatusConflict).
			WithDetails(map[string]any{"page_id": cardinality.PageID, "blueprint_name": cardinality.BlueprintName}))
	case errors.As(err, &badPermutation):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_permutation", err.Error(), http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"page_id": badPermutation.PageID}))
	case errors.As(err, &badBlueprint):
		httpx.WriteError(ctx, w, httpx.NewError("blueprint_not_found", err.Error(), http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"blueprint_name": badBlueprint.Name}))
	case errors.Is(err, idempotency.ErrOperationInFlight):
		httpx.WriteError(ctx, w, httpx.NewError("operation_in_flight", err.Error(), http.StatusConflict))
	case errors.Is(err, idempotency.ErrFingerprintMismatch):
		httpx.WriteError(ctx, w, httpx.NewError("idempotency_key_reused", err.Error(), http.StatusUnprocessableEntity))
	default:
		writeRepositoryError(ctx, w, err)
	}
}

func writeRepositoryError(ctx context.Context, w http.ResponseWriter, err error) {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			httpx.WriteError(ctx, w, httpx.NewError("resource_not_found", err.Error(), http.StatusNotFound))
			return
		case repoErr.IsConflict():
			httpx.WriteError(ctx, w, httpx.NewError("resource_conflict", err.Error(), http.StatusConflict))
			return
		case repoErr.IsUnavailable():
			httpx.WriteError(ctx, w, httpx.NewError("storage_unavailable", "content storage is unavailable", http.StatusServiceUnavailable))
			return
		}
	}
	httpx.WriteError(ctx, w, httpx.NewError("internal_error", err.Error(), http.StatusInternalServerError))
}
