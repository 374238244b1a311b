// Package services holds the composition engine's orchestration layer: the
// blueprint registry surface and the composition service that owns the
// cross-repository contracts (cascades, template application, bulk deletes).
package services

import (
	"context"
	"errors"

	domain "github.com/mirada-interiors/cms-api/internal/domain"
	"github.com/mirada-interiors/cms-api/internal/repositories"
)

// registryLockKey serialises blueprint registry mutations globally; page
// mutations lock pageLockKey(pageID) instead so distinct pages proceed in
// parallel.
const registryLockKey = "registry"

func pageLockKey(pageID string) string { return "page/" + pageID }

// CreateBlueprintCommand carries the caller-supplied blueprint definition.
// New blueprints are never system-owned.
type CreateBlueprintCommand struct {
	Name          string
	DisplayName   string
	Description   string
	Type          domain.BlueprintType
	AllowMultiple bool
	Icon          string
	Category      string
	Fields        []domain.Field
}

// UpdateBlueprintCommand patches blueprint metadata. Nil fields keep the
// stored value; the blueprint name is immutable. System blueprints accept
// presentation changes only: their cardinality and field schema are locked.
type UpdateBlueprintCommand struct {
	BlueprintID   string
	DisplayName   *string
	Description   *string
	Icon          *string
	Category      *string
	AllowMultiple *bool
	Fields        []domain.Field
}

// BlueprintFilter narrows blueprint listings at the service surface.
type BlueprintFilter struct {
	IsSystem *bool
	Type     *domain.BlueprintType
}

// BlueprintService is the blueprint registry surface.
type BlueprintService interface {
	Create(ctx context.Context, cmd CreateBlueprintCommand) (domain.Blueprint, error)
	Update(ctx context.Context, cmd UpdateBlueprintCommand) (domain.Blueprint, error)
	Get(ctx context.Context, blueprintID string) (domain.Blueprint, error)
	List(ctx context.Context, filter BlueprintFilter) ([]domain.Blueprint, error)
	Duplicate(ctx context.Context, blueprintID string) (domain.Blueprint, error)
	// SeedSystemBlueprints installs the built-in blueprint set, skipping any
	// name that already exists. Returns the number inserted.
	SeedSystemBlueprints(ctx context.Context) (int, error)
}

// AddInstanceCommand creates one block instance on a page.
type AddInstanceCommand struct {
	PageID      string
	BlueprintID string
	Order       int
	DataEn      domain.Payload
	DataAr      domain.Payload
	Status      domain.InstanceStatus
}

// UpdatePayloadCommand patches one locale's payload of an instance. Nil
// values in Patch delete the key. Status, when set, also transitions the
// instance's editorial state.
type UpdatePayloadCommand struct {
	InstanceID string
	Locale     domain.Locale
	Patch      domain.Payload
	Status     *domain.InstanceStatus
}

// ApplyTemplateCommand expands a catalog template onto a page. The
// idempotency key is optional; when present, a replay with the same key and
// arguments returns the originally created instances.
type ApplyTemplateCommand struct {
	PageID         string
	TemplateID     string
	IdempotencyKey string
}

// BulkDeleteCommand names instances and blueprints to delete. Instances are
// processed first so a cascading blueprint delete never double-deletes.
type BulkDeleteCommand struct {
	InstanceIDs    []string
	BlueprintIDs   []string
	IdempotencyKey string
}

// CascadeResult reports a completed cascading blueprint delete.
type CascadeResult struct {
	Blueprint            domain.Blueprint
	DeletedInstanceCount int
}

// BulkDeleteResult reports how many entities a bulk delete removed:
// explicitly named instances, cascade-deleted instances, and the blueprints
// themselves.
type BulkDeleteResult struct {
	DeletedCount int
}

// CompositionService is the operations surface exposed to editing tools.
// AddInstance and UpdatePayload also return schema advisories (missing
// required fields, locale key mismatches) for editing UIs; advisories never
// fail the mutation.
type CompositionService interface {
	AddInstance(ctx context.Context, cmd AddInstanceCommand) (domain.BlockInstance, []string, error)
	RemoveInstance(ctx context.Context, instanceID string) error
	Reorder(ctx context.Context, pageID string, orderedIDs []string) ([]domain.BlockInstance, error)
	UpdatePayload(ctx context.Context, cmd UpdatePayloadCommand) (domain.BlockInstance, []string, error)
	DuplicateInstance(ctx context.Context, instanceID string) (domain.BlockInstance, error)
	ListPage(ctx context.Context, pageID string) ([]domain.BlockInstance, error)
	ApplyTemplate(ctx context.Context, cmd ApplyTemplateCommand) ([]domain.BlockInstance, error)
	DeleteBlueprintCascade(ctx context.Context, blueprintID string) (CascadeResult, error)
	BulkDelete(ctx context.Context, cmd BulkDeleteCommand) (BulkDeleteResult, error)
	// RecoverPendingCascades finishes any cascade interrupted mid-flight,
	// identified by the blueprint's deleting marker. Run at startup.
	RecoverPendingCascades(ctx context.Context) (int, error)
}

func isRepositoryNotFound(err error) bool {
	if err == nil {
		return false
	}
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

func isRepositoryConflict(err error) bool {
	if err == nil {
		return false
	}
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}
