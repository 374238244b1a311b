package repositories

import (
	"context"
	"errors"
	"time"

	domain "github.com/mirada-interiors/cms-api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for
// dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Blueprints() BlueprintRepository
	Instances() BlockInstanceRepository
	UnitOfWork
}

// RepositoryError wraps low-level persistence failures with categorisation
// used by services. It is distinct from the domain error taxonomy: a
// RepositoryError signals a storage problem, not an invalid request.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// UnitOfWork groups repository operations in a transactional boundary when
// the backing store supports one.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// IsNotFound reports whether err is a repository not-found error.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// IsConflict reports whether err is a repository conflict error.
func IsConflict(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}

// BlueprintFilter narrows blueprint listings.
type BlueprintFilter struct {
	IsSystem *bool
	Type     *domain.BlueprintType
	// IncludeDeleting also returns blueprints with a cascade in progress;
	// used by the startup recovery sweep.
	IncludeDeleting bool
}

// BlueprintRepository persists blueprint definitions. Insert fails with a
// conflict error when the name is already taken.
type BlueprintRepository interface {
	Insert(ctx context.Context, blueprint domain.Blueprint) error
	Update(ctx context.Context, blueprint domain.Blueprint) error
	FindByID(ctx context.Context, blueprintID string) (domain.Blueprint, error)
	FindByName(ctx context.Context, name string) (domain.Blueprint, error)
	List(ctx context.Context, filter BlueprintFilter) ([]domain.Blueprint, error)
	// MarkDeleting flips the cascade-in-progress flag.
	MarkDeleting(ctx context.Context, blueprintID string, deleting bool, at time.Time) error
	Delete(ctx context.Context, blueprintID string) error
}

// BlockInstanceRepository is the durable ordered collection of block
// instances per page. Implementations keep each page's order values dense
// across every mutation.
type BlockInstanceRepository interface {
	// InsertAt stores the instance at its requested order, shifting
	// instances at that order and above up by one. Requested orders are
	// clamped to [0, n].
	InsertAt(ctx context.Context, instance domain.BlockInstance) (domain.BlockInstance, error)
	// Update replaces the instance's payloads and status. Order changes are
	// ignored; use Reorder.
	Update(ctx context.Context, instance domain.BlockInstance) (domain.BlockInstance, error)
	// Remove deletes the instance and shifts higher-ordered siblings down.
	Remove(ctx context.Context, instanceID string) (domain.BlockInstance, error)
	// Reorder assigns each listed instance the order matching its index.
	Reorder(ctx context.Context, pageID string, orderedIDs []string) ([]domain.BlockInstance, error)
	FindByID(ctx context.Context, instanceID string) (domain.BlockInstance, error)
	ListByPage(ctx context.Context, pageID string) ([]domain.BlockInstance, error)
	ListByBlueprint(ctx context.Context, blueprintID string) ([]domain.BlockInstance, error)
	CountByPageAndBlueprint(ctx context.Context, pageID, blueprintID string) (int, error)
	// RemoveByBlueprint deletes every instance referencing the blueprint
	// across all pages, re-densifying each affected page, and reports how
	// many instances were removed.
	RemoveByBlueprint(ctx context.Context, blueprintID string) (int, error)
}
