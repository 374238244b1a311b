package memory

import (
	"context"
	"sort"
	"time"

	domain "github.com/mirada-interiors/cms-api/internal/domain"
	"github.com/mirada-interiors/cms-api/internal/repositories"
)

// BlueprintRepository keeps blueprint definitions in a map keyed by id.
type BlueprintRepository struct {
	registry *Registry
}

var _ repositories.BlueprintRepository = (*BlueprintRepository)(nil)

// Insert stores a new blueprint. Name collisions are rejected with a
// conflict error, matching the unique-name contract.
func (r *BlueprintRepository) Insert(ctx context.Context, blueprint domain.Blueprint) error {
	r.registry.mu.Lock()
	defer r.registry.mu.Unlock()

	if _, ok := r.registry.blueprints[blueprint.ID]; ok {
		return conflictErr("blueprint %q already exists", blueprint.ID)
	}
	for _, existing := range r.registry.blueprints {
		if existing.Name == blueprint.Name {
			return conflictErr("blueprint name %q already taken", blueprint.Name)
		}
	}

	r.registry.journalBlueprint(ctx, blueprint.ID)
	r.registry.blueprints[blueprint.ID] = blueprint.Clone()
	return nil
}

// Update replaces a stored blueprint. The name stays subject to the
// uniqueness contract against other blueprints.
func (r *BlueprintRepository) Update(ctx context.Context, blueprint domain.Blueprint) error {
	r.registry.mu.Lock()
	defer r.registry.mu.Unlock()

	if _, ok := r.registry.blueprints[blueprint.ID]; !ok {
		return notFoundErr("blueprint", blueprint.ID)
	}
	for id, existing := range r.registry.blueprints {
		if id != blueprint.ID && existing.Name == blueprint.Name {
			return conflictErr("blueprint name %q already taken", blueprint.Name)
		}
	}

	r.registry.journalBlueprint(ctx, blueprint.ID)
	r.registry.blueprints[blueprint.ID] = blueprint.Clone()
	return nil
}

func (r *BlueprintRepository) FindByID(_ context.Context, blueprintID string) (domain.Blueprint, error) {
	r.registry.mu.RLock()
	defer r.registry.mu.RUnlock()

	blueprint, ok := r.registry.blueprints[blueprintID]
	if !ok {
		return domain.Blueprint{}, notFoundErr("blueprint", blueprintID)
	}
	return blueprint.Clone(), nil
}

func (r *BlueprintRepository) FindByName(_ context.Context, name string) (domain.Blueprint, error) {
	r.registry.mu.RLock()
	defer r.registry.mu.RUnlock()

	for _, blueprint := range r.registry.blueprints {
		if blueprint.Name == name {
			return blueprint.Clone(), nil
		}
	}
	return domain.Blueprint{}, notFoundErr("blueprint", name)
}

// List returns matching blueprints sorted by name. Blueprints mid-cascade
// are hidden unless the filter asks for them.
func (r *BlueprintRepository) List(_ context.Context, filter repositories.BlueprintFilter) ([]domain.Blueprint, error) {
	r.registry.mu.RLock()
	defer r.registry.mu.RUnlock()

	result := make([]domain.Blueprint, 0, len(r.registry.blueprints))
	for _, blueprint := range r.registry.blueprints {
		if blueprint.Deleting && !filter.IncludeDeleting {
			continue
		}
		if filter.IsSystem != nil && blueprint.IsSystem != *filter.IsSystem {
			continue
		}
		if filter.Type != nil && blueprint.Type != *filter.Type {
			continue
		}
		result = append(result, blueprint.Clone())
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *BlueprintRepository) MarkDeleting(ctx context.Context, blueprintID string, deleting bool, at time.Time) error {
	r.registry.mu.Lock()
	defer r.registry.mu.Unlock()

	blueprint, ok := r.registry.blueprints[blueprintID]
	if !ok {
		return notFoundErr("blueprint", blueprintID)
	}
	r.registry.journalBlueprint(ctx, blueprintID)
	blueprint.Deleting = deleting
	blueprint.UpdatedAt = at
	r.registry.blueprints[blueprintID] = blueprint
	return nil
}

func (r *BlueprintRepository) Delete(ctx context.Context, blueprintID string) error {
	r.registry.mu.Lock()
	defer r.registry.mu.Unlock()

	if _, ok := r.registry.blueprints[blueprintID]; !ok {
		return notFoundErr("blueprint", blueprintID)
	}
	r.registry.journalBlueprint(ctx, blueprintID)
	delete(r.registry.blueprints, blueprintID)
	return nil
}
