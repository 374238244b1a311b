package memory

import (
	"context"
	"sort"

	domain "github.com/mirada-interiors/cms-api/internal/domain"
	"github.com/mirada-interiors/cms-api/internal/repositories"
)

// BlockInstanceRepository keeps block instances in a map keyed by id while
// maintaining dense zero-based order values per page.
type BlockInstanceRepository struct {
	registry *Registry
}

var _ repositories.BlockInstanceRepository = (*BlockInstanceRepository)(nil)

// pageSlice returns the page's instances sorted by order. Caller must hold
// the registry lock.
func (r *BlockInstanceRepository) pageSlice(pageID string) []domain.BlockInstance {
	page := make([]domain.BlockInstance, 0, 8)
	for _, inst := range r.registry.instances {
		if inst.PageID == pageID {
			page = append(page, inst)
		}
	}
	sort.Slice(page, func(i, j int) bool { return page[i].Order < page[j].Order })
	return page
}

// redensify rewrites the page's order values to match slice position.
// Caller must hold the registry lock.
func (r *BlockInstanceRepository) redensify(ctx context.Context, page []domain.BlockInstance) {
	for i, inst := range page {
		if inst.Order != i {
			r.registry.journalInstance(ctx, inst.ID)
			inst.Order = i
			r.registry.instances[inst.ID] = inst
		}
	}
}

func (r *BlockInstanceRepository) InsertAt(ctx context.Context, instance domain.BlockInstance) (domain.BlockInstance, error) {
	r.registry.mu.Lock()
	defer r.registry.mu.Unlock()

	if _, ok := r.registry.instances[instance.ID]; ok {
		return domain.BlockInstance{}, conflictErr("block instance %q already exists", instance.ID)
	}

	page := r.pageSlice(instance.PageID)
	stored := instance.Clone()
	if stored.Order < 0 {
		stored.Order = 0
	}
	if stored.Order > len(page) {
		stored.Order = len(page)
	}

	for _, sibling := range page {
		if sibling.Order >= stored.Order {
			r.registry.journalInstance(ctx, sibling.ID)
			sibling.Order++
			r.registry.instances[sibling.ID] = sibling
		}
	}
	r.registry.journalInstance(ctx, stored.ID)
	r.registry.instances[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *BlockInstanceRepository) Update(ctx context.Context, instance domain.BlockInstance) (domain.BlockInstance, error) {
	r.registry.mu.Lock()
	defer r.registry.mu.Unlock()

	current, ok := r.registry.instances[instance.ID]
	if !ok {
		return domain.BlockInstance{}, notFoundErr("block instance", instance.ID)
	}

	updated := instance.Clone()
	// Placement is owned by InsertAt/Remove/Reorder.
	updated.PageID = current.PageID
	updated.BlueprintID = current.BlueprintID
	updated.Order = current.Order
	updated.CreatedAt = current.CreatedAt

	r.registry.journalInstance(ctx, updated.ID)
	r.registry.instances[updated.ID] = updated
	return updated.Clone(), nil
}

func (r *BlockInstanceRepository) Remove(ctx context.Context, instanceID string) (domain.BlockInstance, error) {
	r.registry.mu.Lock()
	defer r.registry.mu.Unlock()

	removed, ok := r.registry.instances[instanceID]
	if !ok {
		return domain.BlockInstance{}, notFoundErr("block instance", instanceID)
	}
	r.registry.journalInstance(ctx, instanceID)
	delete(r.registry.instances, instanceID)
	r.redensify(ctx, r.pageSlice(removed.PageID))
	return removed.Clone(), nil
}

func (r *BlockInstanceRepository) Reorder(ctx context.Context, pageID string, orderedIDs []string) ([]domain.BlockInstance, error) {
	r.registry.mu.Lock()
	defer r.registry.mu.Unlock()

	result := make([]domain.BlockInstance, 0, len(orderedIDs))
	for i, id := range orderedIDs {
		inst, ok := r.registry.instances[id]
		if !ok || inst.PageID != pageID {
			return nil, notFoundErr("block instance", id)
		}
		r.registry.journalInstance(ctx, id)
		inst.Order = i
		r.registry.instances[id] = inst
		result = append(result, inst.Clone())
	}
	return result, nil
}

func (r *BlockInstanceRepository) FindByID(_ context.Context, instanceID string) (domain.BlockInstance, error) {
	r.registry.mu.RLock()
	defer r.registry.mu.RUnlock()

	inst, ok := r.registry.instances[instanceID]
	if !ok {
		return domain.BlockInstance{}, notFoundErr("block instance", instanceID)
	}
	return inst.Clone(), nil
}

func (r *BlockInstanceRepository) ListByPage(_ context.Context, pageID string) ([]domain.BlockInstance, error) {
	r.registry.mu.RLock()
	defer r.registry.mu.RUnlock()

	page := r.pageSlice(pageID)
	result := make([]domain.BlockInstance, 0, len(page))
	for _, inst := range page {
		result = append(result, inst.Clone())
	}
	return result, nil
}

func (r *BlockInstanceRepository) ListByBlueprint(_ context.Context, blueprintID string) ([]domain.BlockInstance, error) {
	r.registry.mu.RLock()
	defer r.registry.mu.RUnlock()

	result := make([]domain.BlockInstance, 0)
	for _, inst := range r.registry.instances {
		if inst.BlueprintID == blueprintID {
			result = append(result, inst.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].PageID != result[j].PageID {
			return result[i].PageID < result[j].PageID
		}
		return result[i].Order < result[j].Order
	})
	return result, nil
}

func (r *BlockInstanceRepository) CountByPageAndBlueprint(_ context.Context, pageID, blueprintID string) (int, error) {
	r.registry.mu.RLock()
	defer r.registry.mu.RUnlock()

	count := 0
	for _, inst := range r.registry.instances {
		if inst.PageID == pageID && inst.BlueprintID == blueprintID {
			count++
		}
	}
	return count, nil
}

func (r *BlockInstanceRepository) RemoveByBlueprint(ctx context.Context, blueprintID string) (int, error) {
	r.registry.mu.Lock()
	defer r.registry.mu.Unlock()

	touchedPages := make(map[string]struct{})
	removed := 0
	for id, inst := range r.registry.instances {
		if inst.BlueprintID == blueprintID {
			r.registry.journalInstance(ctx, id)
			delete(r.registry.instances, id)
			touchedPages[inst.PageID] = struct{}{}
			removed++
		}
	}
	for pageID := range touchedPages {
		r.redensify(ctx, r.pageSlice(pageID))
	}
	return removed, nil
}
