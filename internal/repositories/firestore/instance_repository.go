package firestore

import (
	"context"
	"errors"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	domain "github.com/mirada-interiors/cms-api/internal/domain"
	pfirestore "github.com/mirada-interiors/cms-api/internal/platform/firestore"
	"github.com/mirada-interiors/cms-api/internal/repositories"
)

// BlockInstanceRepository stores block instances in a single collection
// keyed by instance id, querying by pageId. Every ordering shift runs in a
// transaction so a page's order values stay dense.
type BlockInstanceRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[instanceDoc]
}

var _ repositories.BlockInstanceRepository = (*BlockInstanceRepository)(nil)

func newBlockInstanceRepository(provider *pfirestore.Provider) *BlockInstanceRepository {
	return &BlockInstanceRepository{
		provider: provider,
		base:     pfirestore.NewBaseRepository[instanceDoc](provider, collInstances, nil),
	}
}

type pageEntry struct {
	ref *firestore.DocumentRef
	doc instanceDoc
}

// readPage fetches a page's instances inside the transaction, sorted by
// order. Firestore transactions demand reads before writes, so callers
// collect everything here before mutating.
func (r *BlockInstanceRepository) readPage(ctx context.Context, tx *firestore.Transaction, pageID string) ([]pageEntry, error) {
	coll, err := r.base.CollectionRef(ctx)
	if err != nil {
		return nil, err
	}

	iter := tx.Documents(coll.Where("pageId", "==", pageID))
	defer iter.Stop()

	var entries []pageEntry
	for {
		snapshot, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		decoded, err := r.base.DecodeSnapshot(snapshot)
		if err != nil {
			return nil, err
		}
		entries = append(entries, pageEntry{ref: snapshot.Ref, doc: decoded.Data})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].doc.Order < entries[j].doc.Order })
	return entries, nil
}

func (r *BlockInstanceRepository) InsertAt(ctx context.Context, instance domain.BlockInstance) (domain.BlockInstance, error) {
	docRef, err := r.base.DocumentRef(ctx, instance.ID)
	if err != nil {
		return domain.BlockInstance{}, err
	}

	stored := instance.Clone()
	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		page, err := r.readPage(ctx, tx, instance.PageID)
		if err != nil {
			return err
		}

		if stored.Order < 0 {
			stored.Order = 0
		}
		if stored.Order > len(page) {
			stored.Order = len(page)
		}

		for _, entry := range page {
			if entry.doc.Order >= stored.Order {
				if err := tx.Update(entry.ref, []firestore.Update{
					{Path: "order", Value: entry.doc.Order + 1},
				}); err != nil {
					return err
				}
			}
		}
		return tx.Create(docRef, toInstanceDoc(stored))
	})
	if err != nil {
		return domain.BlockInstance{}, err
	}
	return stored, nil
}

func (r *BlockInstanceRepository) Update(ctx context.Context, instance domain.BlockInstance) (domain.BlockInstance, error) {
	docRef, err := r.base.DocumentRef(ctx, instance.ID)
	if err != nil {
		return domain.BlockInstance{}, err
	}

	var updated domain.BlockInstance
	err = r.provider.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		snapshot, err := tx.Get(docRef)
		if err != nil {
			return err
		}
		current, err := r.base.DecodeSnapshot(snapshot)
		if err != nil {
			return err
		}

		updated = instance.Clone()
		// Placement is owned by InsertAt/Remove/Reorder.
		updated.PageID = current.Data.PageID
		updated.BlueprintID = current.Data.BlueprintID
		updated.Order = current.Data.Order
		updated.CreatedAt = current.Data.CreatedAt

		return tx.Set(docRef, toInstanceDoc(updated))
	})
	if err != nil {
		return domain.BlockInstance{}, err
	}
	return updated, nil
}

func (r *BlockInstanceRepository) Remove(ctx context.Context, instanceID string) (domain.BlockInstance, error) {
	docRef, err := r.base.DocumentRef(ctx, instanceID)
	if err != nil {
		return domain.BlockInstance{}, err
	}

	var removed domain.BlockInstance
	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snapshot, err := tx.Get(docRef)
		if err != nil {
			return err
		}
		current, err := r.base.DecodeSnapshot(snapshot)
		if err != nil {
			return err
		}
		removed = current.Data.toDomain(current.ID)

		page, err := r.readPage(ctx, tx, current.Data.PageID)
		if err != nil {
			return err
		}

		if err := tx.Delete(docRef); err != nil {
			return err
		}
		for _, entry := range page {
			if entry.ref.ID != instanceID && entry.doc.Order > removed.Order {
				if err := tx.Update(entry.ref, []firestore.Update{
					{Path: "order", Value: entry.doc.Order - 1},
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return domain.BlockInstance{}, err
	}
	return removed, nil
}

func (r *BlockInstanceRepository) Reorder(ctx context.Context, pageID string, orderedIDs []string) ([]domain.BlockInstance, error) {
	var result []domain.BlockInstance
	err := r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		result = result[:0]

		refs := make([]*firestore.DocumentRef, len(orderedIDs))
		docs := make([]instanceDoc, len(orderedIDs))
		for i, id := range orderedIDs {
			ref, err := r.base.DocumentRef(ctx, id)
			if err != nil {
				return err
			}
			snapshot, err := tx.Get(ref)
			if err != nil {
				return err
			}
			decoded, err := r.base.DecodeSnapshot(snapshot)
			if err != nil {
				return err
			}
			if decoded.Data.PageID != pageID {
				return pfirestore.NotFoundError(
					"blockinstances.reorder",
					errors.New("instance "+id+" does not belong to page "+pageID),
				)
			}
			refs[i] = ref
			docs[i] = decoded.Data
		}

		for i := range refs {
			if docs[i].Order != i {
				if err := tx.Update(refs[i], []firestore.Update{
					{Path: "order", Value: i},
				}); err != nil {
					return err
				}
			}
			docs[i].Order = i
			result = append(result, docs[i].toDomain(refs[i].ID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *BlockInstanceRepository) FindByID(ctx context.Context, instanceID string) (domain.BlockInstance, error) {
	doc, err := r.base.Get(ctx, instanceID)
	if err != nil {
		return domain.BlockInstance{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

func (r *BlockInstanceRepository) ListByPage(ctx context.Context, pageID string) ([]domain.BlockInstance, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("pageId", "==", pageID).OrderBy("order", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}

	instances := make([]domain.BlockInstance, 0, len(docs))
	for _, doc := range docs {
		instances = append(instances, doc.Data.toDomain(doc.ID))
	}
	return instances, nil
}

func (r *BlockInstanceRepository) ListByBlueprint(ctx context.Context, blueprintID string) ([]domain.BlockInstance, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("blueprintId", "==", blueprintID)
	})
	if err != nil {
		return nil, err
	}

	instances := make([]domain.BlockInstance, 0, len(docs))
	for _, doc := range docs {
		instances = append(instances, doc.Data.toDomain(doc.ID))
	}
	sort.Slice(instances, func(i, j int) bool {
		if instances[i].PageID != instances[j].PageID {
			return instances[i].PageID < instances[j].PageID
		}
		return instances[i].Order < instances[j].Order
	})
	return instances, nil
}

func (r *BlockInstanceRepository) CountByPageAndBlueprint(ctx context.Context, pageID, blueprintID string) (int, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("pageId", "==", pageID).Where("blueprintId", "==", blueprintID)
	})
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// RemoveByBlueprint deletes the blueprint's instances page by page, each
// page in its own transaction that also closes the ordering gaps. An
// interruption leaves untouched pages for the recovery sweep to finish.
func (r *BlockInstanceRepository) RemoveByBlueprint(ctx context.Context, blueprintID string) (int, error) {
	doomed, err := r.ListByBlueprint(ctx, blueprintID)
	if err != nil {
		return 0, err
	}

	pages := make(map[string]struct{})
	for _, inst := range doomed {
		pages[inst.PageID] = struct{}{}
	}

	removed := 0
	for pageID := range pages {
		count, err := r.removeFromPage(ctx, pageID, blueprintID)
		if err != nil {
			return removed, err
		}
		removed += count
	}
	return removed, nil
}

func (r *BlockInstanceRepository) removeFromPage(ctx context.Context, pageID, blueprintID string) (int, error) {
	removed := 0
	err := r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		removed = 0
		page, err := r.readPage(ctx, tx, pageID)
		if err != nil {
			return err
		}

		next := 0
		for _, entry := range page {
			if entry.doc.BlueprintID == blueprintID {
				if err := tx.Delete(entry.ref); err != nil {
					return err
				}
				removed++
				continue
			}
			if entry.doc.Order != next {
				if err := tx.Update(entry.ref, []firestore.Update{
					{Path: "order", Value: next},
				}); err != nil {
					return err
				}
			}
			next++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
