package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/mirada-interiors/cms-api/internal/domain"
	pfirestore "github.com/mirada-interiors/cms-api/internal/platform/firestore"
	"github.com/mirada-interiors/cms-api/internal/repositories"
)

func nameKey(name string) string {
	return strings.TrimSpace(name)
}

// BlueprintRepository stores blueprint definitions in the blueprints
// collection with a companion name-index collection enforcing the
// unique-name contract.
type BlueprintRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[blueprintDoc]
	names    *pfirestore.BaseRepository[nameIndexDoc]
}

var _ repositories.BlueprintRepository = (*BlueprintRepository)(nil)

func newBlueprintRepository(provider *pfirestore.Provider) *BlueprintRepository {
	return &BlueprintRepository{
		provider: provider,
		base:     pfirestore.NewBaseRepository[blueprintDoc](provider, collBlueprints, nil),
		names:    pfirestore.NewBaseRepository[nameIndexDoc](provider, collBlueprintNames, nil),
	}
}

// Insert creates the blueprint and reserves its name in one transaction.
// A taken name surfaces as a conflict error from the index create.
func (r *BlueprintRepository) Insert(ctx context.Context, blueprint domain.Blueprint) error {
	docRef, err := r.base.DocumentRef(ctx, blueprint.ID)
	if err != nil {
		return err
	}
	nameRef, err := r.names.DocumentRef(ctx, nameKey(blueprint.Name))
	if err != nil {
		return err
	}

	return r.provider.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(nameRef, nameIndexDoc{BlueprintID: blueprint.ID}); err != nil {
			return err
		}
		return tx.Create(docRef, toBlueprintDoc(blueprint))
	})
}

// Update replaces the stored blueprint. When the name changed, the name
// reservation moves atomically with the document write.
func (r *BlueprintRepository) Update(ctx context.Context, blueprint domain.Blueprint) error {
	docRef, err := r.base.DocumentRef(ctx, blueprint.ID)
	if err != nil {
		return err
	}

	return r.provider.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		snapshot, err := tx.Get(docRef)
		if err != nil {
			return err
		}
		current, err := r.base.DecodeSnapshot(snapshot)
		if err != nil {
			return err
		}

		newKey := nameKey(blueprint.Name)
		if nameKey(current.Data.Name) != newKey {
			oldNameRef, err := r.names.DocumentRef(ctx, nameKey(current.Data.Name))
			if err != nil {
				return err
			}
			newNameRef, err := r.names.DocumentRef(ctx, newKey)
			if err != nil {
				return err
			}
			if err := tx.Delete(oldNameRef); err != nil {
				return err
			}
			if err := tx.Create(newNameRef, nameIndexDoc{BlueprintID: blueprint.ID}); err != nil {
				return err
			}
		}
		return tx.Set(docRef, toBlueprintDoc(blueprint))
	})
}

func (r *BlueprintRepository) FindByID(ctx context.Context, blueprintID string) (domain.Blueprint, error) {
	doc, err := r.base.Get(ctx, blueprintID)
	if err != nil {
		return domain.Blueprint{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

func (r *BlueprintRepository) FindByName(ctx context.Context, name string) (domain.Blueprint, error) {
	index, err := r.names.Get(ctx, nameKey(name))
	if err != nil {
		return domain.Blueprint{}, err
	}
	blueprint, err := r.FindByID(ctx, index.Data.BlueprintID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Blueprint{}, pfirestore.NotFoundError(
				"blueprints.findbyname",
				fmt.Errorf("name index %q points at missing blueprint %q", name, index.Data.BlueprintID),
			)
		}
		return domain.Blueprint{}, err
	}
	return blueprint, nil
}

func (r *BlueprintRepository) List(ctx context.Context, filter repositories.BlueprintFilter) ([]domain.Blueprint, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		if !filter.IncludeDeleting {
			q = q.Where("deleting", "==", false)
		}
		if filter.IsSystem != nil {
			q = q.Where("isSystem", "==", *filter.IsSystem)
		}
		if filter.Type != nil {
			q = q.Where("type", "==", string(*filter.Type))
		}
		return q.OrderBy("name", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}

	blueprints := make([]domain.Blueprint, 0, len(docs))
	for _, doc := range docs {
		blueprints = append(blueprints, doc.Data.toDomain(doc.ID))
	}
	return blueprints, nil
}

func (r *BlueprintRepository) MarkDeleting(ctx context.Context, blueprintID string, deleting bool, at time.Time) error {
	return r.base.Update(ctx, blueprintID, []firestore.Update{
		{Path: "deleting", Value: deleting},
		{Path: "updatedAt", Value: at},
	})
}

// Delete removes the blueprint document together with its name reservation.
func (r *BlueprintRepository) Delete(ctx context.Context, blueprintID string) error {
	docRef, err := r.base.DocumentRef(ctx, blueprintID)
	if err != nil {
		return err
	}

	return r.provider.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		snapshot, err := tx.Get(docRef)
		if err != nil {
			return err
		}
		current, err := r.base.DecodeSnapshot(snapshot)
		if err != nil {
			return err
		}
		if nameKey(current.Data.Name) == "" {
			return errors.New("blueprint document missing name")
		}
		nameRef, err := r.names.DocumentRef(ctx, nameKey(current.Data.Name))
		if err != nil {
			return err
		}
		if err := tx.Delete(nameRef); err != nil {
			return err
		}
		return tx.Delete(docRef)
	})
}
