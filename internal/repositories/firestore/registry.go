// Package firestore implements the repositories against Cloud Firestore.
// Ordering shifts run inside Firestore transactions so each primitive is
// atomic on its own; multi-step flows (template application, cascades) rely
// on the blueprint deletion marker and idempotency records for crash
// consistency rather than a cross-primitive transaction, because Firestore
// requires every read in a transaction to happen before the first write.
package firestore

import (
	"context"

	pfirestore "github.com/mirada-interiors/cms-api/internal/platform/firestore"
	"github.com/mirada-interiors/cms-api/internal/repositories"
)

const (
	collBlueprints     = "blueprints"
	collBlueprintNames = "blueprintNames"
	collInstances      = "blockInstances"
)

// Registry wires the Firestore repositories to a shared client provider.
type Registry struct {
	provider      *pfirestore.Provider
	blueprintRepo *BlueprintRepository
	instanceRepo  *BlockInstanceRepository
}

var _ repositories.Registry = (*Registry)(nil)

// NewRegistry constructs the Firestore registry on top of the provider.
func NewRegistry(provider *pfirestore.Provider) *Registry {
	return &Registry{
		provider:      provider,
		blueprintRepo: newBlueprintRepository(provider),
		instanceRepo:  newBlockInstanceRepository(provider),
	}
}

// Close releases the shared Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	return r.provider.Close(ctx)
}

// Blueprints implements repositories.Registry.
func (r *Registry) Blueprints() repositories.BlueprintRepository { return r.blueprintRepo }

// Instances implements repositories.Registry.
func (r *Registry) Instances() repositories.BlockInstanceRepository { return r.instanceRepo }

// RunInTx executes fn directly. Each repository primitive is transactional
// on its own; callers composing several primitives use the deletion-marker
// protocol and the startup recovery sweep to survive interruptions.
func (r *Registry) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}
