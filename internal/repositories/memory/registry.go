// Package memory provides an in-memory repositories.Registry used by tests
// and local development. Mutations rely on the engine's single-writer-per-
// page serialisation; RunInTx journals the rows a transaction touches so a
// failure undoes exactly those rows and nothing committed alongside them.
package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/mirada-interiors/cms-api/internal/domain"
	"github.com/mirada-interiors/cms-api/internal/repositories"
)

// Registry is the in-memory implementation of repositories.Registry.
type Registry struct {
	mu         sync.RWMutex
	blueprints map[string]domain.Blueprint
	instances  map[string]domain.BlockInstance

	blueprintRepo *BlueprintRepository
	instanceRepo  *BlockInstanceRepository
}

// NewRegistry constructs an empty in-memory registry.
func NewRegistry() *Registry {
	r := &Registry{
		blueprints: make(map[string]domain.Blueprint),
		instances:  make(map[string]domain.BlockInstance),
	}
	r.blueprintRepo = &BlueprintRepository{registry: r}
	r.instanceRepo = &BlockInstanceRepository{registry: r}
	return r
}

// Close implements repositories.Registry.
func (r *Registry) Close(context.Context) error { return nil }

// Blueprints implements repositories.Registry.
func (r *Registry) Blueprints() repositories.BlueprintRepository { return r.blueprintRepo }

// Instances implements repositories.Registry.
func (r *Registry) Instances() repositories.BlockInstanceRepository { return r.instanceRepo }

// txJournal records the before-image of every row a transaction mutates.
// A nil entry means the row did not exist when the transaction first
// touched it.
type txJournal struct {
	blueprints map[string]*domain.Blueprint
	instances  map[string]*domain.BlockInstance
}

type txJournalKey struct{}

func journalFrom(ctx context.Context) *txJournal {
	journal, _ := ctx.Value(txJournalKey{}).(*txJournal)
	return journal
}

// RunInTx executes fn with per-row rollback: mutations made through the
// transaction's context are journalled, and when fn returns an error only
// those rows are restored. Writes committed concurrently under other
// contexts are untouched, so operations on unrelated pages stay
// independent. A nested call joins the enclosing transaction.
func (r *Registry) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if fn == nil {
		return nil
	}
	if journalFrom(ctx) != nil {
		return fn(ctx)
	}

	journal := &txJournal{
		blueprints: make(map[string]*domain.Blueprint),
		instances:  make(map[string]*domain.BlockInstance),
	}
	if err := fn(context.WithValue(ctx, txJournalKey{}, journal)); err != nil {
		r.rollback(journal)
		return err
	}
	return nil
}

func (r *Registry) rollback(journal *txJournal) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, prior := range journal.blueprints {
		if prior == nil {
			delete(r.blueprints, id)
		} else {
			r.blueprints[id] = prior.Clone()
		}
	}
	for id, prior := range journal.instances {
		if prior == nil {
			delete(r.instances, id)
		} else {
			r.instances[id] = prior.Clone()
		}
	}
}

// journalBlueprint records the blueprint's before-image, once per row per
// transaction. Caller must hold the registry lock.
func (r *Registry) journalBlueprint(ctx context.Context, id string) {
	journal := journalFrom(ctx)
	if journal == nil {
		return
	}
	if _, done := journal.blueprints[id]; done {
		return
	}
	if blueprint, ok := r.blueprints[id]; ok {
		prior := blueprint.Clone()
		journal.blueprints[id] = &prior
	} else {
		journal.blueprints[id] = nil
	}
}

// journalInstance records the instance's before-image, once per row per
// transaction. Caller must hold the registry lock.
func (r *Registry) journalInstance(ctx context.Context, id string) {
	journal := journalFrom(ctx)
	if journal == nil {
		return
	}
	if _, done := journal.instances[id]; done {
		return
	}
	if instance, ok := r.instances[id]; ok {
		prior := instance.Clone()
		journal.instances[id] = &prior
	} else {
		journal.instances[id] = nil
	}
}

// storeError implements repositories.RepositoryError.
type storeError struct {
	msg         string
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *storeError) Error() string       { return e.msg }
func (e *storeError) IsNotFound() bool    { return e.notFound }
func (e *storeError) IsConflict() bool    { return e.conflict }
func (e *storeError) IsUnavailable() bool { return e.unavailable }

func notFoundErr(kind, id string) error {
	return &storeError{msg: fmt.Sprintf("memory: %s %q not found", kind, id), notFound: true}
}

func conflictErr(format string, args ...any) error {
	return &storeError{msg: "memory: " + fmt.Sprintf(format, args...), conflict: true}
}
