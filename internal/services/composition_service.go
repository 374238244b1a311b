package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mirada-interiors/cms-api/internal/catalog"
	domain "github.com/mirada-interiors/cms-api/internal/domain"
	"github.com/mirada-interiors/cms-api/internal/platform/events"
	"github.com/mirada-interiors/cms-api/internal/platform/idempotency"
	"github.com/mirada-interiors/cms-api/internal/platform/pagelock"
	"github.com/mirada-interiors/cms-api/internal/platform/requestctx"
	"github.com/mirada-interiors/cms-api/internal/repositories"
)

// CompositionServiceDeps groups constructor parameters for the composition service.
type CompositionServiceDeps struct {
	Registry       repositories.Registry
	Catalog        *catalog.Catalog
	Locks          *pagelock.KeyedMutex
	Validator      *PayloadValidator
	Events         events.Publisher
	Idempotency    idempotency.Store
	IdempotencyTTL time.Duration
	Clock          func() time.Time
	IDGenerator    func() string
}

type compositionService struct {
	registry  repositories.Registry
	catalog   *catalog.Catalog
	locks     *pagelock.KeyedMutex
	validator *PayloadValidator
	events    events.Publisher
	idem      idempotency.Store
	idemTTL   time.Duration
	clock     func() time.Time
	idgen     func() string
}

// ErrCatalogMissing signals that the template catalog dependency is absent.
var ErrCatalogMissing = errors.New("composition service: template catalog is not configured")

// NewCompositionService constructs the composition service with the supplied dependencies.
func NewCompositionService(deps CompositionServiceDeps) (CompositionService, error) {
	if deps.Registry == nil {
		return nil, ErrRegistryMissing
	}
	if deps.Catalog == nil {
		return nil, ErrCatalogMissing
	}
	if deps.Locks == nil {
		return nil, ErrLocksMissing
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idgen := deps.IDGenerator
	if idgen == nil {
		idgen = defaultIDGenerator
	}
	validator := deps.Validator
	if validator == nil {
		validator = NewPayloadValidator()
	}
	publisher := deps.Events
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	ttl := deps.IdempotencyTTL
	if ttl <= 0 {
		ttl = idempotency.DefaultTTL
	}
	return &compositionService{
		registry:  deps.Registry,
		catalog:   deps.Catalog,
		locks:     deps.Locks,
		validator: validator,
		events:    publisher,
		idem:      deps.Idempotency,
		idemTTL:   ttl,
		clock:     func() time.Time { return clock().UTC() },
		idgen:     idgen,
	}, nil
}

// liveBlueprint resolves a blueprint by id, treating a cascade in progress
// the same as absence: no instance may be created against a blueprint
// mid-deletion.
func (s *compositionService) liveBlueprint(ctx context.Context, blueprintID string) (domain.Blueprint, error) {
	blueprint, err := s.registry.Blueprints().FindByID(ctx, blueprintID)
	if err != nil {
		if isRepositoryNotFound(err) {
			return domain.Blueprint{}, &domain.NotFoundError{Kind: "blueprint", ID: blueprintID}
		}
		return domain.Blueprint{}, err
	}
	if blueprint.Deleting {
		return domain.Blueprint{}, &domain.NotFoundError{Kind: "blueprint", ID: blueprintID}
	}
	return blueprint, nil
}

func (s *compositionService) findInstance(ctx context.Context, instanceID string) (domain.BlockInstance, error) {
	instance, err := s.registry.Instances().FindByID(ctx, instanceID)
	if err != nil {
		if isRepositoryNotFound(err) {
			return domain.BlockInstance{}, &domain.NotFoundError{Kind: "block", ID: instanceID}
		}
		return domain.BlockInstance{}, err
	}
	return instance, nil
}

func (s *compositionService) AddInstance(ctx context.Context, cmd AddInstanceCommand) (domain.BlockInstance, []string, error) {
	pageID := strings.TrimSpace(cmd.PageID)
	if pageID == "" {
		return domain.BlockInstance{}, nil, errors.New("composition service: page id is required")
	}

	unlock := s.locks.Lock(pageLockKey(pageID))
	defer unlock()

	blueprint, err := s.liveBlueprint(ctx, strings.TrimSpace(cmd.BlueprintID))
	if err != nil {
		return domain.BlockInstance{}, nil, err
	}
	if err := s.checkCardinality(ctx, pageID, blueprint); err != nil {
		return domain.BlockInstance{}, nil, err
	}

	now := s.clock()
	instance := domain.BlockInstance{
		ID:          "blk_" + s.idgen(),
		PageID:      pageID,
		BlueprintID: blueprint.ID,
		Order:       cmd.Order,
		DataEn:      s.validator.Sanitize(blueprint.Fields, cmd.DataEn.Clone()),
		DataAr:      s.validator.Sanitize(blueprint.Fields, cmd.DataAr.Clone()),
		Status:      domain.ParseInstanceStatus(string(cmd.Status)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if instance.Status == domain.InstanceStatusPublished {
		instance.PublishedAt = now
	}

	stored, err := s.registry.Instances().InsertAt(ctx, instance)
	if err != nil {
		return domain.BlockInstance{}, nil, err
	}

	s.publish(ctx, events.Event{
		Type:        events.TypeBlockAdded,
		PageID:      pageID,
		BlueprintID: blueprint.ID,
		InstanceID:  stored.ID,
		OccurredAt:  now,
	})
	return stored, s.validator.Warnings(blueprint.Fields, stored.DataEn, stored.DataAr), nil
}

func (s *compositionService) checkCardinality(ctx context.Context, pageID string, blueprint domain.Blueprint) error {
	if blueprint.AllowMultiple {
		return nil
	}
	count, err := s.registry.Instances().CountByPageAndBlueprint(ctx, pageID, blueprint.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return &domain.CardinalityError{PageID: pageID, BlueprintName: blueprint.Name}
	}
	return nil
}

func (s *compositionService) RemoveInstance(ctx context.Context, instanceID string) error {
	instanceID = strings.TrimSpace(instanceID)
	instance, err := s.findInstance(ctx, instanceID)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(pageLockKey(instance.PageID))
	defer unlock()

	removed, err := s.registry.Instances().Remove(ctx, instanceID)
	if err != nil {
		if isRepositoryNotFound(err) {
			return &domain.NotFoundError{Kind: "block", ID: instanceID}
		}
		return err
	}

	s.publish(ctx, events.Event{
		Type:        events.TypeBlockRemoved,
		PageID:      removed.PageID,
		BlueprintID: removed.BlueprintID,
		InstanceID:  removed.ID,
		OccurredAt:  s.clock(),
	})
	return nil
}

func (s *compositionService) Reorder(ctx context.Context, pageID string, orderedIDs []string) ([]domain.BlockInstance, error) {
	pageID = strings.TrimSpace(pageID)
	if pageID == "" {
		return nil, errors.New("composition service: page id is required")
	}

	unlock := s.locks.Lock(pageLockKey(pageID))
	defer unlock()

	current, err := s.registry.Instances().ListByPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if err := validatePermutation(pageID, current, orderedIDs); err != nil {
		return nil, err
	}

	result, err := s.registry.Instances().Reorder(ctx, pageID, orderedIDs)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:       events.TypePageReordered,
		PageID:     pageID,
		Count:      len(result),
		OccurredAt: s.clock(),
	})
	return result, nil
}

// validatePermutation checks that orderedIDs is exactly a permutation of the
// page's current instance ids.
func validatePermutation(pageID string, current []domain.BlockInstance, orderedIDs []string) error {
	if len(orderedIDs) != len(current) {
		return &domain.InvalidPermutationError{PageID: pageID, Reason: "wrong length"}
	}

	existing := make(map[string]struct{}, len(current))
	for _, instance := range current {
		existing[instance.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, dup := seen[id]; dup {
			return &domain.InvalidPermutationError{PageID: pageID, Reason: "duplicate id " + id}
		}
		seen[id] = struct{}{}
		if _, ok := existing[id]; !ok {
			return &domain.InvalidPermutationError{PageID: pageID, Reason: "id " + id + " does not belong to page"}
		}
	}
	return nil
}

func (s *compositionService) UpdatePayload(ctx context.Context, cmd UpdatePayloadCommand) (domain.BlockInstance, []string, error) {
	instanceID := strings.TrimSpace(cmd.InstanceID)
	instance, err := s.findInstance(ctx, instanceID)
	if err != nil {
		return domain.BlockInstance{}, nil, err
	}

	unlock := s.locks.Lock(pageLockKey(instance.PageID))
	defer unlock()

	// Re-read under the page lock: a concurrent patch may have landed.
	instance, err = s.findInstance(ctx, instanceID)
	if err != nil {
		return domain.BlockInstance{}, nil, err
	}

	// Schema is advisory only; a blueprint mid-cascade still allows the
	// patch, it just skips sanitization context.
	var fields []domain.Field
	if blueprint, err := s.registry.Blueprints().FindByID(ctx, instance.BlueprintID); err == nil {
		fields = blueprint.Fields
	}

	merged := s.validator.Sanitize(fields, instance.Data(cmd.Locale).Merge(cmd.Patch))
	if cmd.Locale == domain.LocaleAr {
		instance.DataAr = merged
	} else {
		instance.DataEn = merged
	}

	now := s.clock()
	if cmd.Status != nil {
		instance.Status = domain.ParseInstanceStatus(string(*cmd.Status))
		if instance.Status == domain.InstanceStatusPublished && instance.PublishedAt.IsZero() {
			instance.PublishedAt = now
		}
	}
	instance.UpdatedAt = now

	updated, err := s.registry.Instances().Update(ctx, instance)
	if err != nil {
		if isRepositoryNotFound(err) {
			return domain.BlockInstance{}, nil, &domain.NotFoundError{Kind: "block", ID: instanceID}
		}
		return domain.BlockInstance{}, nil, err
	}

	s.publish(ctx, events.Event{
		Type:        events.TypeBlockUpdated,
		PageID:      updated.PageID,
		BlueprintID: updated.BlueprintID,
		InstanceID:  updated.ID,
		OccurredAt:  now,
	})
	return updated, s.validator.Warnings(fields, updated.DataEn, updated.DataAr), nil
}

// DuplicateInstance copies the source's payloads and blueprint reference and
// inserts the copy immediately after the source. Duplicates start as drafts.
func (s *compositionService) DuplicateInstance(ctx context.Context, instanceID string) (domain.BlockInstance, error) {
	instanceID = strings.TrimSpace(instanceID)
	source, err := s.findInstance(ctx, instanceID)
	if err != nil {
		return domain.BlockInstance{}, err
	}

	unlock := s.locks.Lock(pageLockKey(source.PageID))
	defer unlock()

	source, err = s.findInstance(ctx, instanceID)
	if err != nil {
		return domain.BlockInstance{}, err
	}

	blueprint, err := s.liveBlueprint(ctx, source.BlueprintID)
	if err != nil {
		return domain.BlockInstance{}, err
	}
	if !blueprint.AllowMultiple {
		// The source itself already occupies the single slot.
		return domain.BlockInstance{}, &domain.CardinalityError{PageID: source.PageID, BlueprintName: blueprint.Name}
	}

	now := s.clock()
	duplicate := domain.BlockInstance{
		ID:          "blk_" + s.idgen(),
		PageID:      source.PageID,
		BlueprintID: source.BlueprintID,
		Order:       source.Order + 1,
		DataEn:      source.DataEn.Clone(),
		DataAr:      source.DataAr.Clone(),
		Status:      domain.InstanceStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	stored, err := s.registry.Instances().InsertAt(ctx, duplicate)
	if err != nil {
		return domain.BlockInstance{}, err
	}

	s.publish(ctx, events.Event{
		Type:        events.TypeBlockDuplicated,
		PageID:      stored.PageID,
		BlueprintID: stored.BlueprintID,
		InstanceID:  stored.ID,
		OccurredAt:  now,
	})
	return stored, nil
}

func (s *compositionService) ListPage(ctx context.Context, pageID string) ([]domain.BlockInstance, error) {
	pageID = strings.TrimSpace(pageID)
	if pageID == "" {
		return nil, errors.New("composition service: page id is required")
	}
	return s.registry.Instances().ListByPage(ctx, pageID)
}

// applyTemplateResult is the replayable outcome stored under an idempotency key.
type applyTemplateResult struct {
	InstanceIDs []string `json:"instanceIds"`
}

func (s *compositionService) ApplyTemplate(ctx context.Context, cmd ApplyTemplateCommand) ([]domain.BlockInstance, error) {
	pageID := strings.TrimSpace(cmd.PageID)
	templateID := strings.TrimSpace(cmd.TemplateID)
	if pageID == "" {
		return nil, errors.New("composition service: page id is required")
	}

	key := strings.TrimSpace(cmd.IdempotencyKey)
	fingerprint := idempotency.Fingerprint("applyTemplate", pageID, templateID)
	if s.idem != nil && key != "" {
		reservation, err := s.idem.Reserve(ctx, key, fingerprint, s.clock(), s.idemTTL)
		if err != nil {
			return nil, err
		}
		switch reservation.State {
		case idempotency.ReservationStateCompleted:
			return s.replayApplyTemplate(ctx, reservation.Record.Result)
		case idempotency.ReservationStatePending:
			return nil, idempotency.ErrOperationInFlight
		}
	}

	created, err := s.applyTemplate(ctx, pageID, templateID)
	if s.idem != nil && key != "" {
		if err != nil {
			if releaseErr := s.idem.Release(ctx, key, fingerprint); releaseErr != nil {
				requestctx.Logger(ctx).Warn("release idempotency key failed", zap.Error(releaseErr))
			}
		} else {
			ids := make([]string, len(created))
			for i, instance := range created {
				ids[i] = instance.ID
			}
			payload, marshalErr := json.Marshal(applyTemplateResult{InstanceIDs: ids})
			if marshalErr == nil {
				marshalErr = s.idem.SaveResult(ctx, key, fingerprint, payload, s.clock(), s.idemTTL)
			}
			if marshalErr != nil {
				requestctx.Logger(ctx).Warn("save idempotency result failed", zap.Error(marshalErr))
			}
		}
	}
	return created, err
}

func (s *compositionService) replayApplyTemplate(ctx context.Context, stored []byte) ([]domain.BlockInstance, error) {
	var result applyTemplateResult
	if err := json.Unmarshal(stored, &result); err != nil {
		return nil, err
	}
	instances := make([]domain.BlockInstance, 0, len(result.InstanceIDs))
	for _, id := range result.InstanceIDs {
		instance, err := s.registry.Instances().FindByID(ctx, id)
		if err != nil {
			if isRepositoryNotFound(err) {
				// Deleted since the original apply; replay returns what survives.
				continue
			}
			return nil, err
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

func (s *compositionService) applyTemplate(ctx context.Context, pageID, templateID string) ([]domain.BlockInstance, error) {
	template, ok := s.catalog.ByID(templateID)
	if !ok {
		return nil, &domain.NotFoundError{Kind: "template", ID: templateID}
	}

	sections := template.DefaultSections
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Order < sections[j].Order })

	// Resolve every blueprint name up front so an unresolved section fails
	// the whole operation before anything is written.
	resolved := make([]domain.Blueprint, len(sections))
	for i, section := range sections {
		blueprint, err := s.registry.Blueprints().FindByName(ctx, section.BlueprintName)
		if err != nil {
			if isRepositoryNotFound(err) {
				return nil, &domain.BlueprintNotFoundError{Name: section.BlueprintName}
			}
			return nil, err
		}
		if blueprint.Deleting {
			return nil, &domain.BlueprintNotFoundError{Name: section.BlueprintName}
		}
		resolved[i] = blueprint
	}

	unlock := s.locks.Lock(pageLockKey(pageID))
	defer unlock()

	now := s.clock()
	var created []domain.BlockInstance
	err := s.registry.RunInTx(ctx, func(ctx context.Context) error {
		created = created[:0]
		for i, section := range sections {
			blueprint := resolved[i]
			if err := s.checkCardinality(ctx, pageID, blueprint); err != nil {
				return err
			}
			instance := domain.BlockInstance{
				ID:          "blk_" + s.idgen(),
				PageID:      pageID,
				BlueprintID: blueprint.ID,
				Order:       section.Order,
				DataEn:      s.validator.Sanitize(blueprint.Fields, section.DefaultEn.Clone()),
				DataAr:      s.validator.Sanitize(blueprint.Fields, section.DefaultAr.Clone()),
				Status:      domain.InstanceStatusDraft,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			stored, err := s.registry.Instances().InsertAt(ctx, instance)
			if err != nil {
				return err
			}
			created = append(created, stored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:       events.TypeTemplateApplied,
		PageID:     pageID,
		TemplateID: template.ID,
		Count:      len(created),
		OccurredAt: now,
	})
	return created, nil
}

func (s *compositionService) DeleteBlueprintCascade(ctx context.Context, blueprintID string) (CascadeResult, error) {
	blueprintID = strings.TrimSpace(blueprintID)
	if blueprintID == "" {
		return CascadeResult{}, errors.New("composition service: blueprint id is required")
	}

	unlock := s.locks.Lock(registryLockKey)
	defer unlock()

	blueprint, err := s.registry.Blueprints().FindByID(ctx, blueprintID)
	if err != nil {
		if isRepositoryNotFound(err) {
			return CascadeResult{}, &domain.NotFoundError{Kind: "blueprint", ID: blueprintID}
		}
		return CascadeResult{}, err
	}
	if blueprint.IsSystem {
		return CascadeResult{}, &domain.ProtectedResourceError{Name: blueprint.Name}
	}

	// Phase one: mark the cascade so concurrent addInstance calls fail and
	// an interruption is recoverable by the startup sweep.
	if !blueprint.Deleting {
		if err := s.registry.Blueprints().MarkDeleting(ctx, blueprintID, true, s.clock()); err != nil {
			return CascadeResult{}, err
		}
	}

	count, err := s.finishCascade(ctx, blueprint)
	if err != nil {
		return CascadeResult{}, err
	}
	return CascadeResult{Blueprint: blueprint, DeletedInstanceCount: count}, nil
}

// finishCascade fans out the instance deletions and removes the blueprint.
// Caller holds the registry lock and the blueprint is already marked
// deleting; a failure leaves the marker for the recovery sweep.
func (s *compositionService) finishCascade(ctx context.Context, blueprint domain.Blueprint) (int, error) {
	doomed, err := s.registry.Instances().ListByBlueprint(ctx, blueprint.ID)
	if err != nil {
		return 0, err
	}

	pageIDs := make([]string, 0, len(doomed))
	seen := make(map[string]struct{}, len(doomed))
	for _, instance := range doomed {
		if _, ok := seen[instance.PageID]; !ok {
			seen[instance.PageID] = struct{}{}
			pageIDs = append(pageIDs, instance.PageID)
		}
	}
	// Locks are taken in sorted order so concurrent cascades cannot deadlock.
	sort.Strings(pageIDs)
	unlocks := make([]func(), 0, len(pageIDs))
	for _, pageID := range pageIDs {
		unlocks = append(unlocks, s.locks.Lock(pageLockKey(pageID)))
	}
	defer func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}()

	count := 0
	err = s.registry.RunInTx(ctx, func(ctx context.Context) error {
		removed, err := s.registry.Instances().RemoveByBlueprint(ctx, blueprint.ID)
		if err != nil {
			return err
		}
		count = removed
		return s.registry.Blueprints().Delete(ctx, blueprint.ID)
	})
	if err != nil {
		return 0, err
	}

	s.publish(ctx, events.Event{
		Type:        events.TypeBlueprintDeleted,
		BlueprintID: blueprint.ID,
		Count:       count,
		OccurredAt:  s.clock(),
	})
	return count, nil
}

// RecoverPendingCascades finishes cascades interrupted before completion,
// identified by a blueprint still carrying the deleting marker.
func (s *compositionService) RecoverPendingCascades(ctx context.Context) (int, error) {
	unlock := s.locks.Lock(registryLockKey)
	defer unlock()

	all, err := s.registry.Blueprints().List(ctx, repositories.BlueprintFilter{IncludeDeleting: true})
	if err != nil {
		return 0, err
	}

	recovered := 0
	for _, blueprint := range all {
		if !blueprint.Deleting {
			continue
		}
		count, err := s.finishCascade(ctx, blueprint)
		if err != nil {
			return recovered, err
		}
		requestctx.Logger(ctx).Info("recovered interrupted blueprint cascade",
			zap.String("blueprint_id", blueprint.ID),
			zap.Int("deleted_instances", count))
		recovered++
	}
	return recovered, nil
}

// bulkDeleteResult is the replayable outcome stored under an idempotency key.
type bulkDeleteResult struct {
	DeletedCount int `json:"deletedCount"`
}

func (s *compositionService) BulkDelete(ctx context.Context, cmd BulkDeleteCommand) (BulkDeleteResult, error) {
	key := strings.TrimSpace(cmd.IdempotencyKey)
	fingerprint := idempotency.Fingerprint("bulkDelete",
		strings.Join(cmd.InstanceIDs, ","), strings.Join(cmd.BlueprintIDs, ","))
	if s.idem != nil && key != "" {
		reservation, err := s.idem.Reserve(ctx, key, fingerprint, s.clock(), s.idemTTL)
		if err != nil {
			return BulkDeleteResult{}, err
		}
		switch reservation.State {
		case idempotency.ReservationStateCompleted:
			var stored bulkDeleteResult
			if err := json.Unmarshal(reservation.Record.Result, &stored); err != nil {
				return BulkDeleteResult{}, err
			}
			return BulkDeleteResult{DeletedCount: stored.DeletedCount}, nil
		case idempotency.ReservationStatePending:
			return BulkDeleteResult{}, idempotency.ErrOperationInFlight
		}
	}

	result, err := s.bulkDelete(ctx, cmd)
	if s.idem != nil && key != "" {
		if err != nil {
			if releaseErr := s.idem.Release(ctx, key, fingerprint); releaseErr != nil {
				requestctx.Logger(ctx).Warn("release idempotency key failed", zap.Error(releaseErr))
			}
		} else {
			payload, marshalErr := json.Marshal(bulkDeleteResult{DeletedCount: result.DeletedCount})
			if marshalErr == nil {
				marshalErr = s.idem.SaveResult(ctx, key, fingerprint, payload, s.clock(), s.idemTTL)
			}
			if marshalErr != nil {
				requestctx.Logger(ctx).Warn("save idempotency result failed", zap.Error(marshalErr))
			}
		}
	}
	return result, err
}

// bulkDelete removes the named instances first, then cascades the named
// blueprints, so a cascade never double-deletes an already-removed instance.
func (s *compositionService) bulkDelete(ctx context.Context, cmd BulkDeleteCommand) (BulkDeleteResult, error) {
	deleted := 0
	for _, instanceID := range cmd.InstanceIDs {
		if err := s.RemoveInstance(ctx, instanceID); err != nil {
			return BulkDeleteResult{DeletedCount: deleted}, err
		}
		deleted++
	}
	for _, blueprintID := range cmd.BlueprintIDs {
		cascade, err := s.DeleteBlueprintCascade(ctx, blueprintID)
		if err != nil {
			return BulkDeleteResult{DeletedCount: deleted}, err
		}
		deleted += cascade.DeletedInstanceCount + 1
	}

	s.publish(ctx, events.Event{
		Type:       events.TypeBulkDeleted,
		Count:      deleted,
		OccurredAt: s.clock(),
	})
	return BulkDeleteResult{DeletedCount: deleted}, nil
}

func (s *compositionService) publish(ctx context.Context, event events.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		requestctx.Logger(ctx).Warn("publish activity event failed",
			zap.Error(err), zap.String("event_type", event.Type))
	}
}
