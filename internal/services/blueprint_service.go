package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mirada-interiors/cms-api/internal/catalog"
	domain "github.com/mirada-interiors/cms-api/internal/domain"
	"github.com/mirada-interiors/cms-api/internal/platform/events"
	"github.com/mirada-interiors/cms-api/internal/platform/pagelock"
	"github.com/mirada-interiors/cms-api/internal/platform/requestctx"
	"github.com/mirada-interiors/cms-api/internal/repositories"
)

// BlueprintServiceDeps groups constructor parameters for the blueprint service.
type BlueprintServiceDeps struct {
	Registry    repositories.Registry
	Locks       *pagelock.KeyedMutex
	Events      events.Publisher
	Clock       func() time.Time
	IDGenerator func() string
}

type blueprintService struct {
	registry repositories.Registry
	locks    *pagelock.KeyedMutex
	events   events.Publisher
	clock    func() time.Time
	idgen    func() string
}

// ErrRegistryMissing signals that the repository registry dependency is absent.
var ErrRegistryMissing = errors.New("blueprint service: repository registry is not configured")

// ErrLocksMissing signals that the shared keyed mutex dependency is absent.
var ErrLocksMissing = errors.New("blueprint service: keyed mutex is not configured")

// NewBlueprintService constructs the blueprint service with the supplied dependencies.
func NewBlueprintService(deps BlueprintServiceDeps) (BlueprintService, error) {
	if deps.Registry == nil {
		return nil, ErrRegistryMissing
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
	publisher := deps.Events
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &blueprintService{
		registry: deps.Registry,
		locks:    deps.Locks,
		events:   publisher,
		clock:    func() time.Time { return clock().UTC() },
		idgen:    idgen,
	}, nil
}

func (s *blueprintService) Create(ctx context.Context, cmd CreateBlueprintCommand) (domain.Blueprint, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return domain.Blueprint{}, errors.New("blueprint service: name is required")
	}
	if !cmd.Type.IsValid() {
		return domain.Blueprint{}, fmt.Errorf("blueprint service: invalid blueprint type %q", cmd.Type)
	}

	unlock := s.locks.Lock(registryLockKey)
	defer unlock()

	now := s.clock()
	blueprint := domain.Blueprint{
		ID:            "bp_" + s.idgen(),
		Name:          name,
		DisplayName:   strings.TrimSpace(cmd.DisplayName),
		Description:   strings.TrimSpace(cmd.Description),
		Type:          cmd.Type,
		AllowMultiple: cmd.AllowMultiple,
		Icon:          strings.TrimSpace(cmd.Icon),
		Category:      strings.TrimSpace(cmd.Category),
		Fields:        domain.CloneFields(cmd.Fields),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.registry.Blueprints().Insert(ctx, blueprint); err != nil {
		if isRepositoryConflict(err) {
			return domain.Blueprint{}, &domain.DuplicateNameError{Name: name}
		}
		return domain.Blueprint{}, err
	}

	s.publish(ctx, events.Event{
		Type:        events.TypeBlueprintCreated,
		BlueprintID: blueprint.ID,
		OccurredAt:  now,
	})
	return blueprint, nil
}

// Update patches a blueprint's metadata. The name never changes; system
// blueprints reject cardinality and field schema changes but still accept
// presentation edits.
func (s *blueprintService) Update(ctx context.Context, cmd UpdateBlueprintCommand) (domain.Blueprint, error) {
	unlock := s.locks.Lock(registryLockKey)
	defer unlock()

	blueprint, err := s.Get(ctx, cmd.BlueprintID)
	if err != nil {
		return domain.Blueprint{}, err
	}
	if blueprint.IsSystem && (cmd.AllowMultiple != nil || cmd.Fields != nil) {
		return domain.Blueprint{}, &domain.ProtectedResourceError{Name: blueprint.Name}
	}

	if cmd.DisplayName != nil {
		blueprint.DisplayName = strings.TrimSpace(*cmd.DisplayName)
	}
	if cmd.Description != nil {
		blueprint.Description = strings.TrimSpace(*cmd.Description)
	}
	if cmd.Icon != nil {
		blueprint.Icon = strings.TrimSpace(*cmd.Icon)
	}
	if cmd.Category != nil {
		blueprint.Category = strings.TrimSpace(*cmd.Category)
	}
	if cmd.AllowMultiple != nil {
		blueprint.AllowMultiple = *cmd.AllowMultiple
	}
	if cmd.Fields != nil {
		blueprint.Fields = domain.CloneFields(cmd.Fields)
	}
	blueprint.UpdatedAt = s.clock()

	if err := s.registry.Blueprints().Update(ctx, blueprint); err != nil {
		if isRepositoryNotFound(err) {
			return domain.Blueprint{}, &domain.NotFoundError{Kind: "blueprint", ID: blueprint.ID}
		}
		return domain.Blueprint{}, err
	}

	s.publish(ctx, events.Event{
		Type:        events.TypeBlueprintUpdated,
		BlueprintID: blueprint.ID,
		OccurredAt:  blueprint.UpdatedAt,
	})
	return blueprint, nil
}

func (s *blueprintService) Get(ctx context.Context, blueprintID string) (domain.Blueprint, error) {
	blueprintID = strings.TrimSpace(blueprintID)
	if blueprintID == "" {
		return domain.Blueprint{}, errors.New("blueprint service: blueprint id is required")
	}
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

func (s *blueprintService) List(ctx context.Context, filter BlueprintFilter) ([]domain.Blueprint, error) {
	return s.registry.Blueprints().List(ctx, repositories.BlueprintFilter{
		IsSystem: filter.IsSystem,
		Type:     filter.Type,
	})
}

// Duplicate copies every field of the source blueprint except id, name
// (regenerated with a unique suffix), the system flag (always false on the
// copy), and timestamps.
func (s *blueprintService) Duplicate(ctx context.Context, blueprintID string) (domain.Blueprint, error) {
	source, err := s.Get(ctx, blueprintID)
	if err != nil {
		return domain.Blueprint{}, err
	}

	unlock := s.locks.Lock(registryLockKey)
	defer unlock()

	now := s.clock()
	duplicate := source.Clone()
	duplicate.ID = "bp_" + s.idgen()
	duplicate.IsSystem = false
	duplicate.Deleting = false
	duplicate.CreatedAt = now
	duplicate.UpdatedAt = now

	for attempt := 1; ; attempt++ {
		duplicate.Name = fmt.Sprintf("%s-copy-%d", source.Name, attempt)
		err := s.registry.Blueprints().Insert(ctx, duplicate)
		if err == nil {
			break
		}
		if isRepositoryConflict(err) && attempt < maxDuplicateNameAttempts {
			continue
		}
		if isRepositoryConflict(err) {
			return domain.Blueprint{}, &domain.DuplicateNameError{Name: duplicate.Name}
		}
		return domain.Blueprint{}, err
	}

	s.publish(ctx, events.Event{
		Type:        events.TypeBlueprintDuplicated,
		BlueprintID: duplicate.ID,
		OccurredAt:  now,
	})
	return duplicate, nil
}

const maxDuplicateNameAttempts = 50

func (s *blueprintService) SeedSystemBlueprints(ctx context.Context) (int, error) {
	unlock := s.locks.Lock(registryLockKey)
	defer unlock()

	inserted := 0
	for _, seed := range catalog.SystemBlueprints() {
		_, err := s.registry.Blueprints().FindByName(ctx, seed.Name)
		if err == nil {
			continue
		}
		if !isRepositoryNotFound(err) {
			return inserted, err
		}

		now := s.clock()
		seed.ID = "bp_" + s.idgen()
		seed.CreatedAt = now
		seed.UpdatedAt = now
		if err := s.registry.Blueprints().Insert(ctx, seed); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

func (s *blueprintService) publish(ctx context.Context, event events.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		requestctx.Logger(ctx).Warn("publish activity event failed",
			zap.Error(err), zap.String("event_type", event.Type))
	}
}
