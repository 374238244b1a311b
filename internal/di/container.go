// Package di assembles the runtime dependency graph: storage registry,
// locks, event publisher, idempotency store, and the service layer.
package di

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/mirada-interiors/cms-api/internal/catalog"
	"github.com/mirada-interiors/cms-api/internal/platform/config"
	"github.com/mirada-interiors/cms-api/internal/platform/events"
	pfirestore "github.com/mirada-interiors/cms-api/internal/platform/firestore"
	"github.com/mirada-interiors/cms-api/internal/platform/idempotency"
	"github.com/mirada-interiors/cms-api/internal/platform/pagelock"
	"github.com/mirada-interiors/cms-api/internal/repositories"
	firestorerepo "github.com/mirada-interiors/cms-api/internal/repositories/firestore"
	"github.com/mirada-interiors/cms-api/internal/repositories/memory"
	"github.com/mirada-interiors/cms-api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon.
type Services struct {
	Blueprints  services.BlueprintService
	Composition services.CompositionService
}

// Container wires repositories, services, and supporting infrastructure for
// runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Catalog      *catalog.Catalog
	Services     Services

	pubsubClient *pubsub.Client
}

// NewContainer constructs the runtime dependencies from configuration. Tests
// can bypass it and wire the in-memory registry directly.
func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	container := &Container{
		Config:  cfg,
		Catalog: catalog.New(),
	}

	registry, idemStore, err := buildStorage(cfg)
	if err != nil {
		return nil, err
	}
	container.Repositories = registry

	publisher, client, err := buildPublisher(ctx, cfg)
	if err != nil {
		return nil, err
	}
	container.pubsubClient = client

	locks := pagelock.New()

	blueprints, err := services.NewBlueprintService(services.BlueprintServiceDeps{
		Registry: registry,
		Locks:    locks,
		Events:   publisher,
	})
	if err != nil {
		return nil, fmt.Errorf("build blueprint service: %w", err)
	}
	container.Services.Blueprints = blueprints

	composition, err := services.NewCompositionService(services.CompositionServiceDeps{
		Registry:       registry,
		Catalog:        container.Catalog,
		Locks:          locks,
		Events:         publisher,
		Idempotency:    idemStore,
		IdempotencyTTL: cfg.Idempotency.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("build composition service: %w", err)
	}
	container.Services.Composition = composition

	return container, nil
}

// Close releases repository clients and the event publisher connection.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Repositories != nil {
		if err := c.Repositories.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if c.pubsubClient != nil {
		if err := c.pubsubClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildStorage(cfg config.Config) (repositories.Registry, idempotency.Store, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memory.NewRegistry(), idempotency.NewMemoryStore(), nil
	case "firestore":
		provider := pfirestore.NewProvider(cfg.Firestore)
		idemStore, err := idempotency.NewFirestoreStore(provider)
		if err != nil {
			return nil, nil, fmt.Errorf("build idempotency store: %w", err)
		}
		return firestorerepo.NewRegistry(provider), idemStore, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func buildPublisher(ctx context.Context, cfg config.Config) (events.Publisher, *pubsub.Client, error) {
	if !cfg.PubSub.PublishEnabled() {
		return events.NopPublisher{}, nil, nil
	}

	projectID := cfg.PubSub.ProjectID
	if projectID == "" {
		projectID = cfg.Firestore.ProjectID
	}
	if projectID == "" {
		return nil, nil, errors.New("pubsub project id is required when an activity topic is configured")
	}

	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("build pubsub client: %w", err)
	}
	publisher, err := events.NewPubSubPublisher(client.Topic(cfg.PubSub.TopicID))
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("build activity publisher: %w", err)
	}
	return publisher, client, nil
}
