package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	domain "github.com/mirada-interiors/cms-api/internal/domain"
	"github.com/mirada-interiors/cms-api/internal/platform/pagelock"
	"github.com/mirada-interiors/cms-api/internal/repositories/memory"
)

func fixedClock() time.Time {
	return time.Date(2025, 4, 7, 10, 0, 0, 0, time.UTC)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%08d", n)
	}
}

func newBlueprintService(t *testing.T) (BlueprintService, *memory.Registry) {
	t.Helper()
	registry := memory.NewRegistry()
	service, err := NewBlueprintService(BlueprintServiceDeps{
		Registry:    registry,
		Locks:       pagelock.New(),
		Clock:       fixedClock,
		IDGenerator: sequentialIDs(),
	})
	if err != nil {
		t.Fatalf("NewBlueprintService: %v", err)
	}
	return service, registry
}

func TestCreateBlueprint(t *testing.T) {
	ctx := context.Background()
	service, _ := newBlueprintService(t)

	created, err := service.Create(ctx, CreateBlueprintCommand{
		Name:          "hero-simple",
		DisplayName:   "Simple Hero",
		Type:          domain.BlueprintTypeComponent,
		AllowMultiple: false,
		Category:      "sections",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.IsSystem {
		t.Fatalf("unexpected blueprint: %#v", created)
	}
	if created.CreatedAt != fixedClock() {
		t.Errorf("CreatedAt = %v", created.CreatedAt)
	}

	_, err = service.Create(ctx, CreateBlueprintCommand{
		Name: "hero-simple",
		Type: domain.BlueprintTypeComponent,
	})
	var dup *domain.DuplicateNameError
	if !errors.As(err, &dup) || dup.Name != "hero-simple" {
		t.Fatalf("expected DuplicateNameError, got %v", err)
	}
}

func TestCreateBlueprintRejectsInvalidType(t *testing.T) {
	service, _ := newBlueprintService(t)

	_, err := service.Create(context.Background(), CreateBlueprintCommand{
		Name: "broken",
		Type: domain.BlueprintType("WIDGET"),
	})
	if err == nil {
		t.Fatal("expected error for invalid type")
	}
}

func TestUpdateBlueprintMetadata(t *testing.T) {
	ctx := context.Background()
	service, _ := newBlueprintService(t)

	created, err := service.Create(ctx, CreateBlueprintCommand{
		Name:        "gallery",
		DisplayName: "Gallery",
		Type:        domain.BlueprintTypeComponent,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	description := "A scrolling image gallery"
	allowMultiple := true
	updated, err := service.Update(ctx, UpdateBlueprintCommand{
		BlueprintID:   created.ID,
		Description:   &description,
		AllowMultiple: &allowMultiple,
		Fields: []domain.Field{
			{Name: "images", Type: domain.FieldTypeRepeater},
		},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Description != description || !updated.AllowMultiple {
		t.Fatalf("update not applied: %#v", updated)
	}
	if len(updated.Fields) != 1 || updated.Fields[0].Name != "images" {
		t.Fatalf("fields = %#v", updated.Fields)
	}
	if updated.Name != "gallery" || updated.DisplayName != "Gallery" {
		t.Fatalf("untouched fields changed: %#v", updated)
	}

	fetched, err := service.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fetched.Description != description {
		t.Fatalf("update not persisted: %#v", fetched)
	}
}

func TestUpdateBlueprintSystemTypeRulesLocked(t *testing.T) {
	ctx := context.Background()
	service, _ := newBlueprintService(t)

	if _, err := service.SeedSystemBlueprints(ctx); err != nil {
		t.Fatalf("SeedSystemBlueprints: %v", err)
	}
	system := listByName(t, ctx, service, "HeroBanner")

	allowMultiple := true
	_, err := service.Update(ctx, UpdateBlueprintCommand{
		BlueprintID:   system.ID,
		AllowMultiple: &allowMultiple,
	})
	var protected *domain.ProtectedResourceError
	if !errors.As(err, &protected) {
		t.Fatalf("expected ProtectedResourceError for cardinality change, got %v", err)
	}

	_, err = service.Update(ctx, UpdateBlueprintCommand{
		BlueprintID: system.ID,
		Fields:      []domain.Field{{Name: "extra", Type: domain.FieldTypeText}},
	})
	if !errors.As(err, &protected) {
		t.Fatalf("expected ProtectedResourceError for schema change, got %v", err)
	}

	// Presentation metadata stays editable.
	description := "Large banner with headline and call to action"
	updated, err := service.Update(ctx, UpdateBlueprintCommand{
		BlueprintID: system.ID,
		Description: &description,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Description != description || !updated.IsSystem {
		t.Fatalf("presentation edit failed: %#v", updated)
	}
}

func TestUpdateBlueprintNotFound(t *testing.T) {
	service, _ := newBlueprintService(t)

	_, err := service.Update(context.Background(), UpdateBlueprintCommand{BlueprintID: "bp_missing"})
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestGetBlueprintNotFound(t *testing.T) {
	service, _ := newBlueprintService(t)

	_, err := service.Get(context.Background(), "bp_missing")
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDuplicateBlueprint(t *testing.T) {
	ctx := context.Background()
	service, _ := newBlueprintService(t)

	source, err := service.Create(ctx, CreateBlueprintCommand{
		Name:          "team-grid",
		DisplayName:   "Team Grid",
		Type:          domain.BlueprintTypeComponent,
		AllowMultiple: true,
		Fields: []domain.Field{
			{Name: "title", Type: domain.FieldTypeText},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := service.Duplicate(ctx, source.ID)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if first.Name != "team-grid-copy-1" {
		t.Errorf("name = %q", first.Name)
	}
	if first.ID == source.ID || first.IsSystem {
		t.Errorf("copy not reset: %#v", first)
	}
	if len(first.Fields) != 1 {
		t.Errorf("fields not copied: %#v", first.Fields)
	}

	// Second duplicate skips the taken suffix.
	second, err := service.Duplicate(ctx, source.ID)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if second.Name != "team-grid-copy-2" {
		t.Errorf("name = %q", second.Name)
	}
}

func TestDuplicateSystemBlueprintAllowedButCopyIsNotSystem(t *testing.T) {
	ctx := context.Background()
	service, _ := newBlueprintService(t)

	if _, err := service.SeedSystemBlueprints(ctx); err != nil {
		t.Fatalf("SeedSystemBlueprints: %v", err)
	}
	system := listByName(t, ctx, service, "HeroBanner")

	duplicate, err := service.Duplicate(ctx, system.ID)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if duplicate.IsSystem {
		t.Fatal("duplicate of a system blueprint must not be system")
	}
}

func listByName(t *testing.T, ctx context.Context, service BlueprintService, name string) domain.Blueprint {
	t.Helper()
	all, err := service.List(ctx, BlueprintFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, bp := range all {
		if bp.Name == name {
			return bp
		}
	}
	t.Fatalf("blueprint %q not found", name)
	return domain.Blueprint{}
}

func TestSeedSystemBlueprintsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	service, _ := newBlueprintService(t)

	first, err := service.SeedSystemBlueprints(ctx)
	if err != nil {
		t.Fatalf("SeedSystemBlueprints: %v", err)
	}
	if first != 11 {
		t.Fatalf("first seed inserted %d, want 11", first)
	}

	second, err := service.SeedSystemBlueprints(ctx)
	if err != nil {
		t.Fatalf("SeedSystemBlueprints: %v", err)
	}
	if second != 0 {
		t.Fatalf("second seed inserted %d, want 0", second)
	}

	isSystem := true
	system, err := service.List(ctx, BlueprintFilter{IsSystem: &isSystem})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(system) != 11 {
		t.Fatalf("system blueprints = %d, want 11", len(system))
	}
}

func TestListFiltersByType(t *testing.T) {
	ctx := context.Background()
	service, _ := newBlueprintService(t)

	if _, err := service.Create(ctx, CreateBlueprintCommand{Name: "landing", Type: domain.BlueprintTypeDocument}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := service.Create(ctx, CreateBlueprintCommand{Name: "hero", Type: domain.BlueprintTypeComponent}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	docType := domain.BlueprintTypeDocument
	docs, err := service.List(ctx, BlueprintFilter{Type: &docType})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "landing" {
		t.Fatalf("docs = %#v", docs)
	}
}
