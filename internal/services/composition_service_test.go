package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mirada-interiors/cms-api/internal/catalog"
	domain "github.com/mirada-interiors/cms-api/internal/domain"
	"github.com/mirada-interiors/cms-api/internal/platform/events"
	"github.com/mirada-interiors/cms-api/internal/platform/idempotency"
	"github.com/mirada-interiors/cms-api/internal/platform/pagelock"
	"github.com/mirada-interiors/cms-api/internal/repositories/memory"
)

type engineFixture struct {
	blueprints  BlueprintService
	composition CompositionService
	registry    *memory.Registry
	events      *events.MemoryPublisher
}

func newEngine(t *testing.T) *engineFixture {
	t.Helper()

	registry := memory.NewRegistry()
	locks := pagelock.New()
	publisher := events.NewMemoryPublisher()
	idgen := sequentialIDs()

	blueprints, err := NewBlueprintService(BlueprintServiceDeps{
		Registry:    registry,
		Locks:       locks,
		Events:      publisher,
		Clock:       fixedClock,
		IDGenerator: idgen,
	})
	if err != nil {
		t.Fatalf("NewBlueprintService: %v", err)
	}

	composition, err := NewCompositionService(CompositionServiceDeps{
		Registry:    registry,
		Catalog:     catalog.New(),
		Locks:       locks,
		Events:      publisher,
		Idempotency: idempotency.NewMemoryStore(),
		Clock:       fixedClock,
		IDGenerator: idgen,
	})
	if err != nil {
		t.Fatalf("NewCompositionService: %v", err)
	}

	return &engineFixture{
		blueprints:  blueprints,
		composition: composition,
		registry:    registry,
		events:      publisher,
	}
}

func (f *engineFixture) createBlueprint(t *testing.T, name string, allowMultiple bool, fields ...domain.Field) domain.Blueprint {
	t.Helper()
	bp, err := f.blueprints.Create(context.Background(), CreateBlueprintCommand{
		Name:          name,
		DisplayName:   name,
		Type:          domain.BlueprintTypeComponent,
		AllowMultiple: allowMultiple,
		Fields:        fields,
	})
	if err != nil {
		t.Fatalf("create blueprint %s: %v", name, err)
	}
	return bp
}

func (f *engineFixture) addInstance(t *testing.T, pageID, blueprintID string, order int) domain.BlockInstance {
	t.Helper()
	instance, _, err := f.composition.AddInstance(context.Background(), AddInstanceCommand{
		PageID:      pageID,
		BlueprintID: blueprintID,
		Order:       order,
	})
	if err != nil {
		t.Fatalf("add instance on %s: %v", pageID, err)
	}
	return instance
}

func (f *engineFixture) assertDense(t *testing.T, pageID string) []domain.BlockInstance {
	t.Helper()
	page, err := f.composition.ListPage(context.Background(), pageID)
	if err != nil {
		t.Fatalf("ListPage %s: %v", pageID, err)
	}
	for i, instance := range page {
		if instance.Order != i {
			t.Fatalf("page %s order not dense at index %d: %#v", pageID, i, page)
		}
	}
	return page
}

func TestAddInstanceCardinality(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)
	hero := f.createBlueprint(t, "hero-simple", false)

	f.addInstance(t, "page_1", hero.ID, 0)

	_, _, err := f.composition.AddInstance(ctx, AddInstanceCommand{
		PageID:      "page_1",
		BlueprintID: hero.ID,
		Order:       1,
	})
	var cardErr *domain.CardinalityError
	if !errors.As(err, &cardErr) {
		t.Fatalf("expected CardinalityError, got %v", err)
	}
	if cardErr.BlueprintName != "hero-simple" || cardErr.PageID != "page_1" {
		t.Fatalf("error detail: %#v", cardErr)
	}

	// A different page still accepts one.
	f.addInstance(t, "page_2", hero.ID, 0)
}

func TestAddInstanceUnknownBlueprint(t *testing.T) {
	f := newEngine(t)

	_, _, err := f.composition.AddInstance(context.Background(), AddInstanceCommand{
		PageID:      "page_1",
		BlueprintID: "bp_missing",
	})
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) || notFound.Kind != "blueprint" {
		t.Fatalf("expected blueprint NotFoundError, got %v", err)
	}
}

func TestAddInstanceReportsSchemaAdvisories(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)
	quote := f.createBlueprint(t, "quote", true, domain.Field{
		Name: "quote", Type: domain.FieldTypeText, Required: true,
	})

	instance, warnings, err := f.composition.AddInstance(ctx, AddInstanceCommand{
		PageID:      "page_1",
		BlueprintID: quote.ID,
		DataEn:      domain.Payload{"attribution": "Zaha Hadid"},
	})
	if err != nil {
		t.Fatalf("AddInstance: %v", err)
	}
	if instance.ID == "" {
		t.Fatal("advisories must not block the insert")
	}

	want := []string{
		`key "attribution" is present in only one locale`,
		`required field "quote" is missing`,
	}
	if len(warnings) != len(want) {
		t.Fatalf("warnings = %#v, want %#v", warnings, want)
	}
	for i := range want {
		if warnings[i] != want[i] {
			t.Fatalf("warnings = %#v, want %#v", warnings, want)
		}
	}
}

func TestRemoveInstanceRedensifies(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)
	block := f.createBlueprint(t, "text-block", true)

	ids := make([]string, 4)
	for i := range ids {
		ids[i] = f.addInstance(t, "page_1", block.ID, i).ID
	}

	if err := f.composition.RemoveInstance(ctx, ids[1]); err != nil {
		t.Fatalf("RemoveInstance: %v", err)
	}

	page := f.assertDense(t, "page_1")
	if len(page) != 3 {
		t.Fatalf("page size = %d", len(page))
	}
	want := []string{ids[0], ids[2], ids[3]}
	for i := range want {
		if page[i].ID != want[i] {
			t.Fatalf("page order = %#v", page)
		}
	}

	err := f.composition.RemoveInstance(ctx, ids[1])
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError on repeat removal, got %v", err)
	}
}

func TestReorderPermutationChecks(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)
	block := f.createBlueprint(t, "text-block", true)

	a := f.addInstance(t, "page_1", block.ID, 0)
	b := f.addInstance(t, "page_1", block.ID, 1)
	c := f.addInstance(t, "page_1", block.ID, 2)
	other := f.addInstance(t, "page_2", block.ID, 0)

	cases := []struct {
		name string
		ids  []string
	}{
		{"wrong length", []string{a.ID, b.ID}},
		{"duplicate id", []string{a.ID, a.ID, b.ID}},
		{"foreign id", []string{a.ID, b.ID, other.ID}},
	}
	for _, tc := range cases {
		_, err := f.composition.Reorder(ctx, "page_1", tc.ids)
		var permErr *domain.InvalidPermutationError
		if !errors.As(err, &permErr) {
			t.Fatalf("%s: expected InvalidPermutationError, got %v", tc.name, err)
		}
	}

	// Failed attempts leave the ordering untouched.
	page := f.assertDense(t, "page_1")
	if page[0].ID != a.ID || page[1].ID != b.ID || page[2].ID != c.ID {
		t.Fatalf("ordering changed after failed reorders: %#v", page)
	}

	result, err := f.composition.Reorder(ctx, "page_1", []string{c.ID, a.ID, b.ID})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if result[0].ID != c.ID || result[0].Order != 0 {
		t.Fatalf("reorder result = %#v", result)
	}
	f.assertDense(t, "page_1")
}

func TestUpdatePayloadLocaleMerge(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)
	block := f.createBlueprint(t, "text-block", true)

	instance, _, err := f.composition.AddInstance(ctx, AddInstanceCommand{
		PageID:      "page_1",
		BlueprintID: block.ID,
		DataEn:      domain.Payload{"title": "Hello", "subtitle": "World"},
		DataAr:      domain.Payload{"title": "مرحبا"},
	})
	if err != nil {
		t.Fatalf("AddInstance: %v", err)
	}

	updated, _, err := f.composition.UpdatePayload(ctx, UpdatePayloadCommand{
		InstanceID: instance.ID,
		Locale:     domain.LocaleEn,
		Patch:      domain.Payload{"title": "Updated", "subtitle": nil, "extra": "new"},
	})
	if err != nil {
		t.Fatalf("UpdatePayload: %v", err)
	}

	if updated.DataEn["title"] != "Updated" || updated.DataEn["extra"] != "new" {
		t.Fatalf("english payload = %#v", updated.DataEn)
	}
	if _, ok := updated.DataEn["subtitle"]; ok {
		t.Fatal("nil patch value should delete the key")
	}
	if updated.DataAr["title"] != "مرحبا" {
		t.Fatalf("arabic payload must be untouched: %#v", updated.DataAr)
	}
}

func TestUpdatePayloadSanitizesRichText(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)
	block := f.createBlueprint(t, "rich-text-content", true, domain.Field{
		Name: "content", Type: domain.FieldTypeRichText, Bilingual: true,
	})

	instance := f.addInstance(t, "page_1", block.ID, 0)

	updated, _, err := f.composition.UpdatePayload(ctx, UpdatePayloadCommand{
		InstanceID: instance.ID,
		Locale:     domain.LocaleEn,
		Patch:      domain.Payload{"content": `<p>ok</p><script>alert("x")</script>`},
	})
	if err != nil {
		t.Fatalf("UpdatePayload: %v", err)
	}

	content, _ := updated.DataEn["content"].(string)
	if strings.Contains(content, "<script>") {
		t.Fatalf("script tag survived sanitization: %q", content)
	}
	if !strings.Contains(content, "<p>ok</p>") {
		t.Fatalf("benign markup stripped: %q", content)
	}
}

func TestUpdatePayloadPublishes(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)
	block := f.createBlueprint(t, "text-block", true)
	instance := f.addInstance(t, "page_1", block.ID, 0)

	published := domain.InstanceStatusPublished
	updated, _, err := f.composition.UpdatePayload(ctx, UpdatePayloadCommand{
		InstanceID: instance.ID,
		Locale:     domain.LocaleEn,
		Status:     &published,
	})
	if err != nil {
		t.Fatalf("UpdatePayload: %v", err)
	}
	if updated.Status != domain.InstanceStatusPublished || updated.PublishedAt.IsZero() {
		t.Fatalf("publish transition missing: %#v", updated)
	}
}

func TestDuplicateInstanceInsertsAfterSource(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)
	block := f.createBlueprint(t, "text-block", true)

	a := f.addInstance(t, "page_1", block.ID, 0)
	b, _, err := f.composition.AddInstance(ctx, AddInstanceCommand{
		PageID:      "page_1",
		BlueprintID: block.ID,
		Order:       1,
		DataEn:      domain.Payload{"title": "Original"},
		Status:      domain.InstanceStatusPublished,
	})
	if err != nil {
		t.Fatalf("AddInstance: %v", err)
	}
	c := f.addInstance(t, "page_1", block.ID, 2)

	duplicate, err := f.composition.DuplicateInstance(ctx, b.ID)
	if err != nil {
		t.Fatalf("DuplicateInstance: %v", err)
	}
	if duplicate.Order != 2 {
		t.Fatalf("duplicate order = %d, want 2", duplicate.Order)
	}
	if duplicate.Status != domain.InstanceStatusDraft {
		t.Fatalf("duplicates must start as drafts, got %q", duplicate.Status)
	}
	if duplicate.DataEn["title"] != "Original" {
		t.Fatalf("payload not copied: %#v", duplicate.DataEn)
	}

	page := f.assertDense(t, "page_1")
	want := []string{a.ID, b.ID, duplicate.ID, c.ID}
	for i := range want {
		if page[i].ID != want[i] {
			t.Fatalf("page order = %#v", page)
		}
	}
}

func TestDuplicateInstanceRespectsCardinality(t *testing.T) {
	f := newEngine(t)
	hero := f.createBlueprint(t, "hero-simple", false)
	instance := f.addInstance(t, "page_1", hero.ID, 0)

	_, err := f.composition.DuplicateInstance(context.Background(), instance.ID)
	var cardErr *domain.CardinalityError
	if !errors.As(err, &cardErr) {
		t.Fatalf("expected CardinalityError, got %v", err)
	}
}

func applyPageAbout(t *testing.T, f *engineFixture, pageID, key string) []domain.BlockInstance {
	t.Helper()
	created, err := f.composition.ApplyTemplate(context.Background(), ApplyTemplateCommand{
		PageID:         pageID,
		TemplateID:     "page-about",
		IdempotencyKey: key,
	})
	if err != nil {
		t.Fatalf("ApplyTemplate: %v", err)
	}
	return created
}

func seedPageAboutBlueprints(t *testing.T, f *engineFixture) {
	t.Helper()
	f.createBlueprint(t, "hero-simple", false)
	f.createBlueprint(t, "text-content", true)
	f.createBlueprint(t, "team-grid", true)
}

func TestApplyTemplateRoundTrip(t *testing.T) {
	f := newEngine(t)
	seedPageAboutBlueprints(t, f)

	created := applyPageAbout(t, f, "page_1", "")
	if len(created) != 3 {
		t.Fatalf("created = %d, want 3", len(created))
	}
	if created[0].DataEn["title"] != "About Us" {
		t.Fatalf("first section payload = %#v", created[0].DataEn)
	}
	if created[0].DataAr["title"] != "من نحن" {
		t.Fatalf("first section arabic payload = %#v", created[0].DataAr)
	}
	f.assertDense(t, "page_1")

	// Mutating applied payloads must never reach back into the catalog.
	created[0].DataEn["title"] = "mutated"
	fresh, _ := catalog.New().ByID("page-about")
	if fresh.DefaultSections[0].DefaultEn["title"] != "About Us" {
		t.Fatal("catalog defaults mutated through applied instance")
	}
}

func TestApplyTemplateUnresolvedBlueprintIsAllOrNothing(t *testing.T) {
	f := newEngine(t)
	// team-grid deliberately missing.
	f.createBlueprint(t, "hero-simple", false)
	f.createBlueprint(t, "text-content", true)

	_, err := f.composition.ApplyTemplate(context.Background(), ApplyTemplateCommand{
		PageID:     "page_1",
		TemplateID: "page-about",
	})
	var bpErr *domain.BlueprintNotFoundError
	if !errors.As(err, &bpErr) || bpErr.Name != "team-grid" {
		t.Fatalf("expected BlueprintNotFoundError{team-grid}, got %v", err)
	}

	page, listErr := f.composition.ListPage(context.Background(), "page_1")
	if listErr != nil {
		t.Fatalf("ListPage: %v", listErr)
	}
	if len(page) != 0 {
		t.Fatalf("partial composition observable: %#v", page)
	}
}

func TestApplyTemplateUnknownTemplate(t *testing.T) {
	f := newEngine(t)

	_, err := f.composition.ApplyTemplate(context.Background(), ApplyTemplateCommand{
		PageID:     "page_1",
		TemplateID: "page-missing",
	})
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) || notFound.Kind != "template" {
		t.Fatalf("expected template NotFoundError, got %v", err)
	}
}

func TestApplyTemplateIdempotentReplay(t *testing.T) {
	f := newEngine(t)
	seedPageAboutBlueprints(t, f)

	first := applyPageAbout(t, f, "page_1", "key-1")
	second := applyPageAbout(t, f, "page_1", "key-1")

	if len(first) != len(second) {
		t.Fatalf("replay size mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("replay returned different instances: %#v vs %#v", first, second)
		}
	}

	page := f.assertDense(t, "page_1")
	if len(page) != 3 {
		t.Fatalf("replay duplicated sections: %d instances", len(page))
	}
}

func TestApplyTemplateKeyReuseWithDifferentArgs(t *testing.T) {
	f := newEngine(t)
	seedPageAboutBlueprints(t, f)

	applyPageAbout(t, f, "page_1", "key-1")

	_, err := f.composition.ApplyTemplate(context.Background(), ApplyTemplateCommand{
		PageID:         "page_2",
		TemplateID:     "page-about",
		IdempotencyKey: "key-1",
	})
	if !errors.Is(err, idempotency.ErrFingerprintMismatch) {
		t.Fatalf("expected fingerprint mismatch, got %v", err)
	}
}

func TestDeleteBlueprintCascade(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)
	team := f.createBlueprint(t, "team-grid", true)
	keep := f.createBlueprint(t, "text-block", true)

	// 5 team-grid instances across 3 pages, interleaved with keepers.
	f.addInstance(t, "page_1", keep.ID, 0)
	f.addInstance(t, "page_1", team.ID, 1)
	f.addInstance(t, "page_1", team.ID, 2)
	f.addInstance(t, "page_2", team.ID, 0)
	f.addInstance(t, "page_2", keep.ID, 1)
	f.addInstance(t, "page_3", team.ID, 0)
	f.addInstance(t, "page_3", team.ID, 1)

	result, err := f.composition.DeleteBlueprintCascade(ctx, team.ID)
	if err != nil {
		t.Fatalf("DeleteBlueprintCascade: %v", err)
	}
	if result.DeletedInstanceCount != 5 {
		t.Fatalf("deleted instances = %d, want 5", result.DeletedInstanceCount)
	}
	if result.Blueprint.ID != team.ID {
		t.Fatalf("result blueprint = %#v", result.Blueprint)
	}

	if _, err := f.blueprints.Get(ctx, team.ID); err == nil {
		t.Fatal("cascaded blueprint still resolvable")
	}
	all, err := f.blueprints.List(ctx, BlueprintFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, bp := range all {
		if bp.ID == team.ID {
			t.Fatal("cascaded blueprint still listed")
		}
	}

	for _, pageID := range []string{"page_1", "page_2", "page_3"} {
		for _, instance := range f.assertDense(t, pageID) {
			if instance.BlueprintID == team.ID {
				t.Fatalf("dangling instance on %s: %#v", pageID, instance)
			}
		}
	}
}

func TestDeleteSystemBlueprintProtected(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)
	if _, err := f.blueprints.SeedSystemBlueprints(ctx); err != nil {
		t.Fatalf("SeedSystemBlueprints: %v", err)
	}
	system := listByName(t, ctx, f.blueprints, "HeroBanner")

	// Protection holds even with zero instances referencing it.
	_, err := f.composition.DeleteBlueprintCascade(ctx, system.ID)
	var protected *domain.ProtectedResourceError
	if !errors.As(err, &protected) || protected.Name != "HeroBanner" {
		t.Fatalf("expected ProtectedResourceError, got %v", err)
	}

	if _, err := f.blueprints.Get(ctx, system.ID); err != nil {
		t.Fatalf("system blueprint must survive: %v", err)
	}
}

func TestAddInstanceDuringCascadeFails(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)
	team := f.createBlueprint(t, "team-grid", true)

	// Simulate an interrupted cascade: marked deleting, fan-out not done.
	if err := f.registry.Blueprints().MarkDeleting(ctx, team.ID, true, fixedClock()); err != nil {
		t.Fatalf("MarkDeleting: %v", err)
	}

	_, _, err := f.composition.AddInstance(ctx, AddInstanceCommand{
		PageID:      "page_1",
		BlueprintID: team.ID,
	})
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for blueprint mid-deletion, got %v", err)
	}
}

func TestRecoverPendingCascades(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)
	team := f.createBlueprint(t, "team-grid", true)
	keep := f.createBlueprint(t, "text-block", true)

	f.addInstance(t, "page_1", keep.ID, 0)
	f.addInstance(t, "page_1", team.ID, 1)
	f.addInstance(t, "page_2", team.ID, 0)

	// Crash simulation: the deleting marker is set, nothing else happened.
	if err := f.registry.Blueprints().MarkDeleting(ctx, team.ID, true, fixedClock()); err != nil {
		t.Fatalf("MarkDeleting: %v", err)
	}

	recovered, err := f.composition.RecoverPendingCascades(ctx)
	if err != nil {
		t.Fatalf("RecoverPendingCascades: %v", err)
	}
	if recovered != 1 {
		t.Fatalf("recovered = %d, want 1", recovered)
	}

	if _, err := f.blueprints.Get(ctx, team.ID); err == nil {
		t.Fatal("recovered cascade left the blueprint behind")
	}
	page := f.assertDense(t, "page_1")
	if len(page) != 1 || page[0].BlueprintID != keep.ID {
		t.Fatalf("page_1 after recovery = %#v", page)
	}
}

func TestBulkDeleteInstancesBeforeBlueprints(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)
	team := f.createBlueprint(t, "team-grid", true)

	a := f.addInstance(t, "page_1", team.ID, 0)
	f.addInstance(t, "page_1", team.ID, 1)
	f.addInstance(t, "page_2", team.ID, 0)

	// Naming both an instance and its blueprint must not double-count: the
	// instance is removed first, the cascade then sees only the remaining two.
	result, err := f.composition.BulkDelete(ctx, BulkDeleteCommand{
		InstanceIDs:  []string{a.ID},
		BlueprintIDs: []string{team.ID},
	})
	if err != nil {
		t.Fatalf("BulkDelete: %v", err)
	}
	// 1 named instance + 2 cascaded instances + 1 blueprint.
	if result.DeletedCount != 4 {
		t.Fatalf("deleted count = %d, want 4", result.DeletedCount)
	}

	if _, err := f.blueprints.Get(ctx, team.ID); err == nil {
		t.Fatal("blueprint survived bulk delete")
	}
}

func TestBulkDeleteUnknownInstance(t *testing.T) {
	f := newEngine(t)

	_, err := f.composition.BulkDelete(context.Background(), BulkDeleteCommand{
		InstanceIDs: []string{"blk_missing"},
	})
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestActivityEventsPublished(t *testing.T) {
	f := newEngine(t)
	seedPageAboutBlueprints(t, f)
	applyPageAbout(t, f, "page_1", "")

	var applied bool
	for _, event := range f.events.Events() {
		if event.Type == events.TypeTemplateApplied && event.PageID == "page_1" && event.Count == 3 {
			applied = true
		}
	}
	if !applied {
		t.Fatalf("template.applied event missing: %#v", f.events.Events())
	}
}

func TestDensityUnderMixedMutations(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)
	block := f.createBlueprint(t, "text-block", true)

	for i := 0; i < 6; i++ {
		f.addInstance(t, "page_1", block.ID, i/2)
	}

	page := f.assertDense(t, "page_1")
	if err := f.composition.RemoveInstance(ctx, page[3].ID); err != nil {
		t.Fatalf("RemoveInstance: %v", err)
	}
	page = f.assertDense(t, "page_1")

	reversed := make([]string, len(page))
	for i, instance := range page {
		reversed[len(page)-1-i] = instance.ID
	}
	if _, err := f.composition.Reorder(ctx, "page_1", reversed); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	f.assertDense(t, "page_1")

	if _, err := f.composition.DuplicateInstance(ctx, reversed[2]); err != nil {
		t.Fatalf("DuplicateInstance: %v", err)
	}
	final := f.assertDense(t, "page_1")
	if len(final) != 6 {
		t.Fatalf("final size = %d, want 6", len(final))
	}
}
