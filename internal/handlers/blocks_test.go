package handlers

import (
	"net/http"
	"strings"
	"testing"
)

func TestPatchBlockEndpoint(t *testing.T) {
	api := newTestAPI(t)
	blueprint := createBlueprintViaAPI(t, api, "text-content", true)
	block := addBlockViaAPI(t, api, "page-1", blueprint.ID)

	recorder := api.do(t, http.MethodPatch, "/api/v1/blocks/"+block.ID, map[string]any{
		"locale": "ar",
		"patch":  map[string]any{"title": "عنوان جديد", "subtitle": "فرعي"},
	}, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("patch status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	var updated blockInstancePayload
	decodeBody(t, recorder, &updated)
	if updated.DataAr["title"] != "عنوان جديد" || updated.DataAr["subtitle"] != "فرعي" {
		t.Errorf("ar payload = %#v", updated.DataAr)
	}
	if updated.DataEn["title"] != "Hello" {
		t.Errorf("en payload touched: %#v", updated.DataEn)
	}
}

func TestPatchBlockPublishTransition(t *testing.T) {
	api := newTestAPI(t)
	blueprint := createBlueprintViaAPI(t, api, "text-content", true)
	block := addBlockViaAPI(t, api, "page-1", blueprint.ID)

	recorder := api.do(t, http.MethodPatch, "/api/v1/blocks/"+block.ID, map[string]any{
		"locale": "en",
		"status": "published",
	}, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("patch status = %d", recorder.Code)
	}
	var updated blockInstancePayload
	decodeBody(t, recorder, &updated)
	if updated.Status != "published" || updated.PublishedAt == "" {
		t.Errorf("status = %q published_at = %q", updated.Status, updated.PublishedAt)
	}
}

func TestPatchBlockSanitizesRichText(t *testing.T) {
	api := newTestAPI(t)

	recorder := api.do(t, http.MethodPost, "/api/v1/blueprints", map[string]any{
		"name": "rich-body",
		"type": "COMPONENT",
		"fields": []map[string]any{
			{"name": "body", "type": "richtext"},
		},
		"allow_multiple": true,
	}, nil)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create blueprint status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	var blueprint blueprintPayload
	decodeBody(t, recorder, &blueprint)

	block := addBlockViaAPI(t, api, "page-1", blueprint.ID)

	patched := api.do(t, http.MethodPatch, "/api/v1/blocks/"+block.ID, map[string]any{
		"locale": "en",
		"patch":  map[string]any{"body": `<p>ok</p><script>alert(1)</script>`},
	}, nil)
	if patched.Code != http.StatusOK {
		t.Fatalf("patch status = %d", patched.Code)
	}
	var updated blockInstancePayload
	decodeBody(t, patched, &updated)
	body, _ := updated.DataEn["body"].(string)
	if strings.Contains(body, "script") || !strings.Contains(body, "<p>ok</p>") {
		t.Errorf("body = %q", body)
	}
}

func TestPatchBlockReturnsLocaleMismatchWarnings(t *testing.T) {
	api := newTestAPI(t)
	blueprint := createBlueprintViaAPI(t, api, "text-content", true)
	block := addBlockViaAPI(t, api, "page-1", blueprint.ID)

	recorder := api.do(t, http.MethodPatch, "/api/v1/blocks/"+block.ID, map[string]any{
		"locale": "en",
		"patch":  map[string]any{"subtitle": "English only"},
	}, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("patch status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	var updated blockMutationResponse
	decodeBody(t, recorder, &updated)
	if len(updated.Warnings) != 1 || updated.Warnings[0] != `key "subtitle" is present in only one locale` {
		t.Errorf("warnings = %#v", updated.Warnings)
	}

	// Bringing the other locale in line clears the advisory.
	balanced := api.do(t, http.MethodPatch, "/api/v1/blocks/"+block.ID, map[string]any{
		"locale": "ar",
		"patch":  map[string]any{"subtitle": "فرعي"},
	}, nil)
	if balanced.Code != http.StatusOK {
		t.Fatalf("patch status = %d", balanced.Code)
	}
	var after blockMutationResponse
	decodeBody(t, balanced, &after)
	if len(after.Warnings) != 0 {
		t.Errorf("warnings after balancing = %#v", after.Warnings)
	}
}

func TestDeleteBlockEndpoint(t *testing.T) {
	api := newTestAPI(t)
	blueprint := createBlueprintViaAPI(t, api, "text-content", true)

	first := addBlockViaAPI(t, api, "page-1", blueprint.ID)
	second := addBlockViaAPI(t, api, "page-1", blueprint.ID)

	recorder := api.do(t, http.MethodDelete, "/api/v1/blocks/"+first.ID, nil, nil)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", recorder.Code)
	}

	remaining := listBlocksViaAPI(t, api, "page-1")
	if len(remaining) != 1 || remaining[0].ID != second.ID || remaining[0].Order != 0 {
		t.Fatalf("remaining = %#v", remaining)
	}

	repeat := api.do(t, http.MethodDelete, "/api/v1/blocks/"+first.ID, nil, nil)
	if repeat.Code != http.StatusNotFound {
		t.Fatalf("repeat delete status = %d", repeat.Code)
	}
}

func TestDuplicateBlockEndpoint(t *testing.T) {
	api := newTestAPI(t)
	blueprint := createBlueprintViaAPI(t, api, "text-content", true)
	block := addBlockViaAPI(t, api, "page-1", blueprint.ID)

	recorder := api.do(t, http.MethodPost, "/api/v1/blocks/"+block.ID+":duplicate", nil, nil)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("duplicate status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	var duplicate blockInstancePayload
	decodeBody(t, recorder, &duplicate)
	if duplicate.ID == block.ID {
		t.Error("duplicate shares source id")
	}
	if duplicate.Order != block.Order+1 {
		t.Errorf("order = %d, want %d", duplicate.Order, block.Order+1)
	}
	if duplicate.Status != "draft" {
		t.Errorf("status = %q", duplicate.Status)
	}
}

func TestDuplicateSingleInstanceBlockConflicts(t *testing.T) {
	api := newTestAPI(t)
	blueprint := createBlueprintViaAPI(t, api, "hero-single", false)
	block := addBlockViaAPI(t, api, "page-1", blueprint.ID)

	recorder := api.do(t, http.MethodPost, "/api/v1/blocks/"+block.ID+":duplicate", nil, nil)
	if recorder.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d", recorder.Code)
	}
}
