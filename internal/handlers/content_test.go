package handlers

import (
	"net/http"
	"testing"
)

func TestBulkDeleteEndpoint(t *testing.T) {
	api := newTestAPI(t)

	keep := createBlueprintViaAPI(t, api, "text-content", true)
	doomed := createBlueprintViaAPI(t, api, "gallery", true)

	kept := addBlockViaAPI(t, api, "page-1", keep.ID)
	named := addBlockViaAPI(t, api, "page-1", keep.ID)
	addBlockViaAPI(t, api, "page-1", doomed.ID)
	addBlockViaAPI(t, api, "page-2", doomed.ID)

	recorder := api.do(t, http.MethodPost, "/api/v1/content:bulk-delete", map[string]any{
		"instance_ids":  []string{named.ID},
		"blueprint_ids": []string{doomed.ID},
	}, map[string]string{"Idempotency-Key": "bulk-1"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("bulk delete status = %d body = %s", recorder.Code, recorder.Body.String())
	}

	// One named instance, two cascaded instances, one blueprint.
	var result bulkDeleteResponse
	decodeBody(t, recorder, &result)
	if result.DeletedCount != 4 {
		t.Fatalf("deleted_count = %d, want 4", result.DeletedCount)
	}

	remaining := listBlocksViaAPI(t, api, "page-1")
	if len(remaining) != 1 || remaining[0].ID != kept.ID || remaining[0].Order != 0 {
		t.Fatalf("remaining = %#v", remaining)
	}
}

func TestBulkDeleteRequiresIDs(t *testing.T) {
	api := newTestAPI(t)

	recorder := api.do(t, http.MethodPost, "/api/v1/content:bulk-delete", map[string]any{}, nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", recorder.Code)
	}
}

func TestBulkDeleteUnknownInstanceFails(t *testing.T) {
	api := newTestAPI(t)

	recorder := api.do(t, http.MethodPost, "/api/v1/content:bulk-delete", map[string]any{
		"instance_ids": []string{"blk_missing"},
	}, nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d", recorder.Code)
	}
}
