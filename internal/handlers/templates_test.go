package handlers

import (
	"net/http"
	"testing"
)

func TestListTemplatesEndpoint(t *testing.T) {
	api := newTestAPI(t)

	recorder := api.do(t, http.MethodGet, "/api/v1/templates", nil, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("list status = %d", recorder.Code)
	}
	var listed templateListResponse
	decodeBody(t, recorder, &listed)
	if len(listed.Templates) != 10 {
		t.Fatalf("templates = %d, want 10", len(listed.Templates))
	}
	if recorder.Header().Get("Cache-Control") == "" {
		t.Error("missing Cache-Control header")
	}
}

func TestListTemplatesByType(t *testing.T) {
	api := newTestAPI(t)

	recorder := api.do(t, http.MethodGet, "/api/v1/templates?type=landing", nil, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("list status = %d", recorder.Code)
	}
	var listed templateListResponse
	decodeBody(t, recorder, &listed)
	if len(listed.Templates) != 2 {
		t.Fatalf("landing templates = %d, want 2", len(listed.Templates))
	}
	for _, tpl := range listed.Templates {
		if tpl.Type != "LANDING" {
			t.Errorf("template %s type = %q", tpl.ID, tpl.Type)
		}
	}

	badType := api.do(t, http.MethodGet, "/api/v1/templates?type=POSTER", nil, nil)
	if badType.Code != http.StatusBadRequest {
		t.Fatalf("bad type status = %d", badType.Code)
	}
}

func TestGetTemplateEndpoint(t *testing.T) {
	api := newTestAPI(t)

	recorder := api.do(t, http.MethodGet, "/api/v1/templates/page-about", nil, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("get status = %d", recorder.Code)
	}
	var template templatePayload
	decodeBody(t, recorder, &template)
	if len(template.Sections) != 3 {
		t.Errorf("sections = %d, want 3", len(template.Sections))
	}
	if template.SEO == nil || template.SEO.MetaTitleAr == "" {
		t.Errorf("seo defaults missing: %#v", template.SEO)
	}

	missing := api.do(t, http.MethodGet, "/api/v1/templates/page-unknown", nil, nil)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d", missing.Code)
	}
}
