package textutil

import "testing"

func TestNormalizeStringMap(t *testing.T) {
	got := NormalizeStringMap(map[string]string{
		" pageId ":    " page_1 ",
		"":            "dropped",
		"blueprintId": "",
		"count":       "5",
	})

	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %#v", got)
	}
	if got["pageId"] != "page_1" {
		t.Errorf("pageId = %q", got["pageId"])
	}
	if got["count"] != "5" {
		t.Errorf("count = %q", got["count"])
	}
}

func TestNormalizeStringMapEmpty(t *testing.T) {
	if got := NormalizeStringMap(nil); got != nil {
		t.Fatalf("nil input should return nil, got %#v", got)
	}
	if got := NormalizeStringMap(map[string]string{" ": " "}); got != nil {
		t.Fatalf("blank-only input should return nil, got %#v", got)
	}
}
