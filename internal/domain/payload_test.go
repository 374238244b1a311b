package domain

import (
	"reflect"
	"testing"
)

func TestPayloadCloneIsolation(t *testing.T) {
	original := Payload{
		"title": "About Us",
		"cta":   map[string]any{"text": "Contact", "link": "/contact"},
		"tags":  []any{"design", "interior"},
	}

	clone := original.Clone()
	clone["title"] = "Changed"
	clone["cta"].(map[string]any)["text"] = "Changed"
	clone["tags"].([]any)[0] = "changed"

	if original["title"] != "About Us" {
		t.Fatalf("clone mutated original title: %v", original["title"])
	}
	if original["cta"].(map[string]any)["text"] != "Contact" {
		t.Fatalf("clone mutated nested map: %v", original["cta"])
	}
	if original["tags"].([]any)[0] != "design" {
		t.Fatalf("clone mutated nested slice: %v", original["tags"])
	}
}

func TestPayloadMerge(t *testing.T) {
	base := Payload{
		"title":    "About Us",
		"subtitle": "Learn more",
		"image":    "hero.jpg",
	}

	merged := base.Merge(Payload{
		"subtitle": "Updated",
		"image":    nil,
		"extra":    true,
	})

	if merged["title"] != "About Us" {
		t.Fatalf("unspecified key changed: %v", merged["title"])
	}
	if merged["subtitle"] != "Updated" {
		t.Fatalf("patched key not applied: %v", merged["subtitle"])
	}
	if _, ok := merged["image"]; ok {
		t.Fatalf("nil patch value should remove key, got %v", merged["image"])
	}
	if merged["extra"] != true {
		t.Fatalf("new key not added: %v", merged["extra"])
	}

	// The receiver must be untouched.
	if base["subtitle"] != "Learn more" {
		t.Fatalf("merge mutated receiver: %v", base["subtitle"])
	}
	if _, ok := base["image"]; !ok {
		t.Fatalf("merge removed key from receiver")
	}
}

func TestPayloadMergeNilReceiver(t *testing.T) {
	var base Payload
	merged := base.Merge(Payload{"title": "New"})
	if merged["title"] != "New" {
		t.Fatalf("merge into nil payload failed: %#v", merged)
	}
}

func TestMismatchedKeys(t *testing.T) {
	en := Payload{"title": "Hi", "subtitle": "There", "shared": 1}
	ar := Payload{"title": "مرحبا", "extra": true, "shared": 1}

	got := MismatchedKeys(en, ar)
	want := []string{"extra", "subtitle"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MismatchedKeys = %v, want %v", got, want)
	}

	if diff := MismatchedKeys(en, en); diff != nil {
		t.Fatalf("identical payloads should have no mismatches, got %v", diff)
	}
}

func TestParseLocale(t *testing.T) {
	cases := map[string]Locale{
		"":      LocaleEn,
		"en":    LocaleEn,
		"EN":    LocaleEn,
		"en_US": LocaleEn,
		"ar":    LocaleAr,
		"AR":    LocaleAr,
		"ar-SA": LocaleAr,
		"ar_EG": LocaleAr,
		"fr":    LocaleEn,
		"junk!": LocaleEn,
	}
	for raw, want := range cases {
		if got := ParseLocale(raw); got != want {
			t.Errorf("ParseLocale(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestBlockInstanceData(t *testing.T) {
	inst := BlockInstance{
		DataEn: Payload{"title": "Hello"},
		DataAr: Payload{"title": "مرحبا"},
	}
	if inst.Data(LocaleEn)["title"] != "Hello" {
		t.Fatalf("unexpected en payload: %v", inst.Data(LocaleEn))
	}
	if inst.Data(LocaleAr)["title"] != "مرحبا" {
		t.Fatalf("unexpected ar payload: %v", inst.Data(LocaleAr))
	}
}
