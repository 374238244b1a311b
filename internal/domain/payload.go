package domain

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Locale identifies one side of a bilingual payload.
type Locale string

const (
	LocaleEn Locale = "en"
	LocaleAr Locale = "ar"
)

var localeMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Arabic,
})

// ParseLocale canonicalises a raw locale tag ("EN", "ar-SA", "en_US") into
// one of the two supported locales. Unrecognised tags fall back to English.
func ParseLocale(raw string) Locale {
	trimmed := strings.ReplaceAll(strings.TrimSpace(raw), "_", "-")
	if trimmed == "" {
		return LocaleEn
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return LocaleEn
	}
	_, index, _ := localeMatcher.Match(tag)
	if index == 1 {
		return LocaleAr
	}
	return LocaleEn
}

// Payload is a free-form value bag keyed by blueprint-defined field names.
// Values are restricted to JSON-compatible kinds: string, float64, bool,
// nil, map[string]any and []any.
type Payload map[string]any

// Clone returns a deep copy so mutations never leak into catalog defaults
// or previously returned snapshots.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge shallow-merges patch into a copy of the payload. Keys absent from
// the patch are left untouched; keys with an explicit nil value are removed.
func (p Payload) Merge(patch Payload) Payload {
	out := p.Clone()
	if out == nil {
		out = Payload{}
	}
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

// Keys returns the payload's keys in sorted order.
func (p Payload) Keys() []string {
	if len(p) == 0 {
		return nil
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MismatchedKeys reports keys present in one locale's payload but not the
// other. Mismatches are advisory for the editing UI, never an error.
func MismatchedKeys(en, ar Payload) []string {
	seen := map[string]struct{}{}
	var out []string
	for k := range en {
		if _, ok := ar[k]; !ok {
			if _, dup := seen[k]; !dup {
				seen[k] = struct{}{}
				out = append(out, k)
			}
		}
	}
	for k := range ar {
		if _, ok := en[k]; !ok {
			if _, dup := seen[k]; !dup {
				seen[k] = struct{}{}
				out = append(out, k)
			}
		}
	}
	sort.Strings(out)
	return out
}

func cloneValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, nested := range value {
			out[k] = cloneValue(nested)
		}
		return out
	case Payload:
		return map[string]any(value.Clone())
	case []any:
		out := make([]any, len(value))
		for i, nested := range value {
			out[i] = cloneValue(nested)
		}
		return out
	default:
		return v
	}
}
