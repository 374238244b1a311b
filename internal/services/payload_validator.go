package services

import (
	"fmt"
	"sort"

	"github.com/microcosm-cc/bluemonday"

	domain "github.com/mirada-interiors/cms-api/internal/domain"
)

// PayloadValidator checks instance payloads against the owning blueprint's
// field schema and sanitizes richtext values. Schema checks produce advisory
// warnings, never errors: blueprints are user-extensible at runtime and
// payload fields are free-form by design.
type PayloadValidator struct {
	policy *bluemonday.Policy
}

// NewPayloadValidator constructs a validator with a user-generated-content
// sanitization policy.
func NewPayloadValidator() *PayloadValidator {
	return &PayloadValidator{policy: bluemonday.UGCPolicy()}
}

// Sanitize returns a copy of payload with every richtext field's HTML run
// through the sanitization policy. Repeater items are sanitized recursively
// against the repeater's item schema. Unknown keys pass through untouched.
func (v *PayloadValidator) Sanitize(fields []domain.Field, payload domain.Payload) domain.Payload {
	if len(payload) == 0 {
		return payload
	}

	out := payload.Clone()
	for _, field := range fields {
		value, ok := out[field.Name]
		if !ok || value == nil {
			continue
		}
		switch field.Type {
		case domain.FieldTypeRichText:
			if html, ok := value.(string); ok {
				out[field.Name] = v.policy.Sanitize(html)
			}
		case domain.FieldTypeRepeater:
			items, ok := value.([]any)
			if !ok {
				continue
			}
			for i, item := range items {
				if m, ok := item.(map[string]any); ok {
					items[i] = map[string]any(v.Sanitize(field.Fields, domain.Payload(m)))
				}
			}
		}
	}
	return out
}

// Warnings reports schema-level advisories for a bilingual payload pair:
// required fields missing from both locales, values of an unexpected kind,
// and keys present in one locale but not the other.
func (v *PayloadValidator) Warnings(fields []domain.Field, en, ar domain.Payload) []string {
	var warnings []string

	for _, field := range fields {
		_, inEn := en[field.Name]
		_, inAr := ar[field.Name]
		if field.Required && !inEn && !inAr {
			warnings = append(warnings, fmt.Sprintf("required field %q is missing", field.Name))
		}
		if inEn {
			warnings = append(warnings, checkKind(field, en[field.Name], domain.LocaleEn)...)
		}
		if inAr {
			warnings = append(warnings, checkKind(field, ar[field.Name], domain.LocaleAr)...)
		}
	}

	for _, key := range domain.MismatchedKeys(en, ar) {
		warnings = append(warnings, fmt.Sprintf("key %q is present in only one locale", key))
	}

	sort.Strings(warnings)
	return warnings
}

func checkKind(field domain.Field, value any, locale domain.Locale) []string {
	if value == nil {
		return nil
	}

	ok := true
	switch field.Type {
	case domain.FieldTypeText, domain.FieldTypeTextarea, domain.FieldTypeRichText,
		domain.FieldTypeImage, domain.FieldTypeFile, domain.FieldTypeSelect:
		_, ok = value.(string)
	case domain.FieldTypeNumber:
		switch value.(type) {
		case int, int32, int64, float32, float64:
		default:
			ok = false
		}
	case domain.FieldTypeBoolean:
		_, ok = value.(bool)
	case domain.FieldTypeRepeater:
		_, ok = value.([]any)
	}
	if !ok {
		return []string{fmt.Sprintf("field %q (%s) has unexpected %s value kind", field.Name, field.Type, locale)}
	}
	return nil
}
