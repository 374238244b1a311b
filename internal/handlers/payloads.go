package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	domain "github.com/mirada-interiors/cms-api/internal/domain"
)

const idempotencyKeyHeader = "Idempotency-Key"

// maxBodyBytes caps request bodies; payloads are editorial content, not uploads.
const maxBodyBytes = 1 << 20

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func errInvalidQueryValue(name, raw string) error {
	return fmt.Errorf("invalid %s value %q", name, raw)
}

func idempotencyKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

type localizedTextPayload struct {
	En string `json:"en,omitempty"`
	Ar string `json:"ar,omitempty"`
}

func (p localizedTextPayload) toDomain() domain.LocalizedText {
	return domain.LocalizedText{En: p.En, Ar: p.Ar}
}

func localizedTextFromDomain(t domain.LocalizedText) *localizedTextPayload {
	if t.En == "" && t.Ar == "" {
		return nil
	}
	return &localizedTextPayload{En: t.En, Ar: t.Ar}
}

type fieldPayload struct {
	ID        string                `json:"id,omitempty"`
	Name      string                `json:"name"`
	Label     *localizedTextPayload `json:"label,omitempty"`
	Type      string                `json:"type"`
	Required  bool                  `json:"required,omitempty"`
	Bilingual bool                  `json:"bilingual,omitempty"`
	HelpText  *localizedTextPayload `json:"help_text,omitempty"`
	Options   []string              `json:"options,omitempty"`
	Fields    []fieldPayload        `json:"fields,omitempty"`
	Default   any                   `json:"default,omitempty"`
}

func (p fieldPayload) toDomain() domain.Field {
	field := domain.Field{
		ID:        strings.TrimSpace(p.ID),
		Name:      strings.TrimSpace(p.Name),
		Type:      domain.FieldType(strings.ToLower(strings.TrimSpace(p.Type))),
		Required:  p.Required,
		Bilingual: p.Bilingual,
		Options:   append([]string(nil), p.Options...),
		Default:   p.Default,
	}
	if p.Label != nil {
		field.Label = p.Label.toDomain()
	}
	if p.HelpText != nil {
		field.HelpText = p.HelpText.toDomain()
	}
	for _, nested := range p.Fields {
		field.Fields = append(field.Fields, nested.toDomain())
	}
	return field
}

func fieldFromDomain(f domain.Field) fieldPayload {
	payload := fieldPayload{
		ID:        f.ID,
		Name:      f.Name,
		Label:     localizedTextFromDomain(f.Label),
		Type:      string(f.Type),
		Required:  f.Required,
		Bilingual: f.Bilingual,
		HelpText:  localizedTextFromDomain(f.HelpText),
		Options:   append([]string(nil), f.Options...),
		Default:   f.Default,
	}
	for _, nested := range f.Fields {
		payload.Fields = append(payload.Fields, fieldFromDomain(nested))
	}
	return payload
}

func fieldsToDomain(fields []fieldPayload) []domain.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]domain.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.toDomain())
	}
	return out
}

type blueprintPayload struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	DisplayName   string         `json:"display_name,omitempty"`
	Description   string         `json:"description,omitempty"`
	Type          string         `json:"type"`
	AllowMultiple bool           `json:"allow_multiple"`
	IsSystem      bool           `json:"is_system"`
	Icon          string         `json:"icon,omitempty"`
	Category      string         `json:"category,omitempty"`
	Fields        []fieldPayload `json:"fields,omitempty"`
	CreatedAt     string         `json:"created_at,omitempty"`
	UpdatedAt     string         `json:"updated_at,omitempty"`
}

func blueprintFromDomain(b domain.Blueprint) blueprintPayload {
	payload := blueprintPayload{
		ID:            b.ID,
		Name:          b.Name,
		DisplayName:   b.DisplayName,
		Description:   b.Description,
		Type:          string(b.Type),
		AllowMultiple: b.AllowMultiple,
		IsSystem:      b.IsSystem,
		Icon:          b.Icon,
		Category:      b.Category,
		CreatedAt:     formatTimestamp(b.CreatedAt),
		UpdatedAt:     formatTimestamp(b.UpdatedAt),
	}
	for _, f := range b.Fields {
		payload.Fields = append(payload.Fields, fieldFromDomain(f))
	}
	return payload
}

type blockInstancePayload struct {
	ID          string         `json:"id"`
	PageID      string         `json:"page_id"`
	BlueprintID string         `json:"blueprint_id"`
	Order       int            `json:"order"`
	DataEn      domain.Payload `json:"data_en,omitempty"`
	DataAr      domain.Payload `json:"data_ar,omitempty"`
	Status      string         `json:"status"`
	PublishedAt string         `json:"published_at,omitempty"`
	CreatedAt   string         `json:"created_at,omitempty"`
	UpdatedAt   string         `json:"updated_at,omitempty"`
}

func blockInstanceFromDomain(b domain.BlockInstance) blockInstancePayload {
	return blockInstancePayload{
		ID:          b.ID,
		PageID:      b.PageID,
		BlueprintID: b.BlueprintID,
		Order:       b.Order,
		DataEn:      b.DataEn,
		DataAr:      b.DataAr,
		Status:      string(b.Status),
		PublishedAt: formatTimestamp(b.PublishedAt),
		CreatedAt:   formatTimestamp(b.CreatedAt),
		UpdatedAt:   formatTimestamp(b.UpdatedAt),
	}
}

// blockMutationResponse augments the instance body with schema advisories
// so editing UIs can flag mismatched locale keys or missing required fields.
type blockMutationResponse struct {
	blockInstancePayload
	Warnings []string `json:"warnings,omitempty"`
}

func blockInstancesFromDomain(instances []domain.BlockInstance) []blockInstancePayload {
	out := make([]blockInstancePayload, 0, len(instances))
	for _, instance := range instances {
		out = append(out, blockInstanceFromDomain(instance))
	}
	return out
}

type templateSectionPayload struct {
	BlueprintName string         `json:"blueprint_name"`
	Order         int            `json:"order"`
	DefaultEn     domain.Payload `json:"default_en,omitempty"`
	DefaultAr     domain.Payload `json:"default_ar,omitempty"`
}

type templateSEOPayload struct {
	MetaTitleEn string `json:"meta_title_en,omitempty"`
	MetaTitleAr string `json:"meta_title_ar,omitempty"`
	MetaDescEn  string `json:"meta_desc_en,omitempty"`
	MetaDescAr  string `json:"meta_desc_ar,omitempty"`
}

type templatePayload struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description,omitempty"`
	Type        string                   `json:"type"`
	Icon        string                   `json:"icon,omitempty"`
	Sections    []templateSectionPayload `json:"sections"`
	SEO         *templateSEOPayload      `json:"seo,omitempty"`
}

func templateFromDomain(t domain.Template) templatePayload {
	payload := templatePayload{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Type:        string(t.Type),
		Icon:        t.Icon,
		Sections:    make([]templateSectionPayload, 0, len(t.DefaultSections)),
	}
	for _, section := range t.DefaultSections {
		payload.Sections = append(payload.Sections, templateSectionPayload{
			BlueprintName: section.BlueprintName,
			Order:         section.Order,
			DefaultEn:     section.DefaultEn,
			DefaultAr:     section.DefaultAr,
		})
	}
	if t.SEO != nil {
		payload.SEO = &templateSEOPayload{
			MetaTitleEn: t.SEO.MetaTitleEn,
			MetaTitleAr: t.SEO.MetaTitleAr,
			MetaDescEn:  t.SEO.MetaDescEn,
			MetaDescAr:  t.SEO.MetaDescAr,
		}
	}
	return payload
}
