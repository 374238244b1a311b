package domain

import "strings"

// TemplateType groups catalog templates by the kind of content they seed.
type TemplateType string

const (
	TemplateTypePage    TemplateType = "PAGE"
	TemplateTypeBlog    TemplateType = "BLOG"
	TemplateTypeProject TemplateType = "PROJECT"
	TemplateTypeService TemplateType = "SERVICE"
	TemplateTypeLanding TemplateType = "LANDING"
)

// IsValid reports whether the template type is a known catalog grouping.
func (t TemplateType) IsValid() bool {
	switch t {
	case TemplateTypePage, TemplateTypeBlog, TemplateTypeProject, TemplateTypeService, TemplateTypeLanding:
		return true
	}
	return false
}

// ParseTemplateType normalises a raw string into a TemplateType.
func ParseTemplateType(raw string) (TemplateType, bool) {
	t := TemplateType(strings.ToUpper(strings.TrimSpace(raw)))
	return t, t.IsValid()
}

// TemplateSection is one (blueprint reference, default payload) pair inside a
// template. The blueprint reference is by name and resolved only when the
// template is applied to a page.
type TemplateSection struct {
	BlueprintName string
	Order         int
	DefaultEn     Payload
	DefaultAr     Payload
}

// TemplateSEO carries optional bilingual SEO defaults applied alongside the
// template's sections.
type TemplateSEO struct {
	MetaTitleEn string
	MetaTitleAr string
	MetaDescEn  string
	MetaDescAr  string
}

// Template is a read-only catalog recipe: applying it expands into new block
// instances with order taken verbatim from the declared sections.
type Template struct {
	ID              string
	Name            string
	Description     string
	Type            TemplateType
	Icon            string
	DefaultSections []TemplateSection
	SEO             *TemplateSEO
}

// Clone deep-copies the template so catalog entries stay immutable.
func (t Template) Clone() Template {
	out := t
	if len(t.DefaultSections) > 0 {
		out.DefaultSections = make([]TemplateSection, len(t.DefaultSections))
		for i, s := range t.DefaultSections {
			out.DefaultSections[i] = TemplateSection{
				BlueprintName: s.BlueprintName,
				Order:         s.Order,
				DefaultEn:     s.DefaultEn.Clone(),
				DefaultAr:     s.DefaultAr.Clone(),
			}
		}
	}
	if t.SEO != nil {
		seo := *t.SEO
		out.SEO = &seo
	}
	return out
}
