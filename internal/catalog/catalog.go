// Package catalog holds the built-in template catalog and the system
// blueprint seed set. Catalog entries are immutable: every lookup returns a
// deep copy so callers can never mutate the shared definitions.
package catalog

import (
	domain "github.com/mirada-interiors/cms-api/internal/domain"
)

// Catalog is the read-only template catalog.
type Catalog struct {
	ordered []domain.Template
	byID    map[string]int
}

// New builds the catalog from the built-in template set.
func New() *Catalog {
	templates := builtinTemplates()
	byID := make(map[string]int, len(templates))
	for i, t := range templates {
		byID[t.ID] = i
	}
	return &Catalog{ordered: templates, byID: byID}
}

// All returns every template in catalog order.
func (c *Catalog) All() []domain.Template {
	out := make([]domain.Template, len(c.ordered))
	for i, t := range c.ordered {
		out[i] = t.Clone()
	}
	return out
}

// ByID returns the template with the given id.
func (c *Catalog) ByID(id string) (domain.Template, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Template{}, false
	}
	return c.ordered[i].Clone(), true
}

// ByType returns the templates of one catalog grouping, in catalog order.
func (c *Catalog) ByType(t domain.TemplateType) []domain.Template {
	var out []domain.Template
	for _, tpl := range c.ordered {
		if tpl.Type == t {
			out = append(out, tpl.Clone())
		}
	}
	return out
}
