package firestore

import (
	"time"

	domain "github.com/mirada-interiors/cms-api/internal/domain"
)

type localizedTextDoc struct {
	En string `firestore:"en"`
	Ar string `firestore:"ar"`
}

func toLocalizedTextDoc(t domain.LocalizedText) localizedTextDoc {
	return localizedTextDoc{En: t.En, Ar: t.Ar}
}

func (d localizedTextDoc) toDomain() domain.LocalizedText {
	return domain.LocalizedText{En: d.En, Ar: d.Ar}
}

type fieldDoc struct {
	ID        string           `firestore:"id"`
	Name      string           `firestore:"name"`
	Label     localizedTextDoc `firestore:"label"`
	Type      string           `firestore:"type"`
	Required  bool             `firestore:"required"`
	Bilingual bool             `firestore:"bilingual"`
	HelpText  localizedTextDoc `firestore:"helpText"`
	Options   []string         `firestore:"options,omitempty"`
	Fields    []fieldDoc       `firestore:"fields,omitempty"`
	Default   any              `firestore:"default,omitempty"`
}

func toFieldDocs(fields []domain.Field) []fieldDoc {
	if len(fields) == 0 {
		return nil
	}
	docs := make([]fieldDoc, len(fields))
	for i, f := range fields {
		docs[i] = fieldDoc{
			ID:        f.ID,
			Name:      f.Name,
			Label:     toLocalizedTextDoc(f.Label),
			Type:      string(f.Type),
			Required:  f.Required,
			Bilingual: f.Bilingual,
			HelpText:  toLocalizedTextDoc(f.HelpText),
			Options:   append([]string(nil), f.Options...),
			Fields:    toFieldDocs(f.Fields),
			Default:   f.Default,
		}
	}
	return docs
}

func fieldDocsToDomain(docs []fieldDoc) []domain.Field {
	if len(docs) == 0 {
		return nil
	}
	fields := make([]domain.Field, len(docs))
	for i, d := range docs {
		fields[i] = domain.Field{
			ID:        d.ID,
			Name:      d.Name,
			Label:     d.Label.toDomain(),
			Type:      domain.FieldType(d.Type),
			Required:  d.Required,
			Bilingual: d.Bilingual,
			HelpText:  d.HelpText.toDomain(),
			Options:   append([]string(nil), d.Options...),
			Fields:    fieldDocsToDomain(d.Fields),
			Default:   d.Default,
		}
	}
	return fields
}

type blueprintDoc struct {
	Name          string     `firestore:"name"`
	DisplayName   string     `firestore:"displayName"`
	Description   string     `firestore:"description,omitempty"`
	Type          string     `firestore:"type"`
	AllowMultiple bool       `firestore:"allowMultiple"`
	IsSystem      bool       `firestore:"isSystem"`
	Icon          string     `firestore:"icon,omitempty"`
	Category      string     `firestore:"category,omitempty"`
	Fields        []fieldDoc `firestore:"fields,omitempty"`
	Deleting      bool       `firestore:"deleting"`
	CreatedAt     time.Time  `firestore:"createdAt"`
	UpdatedAt     time.Time  `firestore:"updatedAt"`
}

func toBlueprintDoc(b domain.Blueprint) blueprintDoc {
	return blueprintDoc{
		Name:          b.Name,
		DisplayName:   b.DisplayName,
		Description:   b.Description,
		Type:          string(b.Type),
		AllowMultiple: b.AllowMultiple,
		IsSystem:      b.IsSystem,
		Icon:          b.Icon,
		Category:      b.Category,
		Fields:        toFieldDocs(b.Fields),
		Deleting:      b.Deleting,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func (d blueprintDoc) toDomain(id string) domain.Blueprint {
	return domain.Blueprint{
		ID:            id,
		Name:          d.Name,
		DisplayName:   d.DisplayName,
		Description:   d.Description,
		Type:          domain.BlueprintType(d.Type),
		AllowMultiple: d.AllowMultiple,
		IsSystem:      d.IsSystem,
		Icon:          d.Icon,
		Category:      d.Category,
		Fields:        fieldDocsToDomain(d.Fields),
		Deleting:      d.Deleting,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// nameIndexDoc reserves a blueprint name; its document ID is the name
// itself so a concurrent create of the same name collides.
type nameIndexDoc struct {
	BlueprintID string `firestore:"blueprintId"`
}

type instanceDoc struct {
	PageID      string         `firestore:"pageId"`
	BlueprintID string         `firestore:"blueprintId"`
	Order       int            `firestore:"order"`
	DataEn      map[string]any `firestore:"dataEn,omitempty"`
	DataAr      map[string]any `firestore:"dataAr,omitempty"`
	Status      string         `firestore:"status"`
	PublishedAt time.Time      `firestore:"publishedAt,omitempty"`
	CreatedAt   time.Time      `firestore:"createdAt"`
	UpdatedAt   time.Time      `firestore:"updatedAt"`
}

func toInstanceDoc(b domain.BlockInstance) instanceDoc {
	return instanceDoc{
		PageID:      b.PageID,
		BlueprintID: b.BlueprintID,
		Order:       b.Order,
		DataEn:      map[string]any(b.DataEn),
		DataAr:      map[string]any(b.DataAr),
		Status:      string(b.Status),
		PublishedAt: b.PublishedAt,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func (d instanceDoc) toDomain(id string) domain.BlockInstance {
	return domain.BlockInstance{
		ID:          id,
		PageID:      d.PageID,
		BlueprintID: d.BlueprintID,
		Order:       d.Order,
		DataEn:      domain.Payload(d.DataEn),
		DataAr:      domain.Payload(d.DataAr),
		Status:      domain.InstanceStatus(d.Status),
		PublishedAt: d.PublishedAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
