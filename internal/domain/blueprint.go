package domain

import (
	"strings"
	"time"
)

// BlueprintType distinguishes whole-page content types from reusable blocks.
type BlueprintType string

const (
	// BlueprintTypeDocument marks blueprints that describe a whole page or document.
	BlueprintTypeDocument BlueprintType = "DOCUMENT"
	// BlueprintTypeComponent marks blueprints for reusable blocks placed inside pages.
	BlueprintTypeComponent BlueprintType = "COMPONENT"
)

// IsValid reports whether the blueprint type is one of the known values.
func (t BlueprintType) IsValid() bool {
	return t == BlueprintTypeDocument || t == BlueprintTypeComponent
}

// ParseBlueprintType normalises a raw string into a BlueprintType.
func ParseBlueprintType(raw string) (BlueprintType, bool) {
	t := BlueprintType(strings.ToUpper(strings.TrimSpace(raw)))
	return t, t.IsValid()
}

// Blueprint is the schema-level definition of a content type. Its name is
// globally unique and immutable after creation; system blueprints cannot be
// deleted and their type rules cannot change.
type Blueprint struct {
	ID            string
	Name          string
	DisplayName   string
	Description   string
	Type          BlueprintType
	AllowMultiple bool
	IsSystem      bool
	Icon          string
	Category      string
	Fields        []Field
	// Deleting marks a cascade in progress. While set, the blueprint is
	// hidden from listings and no new instances may reference it.
	Deleting  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of the blueprint, including its field schema.
func (b Blueprint) Clone() Blueprint {
	out := b
	out.Fields = CloneFields(b.Fields)
	return out
}
