package domain

import (
	"strings"
	"time"
)

// InstanceStatus tracks the editorial state of a block instance.
type InstanceStatus string

const (
	InstanceStatusDraft     InstanceStatus = "draft"
	InstanceStatusPublished InstanceStatus = "published"
	InstanceStatusArchived  InstanceStatus = "archived"
)

// ParseInstanceStatus normalises a raw status value, defaulting to draft.
func ParseInstanceStatus(raw string) InstanceStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(InstanceStatusPublished):
		return InstanceStatusPublished
	case string(InstanceStatusArchived):
		return InstanceStatusArchived
	default:
		return InstanceStatusDraft
	}
}

// BlockInstance is a concrete, ordered, bilingual payload conforming to one
// blueprint and attached to a page. Order values among a page's live
// instances are always dense: {0, 1, ..., n-1}.
type BlockInstance struct {
	ID          string
	PageID      string
	BlueprintID string
	Order       int
	DataEn      Payload
	DataAr      Payload
	Status      InstanceStatus
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Data returns the payload for the requested locale.
func (b BlockInstance) Data(locale Locale) Payload {
	if locale == LocaleAr {
		return b.DataAr
	}
	return b.DataEn
}

// Clone deep-copies the instance including both locale payloads.
func (b BlockInstance) Clone() BlockInstance {
	out := b
	out.DataEn = b.DataEn.Clone()
	out.DataAr = b.DataAr.Clone()
	return out
}
