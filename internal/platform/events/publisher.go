// Package events publishes activity events consumed by the dashboard feed.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/mirada-interiors/cms-api/internal/platform/textutil"
)

// Event types emitted by the composition engine.
const (
	TypeBlueprintCreated    = "blueprint.created"
	TypeBlueprintUpdated    = "blueprint.updated"
	TypeBlueprintDuplicated = "blueprint.duplicated"
	TypeBlueprintDeleted    = "blueprint.deleted"
	TypeTemplateApplied     = "template.applied"
	TypeBlockAdded          = "block.added"
	TypeBlockRemoved        = "block.removed"
	TypeBlockDuplicated     = "block.duplicated"
	TypeBlockUpdated        = "block.updated"
	TypePageReordered       = "page.reordered"
	TypeBulkDeleted         = "content.bulk_deleted"
)

// Event describes one activity feed entry.
type Event struct {
	Type        string    `json:"type"`
	PageID      string    `json:"pageId,omitempty"`
	BlueprintID string    `json:"blueprintId,omitempty"`
	InstanceID  string    `json:"instanceId,omitempty"`
	TemplateID  string    `json:"templateId,omitempty"`
	Count       int       `json:"count,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Publisher delivers activity events. Publish failures are reported to the
// caller but never abort the originating mutation.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PubSubPublisher publishes activity events to a Pub/Sub topic.
type PubSubPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubPublisher constructs a Pub/Sub backed activity publisher.
func NewPubSubPublisher(topic *pubsub.Topic) (*PubSubPublisher, error) {
	if topic == nil {
		return nil, errors.New("events: pubsub topic is required")
	}
	return &PubSubPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// Publish enqueues the event on the configured topic and waits for the
// server-assigned message id.
func (p *PubSubPublisher) Publish(ctx context.Context, event Event) error {
	if p == nil || p.topic == nil {
		return errors.New("events: publisher not initialised")
	}

	data, err := p.marshal(event)
	if err != nil {
		return fmt.Errorf("marshal activity event: %w", err)
	}

	attrs := textutil.NormalizeStringMap(map[string]string{
		"type":        event.Type,
		"pageId":      event.PageID,
		"blueprintId": event.BlueprintID,
		"instanceId":  event.InstanceID,
		"templateId":  event.TemplateID,
		"count":       countAttr(event.Count),
	})

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish activity event: %w", err)
	}
	return nil
}

func countAttr(count int) string {
	if count == 0 {
		return ""
	}
	return strconv.Itoa(count)
}

// NopPublisher discards events; used when no topic is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }
