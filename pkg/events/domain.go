package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// DomainEvent is the contract aggregate events satisfy: each event knows
// the topic it is published on. The application layer drains events from
// an aggregate after a successful save and hands them here one by one,
// in emission order.
type DomainEvent interface {
	Topic() string
}

// PublishDomain marshals event as JSON and publishes it on its topic.
// Handler failures downstream never roll back persisted aggregate state;
// events are best-effort side effects once the save has committed.
func (q *EventBus) PublishDomain(ctx context.Context, event DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", event.Topic(), err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("topic", event.Topic())
	return q.Publish(ctx, event.Topic(), msg)
}
