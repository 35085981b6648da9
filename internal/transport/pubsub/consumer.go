// Package pubsub consumes document events from a Pub/Sub subscription. It is
// the second event intake next to the HTTP push endpoint; deployments pick
// whichever their event pusher supports.
package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/campuschat/notification-service/internal/domain"
	"github.com/campuschat/notification-service/internal/trigger"
	"github.com/rs/zerolog"
)

// Dispatcher routes one document event to its registered handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev trigger.Event) error
}

// envelope is the message payload. The document path normally travels in the
// "document" attribute; the payload carries the snapshots.
type envelope struct {
	Document string          `json:"document,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	OldData  json.RawMessage `json:"old_data,omitempty"`
}

// Consumer processes document-created events from a subscription.
type Consumer struct {
	dispatcher   Dispatcher
	subscription *pubsub.Subscriber
	log          zerolog.Logger
}

func NewConsumer(d Dispatcher, subscription *pubsub.Subscriber, log zerolog.Logger) (*Consumer, error) {
	if d == nil {
		return nil, errors.New("dispatcher is required")
	}
	if subscription == nil {
		return nil, errors.New("subscription is required")
	}
	return &Consumer{dispatcher: d, subscription: subscription, log: log}, nil
}

// Run processes messages until the context is canceled or the subscription
// errors.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	var env envelope
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			// Malformed payloads never get better on redelivery.
			c.log.Error().Err(err).Str("message_id", msg.ID).Msg("undecodable event payload")
			return processResult{}
		}
	}

	path := msg.Attributes["document"]
	if path == "" {
		path = env.Document
	}
	if path == "" {
		c.log.Error().Str("message_id", msg.ID).Msg("event carries no document path")
		return processResult{}
	}

	eventID := msg.Attributes["eventId"]
	if eventID == "" {
		eventID = msg.ID
	}

	ev := trigger.Event{
		EventID: eventID,
		Path:    path,
		Data:    env.Data,
		OldData: env.OldData,
	}
	if err := c.dispatcher.Dispatch(ctx, ev); err != nil {
		if errors.Is(err, domain.ErrBadRequest) {
			c.log.Warn().Err(err).Str("document", path).Msg("dropping unroutable event")
			return processResult{}
		}
		c.log.Error().Err(err).Str("document", path).Msg("event processing failed, redelivering")
		return processResult{nack: true}
	}
	return processResult{}
}

// SubscriptionName expands a bare subscription ID to its full resource name.
func SubscriptionName(projectID, name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/subscriptions/") {
		return n
	}
	return fmt.Sprintf("projects/%s/subscriptions/%s", projectID, n)
}
