// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package feed

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/models"
)

// StateListener receives connection state transitions from the
// subscriber's NATS connection callbacks.
type StateListener func(models.ConnectionState)

// Subscriber wraps a durable Watermill JetStream subscriber. A single
// consumer instance preserves publish order for the reconciliation
// engine.
type Subscriber struct {
	subscriber message.Subscriber
	config     SubscriberConfig
	logger     watermill.LoggerAdapter
	onState    StateListener
}

// NewSubscriber creates a durable JetStream subscriber bound to the
// order stream. The optional state listener is notified on connect,
// disconnect, and reconnect so consumers can surface feed health.
func NewSubscriber(cfg *SubscriberConfig, logger watermill.LoggerAdapter, onState StateListener) (*Subscriber, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}
	notify := func(state models.ConnectionState) {
		if onState != nil {
			onState(state)
		}
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ConnectHandler(func(nc *natsgo.Conn) {
			notify(models.StateSubscribed)
		}),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			notify(models.StateError)
			if err != nil {
				logger.Error("Subscriber disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			notify(models.StateSubscribed)
			logger.Info("Subscriber reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
		natsgo.ClosedHandler(func(nc *natsgo.Conn) {
			notify(models.StateClosed)
		}),
	}

	subOpts := []natsgo.SubOpt{
		natsgo.MaxDeliver(cfg.MaxDeliver),
		natsgo.MaxAckPending(cfg.MaxAckPending),
		natsgo.AckWait(cfg.AckWaitTimeout),
		// Deliver new messages only; the snapshot query covers history.
		natsgo.DeliverNew(),
	}

	// Bind to the pre-created stream: wildcard topics cannot auto-provision
	// because NATS stream names cannot contain wildcards.
	autoProvision := true
	if cfg.StreamName != "" {
		subOpts = append(subOpts, natsgo.BindStream(cfg.StreamName))
		autoProvision = false
	}

	wmConfig := wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: cfg.SubscribersCount,
		AckWaitTimeout:   cfg.AckWaitTimeout,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:         false,
			AutoProvision:    autoProvision,
			AckAsync:         false, // synchronous acks for exactly-once
			SubscribeOptions: subOpts,
			DurablePrefix:    cfg.DurableName,
		},
	}

	sub, err := wmNats.NewSubscriber(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}

	return &Subscriber{
		subscriber: sub,
		config:     *cfg,
		logger:     logger,
		onState:    onState,
	}, nil
}

// Subscribe returns a channel of messages for the given topic. The
// channel closes when the context is canceled or the subscriber closes.
func (s *Subscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return s.subscriber.Subscribe(ctx, topic)
}

// Close gracefully shuts down the subscriber.
func (s *Subscriber) Close() error {
	return s.subscriber.Close()
}

// EventHandler processes deserialized order events from a topic.
type EventHandler struct {
	subscriber *Subscriber
	topic      string
	serializer *Serializer
	handler    func(ctx context.Context, event *OrderEvent) error
	logger     watermill.LoggerAdapter
}

// NewEventHandler creates a handler that deserializes order events from
// the given topic. Use TopicWildcard to consume every event kind.
func (s *Subscriber) NewEventHandler(topic string) *EventHandler {
	return &EventHandler{
		subscriber: s,
		topic:      topic,
		serializer: NewSerializer(),
		logger:     s.logger,
	}
}

// Handle sets the event processing function. Returning an error nacks
// the message for redelivery.
func (h *EventHandler) Handle(fn func(ctx context.Context, event *OrderEvent) error) *EventHandler {
	h.handler = fn
	return h
}

// Run processes events until context cancellation. Messages are acked on
// success and nacked on handler error.
func (h *EventHandler) Run(ctx context.Context) error {
	messages, err := h.subscriber.Subscribe(ctx, h.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", h.topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := h.processMessage(ctx, msg); err != nil {
				h.logger.Error("Event processing failed", err, watermill.LogFields{
					"message_uuid": msg.UUID,
					"topic":        h.topic,
				})
			}
		}
	}
}

// Serve implements suture.Service so the consumer can run supervised.
func (h *EventHandler) Serve(ctx context.Context) error {
	return h.Run(ctx)
}

// String implements suture's service naming.
func (h *EventHandler) String() string {
	return "feed-consumer"
}

func (h *EventHandler) processMessage(ctx context.Context, msg *message.Message) error {
	event, err := h.serializer.Unmarshal(msg.Payload)
	if err != nil {
		// Malformed payload: ack and drop, redelivery cannot fix it.
		msg.Ack()
		return fmt.Errorf("unmarshal event: %w", err)
	}

	if h.handler != nil {
		if err := h.handler(ctx, event); err != nil {
			msg.Nack()
			return err
		}
	}

	msg.Ack()
	return nil
}
