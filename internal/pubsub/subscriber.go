// Package pubsub delivers device change events from the message broker to the
// event merge engine.
package pubsub

import (
	"fmt"
	"time"

	"thermostat_hub/internal/logger"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
)

// SubscriberConfig describes the durable JetStream consumer for change events.
type SubscriberConfig struct {
	URL          string
	Subscription string // durable consumer name and queue group
	AckWait      time.Duration
	CloseTimeout time.Duration
}

// NewSubscriber creates a durable JetStream subscriber. The stream is
// provisioned when it does not exist yet.
func NewSubscriber(cfg SubscriberConfig, log *logger.Logger) (message.Subscriber, error) {
	wlog := logger.Watermill(log)
	if cfg.AckWait <= 0 {
		cfg.AckWait = 30 * time.Second
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 10 * time.Second
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("thermostat_hub"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				wlog.Error("nats_disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			wlog.Info("nats_reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.Subscription,
		SubscribersCount: 1,
		AckWaitTimeout:   cfg.AckWait,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.AckWait(cfg.AckWait),
				natsgo.DeliverNew(),
			},
			DurablePrefix: cfg.Subscription,
		},
	}, wlog)
	if err != nil {
		return nil, fmt.Errorf("create change-event subscriber: %w", err)
	}
	return sub, nil
}
