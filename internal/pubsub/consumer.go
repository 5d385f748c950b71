package pubsub

import (
	"context"
	"time"

	"thermostat_hub/internal/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	DefaultMinBackoff = time.Second
	DefaultMaxBackoff = 20 * time.Second
)

// EventHandler consumes one change event payload. It must not fail: bad
// events are its own business.
type EventHandler interface {
	HandleEvent(ctx context.Context, payload []byte)
}

type ConsumerOptions struct {
	Topic      string
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// Consumer keeps a subscription open for as long as it is served and
// resubscribes with a doubling backoff whenever it drops.
type Consumer struct {
	sub     message.Subscriber
	handler EventHandler
	opts    ConsumerOptions
	log     *logger.Logger

	sleep func(ctx context.Context, d time.Duration) bool
}

func NewConsumer(sub message.Subscriber, handler EventHandler, opts ConsumerOptions, log *logger.Logger) *Consumer {
	if opts.MinBackoff <= 0 {
		opts.MinBackoff = DefaultMinBackoff
	}
	if opts.MaxBackoff < opts.MinBackoff {
		opts.MaxBackoff = DefaultMaxBackoff
		if opts.MaxBackoff < opts.MinBackoff {
			opts.MaxBackoff = opts.MinBackoff
		}
	}
	return &Consumer{sub: sub, handler: handler, opts: opts, log: log, sleep: sleepCtx}
}

// Serve implements suture.Service. It only returns when ctx is done.
func (c *Consumer) Serve(ctx context.Context) error {
	backoff := c.opts.MinBackoff
	for {
		delivered, err := c.consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if delivered > 0 {
			backoff = c.opts.MinBackoff
		}
		if c.log != nil {
			if err != nil {
				c.log.Errorw("subscription_failed", "topic", c.opts.Topic, "err", err, "retry_in", backoff)
			} else {
				c.log.Warnw("subscription_closed", "topic", c.opts.Topic, "delivered", delivered, "retry_in", backoff)
			}
		}
		if !c.sleep(ctx, backoff) {
			return ctx.Err()
		}
		backoff *= 2
		if backoff > c.opts.MaxBackoff {
			backoff = c.opts.MaxBackoff
		}
	}
}

func (c *Consumer) String() string { return "change-event-consumer" }

// consume reads until the message channel closes and reports how many
// messages were handled.
func (c *Consumer) consume(ctx context.Context) (int, error) {
	messages, err := c.sub.Subscribe(ctx, c.opts.Topic)
	if err != nil {
		return 0, err
	}
	if c.log != nil {
		c.log.Infow("subscription_open", "topic", c.opts.Topic)
	}

	n := 0
	for {
		select {
		case <-ctx.Done():
			return n, nil
		case msg, ok := <-messages:
			if !ok {
				return n, nil
			}
			c.handler.HandleEvent(ctx, msg.Payload)
			// always acked: a malformed event would fail again on redelivery
			msg.Ack()
			n++
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
