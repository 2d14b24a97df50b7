package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Handler processes one product event. A nil return means every recipient
// was attempted, whatever the individual outcomes.
type Handler interface {
	Handle(ctx context.Context, ev ProductCreatedEvent) error
}

// Consumer binds a private, server-named queue to the products exchange,
// so each running consumer receives every event. Nothing is retained for a
// consumer that is not connected.
type Consumer struct {
	url      string
	handler  Handler
	log      *zap.Logger
	prefetch int
	dial     func(url string) (*amqp.Connection, error)
}

func NewConsumer(url string, h Handler, log *zap.Logger, prefetch int) *Consumer {
	if prefetch < 1 {
		prefetch = 1
	}
	return &Consumer{url: url, handler: h, log: log, prefetch: prefetch, dial: amqp.Dial}
}

// Run consumes until ctx is cancelled, reconnecting with exponential
// backoff (1s doubling to 30s) whenever the broker goes away.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := c.dial(c.url)
		if err != nil {
			c.log.Warn("dispatcher: failed to dial broker", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("dispatcher: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		c.log.Warn("dispatcher: set QoS failed", zap.Error(err))
	}
	if err := declareExchange(ch); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // autoDelete
		true,  // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", ProductsExchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	msgs, err := ch.Consume(q.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.log.Info("dispatcher: consuming", zap.String("queue", q.Name), zap.String("exchange", ProductsExchange))

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			if amqpErr != nil {
				return amqpErr
			}
			return errors.New("connection closed")
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.deliver(ctx, d)
		}
	}
}

// deliver acknowledges d only after the handler returns. Malformed bodies
// are dropped; a handler error requeues the event once.
func (c *Consumer) deliver(ctx context.Context, d amqp.Delivery) {
	ev, err := decodeEvent(d.Body)
	if err != nil {
		c.log.Error("dispatcher: dropping malformed event", zap.Error(err), zap.ByteString("body", d.Body))
		_ = d.Nack(false, false)
		return
	}
	if err := c.handler.Handle(ctx, ev); err != nil {
		c.log.Error("dispatcher: handle event failed",
			zap.Uint64("seller_id", ev.SellerID), zap.Bool("redelivered", d.Redelivered), zap.Error(err))
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	if err := d.Ack(false); err != nil {
		c.log.Warn("dispatcher: ack failed", zap.Error(err))
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
