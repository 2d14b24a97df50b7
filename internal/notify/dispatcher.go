// Package notify turns product events into chat notifications for the
// seller's subscribers.
package notify

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/tg-marketplace/internal/queue"
)

//go:generate mockgen -destination=mock/sender.go -package=mock . Sender

// Subscribers lists who follows a seller.
type Subscribers interface {
	SubscriberIDs(ctx context.Context, sellerID uint64) ([]uint64, error)
}

// Bindings resolves a backend account to its live chat, if any.
type Bindings interface {
	ChatFor(ctx context.Context, backendID uint64) (int64, bool, error)
}

// Sender delivers a text message over the chat transport.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Dispatcher implements queue.Handler.
type Dispatcher struct {
	subs     Subscribers
	bindings Bindings
	sender   Sender
	log      *zap.Logger
	workers  int
	tracer   trace.Tracer
}

func NewDispatcher(subs Subscribers, bindings Bindings, sender Sender, log *zap.Logger, workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		subs:     subs,
		bindings: bindings,
		sender:   sender,
		log:      log,
		workers:  workers,
		tracer:   otel.Tracer("github.com/iliyamo/tg-marketplace/internal/notify"),
	}
}

// Handle notifies every bound subscriber of ev.SellerID. Recipients are
// independent: a failed lookup or send is logged and counted, and the rest
// are still attempted. Only a failure to list subscribers is returned.
func (d *Dispatcher) Handle(ctx context.Context, ev queue.ProductCreatedEvent) error {
	ctx, span := d.tracer.Start(ctx, "notify.dispatch",
		trace.WithAttributes(attribute.Int64("seller_id", int64(ev.SellerID))))
	defer span.End()
	eventsTotal.Inc()

	ids, err := d.subs.SubscriberIDs(ctx, ev.SellerID)
	if err != nil {
		return fmt.Errorf("subscribers of seller %d: %w", ev.SellerID, err)
	}
	span.SetAttributes(attribute.Int("subscribers", len(ids)))
	if len(ids) == 0 {
		return nil
	}

	text := FormatNotification(ev)
	var g errgroup.Group
	g.SetLimit(d.workers)
	for _, id := range ids {
		g.Go(func() error {
			d.notify(ctx, ev.SellerID, id, text)
			return nil
		})
	}
	_ = g.Wait()
	return nil
}

func (d *Dispatcher) notify(ctx context.Context, sellerID, subscriberID uint64, text string) {
	log := d.log.With(zap.Uint64("seller_id", sellerID), zap.Uint64("subscriber_id", subscriberID))

	chatID, ok, err := d.bindings.ChatFor(ctx, subscriberID)
	if err != nil {
		notificationsTotal.WithLabelValues(resultFailed).Inc()
		log.Warn("dispatcher: chat binding lookup failed", zap.Error(err))
		return
	}
	if !ok {
		notificationsTotal.WithLabelValues(resultUnbound).Inc()
		log.Debug("dispatcher: subscriber has no chat binding")
		return
	}
	if err := d.sender.Send(ctx, chatID, text); err != nil {
		notificationsTotal.WithLabelValues(resultFailed).Inc()
		log.Warn("dispatcher: send failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}
	notificationsTotal.WithLabelValues(resultSent).Inc()
}

// FormatNotification renders the message a subscriber receives.
func FormatNotification(ev queue.ProductCreatedEvent) string {
	desc := ev.Description
	if desc == "" {
		desc = "No description"
	}
	return fmt.Sprintf("🔔 New item from seller #%d:\n\n🛍 Name: %s\n💰 Price: %s\n📄 Description: %s",
		ev.SellerID, ev.Name, strconv.FormatFloat(ev.Price, 'f', -1, 64), desc)
}
