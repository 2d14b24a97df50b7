// Package queue carries product-created events over the RabbitMQ "products"
// fanout exchange.
package queue

import (
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ProductsExchange is the fanout exchange every dispatcher binds to.
const ProductsExchange = "products"

// ProductCreatedEvent is published after a product insert commits. It holds
// everything a notification needs so consumers never query the product.
type ProductCreatedEvent struct {
	SellerID    uint64  `json:"seller_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

func decodeEvent(body []byte) (ProductCreatedEvent, error) {
	var ev ProductCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal: %w", err)
	}
	if ev.SellerID == 0 {
		return ev, fmt.Errorf("event without seller_id")
	}
	return ev, nil
}

// declareExchange is shared by publisher and consumer so both sides agree
// on the exchange arguments.
func declareExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		ProductsExchange, // name
		"fanout",         // kind
		true,             // durable
		false,            // autoDelete
		false,            // internal
		false,            // noWait
		nil,              // args
	)
}
