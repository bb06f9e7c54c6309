package cart

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
)

// A fulfilled checkout is announced on a queue so downstream workers
// (picking, analytics) can react without being in the request path.

type OrderItem struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type OrderEvent struct {
	OrderID string      `json:"order_id"`
	User    string      `json:"user,omitempty"`
	Items   []OrderItem `json:"items"`
}

type Publisher struct {
	ch    *amqp.Channel
	queue string
}

func NewPublisher(ch *amqp.Channel, queue string) (*Publisher, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &Publisher{ch: ch, queue: queue}, nil
}

func (p *Publisher) Publish(ctx context.Context, ev OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}
