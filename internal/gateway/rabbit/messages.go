package rabbit

import (
	"context"
	"fmt"
	"time"

	"github.com/busview/busview/internal/core/models"
	"github.com/rabbitmq/amqp091-go"
)

/* Sends */

func (g *Gateway) SendToQueue(ctx context.Context, queue string, msg models.Message) error {
	return g.publish(ctx, "", queue, msg)
}

func (g *Gateway) SendToTopic(ctx context.Context, topic string, msg models.Message) error {
	// The catch-all subscription bindings match the empty routing key.
	return g.publish(ctx, topic, "", msg)
}

func (g *Gateway) publish(ctx context.Context, exchange, routingKey string, msg models.Message) error {
	ch, err := g.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	headers := make(amqp091.Table, len(msg.UserProperties))
	for k, v := range msg.UserProperties {
		headers[k] = v
	}
	var expiration string
	if !msg.ExpiresAt.IsZero() {
		if ttl := time.Until(msg.ExpiresAt); ttl > 0 {
			expiration = fmt.Sprintf("%d", ttl.Milliseconds())
		}
	}
	return ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp091.Publishing{
		MessageId:    msg.ID,
		Timestamp:    msg.EnqueuedAt,
		Body:         msg.Body,
		Headers:      headers,
		Expiration:   expiration,
		DeliveryMode: amqp091.Persistent,
	})
}

/* Peeks */

func (g *Gateway) PeekQueue(ctx context.Context, queue string, count int) ([]models.Message, error) {
	return g.peek(queue, count)
}

func (g *Gateway) PeekQueueDeadLetter(ctx context.Context, queue string, count int) ([]models.Message, error) {
	return g.peek(deadLetterQueueName(queue), count)
}

func (g *Gateway) PeekSubscription(ctx context.Context, topic, subscription string, count int) ([]models.Message, error) {
	return g.peek(subscriptionQueueName(topic, subscription), count)
}

func (g *Gateway) PeekSubscriptionDeadLetter(ctx context.Context, topic, subscription string, count int) ([]models.Message, error) {
	return g.peek(deadLetterQueueName(subscriptionQueueName(topic, subscription)), count)
}

// peek drains up to count messages with basic.get on a throwaway channel,
// then nacks the whole batch with requeue so the queue is left intact.
// AMQP has no true browse; requeued messages come back flagged redelivered.
func (g *Gateway) peek(queue string, count int) ([]models.Message, error) {
	ch, err := g.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	var out []models.Message
	var lastTag uint64
	for len(out) < count {
		delivery, ok, err := ch.Get(queue, false)
		if err != nil {
			return nil, fmt.Errorf("failed to get message from '%s': %w", queue, err)
		}
		if !ok {
			break
		}
		lastTag = delivery.DeliveryTag
		out = append(out, toMessageModel(delivery))
	}
	if len(out) > 0 {
		if err := ch.Nack(lastTag, true, true); err != nil {
			return nil, fmt.Errorf("failed to requeue peeked messages: %w", err)
		}
	}
	return out, nil
}

func toMessageModel(d amqp091.Delivery) models.Message {
	props := make(map[string]string, len(d.Headers))
	for k, v := range d.Headers {
		if s, ok := v.(string); ok {
			props[k] = s
		} else {
			props[k] = fmt.Sprintf("%v", v)
		}
	}
	if len(props) == 0 {
		props = nil
	}
	msg := models.Message{
		ID:             d.MessageId,
		Body:           d.Body,
		UserProperties: props,
		EnqueuedAt:     d.Timestamp,
	}
	if d.Expiration != "" {
		var ms int64
		if _, err := fmt.Sscanf(d.Expiration, "%d", &ms); err == nil && !d.Timestamp.IsZero() {
			msg.ExpiresAt = d.Timestamp.Add(time.Duration(ms) * time.Millisecond)
		}
	}
	return msg
}

/* Purges */

func (g *Gateway) PurgeQueue(ctx context.Context, queue string) (int, error) {
	return g.purge(queue)
}

func (g *Gateway) PurgeQueueDeadLetter(ctx context.Context, queue string) (int, error) {
	return g.purge(deadLetterQueueName(queue))
}

func (g *Gateway) PurgeSubscription(ctx context.Context, topic, subscription string) (int, error) {
	return g.purge(subscriptionQueueName(topic, subscription))
}

func (g *Gateway) PurgeSubscriptionDeadLetter(ctx context.Context, topic, subscription string) (int, error) {
	return g.purge(deadLetterQueueName(subscriptionQueueName(topic, subscription)))
}

func (g *Gateway) purge(queue string) (int, error) {
	ch, err := g.conn.Channel()
	if err != nil {
		return 0, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	purged, err := ch.QueuePurge(queue, false)
	if err != nil {
		return 0, fmt.Errorf("failed to purge '%s': %w", queue, err)
	}
	return purged, nil
}
