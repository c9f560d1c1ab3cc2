package amqp

import (
	"context"
	"fmt"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

// retryCountHeader tracks how many times a delivery has been retried.
const retryCountHeader = "x-retry-count"

// DeadLetterExchange is the exchange failed deliveries are routed through
// once a queue's retry budget is exhausted.
const DeadLetterExchange = "dlx"

// DeclareDeadLetterQueue declares queue+".dlq", bound to DeadLetterExchange
// with routing key queue, and declares the exchange itself if missing.
func DeclareDeadLetterQueue(ch Channel, queue string) error {
	if err := ch.ExchangeDeclare(DeadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead letter exchange: %w", err)
	}

	dlq := queue + ".dlq"
	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead letter queue %s: %w", dlq, err)
	}

	if err := ch.QueueBind(dlq, queue, DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind dead letter queue %s: %w", dlq, err)
	}

	return nil
}

// RetryPolicy republishes a failed delivery to its original queue, with a
// linear backoff, until maxRetries is exceeded, at which point it nacks the
// delivery without requeue so the broker's dead-letter routing takes over.
type RetryPolicy struct {
	MaxRetries int
}

// HandleRetry applies p to a failed delivery d received on ch.
func (p RetryPolicy) HandleRetry(ctx context.Context, ch Channel, d *amqp091.Delivery) error {
	if d.Headers == nil {
		d.Headers = amqp091.Table{}
	}

	retryCount, _ := d.Headers[retryCountHeader].(int64)
	retryCount++
	d.Headers[retryCountHeader] = retryCount

	if retryCount > int64(p.MaxRetries) {
		return d.Nack(false, false)
	}

	time.Sleep(time.Duration(retryCount) * time.Second)

	return ch.PublishWithContext(ctx, d.Exchange, d.RoutingKey, false, false, amqp091.Publishing{
		ContentType:  d.ContentType,
		Headers:      d.Headers,
		Body:         d.Body,
		DeliveryMode: amqp091.Persistent,
	})
}
