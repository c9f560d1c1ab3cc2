// Package rpcclient implements the caller side of the AMQP RPC transport:
// declare an exclusive, auto-delete reply queue, publish a request carrying
// a fresh correlation id and that queue as reply_to, and wait for the
// matching reply. This is the client-side counterpart the distilled spec
// omitted but the original implementation's transport layer provides.
package rpcclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp091 "github.com/rabbitmq/amqp091-go"

	"github.com/timour/amqprpc/core"
	"github.com/timour/amqprpc/transport/amqp"
)

// Metrics receives one observation per completed Call.
type Metrics interface {
	ObserveCall(routingKey, status string, duration time.Duration)
}

// Client issues request/reply calls over a shared AMQP channel, using one
// exclusive reply queue per Client instance.
type Client struct {
	channel        amqp.Channel
	replyQueue     string
	deliveries     <-chan amqp091.Delivery
	defaultTimeout time.Duration
	metrics        Metrics
}

// WithMetrics attaches m to c; every subsequent Call reports its outcome
// and duration through it.
func (c *Client) WithMetrics(m Metrics) *Client {
	c.metrics = m
	return c
}

// channelWithConsume is the channel the client needs: amqp.Channel, whose
// Consume the client uses to read its own reply queue.
type channelWithConsume interface {
	amqp.Channel
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
}

// New declares an exclusive, auto-delete reply queue and starts consuming
// it for replies.
func New(channel channelWithConsume, defaultTimeout time.Duration) (*Client, error) {
	replyQueue, err := channel.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to declare reply queue: %w", err)
	}

	deliveries, err := channel.Consume(replyQueue.Name, "", true, true, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to consume reply queue: %w", err)
	}

	return &Client{
		channel:        channel,
		replyQueue:     replyQueue.Name,
		deliveries:     deliveries,
		defaultTimeout: defaultTimeout,
	}, nil
}

// Call publishes request to routingKey via the default exchange and waits
// for the matching correlation id on the client's reply queue.
func (c *Client) Call(ctx context.Context, routingKey string, request any) (json.RawMessage, error) {
	start := time.Now()

	reply, err := c.call(ctx, routingKey, request)

	if c.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		c.metrics.ObserveCall(routingKey, status, time.Since(start))
	}

	return reply, err
}

func (c *Client) call(ctx context.Context, routingKey string, request any) (json.RawMessage, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, core.Newf(core.ErrorKindRequest, "failed to serialize request: %s", err)
	}

	correlationID := uuid.NewString()

	publishing := amqp091.Publishing{
		ContentType:   "application/json",
		CorrelationId: correlationID,
		ReplyTo:       c.replyQueue,
		Body:          payload,
		Headers:       amqp.InjectTraceContext(ctx),
	}

	if err := c.channel.PublishWithContext(ctx, "", routingKey, false, false, publishing); err != nil {
		return nil, core.Newf(core.ErrorKindAPI, "failed to publish request: %s", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.defaultTimeout)
	defer cancel()

	for {
		select {
		case delivery, ok := <-c.deliveries:
			if !ok {
				return nil, core.New(core.ErrorKindAPI, "reply queue consumer closed")
			}
			if delivery.CorrelationId != correlationID {
				continue
			}
			return json.RawMessage(delivery.Body), nil
		case <-ctx.Done():
			return nil, core.New(core.ErrorKindAPI, "timed out waiting for reply")
		}
	}
}
