package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"
	amqp091 "github.com/rabbitmq/amqp091-go"

	"github.com/timour/amqprpc/api"
	"github.com/timour/amqprpc/core"
	"github.com/timour/amqprpc/request"
)

// Input is an api.Input backed by an AMQP queue consumer: it declares the
// queue, sets QoS, starts consuming, and turns each delivery into an
// api.InputData, rejecting before ack on malformed bodies.
type Input struct {
	channel          Channel
	deliveries       <-chan amqp091.Delivery
	rejectConfig     RejectConfig
	ackConfig        AckConfig
	retry            *RetryPolicy
	filterOutPlugins []string
	logger           *slog.Logger
}

// NewInput declares config.Queue, applies config.Qos, and starts consuming
// under a fresh, unique consumer tag.
func NewInput(channel Channel, config QueueConsumerConfig, filterOutPlugins []string, logger *slog.Logger) (*Input, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := channel.QueueDeclare(
		config.Queue.Name,
		config.Queue.Declare.Durable,
		config.Queue.Declare.AutoDelete,
		config.Queue.Declare.Exclusive,
		config.Queue.Declare.NoWait,
		config.Queue.Declare.Arguments,
	); err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.Qos(config.Qos.PrefetchCount, config.Qos.PrefetchSize, config.Qos.Global); err != nil {
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	consumerTag := fmt.Sprintf("%s#%s", config.Queue.Name, uuid.NewString())

	deliveries, err := channel.Consume(
		config.Queue.Name,
		consumerTag,
		config.Consume.AutoAck,
		config.Consume.Exclusive,
		config.Consume.NoLocal,
		config.Consume.NoWait,
		config.Consume.Arguments,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	return &Input{
		channel:          channel,
		deliveries:       deliveries,
		rejectConfig:     config.Reject,
		ackConfig:        config.Acknowledge,
		retry:            config.Retry,
		filterOutPlugins: filterOutPlugins,
		logger:           logger,
	}, nil
}

func (i *Input) FilterOutPlugins() []string {
	return i.filterOutPlugins
}

func (i *Input) Receive(ctx context.Context) (api.InputData, error) {
	select {
	case delivery, ok := <-i.deliveries:
		if !ok {
			return api.InputData{}, core.New(core.ErrorKindAPI, "consumer channel closed")
		}
		return i.handleDelivery(ctx, delivery)
	case <-ctx.Done():
		return api.InputData{}, ctx.Err()
	}
}

func (i *Input) handleDelivery(ctx context.Context, delivery amqp091.Delivery) (api.InputData, error) {
	if !utf8.Valid(delivery.Body) {
		if err := i.rejectMalformed(ctx, delivery); err != nil {
			i.logger.Warn("failed to reject malformed delivery", slog.Any("error", err))
		}
		return api.InputData{}, core.New(core.ErrorKindRequest, "failed to decode request body as utf-8")
	}

	var req request.Request
	if err := json.Unmarshal(delivery.Body, &req); err != nil {
		rejectErr := core.Newf(core.ErrorKindRequest, "failed to deserialize request: %s", err)
		if err := i.rejectMalformed(ctx, delivery); err != nil {
			i.logger.Warn("failed to reject malformed delivery", slog.Any("error", err))
		}
		return api.InputData{}, rejectErr
	}

	if err := delivery.Ack(i.ackConfig.Multiple); err != nil {
		i.logger.Warn("failed to acknowledge delivery", slog.Any("error", err))
	}

	replier := i.buildReplier(delivery.ReplyTo, delivery.CorrelationId)

	return api.NewInputData(req, replier), nil
}

// rejectMalformed disposes of a delivery that failed to deserialize. When a
// retry policy is configured it is republished with an incremented
// retry-count header until exhausted, at which point it is nacked to the
// queue's dead-letter exchange; otherwise it is rejected outright per
// rejectConfig.
func (i *Input) rejectMalformed(ctx context.Context, delivery amqp091.Delivery) error {
	if i.retry != nil {
		return i.retry.HandleRetry(ctx, i.channel, &delivery)
	}
	return delivery.Reject(i.rejectConfig.Requeue)
}

func (i *Input) buildReplier(replyTo, correlationID string) api.Replier {
	channel := i.channel
	logger := i.logger

	return func(ctx context.Context, value any) error {
		if replyTo == "" {
			return nil
		}

		payload, err := json.Marshal(value)
		if err != nil {
			return core.Newf(core.ErrorKindAPI, "failed to serialize result: %s", err)
		}

		publishing := amqp091.Publishing{
			ContentType:   "application/json",
			Body:          payload,
			CorrelationId: correlationID,
			Headers:       InjectTraceContext(ctx),
		}

		if err := channel.PublishWithContext(ctx, "", replyTo, false, false, publishing); err != nil {
			logger.Warn("failed to publish reply", slog.Any("error", err))
			return core.Newf(core.ErrorKindAPI, "failed to send reply: %s", err)
		}

		return nil
	}
}
