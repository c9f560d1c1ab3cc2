package amqp

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	published        []amqp091.Publishing
	publishedTo      [][2]string
	declared         bool
	qosSet           bool
	exchangeDeclared bool
	bound            bool
}

func (f *fakeChannel) QueueDeclare(string, bool, bool, bool, bool, amqp091.Table) (amqp091.Queue, error) {
	f.declared = true
	return amqp091.Queue{}, nil
}

func (f *fakeChannel) Qos(int, int, bool) error {
	f.qosSet = true
	return nil
}

func (f *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp091.Table) (<-chan amqp091.Delivery, error) {
	return nil, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	f.published = append(f.published, msg)
	f.publishedTo = append(f.publishedTo, [2]string{exchange, key})
	return nil
}

func (f *fakeChannel) ExchangeDeclare(string, string, bool, bool, bool, bool, amqp091.Table) error {
	f.exchangeDeclared = true
	return nil
}

func (f *fakeChannel) QueueBind(string, string, string, bool, amqp091.Table) error {
	f.bound = true
	return nil
}

func TestNewInputDeclaresQueueAndSetsQos(t *testing.T) {
	ch := &fakeChannel{}
	config := QueueConsumerConfig{Queue: QueueConfig{Name: "rpc.test"}}

	_, err := NewInput(ch, config, nil, nil)

	require.NoError(t, err)
	assert.True(t, ch.declared)
	assert.True(t, ch.qosSet)
}

func TestReplierPublishesReplyToReplyToRoutingKey(t *testing.T) {
	ch := &fakeChannel{}
	input := &Input{channel: ch}

	replier := input.buildReplier("reply-queue", "corr-1")

	require.NoError(t, replier(context.Background(), map[string]any{"Ok": "done"}))
	require.Len(t, ch.published, 1)

	assert.Equal(t, "application/json", ch.published[0].ContentType)
	assert.Equal(t, "corr-1", ch.published[0].CorrelationId)

	var body map[string]any
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &body))
	assert.Equal(t, "done", body["Ok"])
}

func TestReplierSkipsPublishWhenReplyToEmpty(t *testing.T) {
	ch := &fakeChannel{}
	input := &Input{channel: ch}

	replier := input.buildReplier("", "corr-1")

	require.NoError(t, replier(context.Background(), "anything"))
	assert.Empty(t, ch.published)
}

func TestHandleDeliveryRejectsMalformedBodyWithoutRetryPolicy(t *testing.T) {
	ch := &fakeChannel{}
	ack := &fakeAcknowledger{}
	input := &Input{channel: ch, logger: slog.Default(), rejectConfig: RejectConfig{Requeue: false}}

	_, err := input.handleDelivery(context.Background(), amqp091.Delivery{
		Acknowledger: ack,
		Body:         []byte(`not json`),
	})

	require.Error(t, err)
	assert.True(t, ack.rejected)
	assert.False(t, ack.rejectRequeue)
	assert.Empty(t, ch.published)
}

func TestHandleDeliveryRetriesMalformedBodyWhenPolicyConfigured(t *testing.T) {
	ch := &fakeChannel{}
	ack := &fakeAcknowledger{}
	input := &Input{channel: ch, logger: slog.Default(), retry: &RetryPolicy{MaxRetries: 3}}

	_, err := input.handleDelivery(context.Background(), amqp091.Delivery{
		Acknowledger: ack,
		Body:         []byte(`not json`),
		Exchange:     "rpc",
		RoutingKey:   "rpc.test",
	})

	require.Error(t, err)
	assert.False(t, ack.rejected)
	require.Len(t, ch.published, 1)
	assert.Equal(t, int64(1), ch.published[0].Headers[retryCountHeader])
}

func TestReceiveReturnsErrorWhenCanceled(t *testing.T) {
	input := &Input{deliveries: make(chan amqp091.Delivery)}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := input.Receive(ctx)
	require.Error(t, err)
}
