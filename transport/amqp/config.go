// Package amqp implements the AMQP transport: an api.Input backed by an
// amqp091-go consumer, plus the declare/qos/consume/publish configuration
// it is parameterized by.
package amqp

import amqp091 "github.com/rabbitmq/amqp091-go"

// QueueDeclareConfig mirrors amqp091.Channel.QueueDeclare's arguments.
type QueueDeclareConfig struct {
	Durable    bool
	AutoDelete bool
	Exclusive  bool
	NoWait     bool
	Arguments  amqp091.Table
}

// QueueConfig names a queue and how it should be declared.
type QueueConfig struct {
	Name    string
	Declare QueueDeclareConfig
}

// QosConfig mirrors amqp091.Channel.Qos's arguments.
type QosConfig struct {
	PrefetchCount int
	PrefetchSize  int
	Global        bool
}

// ConsumeConfig mirrors amqp091.Channel.Consume's arguments.
type ConsumeConfig struct {
	AutoAck   bool
	Exclusive bool
	NoLocal   bool
	NoWait    bool
	Arguments amqp091.Table
}

// AckConfig mirrors amqp091.Delivery.Ack's arguments.
type AckConfig struct {
	Multiple bool
}

// RejectConfig mirrors amqp091.Delivery.Reject's arguments.
type RejectConfig struct {
	Requeue bool
}

// QueueConsumerConfig bundles everything an Input needs to declare a queue
// and start consuming from it.
type QueueConsumerConfig struct {
	Queue       QueueConfig
	Qos         QosConfig
	Consume     ConsumeConfig
	Acknowledge AckConfig
	Reject      RejectConfig

	// Retry, when set, replaces the plain Reject on a malformed delivery
	// with a republish-then-DLQ retry policy.
	Retry *RetryPolicy
}

// PublishConfig describes where and how a publisher sends requests. No code
// in this module reads it; rpcclient.Client always publishes on the default
// exchange.
type PublishConfig struct {
	Exchange   string
	RoutingKey string
	Mandatory  bool
	Immediate  bool
}
