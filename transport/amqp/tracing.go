package amqp

import (
	"context"

	amqp091 "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
)

// AMQPHeadersCarrier adapts an amqp091.Table to OpenTelemetry's
// propagation.TextMapCarrier so trace context can ride along in message
// headers, since AMQP has no built-in trace propagation.
type AMQPHeadersCarrier struct {
	headers amqp091.Table
}

func (c *AMQPHeadersCarrier) Get(key string) string {
	if val, ok := c.headers[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func (c *AMQPHeadersCarrier) Set(key, value string) {
	c.headers[key] = value
}

func (c *AMQPHeadersCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for k := range c.headers {
		keys = append(keys, k)
	}
	return keys
}

// InjectTraceContext writes the current span context into a fresh headers
// table suitable for amqp091.Publishing.Headers.
func InjectTraceContext(ctx context.Context) amqp091.Table {
	headers := make(amqp091.Table)
	otel.GetTextMapPropagator().Inject(ctx, &AMQPHeadersCarrier{headers: headers})
	return headers
}

// ExtractTraceContext recovers a span context previously injected by
// InjectTraceContext from delivery headers.
func ExtractTraceContext(ctx context.Context, headers amqp091.Table) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, &AMQPHeadersCarrier{headers: headers})
}
