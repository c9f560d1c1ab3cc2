package amqp

import (
	"fmt"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

// ConnectionConfig holds the credentials used to dial a broker.
type ConnectionConfig struct {
	User string
	Pass string
	Host string
	Port string
}

// URL builds the amqp:// connection string for cfg.
func (cfg ConnectionConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.User, cfg.Pass, cfg.Host, cfg.Port)
}

// Connect dials a broker and opens one channel on the connection. The
// returned close func closes the channel before the connection.
func Connect(cfg ConnectionConfig) (*amqp091.Channel, func() error, error) {
	conn, err := amqp091.Dial(cfg.URL())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	close := func() error {
		if err := ch.Close(); err != nil {
			conn.Close()
			return err
		}
		return conn.Close()
	}

	return ch, close, nil
}
