package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"github.com/streadway/amqp"
)

// Publisher sends JSON messages to a durable direct exchange.
type Publisher struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string

	closed <-chan *amqp.Error
	lost   atomic.Bool
}

// NewPublisher dials RabbitMQ and declares the exchange.
func NewPublisher(amqpURL, exchangeName, routingKey string) (*Publisher, error) {
	conn, err := amqp.DialConfig(amqpURL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Dial:      amqp.DefaultDial(30 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:       conn,
		channel:    channel,
		exchange:   exchangeName,
		routingKey: routingKey,
		closed:     conn.NotifyClose(make(chan *amqp.Error, 1)),
	}, nil
}

// Publish sends a JSON message to the exchange with the configured routing key
func (p *Publisher) Publish(message any) error {
	body, err := encode(message)
	if err != nil {
		return err
	}
	if err := p.channel.Publish(p.exchange, p.routingKey, false, false, body); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func encode(message any) (amqp.Publishing, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal message to JSON: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}, nil
}

// Close closes the publisher connection and channel
func (p *Publisher) Close() error {
	var err error

	if p.channel != nil {
		if channelErr := p.channel.Close(); channelErr != nil {
			log.Warnf("Failed to close channel: %v", channelErr)
			err = channelErr
		}
	}

	if p.conn != nil {
		if connErr := p.conn.Close(); connErr != nil {
			log.Warnf("Failed to close connection: %v", connErr)
			if err == nil {
				err = connErr
			}
		}
	}

	return err
}

// IsConnected reports false once the broker connection has been closed.
func (p *Publisher) IsConnected() bool {
	if p.closed == nil || p.lost.Load() {
		return false
	}
	select {
	case err := <-p.closed:
		p.lost.Store(true)
		log.Warnf("RabbitMQ connection closed: %v", err)
		return false
	default:
		return true
	}
}
