package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/albaqer/gemstone-ecom/internal/events"
)

const (
	ExchangeName = "gemstone.orders"
	ExchangeType = "topic"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// SetupConn dials with a short retry loop and declares the topic exchange.
func SetupConn(url string) (*amqp.Connection, *amqp.Channel, error) {
	var conn *amqp.Connection
	var err error
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("[rabbitmq] dial failed")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("could not open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(ExchangeName, ExchangeType, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("could not declare exchange: %w", err)
	}
	return conn, ch, nil
}

// Publisher routes each envelope by its event type (order.created, stock.low, ...).
type Publisher struct {
	ch   amqpChannel
	conn *amqp.Connection
}

func NewPublisher(url string) (*Publisher, error) {
	conn, ch, err := SetupConn(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{ch: ch, conn: conn}, nil
}

func (p *Publisher) Publish(ctx context.Context, key string, env events.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("could not marshal event: %w", err)
	}
	return p.ch.PublishWithContext(ctx,
		ExchangeName,
		string(env.EventType),
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     env.EventID,
			CorrelationId: key,
			Timestamp:     env.OccurredAt,
			Type:          string(env.EventType),
			Body:          body,
		},
	)
}

func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
