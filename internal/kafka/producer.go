package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/albaqer/gemstone-ecom/internal/events"
)

var ErrProducerClosed = errors.New("producer closed")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// maxBatch caps how many queued messages one WriteMessages call carries.
const maxBatch = 100

// Producer hands messages to a background writer through a buffered inbox.
// The loop drains whatever is queued into one write, and the kafka writer is
// async, so Publish only blocks when the inbox itself is full.
type Producer struct {
	w       messageWriter
	inbox   chan kafka.Message
	closeCh chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return newProducer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion:   logFailedBatch,
	}, buf)
}

// logFailedBatch reports delivery failures of the async writer.
func logFailedBatch(msgs []kafka.Message, err error) {
	if err != nil {
		log.Error().Err(err).Int("messages", len(msgs)).Msg("[kafka] delivery failed")
	}
}

func newProducer(w messageWriter, buf int) *Producer {
	if buf <= 0 {
		buf = 256
	}
	p := &Producer{w: w, inbox: make(chan kafka.Message, buf), closeCh: make(chan struct{})}
	go p.loop()
	return p
}

func (p *Producer) loop() {
	defer close(p.closeCh)
	for m := range p.inbox {
		batch := drain(p.inbox, []kafka.Message{m})
		if err := p.w.WriteMessages(context.Background(), batch...); err != nil {
			log.Error().Err(err).Int("messages", len(batch)).Msg("[kafka] write failed")
		}
	}
	if err := p.w.Close(); err != nil {
		log.Warn().Err(err).Msg("[kafka] writer close")
	}
}

// drain appends whatever is already queued, up to maxBatch, without waiting.
func drain(inbox <-chan kafka.Message, batch []kafka.Message) []kafka.Message {
	for len(batch) < maxBatch {
		select {
		case m, ok := <-inbox:
			if !ok {
				return batch
			}
			batch = append(batch, m)
		default:
			return batch
		}
	}
	return batch
}

// Publish queues env keyed by key (the order id, so an order's events stay ordered).
func (p *Producer) Publish(ctx context.Context, key string, env events.Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: b,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "event_id", Value: []byte(env.EventID)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}
	select {
	case p.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes queued messages and stops the writer.
func (p *Producer) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()
	<-p.closeCh
}
