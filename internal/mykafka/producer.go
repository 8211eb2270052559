package mykafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Skotchmaster/rocketshoes/internal/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	publishTimeout = 5 * time.Second
	queueSize      = 256
)

var (
	ErrQueueFull = errors.New("kafka: publish queue full")
	ErrClosed    = errors.New("kafka: producer closed")
)

// Writer is the part of *kafka.Writer the producer uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer queues events and writes them from a single goroutine, so callers
// never wait on the broker.
type Producer struct {
	writer Writer
	now    func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan kafka.Message
	done   chan struct{}
}

func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return NewProducerWithWriter(w), nil
}

func NewProducerWithWriter(w Writer) *Producer {
	p := &Producer{
		writer: w,
		now:    time.Now,
		queue:  make(chan kafka.Message, queueSize),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// Enqueue marshals event and queues it for writing. It never blocks: a full
// queue drops the event and returns ErrQueueFull.
func (p *Producer) Enqueue(key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- kafka.Message{Key: []byte(key), Value: data}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *Producer) run() {
	defer close(p.done)
	for msg := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			slog.Error("kafka_publish_error", "key", string(msg.Key), "error", err)
		}
		cancel()
	}
}

type CartEvent struct {
	EventID    string      `json:"event_id"`
	Type       string      `json:"type"`
	Session    string      `json:"session"`
	Items      models.Cart `json:"items"`
	Total      float64     `json:"total"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// CartObserver returns a cart observer that queues every snapshot of the
// session's cart as a cart_updated event keyed by session.
func (p *Producer) CartObserver(session string) func(models.Cart) {
	return func(c models.Cart) {
		ev := CartEvent{
			EventID:    uuid.NewString(),
			Type:       "cart_updated",
			Session:    session,
			Items:      c,
			Total:      c.Total(),
			OccurredAt: p.now().UTC(),
		}
		if err := p.Enqueue(session, ev); err != nil {
			slog.Warn("kafka_enqueue_error", "session", session, "error", err)
		}
	}
}

// Close stops accepting events, writes what is queued and closes the writer.
func (p *Producer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.writer.Close()
}
