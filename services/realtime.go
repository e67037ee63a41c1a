package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"djagency-backend/logger"
)

// Change types, named after the Postgres statements that cause them
const (
	ChangeInsert = "INSERT"
	ChangeUpdate = "UPDATE"
	ChangeDelete = "DELETE"
)

// Change describes one row mutation pushed to subscribers
type Change struct {
	Table  string      `json:"table"`
	Type   string      `json:"type"`
	Record interface{} `json:"record"`
	At     time.Time   `json:"commit_timestamp"`
}

// Sink receives every change, e.g. a message broker
type Sink interface {
	Publish(ctx context.Context, change Change) error
}

// Subscription is a buffered feed of changes for a set of tables
type Subscription struct {
	C      <-chan Change
	ch     chan Change
	tables map[string]bool
}

func (s *Subscription) wants(table string) bool {
	return len(s.tables) == 0 || s.tables[table]
}

// Hub fans changes out to in-process subscribers and external sinks.
// Slow subscribers drop changes instead of blocking writers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	sinks  []Sink
	buffer int
}

func NewHub(buffer int, sinks ...Sink) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		sinks:  sinks,
		buffer: buffer,
	}
}

// Subscribe registers a feed; no tables means every table
func (h *Hub) Subscribe(tables ...string) *Subscription {
	ch := make(chan Change, h.buffer)
	sub := &Subscription{C: ch, ch: ch, tables: map[string]bool{}}
	for _, t := range tables {
		if t = strings.TrimSpace(t); t != "" {
			sub.tables[t] = true
		}
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes the feed and closes its channel
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
	h.mu.Unlock()
}

// Subscribers returns the number of open feeds
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish delivers change to matching subscribers and every sink
func (h *Hub) Publish(ctx context.Context, table, changeType string, record interface{}) {
	change := Change{Table: table, Type: changeType, Record: record, At: time.Now().UTC()}

	h.mu.RLock()
	for sub := range h.subs {
		if !sub.wants(table) {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			logger.L().Warn("realtime subscriber lagging, change dropped", zap.String("table", table))
		}
	}
	sinks := h.sinks
	h.mu.RUnlock()

	for _, sink := range sinks {
		if err := sink.Publish(ctx, change); err != nil {
			logger.L().Error("failed to publish change to sink",
				zap.String("table", table),
				zap.String("type", changeType),
				zap.Error(err))
		}
	}
}

// AMQPPublisher mirrors changes to a topic exchange, routing key "<table>.<type>".
// A closed channel is redialled on the next publish.
type AMQPPublisher struct {
	url      string
	exchange string
	conn     *amqp.Connection
	ch       *amqp.Channel
	mu       sync.Mutex
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url, exchange: exchange}
	if err := p.dial(); err != nil {
		return nil, err
	}
	return p, nil
}

// dial opens a connection and channel and declares the exchange; callers hold mu
func (p *AMQPPublisher) dial() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	p.conn, p.ch = conn, ch
	return nil
}

// RoutingKey builds the topic routing key for a change
func RoutingKey(c Change) string {
	return c.Table + "." + strings.ToLower(c.Type)
}

func (p *AMQPPublisher) Publish(ctx context.Context, change Change) error {
	body, err := json.Marshal(change)
	if err != nil {
		return err
	}

	// amqp channels are not safe for concurrent publishers
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil || p.ch.IsClosed() {
		if p.conn != nil && !p.conn.IsClosed() {
			p.conn.Close()
		}
		logger.L().Warn("broker channel closed, reconnecting", zap.String("exchange", p.exchange))
		if err := p.dial(); err != nil {
			p.conn, p.ch = nil, nil
			return err
		}
	}
	return p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(change), false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   change.At,
		Body:        body,
	})
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
