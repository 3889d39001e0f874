package broadcast

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/score-predictor/internal/platform/logging"
)

const (
	EventConnection  = "connection"
	EventInitialData = "initial-data"
	EventUpdate      = "update"
	EventPing        = "ping"
	EventError       = "error"
)

var (
	ErrSubscriberFull   = errors.New("subscriber buffer is full")
	ErrSubscriberClosed = errors.New("subscriber is closed")
)

// Message is one event pushed to live-stream subscribers.
type Message struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMessage(eventType string, data any, now time.Time) Message {
	return Message{Type: eventType, Data: data, Timestamp: now.UTC()}
}

// Subscriber must not block in Deliver.
type Subscriber interface {
	Deliver(msg Message) error
}

// Broadcaster owns the subscriber registry keyed by connection id.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]Subscriber
	logger      *logging.Logger

	delivered atomic.Int64
	dropped   atomic.Int64
}

func NewBroadcaster(logger *logging.Logger) *Broadcaster {
	if logger == nil {
		logger = logging.Default()
	}
	return &Broadcaster{
		subscribers: make(map[string]Subscriber),
		logger:      logger,
	}
}

// Add registers sub under id, replacing any previous subscriber with the same id.
// Callers send their initial snapshot before calling Add.
func (b *Broadcaster) Add(id string, sub Subscriber) {
	if id == "" || sub == nil {
		return
	}

	b.mu.Lock()
	b.subscribers[id] = sub
	total := len(b.subscribers)
	b.mu.Unlock()

	b.logger.Debug("live subscriber added", "subscriber_id", id, "subscribers", total)
}

// Remove is a no-op for unknown ids.
func (b *Broadcaster) Remove(id string) {
	b.mu.Lock()
	sub, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
	}
	total := len(b.subscribers)
	b.mu.Unlock()

	if !ok {
		return
	}
	if closer, isCloser := sub.(interface{ Close() }); isCloser {
		closer.Close()
	}
	b.logger.Debug("live subscriber removed", "subscriber_id", id, "subscribers", total)
}

// Broadcast delivers msg to every subscriber and returns how many accepted it.
// Subscribers that fail delivery are removed.
func (b *Broadcaster) Broadcast(msg Message) int {
	b.mu.RLock()
	if len(b.subscribers) == 0 {
		b.mu.RUnlock()
		return 0
	}
	targets := make(map[string]Subscriber, len(b.subscribers))
	for id, sub := range b.subscribers {
		targets[id] = sub
	}
	b.mu.RUnlock()

	sent := 0
	for id, sub := range targets {
		if err := sub.Deliver(msg); err != nil {
			b.dropped.Add(1)
			b.logger.Warn("live subscriber delivery failed, removing", "subscriber_id", id, "event", msg.Type, "error", err)
			b.Remove(id)
			continue
		}
		sent++
	}
	b.delivered.Add(int64(sent))
	return sent
}

// Publish lets the broadcaster act as the in-process event sink.
func (b *Broadcaster) Publish(_ context.Context, msg Message) error {
	b.Broadcast(msg)
	return nil
}

func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

type Stats struct {
	Subscribers int   `json:"subscribers"`
	Delivered   int64 `json:"delivered"`
	Dropped     int64 `json:"dropped"`
}

func (b *Broadcaster) Stats() Stats {
	return Stats{
		Subscribers: b.Count(),
		Delivered:   b.delivered.Load(),
		Dropped:     b.dropped.Load(),
	}
}

// Close removes every subscriber.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	subs := b.subscribers
	b.subscribers = make(map[string]Subscriber)
	b.mu.Unlock()

	for _, sub := range subs {
		if closer, ok := sub.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}
