package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"driverdash/internal/amqp"
)

var (
	ErrPublishQueueFull = errors.New("login event queue is full")
	ErrPublisherClosed  = errors.New("login event publisher is closed")
)

const asyncPublishTimeout = 5 * time.Second

// AsyncPublisher hands login events to a single background goroutine so a
// slow or unreachable broker never holds up a sign-in request. Events that
// do not fit in the buffer are dropped.
type AsyncPublisher struct {
	next   EventPublisher
	events chan *amqp.LoginEvent
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewAsyncPublisher(next EventPublisher, buffer int) *AsyncPublisher {
	p := &AsyncPublisher{
		next:   next,
		events: make(chan *amqp.LoginEvent, buffer),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// PublishLoginEvent enqueues e without waiting for the broker.
func (p *AsyncPublisher) PublishLoginEvent(_ context.Context, e *amqp.LoginEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.events <- e:
		return nil
	default:
		return ErrPublishQueueFull
	}
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for e := range p.events {
		ctx, cancel := context.WithTimeout(context.Background(), asyncPublishTimeout)
		if err := p.next.PublishLoginEvent(ctx, e); err != nil {
			slog.Warn("Failed to publish login event",
				"id", e.ID,
				"driver_id", e.DriverID,
				"outcome", e.Outcome,
				"error", err)
		}
		cancel()
	}
}

// Close stops accepting events and waits for the queued ones to be sent or
// for ctx to end.
func (p *AsyncPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.events)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
