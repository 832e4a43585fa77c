package audit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"sbt/pkg/requestcontext"
)

// Publisher captures structured audit events. It is append-only and hands
// events to a Sink so tests can swap sinks easily.
type Publisher struct {
	sink   Sink
	events chan Event
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool

	// mu guards closed and the send on events against Close.
	mu     sync.RWMutex
	closed bool
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer enables async processing with the specified buffer size.
// Events are queued and appended in a background goroutine.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan Event, size)
			p.async = true
		}
	}
}

// WithPublisherLogger sets a logger for async error reporting.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(sink Sink, opts ...PublisherOption) *Publisher {
	p := &Publisher{sink: sink}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		if err := p.sink.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", event.Action,
				"actor", event.Actor,
			)
		}
	}
}

// Close shuts down the async publisher and waits for pending events to drain.
// Events emitted afterwards are dropped. Close is safe to call twice.
func (p *Publisher) Close() {
	if !p.async {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.events)
	p.mu.Unlock()
	p.wg.Wait()
}

// Emit fills ID, Timestamp and RequestID when unset and appends the event.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if p.async {
		p.mu.RLock()
		defer p.mu.RUnlock()
		if p.closed {
			if p.logger != nil {
				p.logger.Warn("audit publisher closed, event dropped",
					"action", event.Action,
					"actor", event.Actor,
				)
			}
			return nil
		}
		// Drop rather than block the request path when the buffer is full.
		select {
		case p.events <- event:
		default:
			if p.logger != nil {
				p.logger.Warn("audit buffer full, event dropped",
					"action", event.Action,
					"actor", event.Actor,
				)
			}
		}
		return nil
	}
	return p.sink.Append(ctx, event)
}
