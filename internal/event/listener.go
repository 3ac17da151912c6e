package event

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	queueSize      = 100
	handlerTimeout = 10 * time.Second
)

type Handler func(ctx context.Context, e Event) error

// Listener fans every sent event out to the registered handlers, one event at
// a time, in the order they were sent.
type Listener struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	handlers []Handler
	events   chan Event
}

func NewListener(logger *slog.Logger) *Listener {
	return &Listener{
		logger: logger,
		events: make(chan Event, queueSize),
	}
}

func (l *Listener) Register(h Handler) {
	l.mu.Lock()
	l.handlers = append(l.handlers, h)
	l.mu.Unlock()
}

// Send never blocks. Events are dropped when the queue is full.
func (l *Listener) Send(e Event) {
	select {
	case l.events <- e:
	default:
		l.logger.Warn("Event queue is full, dropping event", slog.String("message", e.Message()))
	}
}

// Listen dispatches events until ctx is done, then delivers whatever is still
// queued so the last result of a run is not lost on shutdown.
func (l *Listener) Listen(ctx context.Context) error {
	// Handlers outlive ctx by at most handlerTimeout each
	hCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			l.drain(hCtx)
			return nil
		case e := <-l.events:
			l.dispatch(hCtx, e)
		}
	}
}

func (l *Listener) drain(ctx context.Context) {
	for {
		select {
		case e := <-l.events:
			l.dispatch(ctx, e)
		default:
			return
		}
	}
}

func (l *Listener) dispatch(ctx context.Context, e Event) {
	l.mu.RLock()
	handlers := make([]Handler, len(l.handlers))
	copy(handlers, l.handlers)
	l.mu.RUnlock()

	for _, h := range handlers {
		hCtx, cancel := context.WithTimeout(ctx, handlerTimeout)
		if err := h(hCtx, e); err != nil {
			l.logger.Error("Error running event handler", slog.Any("error", err))
		}
		cancel()
	}
}
