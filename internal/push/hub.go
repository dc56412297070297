package push

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Hub fans signals from one Source out to any number of subscribers.
type Hub struct {
	buffer int
	log    *slog.Logger

	mu     sync.Mutex
	next   int
	subs   map[int]chan Signal
	closed bool
}

// NewHub returns a hub whose subscriber channels hold buffer pending signals each.
func NewHub(buffer int, log *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		buffer: buffer,
		log:    log,
		subs:   make(map[int]chan Signal),
	}
}

// Subscribe registers a subscriber. The returned func unsubscribes and may be called repeatedly.
func (h *Hub) Subscribe() (<-chan Signal, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Signal, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.next
	h.next++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

// Subscribers is the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Publish delivers sig to every subscriber without blocking. A subscriber whose buffer is full
// misses the signal.
func (h *Hub) Publish(sig Signal) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- sig:
		default:
			h.log.Warn("push subscriber lagging, signal dropped", "subscriber", id)
		}
	}
}

// Run forwards signals from src until ctx ends or src fails, then closes src.
// It returns nil when stopped by ctx.
func (h *Hub) Run(ctx context.Context, src Source) error {
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := src.Close(closeCtx); err != nil {
			h.log.Error("close push source", "error", err)
		}
	}()

	// Some transports ignore ctx while blocked; closing the source unblocks them.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = src.Close(closeCtx)
		case <-stop:
		}
	}()

	for {
		sig, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		h.log.Debug("push signal", "event", sig.Event)
		h.Publish(sig)
	}
}

// Close closes every subscriber channel; later subscribers get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
