package eventlog

import (
	"context"
	"log"
	"sync"
	"time"

	"warehouse-sim-backend/internal/model"
)

// EventSaver persists a batch of events.
type EventSaver interface {
	SaveEvents(ctx context.Context, events []model.Event) error
}

// Buffer collects events in memory and writes them to an EventSaver in batches,
// either when flushSize events are pending or every flushInterval.
type Buffer struct {
	saver     EventSaver
	flushSize int
	flushTime time.Duration

	mu     sync.Mutex
	events []model.Event

	started  bool
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewBuffer creates a Buffer. Call Start to enable periodic flushing.
func NewBuffer(saver EventSaver, flushSize int, flushInterval time.Duration) *Buffer {
	if flushSize <= 0 {
		flushSize = 50
	}
	if flushInterval <= 0 {
		flushInterval = 10 * time.Second
	}
	return &Buffer{
		saver:     saver,
		flushSize: flushSize,
		flushTime: flushInterval,
		events:    make([]model.Event, 0, flushSize*2),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the periodic flush goroutine.
func (b *Buffer) Start() {
	b.mu.Lock()
	b.started = true
	b.mu.Unlock()
	go b.autoFlush()
	log.Printf("Event log buffer started (flushSize: %d, flushInterval: %v)", b.flushSize, b.flushTime)
}

func (b *Buffer) autoFlush() {
	defer close(b.done)
	ticker := time.NewTicker(b.flushTime)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.Flush(context.Background())
		case <-b.stop:
			b.Flush(context.Background())
			return
		}
	}
}

// Log appends an event; a full buffer triggers an asynchronous flush.
func (b *Buffer) Log(message string, level Level, source string) {
	b.mu.Lock()
	b.events = append(b.events, model.Event{
		CreatedAt: time.Now().UTC(),
		Level:     string(level),
		Source:    source,
		Message:   message,
	})
	size := len(b.events)
	b.mu.Unlock()

	if size >= b.flushSize {
		go b.Flush(context.Background())
	}
}

// Pending returns the number of events not yet flushed.
func (b *Buffer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Flush writes all pending events. Failures are logged and the events dropped.
func (b *Buffer) Flush(ctx context.Context) {
	b.mu.Lock()
	if len(b.events) == 0 {
		b.mu.Unlock()
		return
	}
	toSave := make([]model.Event, len(b.events))
	copy(toSave, b.events)
	b.events = b.events[:0]
	b.mu.Unlock()

	if b.saver == nil {
		return
	}
	if err := b.saver.SaveEvents(ctx, toSave); err != nil {
		log.Printf("Error saving %d events: %v", len(toSave), err)
	}
}

// Stop flushes what is left and waits for the flush goroutine, if started.
func (b *Buffer) Stop() {
	b.mu.Lock()
	started := b.started
	b.mu.Unlock()
	if !started {
		b.Flush(context.Background())
		return
	}
	b.stopOnce.Do(func() {
		close(b.stop)
	})
	select {
	case <-b.done:
	case <-time.After(5 * time.Second):
		log.Println("Timed out waiting for event log buffer to stop")
	}
}
