package transcript

import (
	"context"
	"errors"
	"log"
	"sync"
)

var (
	// ErrQueueFull is returned when the recorder cannot accept more turns
	ErrQueueFull = errors.New("transcript queue is full")
	// ErrRecorderClosed is returned after Close
	ErrRecorderClosed = errors.New("transcript recorder is closed")
)

// TurnWriter is the synchronous sink the recorder drains into
type TurnWriter interface {
	AppendTurn(ctx context.Context, conversationID, role, text string) error
}

type pendingTurn struct {
	conversationID string
	role           string
	text           string
}

// Recorder queues turns and writes them from a single goroutine, so
// turns land in the order they were accepted without holding up replies.
type Recorder struct {
	writer TurnWriter
	queue  chan pendingTurn
	done   chan struct{}

	onError func(err error)

	mu     sync.RWMutex
	closed bool
}

// NewRecorder starts a recorder with room for size queued turns. onError,
// when set, is called for every failed write after it is logged.
func NewRecorder(writer TurnWriter, size int, onError func(err error)) *Recorder {
	if size <= 0 {
		size = 256
	}
	r := &Recorder{
		writer:  writer,
		queue:   make(chan pendingTurn, size),
		done:    make(chan struct{}),
		onError: onError,
	}
	go r.run()
	return r
}

// AppendTurn queues a turn. It never blocks.
func (r *Recorder) AppendTurn(ctx context.Context, conversationID, role, text string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrRecorderClosed
	}
	select {
	case r.queue <- pendingTurn{conversationID, role, text}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending returns the number of queued turns
func (r *Recorder) Pending() int {
	return len(r.queue)
}

// Close stops accepting turns and waits for the queue to drain or ctx
// to end
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for t := range r.queue {
		// request contexts are usually gone by now
		if err := r.writer.AppendTurn(context.Background(), t.conversationID, t.role, t.text); err != nil {
			log.Printf("transcript: failed to record %s turn for %s: %v", t.role, t.conversationID, err)
			if r.onError != nil {
				r.onError(err)
			}
		}
	}
}
