// Package workqueue provides the blocking FIFO that decouples command
// receipt from command execution.
package workqueue

import (
	"context"
	"errors"
	"sync"

	"github.com/bft-labs/warden/internal/domain"
)

// ErrClosed is returned by Push once the queue is closed and by Pop once it
// is closed and drained.
var ErrClosed = errors.New("workqueue: closed")

// Queue is an unbounded, thread-safe FIFO of work items.
// Push never blocks; Pop blocks until an item is available.
type Queue struct {
	mu     sync.Mutex
	items  []domain.WorkItem
	ready  chan struct{}
	closed bool
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Push appends item. It returns ErrClosed once the queue is closed, so an
// accepted item is always seen by a consumer draining until ErrClosed.
func (q *Queue) Push(item domain.WorkItem) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, item)
	q.mu.Unlock()
	q.signal()
	return nil
}

// Pop removes and returns the oldest item, blocking until one exists.
// It returns ctx.Err() if ctx ends first, and ErrClosed if the queue is
// closed and empty.
func (q *Queue) Pop(ctx context.Context) (domain.WorkItem, error) {
	for {
		item, ok, closed := q.take()
		if ok {
			return item, nil
		}
		if closed {
			return domain.WorkItem{}, ErrClosed
		}
		select {
		case <-q.ready:
		case <-ctx.Done():
			return domain.WorkItem{}, ctx.Err()
		}
	}
}

// TryPop removes and returns the oldest item without blocking.
func (q *Queue) TryPop() (domain.WorkItem, bool) {
	item, ok, _ := q.take()
	return item, ok
}

// Len returns the number of pending items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close rejects further pushes and wakes blocked consumers. Pending items
// remain available.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *Queue) take() (domain.WorkItem, bool, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return domain.WorkItem{}, false, q.closed
	}
	item := q.items[0]
	q.items[0] = domain.WorkItem{}
	q.items = q.items[1:]
	if len(q.items) > 0 || q.closed {
		// Keep the next consumer awake.
		q.signal()
	}
	return item, true, q.closed
}

func (q *Queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
