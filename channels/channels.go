package channels

import (
	"sync"
	"sync/atomic"
)

// Result represents the outcome of a background operation
type Result[T any] struct {
	Value T
	Err   error
	// Gen identifies the session the operation was started in, zero when untracked
	Gen uint64
}

// Ok returns a successful result
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail returns a failed result
func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// From returns a result from a value and error pair
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}

	return Ok(v)
}

// Tag returns the result marked with the session generation gen
func (r Result[T]) Tag(gen uint64) Result[T] {
	r.Gen = gen
	return r
}

// NewQueue returns an empty queue
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Queue represents an unbounded multi producer single consumer FIFO channel.
// Sending never blocks, receiving never waits.
type Queue[T any] struct {
	m     sync.Mutex
	items []T
}

// Send enqueues a message
func (q *Queue[T]) Send(v T) {
	q.m.Lock()
	defer q.m.Unlock()

	q.items = append(q.items, v)
}

// TryRecv dequeues the oldest message if there is one
func (q *Queue[T]) TryRecv() (T, bool) {
	q.m.Lock()
	defer q.m.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]

	return v, true
}

// Drain dequeues every message currently queued, oldest first
func (q *Queue[T]) Drain() []T {
	q.m.Lock()
	defer q.m.Unlock()

	items := q.items
	q.items = nil

	return items
}

// Len returns the amount of queued messages
func (q *Queue[T]) Len() int {
	q.m.Lock()
	defer q.m.Unlock()

	return len(q.items)
}

// NewLatest returns an empty latest channel
func NewLatest[T any]() *Latest[T] {
	return &Latest[T]{}
}

// Latest represents a single slot channel where a new message replaces an unconsumed one
type Latest[T any] struct {
	m       sync.Mutex
	v       T
	full    bool
	dropped uint64
}

// Send stores a message, superseding the pending one
func (l *Latest[T]) Send(v T) {
	l.m.Lock()
	defer l.m.Unlock()

	if l.full {
		atomic.AddUint64(&l.dropped, 1)
	}
	l.v = v
	l.full = true
}

// TryRecv takes the pending message if there is one
func (l *Latest[T]) TryRecv() (T, bool) {
	l.m.Lock()
	defer l.m.Unlock()

	var zero T
	if !l.full {
		return zero, false
	}
	v := l.v
	l.v = zero
	l.full = false

	return v, true
}

// Dropped returns the amount of messages superseded before being received
func (l *Latest[T]) Dropped() uint64 {
	return atomic.LoadUint64(&l.dropped)
}
