package queue

import (
	"errors"
	"sync"

	domain "github.com/oshokin/alarm-console/internal/domain/alarm"
)

// DefaultCapacity is the ring size used when no capacity is configured.
const DefaultCapacity = 4

// ErrClosed is returned by Enqueue after Close.
var ErrClosed = errors.New("request queue is closed")

// Ring is a fixed-capacity circular buffer of alarm records. It is the
// sole synchronization point between the input loop and the dispatcher,
// and tolerates multiple producers. Both operations are FIFO and return
// the slot index they touched.
type Ring struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	slots    []*domain.Alarm
	head     int
	tail     int
	count    int
	closed   bool
}

// New returns a ring with the given capacity, or DefaultCapacity when
// capacity is not positive.
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	r := &Ring{
		slots: make([]*domain.Alarm, capacity),
	}
	r.notFull = sync.NewCond(&r.mu)
	r.notEmpty = sync.NewCond(&r.mu)

	return r
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int {
	return len(r.slots)
}

// Len returns the number of queued records.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.count
}

// Enqueue blocks while the ring is full, stores a at the head slot, and
// returns the slot index it used. Enqueue on a closed ring fails with
// ErrClosed.
func (r *Ring) Enqueue(a *domain.Alarm) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for r.count == len(r.slots) && !r.closed {
		r.notFull.Wait()
	}

	if r.closed {
		return -1, ErrClosed
	}

	index := r.head
	r.slots[index] = a
	r.head = (r.head + 1) % len(r.slots)
	r.count++

	r.notEmpty.Signal()

	return index, nil
}

// Dequeue blocks while the ring is empty, removes the record at the tail
// slot, and returns it with the slot index. Once the ring is closed and
// drained, Dequeue returns (nil, -1).
func (r *Ring) Dequeue() (*domain.Alarm, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for r.count == 0 && !r.closed {
		r.notEmpty.Wait()
	}

	if r.count == 0 {
		return nil, -1
	}

	index := r.tail
	a := r.slots[index]
	r.slots[index] = nil
	r.tail = (r.tail + 1) % len(r.slots)
	r.count--

	r.notFull.Signal()

	return a, index
}

// Close wakes all waiters. Queued records remain dequeueable; new
// enqueues fail with ErrClosed.
func (r *Ring) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	r.notFull.Broadcast()
	r.notEmpty.Broadcast()
}
