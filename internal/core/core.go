package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	domain "github.com/oshokin/alarm-console/internal/domain/alarm"
	"github.com/oshokin/alarm-console/internal/queue"
	"github.com/oshokin/alarm-console/internal/rwlock"
)

// Options configures a Core.
type Options struct {
	// QueueCapacity is the bounded request ring size (default 4).
	QueueCapacity int
	// Tick is the display scheduler period (default 1s).
	Tick time.Duration
	// Now overrides the wall clock; tests use it to step time.
	Now func() time.Time
}

// Core holds every shared structure of the coordination subsystem and is
// passed to all workers.
type Core struct {
	queue *queue.Ring
	lock  *rwlock.Lock

	// alarms is the alarm table; changes is the dedicated change-request
	// list. Both are guarded by lock.
	alarms  domain.List
	changes domain.List

	// displayMu guards the display scheduler registry.
	displayMu sync.Mutex
	displays  []*Display

	// cursorMu guards the round-robin cursor: the id of the most
	// recently displayed alarm, or -1 at a cycle boundary.
	cursorMu sync.Mutex
	cursor   int

	// One waiter per handler condition.
	start   *waiter
	change  *waiter
	suspend *waiter
	remove  *waiter
	view    *waiter

	tick time.Duration
	now  func() time.Time

	displaySeq atomic.Int64
	displayWG  sync.WaitGroup
}

// New builds a Core from the given options; nil means all defaults.
func New(opts *Options) *Core {
	if opts == nil {
		opts = new(Options)
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = time.Second
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Core{
		queue:   queue.New(opts.QueueCapacity),
		lock:    rwlock.New(),
		cursor:  -1,
		start:   newWaiter(),
		change:  newWaiter(),
		suspend: newWaiter(),
		remove:  newWaiter(),
		view:    newWaiter(),
		tick:    tick,
		now:     now,
	}
}

// Submit enqueues a parsed request for the dispatcher and returns the
// ring slot index it landed in, for the producer's log line.
func (c *Core) Submit(a *domain.Alarm) (int, error) {
	return c.queue.Enqueue(a)
}

// Shutdown closes the request ring and wakes every handler so blocked
// workers observe context cancellation and return.
func (c *Core) Shutdown() {
	c.queue.Close()

	for _, w := range []*waiter{c.start, c.change, c.suspend, c.remove, c.view} {
		w.wakeAll()
	}
}

// WaitDisplays blocks until every display scheduler goroutine has exited.
func (c *Core) WaitDisplays() {
	c.displayWG.Wait()
}

// waiter pairs a condition variable with its mutex. Handlers hold the
// mutex across the predicate re-check (Mesa semantics); wakers take it
// around the signal so a state change can never slip between a handler's
// failed check and its wait.
type waiter struct {
	mu   sync.Mutex
	cond *sync.Cond
}

func newWaiter() *waiter {
	w := new(waiter)
	w.cond = sync.NewCond(&w.mu)

	return w
}

func (w *waiter) wake() {
	w.mu.Lock()
	w.cond.Signal()
	w.mu.Unlock()
}

func (w *waiter) wakeAll() {
	w.mu.Lock()
	w.cond.Broadcast()
	w.mu.Unlock()
}

// await blocks until pred holds or ctx is cancelled, re-checking the
// predicate under the table's reader lock after every wake-up. It returns
// false when the worker should exit.
func (c *Core) await(ctx context.Context, w *waiter, pred func() bool) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for {
		if ctx.Err() != nil {
			return false
		}

		c.lock.RLock()
		ok := pred()
		c.lock.RUnlock()

		if ok {
			return true
		}

		w.cond.Wait()
	}
}
