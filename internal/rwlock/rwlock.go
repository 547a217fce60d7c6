package rwlock

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Lock is a writer-preferring reader/writer lock assembled from three
// counting semaphores:
//
//   - write: acquired exclusively by writers, and by the first reader of a
//     read epoch so no writer can enter while any reader is inside;
//   - count: protects the reader counter;
//   - traverse: admits one reader at a time to the guarded traversal.
//
// The zero value is not usable; call New.
type Lock struct {
	write    *semaphore.Weighted
	count    *semaphore.Weighted
	traverse *semaphore.Weighted
	readers  int
}

// New returns a ready-to-use lock.
func New() *Lock {
	return &Lock{
		write:    semaphore.NewWeighted(1),
		count:    semaphore.NewWeighted(1),
		traverse: semaphore.NewWeighted(1),
	}
}

// acquire takes one unit from s. With a background context the call can
// only ever return nil, so the error is discarded.
func acquire(s *semaphore.Weighted) {
	_ = s.Acquire(context.Background(), 1)
}

// RLock enters a read epoch. The first reader blocks out writers; every
// reader then serializes on the traversal semaphore until RUnlock.
func (l *Lock) RLock() {
	acquire(l.count)

	l.readers++
	if l.readers == 1 {
		acquire(l.write)
	}

	l.count.Release(1)

	acquire(l.traverse)
}

// RUnlock leaves the read epoch. The last reader readmits writers.
func (l *Lock) RUnlock() {
	l.traverse.Release(1)

	acquire(l.count)

	l.readers--
	if l.readers == 0 {
		l.write.Release(1)
	}

	l.count.Release(1)
}

// Lock acquires exclusive writer access.
func (l *Lock) Lock() {
	acquire(l.write)
}

// Unlock releases exclusive writer access.
func (l *Lock) Unlock() {
	l.write.Release(1)
}
