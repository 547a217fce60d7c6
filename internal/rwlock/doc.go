// Package rwlock provides the writer-preferring reader/writer lock that
// guards the alarm table.
//
// The lock is built from three counting semaphores rather than sync.RWMutex
// on purpose: the first reader of an epoch holds the writer semaphore until
// the last reader leaves, and a separate traversal semaphore serializes the
// readers' inner list walks so traversal stays cheap and non-reentrant.
package rwlock
