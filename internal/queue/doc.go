// Package queue implements the bounded ring buffer that hands parsed
// requests from the input loop to the dispatcher.
//
// The ring is guarded by one mutex and two condition variables (not_full,
// not_empty) and reports the slot index used by each operation so callers
// can include it in their log lines.
package queue
