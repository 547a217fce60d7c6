// Package core implements the multi-threaded coordination subsystem of
// the alarm console: the dispatcher draining the bounded request ring,
// the five request handlers (starter, changer, suspender/reactivator,
// canceller, viewer) waiting on their condition variables, the per-group
// display schedulers owning up to two alarms each, and the round-robin
// coordinator that orders printing across groups.
//
// All shared state lives in a single Core value handed to every worker.
// The lock order is: alarm-table writer/reader lock, display-list mutex,
// per-scheduler mutex, round-robin cursor mutex; the request ring's mutex
// is a leaf and is never held across any other lock.
package core
