// Package alarm contains core domain types for the alarm business logic.
//
// It defines the Alarm record shared by all workers, its request Kind and
// Status bitset, the timestamp-ordered intrusive List the alarm table and
// the change-request list are built from, and the Snapshot a display
// scheduler keeps per owned alarm to detect changes cycle-over-cycle.
package alarm
