package alarm

import "time"

// Snapshot is a display scheduler's local copy of an alarm's observable
// state. The scheduler compares it against the live record each tick to
// detect cancellations, expiry, group moves, and field changes.
type Snapshot struct {
	// Status mirrors the record's status as last observed. The scheduler
	// raises Moved here to acknowledge a hand-off and Remove to mark the
	// slot for release.
	Status Status
	// Timestamp is the admission time of the underlying record.
	Timestamp time.Time
	// LastPrint is when the scheduler last emitted the periodic line.
	LastPrint time.Time
	// Seconds is the seconds-until-expiry value as last observed.
	Seconds int64
	// Interval is the print interval as last observed.
	Interval int64
	// ID is the alarm id of the underlying record.
	ID int
	// GroupID is the group as last observed; a mismatch against the live
	// record means this scheduler is the old owner after a move.
	GroupID int
	// Message is the text payload as last observed.
	Message string
}

// NewSnapshot captures the observable state of a. The Moved flag is
// live-only: a fresh snapshot never carries it, which is what lets the
// new owner detect an unacknowledged hand-off.
func NewSnapshot(a *Alarm) *Snapshot {
	return &Snapshot{
		Status:    a.Status.WithoutMoved(),
		Timestamp: a.Timestamp,
		Seconds:   a.Seconds,
		Interval:  a.Interval,
		ID:        a.ID,
		GroupID:   a.GroupID,
		Message:   a.Message,
	}
}
