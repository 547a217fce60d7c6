package alarm

import "time"

// MaxMessageBytes is the maximum length of an alarm message after trimming.
const MaxMessageBytes = 127

// Kind identifies the request category an Alarm record represents.
// Start records describe live alarms; the other kinds are one-shot request
// records that exist only until their handler consumes them.
type Kind int

// Request kinds, in the order they appear in the command grammar.
const (
	KindStart Kind = iota
	KindChange
	KindCancel
	KindSuspend
	KindReactivate
	KindView
)

// String returns the command-grammar spelling of the kind.
// It is used verbatim in queue entry/exit log lines.
func (k Kind) String() string {
	switch k {
	case KindStart:
		return "Start_Alarm"
	case KindChange:
		return "Change_Alarm"
	case KindCancel:
		return "Cancel_Alarm"
	case KindSuspend:
		return "Suspend_Alarm"
	case KindReactivate:
		return "Reactivate_Alarm"
	case KindView:
		return "View_Alarms"
	default:
		return "Unknown"
	}
}

// Status is a bitset over the alarm lifecycle flags.
// Exactly one of Active/Suspended/Remove holds at a time; Moved is an
// orthogonal one-shot hand-off flag consumed by display schedulers.
type Status uint8

const (
	// StatusActive marks an alarm that prints on its interval.
	// It is the zero value: a status with no other base flag set is active.
	StatusActive Status = 0
	// StatusSuspended marks an alarm whose printing is paused.
	StatusSuspended Status = 1 << 0
	// StatusMoved marks an alarm whose group just changed.
	StatusMoved Status = 1 << 1
	// StatusRemove marks an alarm owned by its display scheduler for removal.
	StatusRemove Status = 1 << 2
)

// Suspended reports whether the suspended flag is set.
func (s Status) Suspended() bool {
	return s&StatusSuspended != 0
}

// Moved reports whether the hand-off flag is set.
func (s Status) Moved() bool {
	return s&StatusMoved != 0
}

// Removed reports whether the alarm is marked for removal.
func (s Status) Removed() bool {
	return s&StatusRemove != 0
}

// WithMoved returns the status with the hand-off flag raised.
func (s Status) WithMoved() Status {
	return s | StatusMoved
}

// WithoutMoved returns the status with the hand-off flag cleared.
func (s Status) WithoutMoved() Status {
	return s &^ StatusMoved
}

// String renders the base state plus the Moved flag when present.
func (s Status) String() string {
	var base string

	switch {
	case s.Removed():
		base = "Remove"
	case s.Suspended():
		base = "Suspended"
	default:
		base = "Active"
	}

	if s.Moved() {
		return base + "+Moved"
	}

	return base
}

// Alarm is the central entity: a live alarm (KindStart) or a pending
// request record. Records are linked into timestamp-ordered lists by List;
// every field except the links is guarded by the alarm table's writer lock
// once the record has been dispatched.
type Alarm struct {
	// next and prev are the intrusive list links, owned by List.
	next, prev *Alarm

	// Kind is the request category of this record.
	Kind Kind
	// Status is the lifecycle bitset. Meaningful for Start records only.
	Status Status
	// Placed is set on a Start record once the starter has handed it to a
	// display scheduler. The changer clears it on a group move so the
	// starter re-places the record on the new group's scheduler.
	Placed bool
	// Timestamp is when the request was admitted to the system.
	Timestamp time.Time
	// Expiry is the absolute time at which the alarm stops printing.
	Expiry time.Time
	// Seconds is the seconds-until-expiry value at creation or last change.
	Seconds int64
	// Interval is the number of seconds between successive prints.
	Interval int64
	// ID is the user-assigned alarm identifier, unique per live alarm.
	ID int
	// GroupID co-locates alarms on one display scheduler (capacity 2).
	GroupID int
	// Message is the text payload, at most MaxMessageBytes after trimming.
	Message string
}

// Next returns the record after a in its list, or nil at the tail.
func (a *Alarm) Next() *Alarm {
	return a.next
}
