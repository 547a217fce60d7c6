package core

import (
	"context"
	"sync"
	"time"

	domain "github.com/oshokin/alarm-console/internal/domain/alarm"
	"github.com/oshokin/alarm-console/internal/logger"
)

// slotsPerDisplay is the fixed capacity of one display scheduler.
const slotsPerDisplay = 2

// reconcileResult classifies the outcome of one slot reconciliation.
type reconcileResult int

const (
	// reconcilePrint: the slot is eligible for the periodic print.
	reconcilePrint reconcileResult = iota
	// reconcileSkip: keep the slot but do not print this cycle.
	reconcileSkip
	// reconcileStop: release the slot (cancellation or group departure);
	// the record itself stays with its new owner or is already unlinked.
	reconcileStop
	// reconcileExpired: release the slot and retire the record from the
	// alarm table; ownership transferred to this scheduler.
	reconcileExpired
)

// slot pairs an assigned alarm reference with the scheduler's local
// snapshot of its last observed state.
type slot struct {
	alarm *domain.Alarm
	snap  *domain.Snapshot
}

// Display is a per-group scheduler: it owns up to two alarms and prints
// them periodically, cooperating with its peers through the round-robin
// cursor. Slots and count are guarded by mu.
type Display struct {
	id      int64
	groupID int

	// mu is lock-order level 3: taken after the table lock and the
	// display-list mutex, before the cursor mutex.
	mu    sync.Mutex
	slots [slotsPerDisplay]slot
	count int
}

// assignLocked stores a in the first empty slot. Caller holds mu.
func (d *Display) assignLocked(a *domain.Alarm) {
	for i := range d.slots {
		if d.slots[i].alarm == nil && d.slots[i].snap == nil {
			d.slots[i].alarm = a
			d.count++

			return
		}
	}
}

// run is the scheduler main loop. Every tick it exits if it owns no
// alarms, materializes missing snapshots, asks the round-robin
// coordinator for its turn, reconciles each slot against the live record,
// prints eligible alarms, advances the cursor, and releases slots whose
// snapshot reached the Remove state.
func (d *Display) run(ctx context.Context, c *Core) {
	defer c.displayWG.Done()

	ctx = logger.WithName(ctx, "display")

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := c.now()

		if d.tryExit(ctx, c, now) {
			return
		}

		var retired []*domain.Alarm

		c.lock.RLock()
		d.mu.Lock()

		for i := range d.slots {
			s := &d.slots[i]
			if s.alarm != nil && s.snap == nil {
				s.snap = domain.NewSnapshot(s.alarm)
			}
		}

		if !c.isNextGroupToDisplay(d.groupID) {
			d.mu.Unlock()
			c.lock.RUnlock()

			continue
		}

		for i := range d.slots {
			s := &d.slots[i]
			if s.snap == nil {
				continue
			}

			res := d.reconcile(ctx, s, now)
			if res == reconcilePrint {
				d.periodicPrint(ctx, s.snap, now)
			}

			c.markDisplayed(s.snap.ID, d.groupID)

			if s.snap.Status.Removed() {
				if res == reconcileExpired {
					retired = append(retired, s.alarm)
				}

				s.alarm = nil
				s.snap = nil
				d.count--
			}
		}

		d.mu.Unlock()
		c.lock.RUnlock()

		// Expired records are owned by this scheduler now; retire them
		// from the table under the writer lock.
		if len(retired) > 0 {
			c.lock.Lock()

			for _, a := range retired {
				a.Status = domain.StatusRemove
				c.alarms.Unlink(a)
			}

			c.lock.Unlock()
		}
	}
}

// tryExit terminates the scheduler when it owns no alarms. The registry
// and scheduler mutexes are both held for the check so the starter cannot
// assign to a scheduler that has decided to exit.
func (d *Display) tryExit(ctx context.Context, c *Core, now time.Time) bool {
	c.displayMu.Lock()
	d.mu.Lock()

	if d.count > 0 {
		d.mu.Unlock()
		c.displayMu.Unlock()

		return false
	}

	c.unregisterLocked(d)

	d.mu.Unlock()
	c.displayMu.Unlock()

	logger.Infof(ctx,
		"No More Alarms in Group(%d): Display Thread %d exiting at %d",
		d.groupID, d.id, now.Unix())

	return true
}

// reconcile compares the slot's snapshot with the live record and applies
// the reconciliation rules, logging each observed transition. Caller
// holds the reader lock and the scheduler mutex.
func (d *Display) reconcile(ctx context.Context, s *slot, now time.Time) reconcileResult {
	snap := s.snap
	a := s.alarm

	// Cancelled: the record was marked and unlinked by the canceller.
	if a == nil || a.Status.Removed() {
		logger.Infof(ctx,
			"Display Thread %d Has Stopped Printing Message of Alarm(%d) at %d: Group(%d) %d %d %d %s",
			d.id, snap.ID, now.Unix(), snap.GroupID, snap.Timestamp.Unix(), snap.Interval, snap.Seconds, snap.Message)

		snap.Status = domain.StatusRemove

		return reconcileStop
	}

	if !a.Expiry.After(now) {
		logger.Infof(ctx,
			"Display Thread %d Has Stopped Printing Expired Alarm(%d) at %d: Group(%d) %d %d %d %s",
			d.id, snap.ID, now.Unix(), snap.GroupID, snap.Timestamp.Unix(), snap.Interval, snap.Seconds, snap.Message)

		snap.Status = domain.StatusRemove

		return reconcileExpired
	}

	// Group changed under us: this scheduler is the old owner.
	if a.GroupID != snap.GroupID {
		logger.Infof(ctx,
			"Display Thread %d Has Stopped Printing Message of Alarm(%d) at %d: Group(%d) %d %d %d %s",
			d.id, a.ID, now.Unix(), a.GroupID, a.Timestamp.Unix(), a.Interval, a.Seconds, a.Message)

		snap.Status = domain.StatusRemove

		return reconcileStop
	}

	// Hand-off not yet acknowledged: this scheduler is the new owner.
	// Copying the live status (Moved included) acknowledges it; printing
	// skips this cycle.
	if a.Status.Moved() && !snap.Status.Moved() {
		logger.Infof(ctx,
			"Display Thread %d Has Taken Over Printing Message of Alarm(%d) at %d: Group(%d) %d %d %d %s",
			d.id, a.ID, now.Unix(), a.GroupID, a.Timestamp.Unix(), a.Interval, a.Seconds, a.Message)

		snap.Status = a.Status

		return reconcileSkip
	}

	if a.Message != snap.Message {
		logger.Infof(ctx,
			"Display Thread %d Starts to Print Changed Message Alarm(%d) at %d: Group(%d) %d %d %d %s",
			d.id, a.ID, now.Unix(), a.GroupID, a.Timestamp.Unix(), a.Interval, a.Seconds, a.Message)

		snap.Message = a.Message
	}

	if a.Interval != snap.Interval {
		logger.Infof(ctx,
			"Display Thread %d Starts to Print Changed Interval Value Alarm(%d) at %d: Group(%d) %d %d %d %s",
			d.id, a.ID, now.Unix(), a.GroupID, a.Timestamp.Unix(), a.Interval, a.Seconds, a.Message)

		snap.Interval = a.Interval
	}

	snap.Status = a.Status

	return reconcilePrint
}

// periodicPrint emits the periodic line when the alarm is printable and
// its interval has elapsed since the last print.
func (d *Display) periodicPrint(ctx context.Context, snap *domain.Snapshot, now time.Time) {
	if snap.Status.Removed() || snap.Status.Suspended() {
		return
	}

	if now.Sub(snap.LastPrint) <= time.Duration(snap.Interval)*time.Second {
		return
	}

	logger.Infof(ctx,
		"Alarm (%d) Printed by Alarm Display Thread %d at %d: Group(%d) %d %d %d %s",
		snap.ID, d.id, now.Unix(), snap.GroupID, snap.Timestamp.Unix(), snap.Interval, snap.Seconds, snap.Message)

	snap.LastPrint = now
}
