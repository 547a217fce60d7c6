package core

import (
	"context"

	domain "github.com/oshokin/alarm-console/internal/domain/alarm"
	"github.com/oshokin/alarm-console/internal/logger"
)

// RunStarter places freshly dispatched Start records (and records whose
// group just changed) onto display schedulers. It scans for a scheduler
// of the matching group with a free slot, and spawns a new scheduler when
// none exists. Lock order: writer lock, display-list mutex, scheduler
// mutex.
func (c *Core) RunStarter(ctx context.Context) error {
	ctx = logger.WithName(ctx, "starter")

	unplaced := func(a *domain.Alarm) bool {
		return a.Kind == domain.KindStart && !a.Placed && !a.Status.Removed()
	}

	for {
		if !c.await(ctx, c.start, func() bool { return c.alarms.MostRecent(unplaced) != nil }) {
			return nil
		}

		c.lock.Lock()

		a := c.alarms.MostRecent(unplaced)
		if a == nil {
			c.lock.Unlock()

			continue
		}

		a.Placed = true
		// A record carrying the Moved flag keeps its state through the
		// hand-off; only fresh starts are (re)marked active.
		if !a.Status.Moved() {
			a.Status = domain.StatusActive
		}

		now := c.now()

		c.displayMu.Lock()

		if d := c.findDisplayLocked(a.GroupID); d != nil {
			d.mu.Lock()
			d.assignLocked(a)
			d.mu.Unlock()

			c.displayMu.Unlock()
			c.lock.Unlock()

			logger.Infof(ctx,
				"Alarm (%d) Assigned to Display Alarm Thread %d for Group(%d) at %d",
				a.ID, d.id, a.GroupID, now.Unix())

			continue
		}

		d := c.spawnDisplayLocked(ctx, a)

		c.displayMu.Unlock()
		c.lock.Unlock()

		logger.Infof(ctx,
			"New Display Alarm Thread %d Created for Group(%d) at %d",
			d.id, d.groupID, now.Unix())
	}
}

// findDisplayLocked returns the first scheduler serving the group with a
// free slot. Caller holds displayMu.
func (c *Core) findDisplayLocked(groupID int) *Display {
	for _, d := range c.displays {
		d.mu.Lock()
		ok := d.groupID == groupID && d.count < slotsPerDisplay
		d.mu.Unlock()

		if ok {
			return d
		}
	}

	return nil
}

// spawnDisplayLocked registers a new scheduler seeded with a and starts
// its goroutine. Caller holds displayMu.
func (c *Core) spawnDisplayLocked(ctx context.Context, a *domain.Alarm) *Display {
	d := &Display{
		id:      c.displaySeq.Add(1),
		groupID: a.GroupID,
	}
	d.slots[0].alarm = a
	d.count = 1

	c.displays = append(c.displays, d)

	c.displayWG.Add(1)

	go d.run(ctx, c)

	return d
}

// unregisterLocked drops d from the scheduler registry. Caller holds
// displayMu.
func (c *Core) unregisterLocked(d *Display) {
	for i, cur := range c.displays {
		if cur == d {
			c.displays = append(c.displays[:i], c.displays[i+1:]...)

			return
		}
	}
}
