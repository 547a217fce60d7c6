package core

import (
	"context"

	domain "github.com/oshokin/alarm-console/internal/domain/alarm"
	"github.com/oshokin/alarm-console/internal/logger"
)

// RunCanceller serves Cancel requests. The targeted Start record is
// marked for removal and unlinked from the table; the display scheduler
// still holding the reference observes the mark on its next tick, emits
// the stop line, and releases the slot. A request naming no live alarm is
// logged as invalid and dropped.
func (c *Core) RunCanceller(ctx context.Context) error {
	ctx = logger.WithName(ctx, "canceller")

	pending := func(a *domain.Alarm) bool {
		return a.Kind == domain.KindCancel
	}

	for {
		if !c.await(ctx, c.remove, func() bool { return c.alarms.MostRecent(pending) != nil }) {
			return nil
		}

		c.lock.Lock()

		req := c.alarms.MostRecent(pending)
		if req == nil {
			c.lock.Unlock()

			continue
		}

		c.alarms.Unlink(req)

		now := c.now()

		target := c.alarms.FindStart(req.ID)
		if target == nil {
			c.lock.Unlock()

			logger.Infof(ctx, "Invalid Cancel Alarm Request(%d) at %d", req.ID, now.Unix())

			continue
		}

		// Ownership transfers to the holding scheduler: it frees the
		// record after logging the stop.
		target.Status = domain.StatusRemove
		c.alarms.Unlink(target)

		c.lock.Unlock()

		logger.Infof(ctx,
			"Cancel_Alarm(%d) Request Processed at %d: Alarm(%d) Marked For Removal",
			req.ID, now.Unix(), target.ID)
	}
}
