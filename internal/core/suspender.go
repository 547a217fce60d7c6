package core

import (
	"context"

	domain "github.com/oshokin/alarm-console/internal/domain/alarm"
	"github.com/oshokin/alarm-console/internal/logger"
)

// RunSuspender serves Suspend and Reactivate requests. It always consumes
// the most recent pending request, locates the Start record with the same
// id admitted strictly earlier, and applies the Active<->Suspended
// transition when the current state allows it; other combinations are
// no-ops. A request with no matching earlier Start record is logged as
// invalid and dropped.
func (c *Core) RunSuspender(ctx context.Context) error {
	ctx = logger.WithName(ctx, "suspender")

	pending := func(a *domain.Alarm) bool {
		return a.Kind == domain.KindSuspend || a.Kind == domain.KindReactivate
	}

	for {
		if !c.await(ctx, c.suspend, func() bool { return c.alarms.MostRecent(pending) != nil }) {
			return nil
		}

		c.lock.Lock()

		req := c.alarms.MostRecent(pending)
		if req == nil {
			c.lock.Unlock()

			continue
		}

		c.alarms.Unlink(req)

		target := c.alarms.FindStart(req.ID)
		if target != nil && !target.Timestamp.Before(req.Timestamp) {
			target = nil
		}

		now := c.now()

		switch {
		case target == nil:
			c.lock.Unlock()

			verb := "Suspend"
			if req.Kind == domain.KindReactivate {
				verb = "Reactivate"
			}

			logger.Infof(ctx, "Invalid %s Alarm Request(%d) at %d", verb, req.ID, now.Unix())

		case req.Kind == domain.KindSuspend && !target.Status.Suspended() && !target.Status.Removed():
			target.Status = domain.StatusSuspended | (target.Status & domain.StatusMoved)

			c.lock.Unlock()

			logger.Infof(ctx,
				"Alarm(%d) Suspended at %d: Group(%d) %d %d %s",
				target.ID, now.Unix(), target.GroupID, target.Interval, target.Seconds, target.Message)

		case req.Kind == domain.KindReactivate && target.Status.Suspended():
			target.Status &^= domain.StatusSuspended

			c.lock.Unlock()

			logger.Infof(ctx,
				"Alarm(%d) Reactivated at %d: Group(%d) %d %d %s",
				target.ID, now.Unix(), target.GroupID, target.Interval, target.Seconds, target.Message)

		default:
			// Suspend of a suspended alarm, reactivate of an active one.
			c.lock.Unlock()
		}
	}
}
