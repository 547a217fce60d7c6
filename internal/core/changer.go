package core

import (
	"context"

	"github.com/oshokin/alarm-console/internal/logger"
)

// RunChanger drains the change-request list. Each pending change either
// updates the targeted Start record in place or, when no such record
// exists, is logged as invalid and dropped. A change that moves the alarm
// to another group raises the Moved flag and clears Placed so the starter
// re-places the record on the new group's scheduler.
func (c *Core) RunChanger(ctx context.Context) error {
	ctx = logger.WithName(ctx, "changer")

	for {
		if !c.await(ctx, c.change, func() bool { return c.changes.Head() != nil }) {
			return nil
		}

		c.lock.Lock()

		moved := false

		req := c.changes.Head()
		for req != nil {
			next := req.Next()
			c.changes.Unlink(req)

			now := c.now()

			target := c.alarms.FindStart(req.ID)
			if target == nil {
				logger.Infof(ctx,
					"Invalid Change Alarm Request(%d) at %d: Group(%d) %d %s",
					req.ID, now.Unix(), req.GroupID, req.Seconds, req.Message)

				req = next

				continue
			}

			target.Seconds = req.Seconds
			target.Expiry = req.Expiry
			target.Message = req.Message

			if target.GroupID != req.GroupID {
				target.GroupID = req.GroupID
				target.Status = target.Status.WithMoved()
				target.Placed = false
				moved = true
			}

			logger.Infof(ctx,
				"Alarm(%d) Changed at %d: Group(%d) %d %d %s",
				target.ID, now.Unix(), target.GroupID, target.Interval, target.Seconds, target.Message)

			req = next
		}

		c.lock.Unlock()

		if moved {
			c.start.wake()
		}
	}
}
