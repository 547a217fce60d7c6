package core

import (
	"context"

	domain "github.com/oshokin/alarm-console/internal/domain/alarm"
	"github.com/oshokin/alarm-console/internal/logger"
)

// RunDispatcher drains the request ring. Each record is inserted into the
// alarm table (or, for changes, the dedicated change-request list) under
// the writer lock, then exactly one handler condition is signalled based
// on the record's kind. Returns once the ring is closed and drained.
func (c *Core) RunDispatcher(ctx context.Context) error {
	ctx = logger.WithName(ctx, "dispatcher")

	for {
		a, index := c.queue.Dequeue()
		if a == nil {
			return nil
		}

		logger.Infof(ctx,
			"Consumer Thread has Retrieved %s Request(%d) at %d: %d from Circular_Buffer Index: %d",
			a.Kind, a.ID, c.now().Unix(), a.Timestamp.Unix(), index)

		switch a.Kind {
		case domain.KindStart:
			c.lock.Lock()
			c.alarms.Insert(a)
			c.lock.Unlock()

			logger.Infof(ctx,
				"Start_Alarm(%d) Inserted by Consumer Thread Into Alarm List: Group(%d) %d %d %d %s",
				a.ID, a.GroupID, a.Timestamp.Unix(), a.Interval, a.Seconds, a.Message)

			c.start.wake()

		case domain.KindChange:
			c.lock.Lock()
			c.changes.Insert(a)
			c.lock.Unlock()

			logger.Infof(ctx,
				"Change_Alarm(%d) Inserted by Consumer Thread into Separate Change Alarm Request List: Group(%d) %d %d %s",
				a.ID, a.GroupID, a.Timestamp.Unix(), a.Seconds, a.Message)

			c.change.wake()

		case domain.KindCancel:
			c.lock.Lock()
			c.alarms.Insert(a)
			c.lock.Unlock()

			logger.Infof(ctx,
				"Cancel_Alarm(%d) Inserted by Consumer Thread Into Alarm List: %d",
				a.ID, a.Timestamp.Unix())

			c.remove.wake()

		case domain.KindSuspend:
			c.lock.Lock()
			c.alarms.Insert(a)
			c.lock.Unlock()

			logger.Infof(ctx,
				"Suspend_Alarm(%d) Inserted by Consumer Thread Into Alarm List: %d",
				a.ID, a.Timestamp.Unix())

			c.suspend.wake()

		case domain.KindReactivate:
			c.lock.Lock()
			c.alarms.Insert(a)
			c.lock.Unlock()

			logger.Infof(ctx,
				"Reactivate_Alarm(%d) Inserted by Consumer Thread Into Alarm List: %d",
				a.ID, a.Timestamp.Unix())

			c.suspend.wake()

		case domain.KindView:
			c.lock.Lock()
			c.alarms.Insert(a)
			c.lock.Unlock()

			logger.Infof(ctx,
				"View_Alarms Request Inserted by Consumer Thread Into Alarm List: %d",
				a.Timestamp.Unix())

			c.view.wake()
		}
	}
}
