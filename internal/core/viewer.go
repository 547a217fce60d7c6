package core

import (
	"context"

	domain "github.com/oshokin/alarm-console/internal/domain/alarm"
	"github.com/oshokin/alarm-console/internal/logger"
)

// RunViewer serves View_Alarms requests: under the reader lock it emits
// one line per Start record admitted strictly before the view request,
// then removes the request record under the writer lock.
func (c *Core) RunViewer(ctx context.Context) error {
	ctx = logger.WithName(ctx, "viewer")

	pending := func(a *domain.Alarm) bool {
		return a.Kind == domain.KindView
	}

	for {
		if !c.await(ctx, c.view, func() bool { return c.alarms.MostRecent(pending) != nil }) {
			return nil
		}

		c.lock.RLock()

		req := c.alarms.MostRecent(pending)
		if req == nil {
			c.lock.RUnlock()

			continue
		}

		logger.Infof(ctx, "View Alarms at View Time %d:", req.Timestamp.Unix())

		n := 1

		for a := c.alarms.Head(); a != nil; a = a.Next() {
			if a.Kind != domain.KindStart || !a.Timestamp.Before(req.Timestamp) {
				continue
			}

			logger.Infof(ctx,
				"%d. Alarm(%d): Group(%d) Status(%s) %d %d %d %s",
				n, a.ID, a.GroupID, a.Status, a.Timestamp.Unix(), a.Interval, a.Seconds, a.Message)

			n++
		}

		c.lock.RUnlock()

		c.lock.Lock()
		c.alarms.Unlink(req)
		c.lock.Unlock()
	}
}
