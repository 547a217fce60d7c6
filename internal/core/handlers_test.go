package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/alarm-console/internal/domain/alarm"
)

// insertChange places a change request on the dedicated list and wakes
// the changer, standing in for the dispatcher.
func insertChange(c *Core, req *domain.Alarm) {
	c.lock.Lock()
	c.changes.Insert(req)
	c.lock.Unlock()

	c.change.wake()
}

// TestChangerUpdatesFieldsInPlace applies a same-group change and checks
// the Moved flag stays down (round-trip property).
func TestChangerUpdatesFieldsInPlace(t *testing.T) {
	t.Parallel()

	ctx, cancel, _ := testContext(t)
	clock := newFakeClock(time.Unix(1_000, 0))
	c := New(&Options{Now: clock.Now})

	stop := startWorker(c, ctx, cancel, c.RunChanger)
	defer stop()

	target := startAlarm(1, 10, time.Unix(900, 0), 2, 60, "old")
	target.Placed = true
	insertAlarm(c, target, nil)

	req := &domain.Alarm{
		Kind:      domain.KindChange,
		Timestamp: time.Unix(1_000, 0),
		Expiry:    time.Unix(1_090, 0),
		Seconds:   90,
		ID:        1,
		GroupID:   10,
		Message:   "new",
	}
	insertChange(c, req)

	require.Eventually(t, func() bool {
		c.lock.RLock()
		defer c.lock.RUnlock()

		a := c.alarms.FindStart(1)

		return a != nil && a.Message == "new"
	}, waitFor, pollTick)

	c.lock.RLock()
	a := c.alarms.FindStart(1)
	require.EqualValues(t, 90, a.Seconds)
	require.Equal(t, time.Unix(1_090, 0), a.Expiry)
	require.Equal(t, 10, a.GroupID)
	require.False(t, a.Status.Moved())
	require.True(t, a.Placed)
	require.Nil(t, c.changes.Head())
	c.lock.RUnlock()
}

// TestChangerGroupMoveRaisesMoved verifies the hand-off trigger: new
// group, Moved flag up, Placed cleared for the starter.
func TestChangerGroupMoveRaisesMoved(t *testing.T) {
	t.Parallel()

	ctx, cancel, _ := testContext(t)
	c := New(&Options{Now: newFakeClock(time.Unix(1_000, 0)).Now})

	stop := startWorker(c, ctx, cancel, c.RunChanger)
	defer stop()

	target := startAlarm(1, 10, time.Unix(900, 0), 2, 60, "hello")
	target.Placed = true
	insertAlarm(c, target, nil)

	req := &domain.Alarm{
		Kind:      domain.KindChange,
		Timestamp: time.Unix(1_000, 0),
		Expiry:    time.Unix(1_060, 0),
		Seconds:   60,
		ID:        1,
		GroupID:   20,
		Message:   "hello",
	}
	insertChange(c, req)

	require.Eventually(t, func() bool {
		c.lock.RLock()
		defer c.lock.RUnlock()

		a := c.alarms.FindStart(1)

		return a != nil && a.GroupID == 20
	}, waitFor, pollTick)

	c.lock.RLock()
	a := c.alarms.FindStart(1)
	require.True(t, a.Status.Moved())
	require.False(t, a.Placed)
	c.lock.RUnlock()
}

// TestChangerInvalidTarget logs the mandated line and drops the request
// without touching the table.
func TestChangerInvalidTarget(t *testing.T) {
	t.Parallel()

	ctx, cancel, logs := testContext(t)
	c := New(&Options{Now: newFakeClock(time.Unix(1_000, 0)).Now})

	stop := startWorker(c, ctx, cancel, c.RunChanger)
	defer stop()

	req := &domain.Alarm{
		Kind:      domain.KindChange,
		Timestamp: time.Unix(1_000, 0),
		Seconds:   10,
		ID:        999,
		GroupID:   1,
		Message:   "x",
	}
	insertChange(c, req)

	require.Eventually(t, func() bool {
		return logged(logs, "Invalid Change Alarm Request(999")
	}, waitFor, pollTick)

	c.lock.RLock()
	require.Nil(t, c.changes.Head())
	require.Equal(t, 0, c.alarms.Len())
	c.lock.RUnlock()
}

// TestSuspendReactivateRoundTrip suspends a live alarm and brings it
// back, checking state and the mandated log lines.
func TestSuspendReactivateRoundTrip(t *testing.T) {
	t.Parallel()

	ctx, cancel, logs := testContext(t)
	c := New(&Options{Now: newFakeClock(time.Unix(1_000, 0)).Now})

	stop := startWorker(c, ctx, cancel, c.RunSuspender)
	defer stop()

	target := startAlarm(1, 10, time.Unix(900, 0), 2, 600, "hello")
	insertAlarm(c, target, nil)

	insertAlarm(c, &domain.Alarm{
		Kind:      domain.KindSuspend,
		Timestamp: time.Unix(1_000, 0),
		ID:        1,
	}, c.suspend)

	require.Eventually(t, func() bool {
		c.lock.RLock()
		defer c.lock.RUnlock()

		a := c.alarms.FindStart(1)

		return a != nil && a.Status.Suspended()
	}, waitFor, pollTick)
	require.True(t, logged(logs, "Alarm(1) Suspended"))

	insertAlarm(c, &domain.Alarm{
		Kind:      domain.KindReactivate,
		Timestamp: time.Unix(1_100, 0),
		ID:        1,
	}, c.suspend)

	require.Eventually(t, func() bool {
		c.lock.RLock()
		defer c.lock.RUnlock()

		a := c.alarms.FindStart(1)

		return a != nil && !a.Status.Suspended()
	}, waitFor, pollTick)
	require.True(t, logged(logs, "Alarm(1) Reactivated"))

	// Both request records were consumed.
	c.lock.RLock()
	require.Equal(t, 1, c.alarms.Len())
	c.lock.RUnlock()
}

// TestSuspendWithoutEarlierStart drops the request as invalid: the only
// Start record is admitted after the suspend request.
func TestSuspendWithoutEarlierStart(t *testing.T) {
	t.Parallel()

	ctx, cancel, logs := testContext(t)
	c := New(&Options{Now: newFakeClock(time.Unix(1_000, 0)).Now})

	stop := startWorker(c, ctx, cancel, c.RunSuspender)
	defer stop()

	insertAlarm(c, startAlarm(1, 10, time.Unix(1_500, 0), 2, 600, "late"), nil)

	insertAlarm(c, &domain.Alarm{
		Kind:      domain.KindSuspend,
		Timestamp: time.Unix(1_000, 0),
		ID:        1,
	}, c.suspend)

	require.Eventually(t, func() bool {
		return logged(logs, "Invalid Suspend Alarm Request(1")
	}, waitFor, pollTick)

	c.lock.RLock()
	a := c.alarms.FindStart(1)
	require.NotNil(t, a)
	require.False(t, a.Status.Suspended())
	c.lock.RUnlock()
}

// TestCancellerRemovesStart marks the target for removal and unlinks it;
// the request record is consumed either way.
func TestCancellerRemovesStart(t *testing.T) {
	t.Parallel()

	ctx, cancel, logs := testContext(t)
	c := New(&Options{Now: newFakeClock(time.Unix(1_000, 0)).Now})

	stop := startWorker(c, ctx, cancel, c.RunCanceller)
	defer stop()

	target := startAlarm(1, 10, time.Unix(900, 0), 2, 600, "hello")
	insertAlarm(c, target, nil)

	insertAlarm(c, &domain.Alarm{
		Kind:      domain.KindCancel,
		Timestamp: time.Unix(1_000, 0),
		ID:        1,
	}, c.remove)

	require.Eventually(t, func() bool {
		c.lock.RLock()
		defer c.lock.RUnlock()

		return c.alarms.Len() == 0
	}, waitFor, pollTick)

	// The record itself is marked: the holding scheduler observes it and
	// emits the stop line.
	require.True(t, target.Status.Removed())
	require.True(t, logged(logs, "Cancel_Alarm(1) Request Processed"))
}

// TestCancellerInvalidTarget logs the invalid line and drops the request.
func TestCancellerInvalidTarget(t *testing.T) {
	t.Parallel()

	ctx, cancel, logs := testContext(t)
	c := New(&Options{Now: newFakeClock(time.Unix(1_000, 0)).Now})

	stop := startWorker(c, ctx, cancel, c.RunCanceller)
	defer stop()

	insertAlarm(c, &domain.Alarm{
		Kind:      domain.KindCancel,
		Timestamp: time.Unix(1_000, 0),
		ID:        404,
	}, c.remove)

	require.Eventually(t, func() bool {
		return logged(logs, "Invalid Cancel Alarm Request(404")
	}, waitFor, pollTick)

	c.lock.RLock()
	require.Equal(t, 0, c.alarms.Len())
	c.lock.RUnlock()
}

// TestViewerFiltersByViewTime lists only Start records admitted strictly
// before the view request and consumes the request.
func TestViewerFiltersByViewTime(t *testing.T) {
	t.Parallel()

	ctx, cancel, logs := testContext(t)
	c := New(&Options{Now: newFakeClock(time.Unix(1_000, 0)).Now})

	stop := startWorker(c, ctx, cancel, c.RunViewer)
	defer stop()

	insertAlarm(c, startAlarm(1, 10, time.Unix(100, 0), 2, 600_000, "early"), nil)
	insertAlarm(c, startAlarm(2, 10, time.Unix(300, 0), 2, 600_000, "late"), nil)

	insertAlarm(c, &domain.Alarm{
		Kind:      domain.KindView,
		Timestamp: time.Unix(200, 0),
	}, c.view)

	require.Eventually(t, func() bool {
		return logged(logs, "View Alarms at View Time 200:")
	}, waitFor, pollTick)

	require.Eventually(t, func() bool {
		c.lock.RLock()
		defer c.lock.RUnlock()

		return c.alarms.Len() == 2
	}, waitFor, pollTick)

	require.True(t, logged(logs, "1. Alarm(1):"))
	require.False(t, logged(logs, "Alarm(2):"))
}
