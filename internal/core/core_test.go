package core

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	domain "github.com/oshokin/alarm-console/internal/domain/alarm"
	"github.com/oshokin/alarm-console/internal/logger"
)

const (
	waitFor  = 2 * time.Second
	pollTick = 5 * time.Millisecond
)

// testContext returns a context with an observer-backed scoped logger so
// tests can assert on emitted log lines without touching the global logger.
func testContext(t *testing.T) (context.Context, context.CancelFunc, *observer.ObservedLogs) {
	t.Helper()

	obsCore, logs := observer.New(zap.DebugLevel)
	ctx, cancel := context.WithCancel(logger.ToContext(context.Background(), zap.New(obsCore).Sugar()))

	return ctx, cancel, logs
}

// logged reports whether any observed message contains substr.
func logged(logs *observer.ObservedLogs, substr string) bool {
	for _, entry := range logs.All() {
		if strings.Contains(entry.Message, substr) {
			return true
		}
	}

	return false
}

// fakeClock is a manually stepped wall clock, so display behavior is
// deterministic regardless of real scheduler ticks.
type fakeClock struct {
	mu      sync.Mutex
	current time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{current: start}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.current
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.current = f.current.Add(d)
}

// startAlarm builds a live Start record.
func startAlarm(id, group int, ts time.Time, interval, seconds int64, msg string) *domain.Alarm {
	return &domain.Alarm{
		Kind:      domain.KindStart,
		Status:    domain.StatusActive,
		Timestamp: ts,
		Expiry:    ts.Add(time.Duration(seconds) * time.Second),
		Seconds:   seconds,
		Interval:  interval,
		ID:        id,
		GroupID:   group,
		Message:   msg,
	}
}

// insertAlarm places a record in the table under the writer lock and
// fires the matching condition, standing in for the dispatcher.
func insertAlarm(c *Core, a *domain.Alarm, w *waiter) {
	c.lock.Lock()
	c.alarms.Insert(a)
	c.lock.Unlock()

	if w != nil {
		w.wake()
	}
}

// tableHasStart checks for a live Start record under the reader lock.
func tableHasStart(c *Core, id int) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.alarms.FindStart(id) != nil
}

func displayCount(c *Core) int {
	c.displayMu.Lock()
	defer c.displayMu.Unlock()

	return len(c.displays)
}

// startWorker runs one worker loop and returns a stopper that cancels,
// wakes, and joins it.
func startWorker(c *Core, ctx context.Context, cancel context.CancelFunc, fn func(context.Context) error) func() {
	done := make(chan struct{})

	go func() {
		_ = fn(ctx)
		close(done)
	}()

	return func() {
		cancel()
		c.Shutdown()
		<-done
	}
}

// TestDispatcherRoutesKinds submits a Start, a Change, and a View record
// and checks their destinations and the mandated queue-exit and insertion
// log lines.
func TestDispatcherRoutesKinds(t *testing.T) {
	t.Parallel()

	ctx, cancel, logs := testContext(t)
	clock := newFakeClock(time.Unix(1_000, 0))
	c := New(&Options{Now: clock.Now})

	stop := startWorker(c, ctx, cancel, c.RunDispatcher)
	defer stop()

	start := startAlarm(1, 10, clock.Now(), 2, 60, "hello")

	_, err := c.Submit(start)
	require.NoError(t, err)

	change := &domain.Alarm{
		Kind:      domain.KindChange,
		Timestamp: clock.Now(),
		Seconds:   30,
		ID:        1,
		GroupID:   10,
		Message:   "world",
	}

	_, err = c.Submit(change)
	require.NoError(t, err)

	view := &domain.Alarm{Kind: domain.KindView, Timestamp: clock.Now()}

	_, err = c.Submit(view)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		c.lock.RLock()
		defer c.lock.RUnlock()

		return c.alarms.FindStart(1) != nil &&
			c.changes.Head() != nil &&
			c.alarms.MostRecent(func(a *domain.Alarm) bool { return a.Kind == domain.KindView }) != nil
	}, waitFor, pollTick)

	require.True(t, logged(logs, "Consumer Thread has Retrieved Start_Alarm Request(1)"))
	require.True(t, logged(logs, "Start_Alarm(1) Inserted by Consumer Thread Into Alarm List: Group(10)"))
	require.True(t, logged(logs, "Change_Alarm(1) Inserted by Consumer Thread into Separate Change Alarm Request List"))
	require.True(t, logged(logs, "View_Alarms Request Inserted by Consumer Thread Into Alarm List"))
}

// TestStarterPlacement verifies scheduler creation, slot reuse within a
// group, and overflow to a second scheduler for the third alarm.
func TestStarterPlacement(t *testing.T) {
	t.Parallel()

	ctx, cancel, logs := testContext(t)
	clock := newFakeClock(time.Unix(1_000, 0))
	// A huge tick keeps schedulers idle so only placement is observed.
	c := New(&Options{Tick: time.Hour, Now: clock.Now})

	stop := startWorker(c, ctx, cancel, c.RunStarter)
	defer stop()

	insertAlarm(c, startAlarm(1, 10, time.Unix(1_000, 0), 2, 60, "a"), c.start)

	require.Eventually(t, func() bool { return displayCount(c) == 1 }, waitFor, pollTick)
	require.True(t, logged(logs, "New Display Alarm Thread 1 Created for Group(10)"))

	insertAlarm(c, startAlarm(2, 10, time.Unix(1_001, 0), 2, 60, "b"), c.start)

	require.Eventually(t, func() bool {
		c.displayMu.Lock()
		defer c.displayMu.Unlock()

		if len(c.displays) != 1 {
			return false
		}

		d := c.displays[0]

		d.mu.Lock()
		defer d.mu.Unlock()

		return d.count == 2
	}, waitFor, pollTick)
	require.True(t, logged(logs, "Alarm (2) Assigned to Display Alarm Thread 1 for Group(10)"))

	// Third alarm in the same group overflows to a fresh scheduler.
	insertAlarm(c, startAlarm(3, 10, time.Unix(1_002, 0), 2, 60, "c"), c.start)

	require.Eventually(t, func() bool { return displayCount(c) == 2 }, waitFor, pollTick)

	// A different group always gets its own scheduler.
	insertAlarm(c, startAlarm(4, 20, time.Unix(1_003, 0), 2, 60, "d"), c.start)

	require.Eventually(t, func() bool { return displayCount(c) == 3 }, waitFor, pollTick)

	c.lock.RLock()
	for id := 1; id <= 4; id++ {
		a := c.alarms.FindStart(id)
		require.NotNil(t, a)
		require.True(t, a.Placed)
		require.Equal(t, domain.StatusActive, a.Status)
	}
	c.lock.RUnlock()
}

// TestRoundRobinOrder walks the coordinator through groups 3, 5, 7 and
// checks ascending order with a reset after the largest group.
func TestRoundRobinOrder(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Unix(1_000, 0))
	c := New(&Options{Now: clock.Now})

	ids := map[int]int{5: 1, 3: 2, 7: 3}
	for group, id := range ids {
		insertAlarm(c, startAlarm(id, group, time.Unix(int64(1_000+id), 0), 2, 600, "m"), nil)
	}

	c.lock.RLock()
	defer c.lock.RUnlock()

	require.Equal(t, -1, c.Cursor())

	// One full cycle in ascending group order.
	for _, group := range []int{3, 5, 7} {
		for _, other := range []int{3, 5, 7} {
			require.Equal(t, other == group, c.isNextGroupToDisplay(other),
				"expected group %d to be next, probed %d", group, other)
		}

		c.markDisplayed(ids[group], group)
	}

	// The largest group reset the cursor; the next cycle starts at the
	// smallest group again.
	require.Equal(t, -1, c.Cursor())
	require.True(t, c.isNextGroupToDisplay(3))
	require.False(t, c.isNextGroupToDisplay(5))
}

// TestRoundRobinSingleAndEmpty covers the degenerate group universes.
func TestRoundRobinSingleAndEmpty(t *testing.T) {
	t.Parallel()

	c := New(nil)

	c.lock.RLock()
	require.True(t, c.isNextGroupToDisplay(42))
	c.lock.RUnlock()

	insertAlarm(c, startAlarm(1, 9, time.Unix(1_000, 0), 2, 600, "m"), nil)

	c.lock.RLock()
	defer c.lock.RUnlock()

	require.True(t, c.isNextGroupToDisplay(9))
	// A group with no live alarms stays eligible so its scheduler can run
	// cleanup transitions and exit.
	require.True(t, c.isNextGroupToDisplay(8))
}

// TestShutdownReleasesWorkers ensures every handler returns promptly when
// the core shuts down with nothing pending.
func TestShutdownReleasesWorkers(t *testing.T) {
	t.Parallel()

	ctx, cancel, _ := testContext(t)
	c := New(nil)

	workers := []func(context.Context) error{
		c.RunDispatcher,
		c.RunStarter,
		c.RunChanger,
		c.RunSuspender,
		c.RunCanceller,
		c.RunViewer,
	}

	done := make(chan struct{}, len(workers))

	for _, w := range workers {
		go func() {
			_ = w(ctx)
			done <- struct{}{}
		}()
	}

	cancel()
	c.Shutdown()

	for range workers {
		select {
		case <-done:
		case <-time.After(waitFor):
			t.Fatal("worker did not exit after shutdown")
		}
	}
}
