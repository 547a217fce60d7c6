package core

// isNextGroupToDisplay answers whether g's scheduler may print this
// cycle. Groups are visited in ascending group-id order; the cursor names
// the most recently displayed alarm, and -1 restarts the cycle at the
// smallest group. Caller holds the table's reader lock.
func (c *Core) isNextGroupToDisplay(g int) bool {
	groups := c.alarms.ActiveGroupIDs()
	if len(groups) == 0 {
		return true
	}

	// A scheduler whose group no longer appears in the active set only has
	// cleanup left (moved or cancelled alarms); gating it would starve the
	// stop/exit transitions without improving print ordering.
	member := false

	for _, gr := range groups {
		if gr == g {
			member = true

			break
		}
	}

	if !member {
		return true
	}

	if len(groups) == 1 {
		return true
	}

	c.cursorMu.Lock()
	cursor := c.cursor
	c.cursorMu.Unlock()

	lastGroup := -1
	if cursor >= 0 {
		if a := c.alarms.FindStart(cursor); a != nil {
			lastGroup = a.GroupID
		}
	}

	lastIdx := -1

	for i, gr := range groups {
		if gr == lastGroup {
			lastIdx = i

			break
		}
	}

	// Unknown cursor: the cycle starts at the smallest group.
	if lastIdx == -1 {
		return g == groups[0]
	}

	return g == groups[(lastIdx+1)%len(groups)]
}

// markDisplayed advances the cursor after a scheduler handled an alarm.
// When the scheduler serves the largest active group the cursor resets to
// -1, starting the next cycle at the smallest group. Caller holds the
// table's reader lock.
func (c *Core) markDisplayed(alarmID, groupID int) {
	c.cursorMu.Lock()
	defer c.cursorMu.Unlock()

	c.cursor = alarmID
	if c.alarms.IsLargestGroup(groupID) {
		c.cursor = -1
	}
}

// Cursor returns the round-robin cursor value.
func (c *Core) Cursor() int {
	c.cursorMu.Lock()
	defer c.cursorMu.Unlock()

	return c.cursor
}
