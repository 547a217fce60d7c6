package alarm

import "sort"

// List is an intrusive doubly-linked list of alarm records ordered by
// Timestamp non-decreasing. It carries no locking of its own: the alarm
// table and the change-request list are both Lists guarded externally by
// the reader/writer lock.
type List struct {
	head *Alarm
}

// Head returns the earliest record, or nil when the list is empty.
func (l *List) Head() *Alarm {
	return l.head
}

// Len counts the records in the list.
func (l *List) Len() int {
	n := 0
	for a := l.head; a != nil; a = a.next {
		n++
	}

	return n
}

// Insert links a into the list keeping Timestamp order. Records with equal
// timestamps keep their insertion order, so list position doubles as the
// tie-break for most-recent selection.
func (l *List) Insert(a *Alarm) {
	var prev *Alarm

	current := l.head
	for current != nil && !current.Timestamp.After(a.Timestamp) {
		prev = current
		current = current.next
	}

	if prev == nil {
		a.next = l.head
		a.prev = nil

		if l.head != nil {
			l.head.prev = a
		}

		l.head = a

		return
	}

	a.next = current
	a.prev = prev
	prev.next = a

	if current != nil {
		current.prev = a
	}
}

// Unlink removes a from the list and clears its links.
func (l *List) Unlink(a *Alarm) {
	if a.prev != nil {
		a.prev.next = a.next
	} else if l.head == a {
		l.head = a.next
	}

	if a.next != nil {
		a.next.prev = a.prev
	}

	a.next = nil
	a.prev = nil
}

// FindStart returns the Start record with the given alarm id, or nil.
// At most one Start record per id exists in a well-formed table.
func (l *List) FindStart(id int) *Alarm {
	for a := l.head; a != nil; a = a.next {
		if a.Kind == KindStart && a.ID == id {
			return a
		}
	}

	return nil
}

// MostRecent returns the record with the largest Timestamp satisfying
// match, ties resolved by list order (the later record wins). Pending
// requests of the same kind are resolved newest-first this way.
func (l *List) MostRecent(match func(*Alarm) bool) *Alarm {
	var best *Alarm

	for a := l.head; a != nil; a = a.next {
		if !match(a) {
			continue
		}

		if best == nil || !a.Timestamp.Before(best.Timestamp) {
			best = a
		}
	}

	return best
}

// ActiveGroupIDs returns the unique group ids of Start records that are
// active or suspended, sorted ascending. This is the group universe the
// round-robin coordinator cycles over.
func (l *List) ActiveGroupIDs() []int {
	seen := make(map[int]struct{})

	var groups []int

	for a := l.head; a != nil; a = a.next {
		if a.Kind != KindStart || a.Status.Removed() {
			continue
		}

		if _, ok := seen[a.GroupID]; ok {
			continue
		}

		seen[a.GroupID] = struct{}{}
		groups = append(groups, a.GroupID)
	}

	sort.Ints(groups)

	return groups
}

// IsLargestGroup reports whether g is the largest active group id.
// An empty table answers true, matching the round-robin reset rule.
func (l *List) IsLargestGroup(g int) bool {
	groups := l.ActiveGroupIDs()
	if len(groups) == 0 {
		return true
	}

	return g == groups[len(groups)-1]
}
