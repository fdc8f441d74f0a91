package scheduler

import (
	"fmt"
	"time"
)

// DuplicateChecker decides whether an event already occupies a time
// window on the calendar. The check is best-effort: it reflects the
// calendar state at query time and nothing prevents a concurrent insert
// between the check and a subsequent create.
type DuplicateChecker struct {
	Calendar   CalendarService
	CalendarID string
}

// Exists reports whether any event matching name starts within
// [start, end) on the target calendar.
func (d *DuplicateChecker) Exists(name string, start, end time.Time) (bool, error) {
	events, err := d.Calendar.ListEvents(d.CalendarID, start, end, name)
	if err != nil {
		return false, fmt.Errorf("failed to query existing events: %w", err)
	}
	return len(events) > 0, nil
}
