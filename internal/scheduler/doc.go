// Package scheduler turns confirmation emails into calendar events.
//
// For each fetched message the scheduler extracts an event name and time
// from the subject line, localizes the time into the target zone, checks
// the calendar for an existing event in the same window, and inserts the
// event if none is found. Every failure is handled at per-message
// granularity: the message is skipped with a logged reason and the batch
// continues. Only a failure to retrieve the message list aborts the run.
//
// The duplicate check and the subsequent insert are two independent API
// calls against an external service, so a concurrent calendar
// modification between them can still produce a duplicate. This is a
// known limitation; the calendar offers no transaction to close the gap.
package scheduler
