// Package calendar provides a client for creating and querying events
// through the Google Calendar API.
//
// The client wraps the generated Calendar service. Event listing is
// scoped to a time window with single-event expansion and start-time
// ordering, which is what the duplicate check in the scheduler relies
// on.
package calendar
