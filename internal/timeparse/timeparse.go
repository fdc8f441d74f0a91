package timeparse

import (
	"fmt"
	"strings"
	"time"
)

// Layouts are the accepted date/time layouts, in priority order.
// Confirmation emails spell out the weekday and month, but both are seen
// in abbreviated form as well, so every combination is accepted. The
// first layout that parses wins.
var Layouts = []string{
	"Monday, January 2, 2006 3:04 PM",
	"Monday, Jan 2, 2006 3:04 PM",
	"Mon, January 2, 2006 3:04 PM",
	"Mon, Jan 2, 2006 3:04 PM",
}

// ParseError is returned when a time string matches none of the accepted
// layouts. It carries the original input and the layouts that were tried.
type ParseError struct {
	Input   string
	Layouts []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse time %q; expected one of: %s",
		e.Input, strings.Join(e.Layouts, ", "))
}

// Parse interprets s as a date and time, trying each accepted layout in
// priority order. The returned time carries no timezone information; it
// is a naive wall-clock value that the caller localizes.
func Parse(s string) (time.Time, error) {
	for _, layout := range Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ParseError{Input: s, Layouts: Layouts}
}
