// Package subject extracts event details from confirmation email subject
// lines.
//
// A confirmation subject follows a fixed template:
//
//	Registration Confirmation: <event name> on <date and time>
//
// The template is matched strictly. Any deviation in wording or
// punctuation fails closed with ErrFormatMismatch rather than guessing,
// so a subject that merely resembles a confirmation never produces an
// event.
package subject

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jswenson/regcal/internal/timeparse"
)

const (
	// Marker precedes the event name in a confirmation subject.
	Marker = "Registration Confirmation: "

	// Separator splits the event name from the time string. The subject
	// must contain it exactly once after the marker.
	Separator = " on "
)

// ErrFormatMismatch reports a subject line that does not follow the
// confirmation template.
var ErrFormatMismatch = errors.New("subject does not match confirmation template")

// FormatError wraps ErrFormatMismatch with the offending subject line and
// the reason the match failed.
type FormatError struct {
	Subject string
	Reason  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: %s (subject %q)", ErrFormatMismatch, e.Reason, e.Subject)
}

func (e *FormatError) Unwrap() error { return ErrFormatMismatch }

// EventDetails holds the name and naive start time recovered from a
// confirmation subject line.
type EventDetails struct {
	Name string
	Time time.Time
}

// Extract parses a subject line against the confirmation template and
// returns the event details. The time string is delegated to the
// timeparse package; its error is propagated unwrapped so callers can
// distinguish a malformed template from an unrecognized date.
func Extract(subjectLine string) (EventDetails, error) {
	_, rest, found := strings.Cut(subjectLine, Marker)
	if !found {
		return EventDetails{}, &FormatError{
			Subject: subjectLine,
			Reason:  fmt.Sprintf("missing %q marker", Marker),
		}
	}

	parts := strings.Split(rest, Separator)
	if len(parts) != 2 {
		return EventDetails{}, &FormatError{
			Subject: subjectLine,
			Reason:  fmt.Sprintf("expected exactly one %q separator, found %d", Separator, len(parts)-1),
		}
	}

	name := strings.TrimSpace(parts[0])
	timeStr := strings.TrimSpace(parts[1])

	t, err := timeparse.Parse(timeStr)
	if err != nil {
		return EventDetails{}, err
	}

	return EventDetails{Name: name, Time: t}, nil
}
