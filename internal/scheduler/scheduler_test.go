package scheduler

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jswenson/regcal/internal/calendar"
)

type fakeMail struct {
	order     []string
	subjects  map[string]string
	listErr   error
	fetchErrs map[string]error
	listCalls int
}

func (f *fakeMail) ListMessageIDs(query string, maxResults int64) ([]string, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	ids := f.order
	if int64(len(ids)) > maxResults {
		ids = ids[:maxResults]
	}
	return ids, nil
}

func (f *fakeMail) MessageSubject(id string) (string, error) {
	if err := f.fetchErrs[id]; err != nil {
		return "", err
	}
	return f.subjects[id], nil
}

type fakeCalendar struct {
	events    []calendar.EventSummary
	listErr   error
	createErr error
	created   []calendar.EventInput
}

func (f *fakeCalendar) ListEvents(calendarID string, timeMin, timeMax time.Time, query string) ([]calendar.EventSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []calendar.EventSummary
	for _, ev := range f.events {
		if !ev.Start.Before(timeMin) && ev.Start.Before(timeMax) &&
			strings.Contains(ev.Summary, query) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeCalendar) CreateEvent(calendarID string, input calendar.EventInput) (*calendar.EventSummary, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, input)
	summary := calendar.EventSummary{
		ID:       "created-id",
		Summary:  input.Summary,
		Start:    input.Start,
		End:      input.End,
		HTMLLink: "https://calendar.google.com/event?eid=created-id",
	}
	f.events = append(f.events, summary)
	return &summary, nil
}

func chicago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	return loc
}

func defaultOpts(t *testing.T) Options {
	return Options{
		Query:         `subject:"Registration Confirmation:"`,
		MaxMessages:   6,
		CalendarID:    "primary",
		Location:      chicago(t),
		EventDuration: time.Hour,
		Attendees:     []string{"alice@example.com", "bob@example.com"},
	}
}

func TestRunCreatesEvent(t *testing.T) {
	mail := &fakeMail{
		order: []string{"m1"},
		subjects: map[string]string{
			"m1": "Registration Confirmation: Beginners (White/Orng/Yellow) on Saturday, January 11, 2025 9:00 AM",
		},
	}
	cal := &fakeCalendar{}

	res, err := New(mail, cal, defaultOpts(t), nil).Run()
	require.NoError(t, err)

	assert.Equal(t, 1, res.Considered)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 0, res.Skipped())

	require.Len(t, cal.created, 1)
	got := cal.created[0]
	assert.Equal(t, "Beginners (White/Orng/Yellow)", got.Summary)
	assert.Equal(t, "America/Chicago", got.TimeZone)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, got.Attendees)

	wantStart := time.Date(2025, time.January, 11, 9, 0, 0, 0, chicago(t))
	assert.True(t, got.Start.Equal(wantStart), "start = %v, want %v", got.Start, wantStart)
	assert.True(t, got.End.Equal(wantStart.Add(time.Hour)), "end = %v", got.End)
}

func TestRunSecondPassSkipsDuplicate(t *testing.T) {
	mail := &fakeMail{
		order: []string{"m1"},
		subjects: map[string]string{
			"m1": "Registration Confirmation: Beginners on Saturday, January 11, 2025 9:00 AM",
		},
	}
	cal := &fakeCalendar{}
	opts := defaultOpts(t)

	first, err := New(mail, cal, opts, nil).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	// Same message processed again against the same calendar state.
	second, err := New(mail, cal, opts, nil).Run()
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Duplicates)
	assert.Len(t, cal.created, 1, "no second insert may happen")
}

func TestRunSkipsMalformedSubjects(t *testing.T) {
	mail := &fakeMail{
		order: []string{"m1", "m2", "m3"},
		subjects: map[string]string{
			// no " on " separator
			"m1": "Registration Confirmation: Advanced Class",
			// unrecognized time format
			"m2": "Registration Confirmation: Beginners on next Tuesday",
			// valid
			"m3": "Registration Confirmation: Beginners on Sat, Jan 11, 2025 9:00 AM",
		},
	}
	cal := &fakeCalendar{}

	res, err := New(mail, cal, defaultOpts(t), nil).Run()
	require.NoError(t, err)

	assert.Equal(t, 3, res.Considered)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.FormatMismatches)
	assert.Equal(t, 1, res.ParseFailures)
	assert.Equal(t, 2, res.Skipped())
}

func TestRunIsolatesFetchFailures(t *testing.T) {
	mail := &fakeMail{
		order: []string{"m1", "m2"},
		subjects: map[string]string{
			"m2": "Registration Confirmation: Beginners on Sat, Jan 11, 2025 9:00 AM",
		},
		fetchErrs: map[string]error{
			"m1": errors.New("503 backend error"),
		},
	}
	cal := &fakeCalendar{}

	res, err := New(mail, cal, defaultOpts(t), nil).Run()
	require.NoError(t, err)

	assert.Equal(t, 1, res.FetchFailures)
	assert.Equal(t, 1, res.Created)
}

func TestRunIsolatesInsertFailures(t *testing.T) {
	mail := &fakeMail{
		order: []string{"m1"},
		subjects: map[string]string{
			"m1": "Registration Confirmation: Beginners on Sat, Jan 11, 2025 9:00 AM",
		},
	}
	cal := &fakeCalendar{createErr: errors.New("403 forbidden")}

	res, err := New(mail, cal, defaultOpts(t), nil).Run()
	require.NoError(t, err)

	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 1, res.InsertFailures)
}

func TestRunDuplicateCheckFailureSkips(t *testing.T) {
	mail := &fakeMail{
		order: []string{"m1"},
		subjects: map[string]string{
			"m1": "Registration Confirmation: Beginners on Sat, Jan 11, 2025 9:00 AM",
		},
	}
	cal := &fakeCalendar{listErr: errors.New("500 internal")}

	res, err := New(mail, cal, defaultOpts(t), nil).Run()
	require.NoError(t, err)

	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 1, res.FetchFailures)
	assert.Empty(t, cal.created, "must not insert when the duplicate check fails")
}

func TestRunListFailureAborts(t *testing.T) {
	mail := &fakeMail{listErr: errors.New("401 unauthorized")}
	cal := &fakeCalendar{}

	_, err := New(mail, cal, defaultOpts(t), nil).Run()
	assert.Error(t, err)
}

func TestRunZeroMaxMessages(t *testing.T) {
	mail := &fakeMail{
		order: []string{"m1"},
		subjects: map[string]string{
			"m1": "Registration Confirmation: Beginners on Sat, Jan 11, 2025 9:00 AM",
		},
	}
	cal := &fakeCalendar{}
	opts := defaultOpts(t)
	opts.MaxMessages = 0

	res, err := New(mail, cal, opts, nil).Run()
	require.NoError(t, err)

	assert.Equal(t, 0, res.Considered)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 0, mail.listCalls, "no collaborator call may happen for an empty batch")
}

func TestRunDryRun(t *testing.T) {
	mail := &fakeMail{
		order: []string{"m1"},
		subjects: map[string]string{
			"m1": "Registration Confirmation: Beginners on Sat, Jan 11, 2025 9:00 AM",
		},
	}
	cal := &fakeCalendar{}
	opts := defaultOpts(t)
	opts.DryRun = true

	res, err := New(mail, cal, opts, nil).Run()
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Empty(t, cal.created, "dry run must not insert")
}

func TestRunLogsAnonymizedAttendees(t *testing.T) {
	mail := &fakeMail{
		order: []string{"m1"},
		subjects: map[string]string{
			"m1": "Registration Confirmation: Beginners on Sat, Jan 11, 2025 9:00 AM",
		},
	}
	cal := &fakeCalendar{}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	res, err := New(mail, cal, defaultOpts(t), logger).Run()
	require.NoError(t, err)
	require.Equal(t, 1, res.Created)

	out := buf.String()
	assert.Contains(t, out, "user:", "created-event log must carry anonymized attendees")
	assert.NotContains(t, out, "alice@example.com", "attendee addresses must not appear in logs")
	assert.NotContains(t, out, "bob@example.com", "attendee addresses must not appear in logs")
}

func TestDuplicateCheckerWindow(t *testing.T) {
	loc := chicago(t)
	inWindow := time.Date(2025, time.January, 11, 9, 30, 0, 0, loc)
	windowStart := time.Date(2025, time.January, 11, 9, 0, 0, 0, loc)
	windowEnd := windowStart.Add(time.Hour)

	tests := []struct {
		name   string
		events []calendar.EventSummary
		want   bool
	}{
		{
			name: "matching event inside window",
			events: []calendar.EventSummary{
				{Summary: "Beginners", Start: inWindow},
			},
			want: true,
		},
		{
			name: "event outside window",
			events: []calendar.EventSummary{
				{Summary: "Beginners", Start: windowEnd.Add(time.Hour)},
			},
			want: false,
		},
		{
			name: "event at window end is excluded",
			events: []calendar.EventSummary{
				{Summary: "Beginners", Start: windowEnd},
			},
			want: false,
		},
		{
			name: "event at window start is included",
			events: []calendar.EventSummary{
				{Summary: "Beginners", Start: windowStart},
			},
			want: true,
		},
		{
			name:   "empty calendar",
			events: nil,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := &fakeCalendar{events: tt.events}
			dup := &DuplicateChecker{Calendar: cal, CalendarID: "primary"}

			got, err := dup.Exists("Beginners", windowStart, windowEnd)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
