package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jswenson/regcal/internal/calendar"
	"github.com/jswenson/regcal/internal/logging"
	"github.com/jswenson/regcal/internal/subject"
	"github.com/jswenson/regcal/internal/timeparse"
)

// MailService is the mail collaborator consumed by the scheduler.
type MailService interface {
	// ListMessageIDs returns up to maxResults message identifiers
	// matching the query.
	ListMessageIDs(query string, maxResults int64) ([]string, error)

	// MessageSubject fetches a message and returns its Subject header.
	MessageSubject(id string) (string, error)
}

// CalendarService is the calendar collaborator consumed by the scheduler.
type CalendarService interface {
	ListEvents(calendarID string, timeMin, timeMax time.Time, query string) ([]calendar.EventSummary, error)
	CreateEvent(calendarID string, input calendar.EventInput) (*calendar.EventSummary, error)
}

// Options configure a scheduler run.
type Options struct {
	// Query is the mail search query selecting confirmation emails.
	Query string

	// MaxMessages bounds the number of messages considered. Zero or
	// less means no messages are fetched at all.
	MaxMessages int64

	// CalendarID is the target calendar, usually "primary".
	CalendarID string

	// Location is the timezone the parsed wall-clock times belong to.
	Location *time.Location

	// EventDuration is the fixed length of created events.
	EventDuration time.Duration

	// Attendees are invited to every created event.
	Attendees []string

	// DryRun walks the full pipeline but skips the insert.
	DryRun bool
}

// Result summarizes a scheduler run.
type Result struct {
	Considered       int
	Created          int
	Duplicates       int
	FormatMismatches int
	ParseFailures    int
	FetchFailures    int
	InsertFailures   int
}

// Skipped returns the number of considered messages that did not result
// in a created event.
func (r Result) Skipped() int {
	return r.Considered - r.Created
}

// Scheduler orchestrates the email-to-event pipeline.
type Scheduler struct {
	mail   MailService
	cal    CalendarService
	dup    *DuplicateChecker
	opts   Options
	logger *slog.Logger
}

// New creates a scheduler over the given collaborators. A nil logger
// falls back to slog.Default.
func New(mail MailService, cal CalendarService, opts Options, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.EventDuration <= 0 {
		opts.EventDuration = time.Hour
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Scheduler{
		mail:   mail,
		cal:    cal,
		dup:    &DuplicateChecker{Calendar: cal, CalendarID: opts.CalendarID},
		opts:   opts,
		logger: logger,
	}
}

// Run processes the message batch sequentially and returns the run
// summary. Per-message failures are logged and counted but never abort
// the batch; only a failure to list messages returns an error.
func (s *Scheduler) Run() (Result, error) {
	var res Result

	if s.opts.MaxMessages <= 0 {
		s.logger.Info("nothing to do", slog.Int64("max_messages", s.opts.MaxMessages))
		return res, nil
	}

	ids, err := s.mail.ListMessageIDs(s.opts.Query, s.opts.MaxMessages)
	if err != nil {
		return res, fmt.Errorf("failed to list messages: %w", err)
	}
	if len(ids) == 0 {
		s.logger.Info("no messages matched query", slog.String("query", s.opts.Query))
		return res, nil
	}

	s.logger.Info("found messages", slog.Int("count", len(ids)))

	for _, id := range ids {
		res.Considered++
		s.processMessage(id, &res)
	}

	s.logger.Info("run complete",
		slog.Int("considered", res.Considered),
		slog.Int("created", res.Created),
		slog.Int("skipped", res.Skipped()))
	return res, nil
}

// processMessage runs one message through the pipeline, updating the
// result counters. Every early return is a deliberate skip.
func (s *Scheduler) processMessage(id string, res *Result) {
	logger := s.logger.With(logging.MessageID(id))

	subjectLine, err := s.mail.MessageSubject(id)
	if err != nil {
		res.FetchFailures++
		logger.Warn("skipping message",
			logging.Reason("fetch failed"), logging.Err(err))
		return
	}

	details, err := subject.Extract(subjectLine)
	if err != nil {
		var perr *timeparse.ParseError
		switch {
		case errors.Is(err, subject.ErrFormatMismatch):
			res.FormatMismatches++
			logger.Warn("skipping message",
				logging.Reason("subject does not match template"), logging.Err(err))
		case errors.As(err, &perr):
			res.ParseFailures++
			logger.Warn("skipping message",
				logging.Reason("unrecognized time format"), logging.Err(err))
		default:
			res.ParseFailures++
			logger.Warn("skipping message",
				logging.Reason("extraction failed"), logging.Err(err))
		}
		return
	}

	start := s.localize(details.Time)
	end := start.Add(s.opts.EventDuration)
	logger = logger.With(logging.Event(details.Name), slog.Time("start", start))

	exists, err := s.dup.Exists(details.Name, start, end)
	if err != nil {
		res.FetchFailures++
		logger.Warn("skipping message",
			logging.Reason("duplicate check failed"), logging.Err(err))
		return
	}
	if exists {
		res.Duplicates++
		logger.Info("event already exists at this time",
			logging.Status(logging.StatusSkipped))
		return
	}

	if s.opts.DryRun {
		res.Created++
		logger.Info("would create event (dry run)")
		return
	}

	created, err := s.cal.CreateEvent(s.opts.CalendarID, calendar.EventInput{
		Summary:   details.Name,
		Start:     start,
		End:       end,
		TimeZone:  s.opts.Location.String(),
		Attendees: s.opts.Attendees,
	})
	if err != nil {
		res.InsertFailures++
		logger.Warn("skipping message",
			logging.Reason("insert failed"), logging.Err(err))
		return
	}

	res.Created++
	logger.Info("event created",
		logging.Status(logging.StatusSuccess),
		logging.Attendees(s.opts.Attendees),
		slog.String("link", created.HTMLLink))
}

// localize reinterprets a naive wall-clock time as a time in the target
// zone. The parsed value has no zone of its own, so its clock fields are
// carried over unchanged.
func (s *Scheduler) localize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, s.opts.Location)
}
