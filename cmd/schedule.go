package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jswenson/regcal/internal/calendar"
	"github.com/jswenson/regcal/internal/config"
	"github.com/jswenson/regcal/internal/gmail"
	"github.com/jswenson/regcal/internal/google"
	"github.com/jswenson/regcal/internal/logging"
	"github.com/jswenson/regcal/internal/scheduler"
)

func newScheduleCmd() *cobra.Command {
	var (
		email1      string
		email2      string
		query       string
		maxMessages int64
		calendarID  string
		timezone    string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Create calendar events from matching confirmation emails",
		Long: `Fetch Gmail messages matching the search query, parse the event name and
time out of each subject line, and insert a one-hour calendar event with
both attendees invited, skipping events that already exist at that time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Flags override config file values
			if !cmd.Flags().Changed("query") && cfg.Query != "" {
				query = cfg.Query
			}
			if !cmd.Flags().Changed("max-messages") {
				maxMessages = cfg.MaxMessages
			}
			if !cmd.Flags().Changed("calendar") {
				calendarID = cfg.Calendar
			}
			if !cmd.Flags().Changed("timezone") {
				timezone = cfg.Timezone
			}

			attendees := cfg.Attendees
			if email1 != "" || email2 != "" {
				attendees = nil
				if email1 != "" {
					attendees = append(attendees, email1)
				}
				if email2 != "" {
					attendees = append(attendees, email2)
				}
			}

			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return fmt.Errorf("failed to load timezone %s: %w", timezone, err)
			}

			provider := google.NewFileTokenProvider()
			if !provider.HasToken() {
				return fmt.Errorf("no cached Google OAuth token found; run 'regcal auth' first")
			}

			ctx := context.Background()
			mailClient, err := gmail.NewClientWithProvider(ctx, provider)
			if err != nil {
				return fmt.Errorf("failed to create Gmail client: %w", err)
			}
			calClient, err := calendar.NewClientWithProvider(ctx, provider)
			if err != nil {
				return fmt.Errorf("failed to create Calendar client: %w", err)
			}

			sched := scheduler.New(mailClient, calClient, scheduler.Options{
				Query:         query,
				MaxMessages:   maxMessages,
				CalendarID:    calendarID,
				Location:      loc,
				EventDuration: time.Hour,
				Attendees:     attendees,
				DryRun:        dryRun,
			}, logging.WithService(slog.Default(), "scheduler"))

			res, err := sched.Run()
			if err != nil {
				return err
			}

			printSummary(res, dryRun)
			return nil
		},
	}

	cmd.Flags().StringVar(&email1, "email1", "", "First email address to invite to the event")
	cmd.Flags().StringVar(&email2, "email2", "", "Second email address to invite to the event")
	cmd.Flags().StringVar(&query, "query", config.DefaultQuery, "Gmail search query to find confirmation emails")
	cmd.Flags().Int64Var(&maxMessages, "max-messages", 6, "Maximum number of email messages to process")
	cmd.Flags().StringVar(&calendarID, "calendar", "primary", "Target calendar ID")
	cmd.Flags().StringVar(&timezone, "timezone", "America/Chicago", "IANA timezone for created events")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Walk the pipeline without inserting events")

	return cmd
}

func printSummary(res scheduler.Result, dryRun bool) {
	verb := "created"
	if dryRun {
		verb = "would be created"
	}

	color.Green("%d of %d events %s.", res.Created, res.Considered, verb)

	if skipped := res.Skipped(); skipped > 0 {
		color.Yellow("%d skipped: %d duplicate, %d bad subject, %d unparsed time, %d fetch, %d insert.",
			skipped, res.Duplicates, res.FormatMismatches, res.ParseFailures,
			res.FetchFailures, res.InsertFailures)
	}
}
