package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrewbrowne3/caltrack/internal/api"
	"github.com/andrewbrowne3/caltrack/internal/models"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Manage calendar events",
	}

	cmd.AddCommand(
		newEventsListCmd(),
		newEventsAddCmd(),
		newEventsRmCmd(),
	)
	return cmd
}

func newEventsListCmd() *cobra.Command {
	var calendarID int64
	var from string
	var to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			d, cleanup, err := openDeps()
			if err != nil {
				return err
			}
			defer cleanup()
			if err := requireLogin(ctx, d); err != nil {
				return err
			}

			filter := api.EventFilter{CalendarID: calendarID}
			if from != "" {
				filter.Start, err = time.ParseInLocation("2006-01-02", from, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --from date %q", from)
				}
			}
			if to != "" {
				filter.End, err = time.ParseInLocation("2006-01-02", to, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --to date %q", to)
				}
			}

			events, err := d.client.ListEvents(ctx, filter)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No events.")
				return nil
			}
			for _, e := range events {
				when := e.Start.Local().Format("Mon Jan 2 15:04")
				if e.AllDay {
					when = e.Start.Local().Format("Mon Jan 2") + " (all day)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-4d %s  %s\n", e.ID, when, e.Title)
			}
			return nil
		},
	}

	cmd.Flags().Int64VarP(&calendarID, "calendar", "c", 0, "Filter by calendar id")
	cmd.Flags().StringVar(&from, "from", "", "Start of range (2006-01-02)")
	cmd.Flags().StringVar(&to, "to", "", "End of range (2006-01-02)")
	return cmd
}

func newEventsAddCmd() *cobra.Command {
	var calendarID int64
	var start string
	var duration time.Duration
	var allDay bool

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create an event",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if calendarID == 0 {
				return errors.New("--calendar is required")
			}
			startAt, err := time.ParseInLocation("2006-01-02 15:04", start, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --start %q (want 2006-01-02 15:04)", start)
			}

			ctx := context.Background()
			d, cleanup, err := openDeps()
			if err != nil {
				return err
			}
			defer cleanup()
			if err := requireLogin(ctx, d); err != nil {
				return err
			}

			e, err := d.client.CreateEvent(ctx, api.EventInput{
				CalendarID: calendarID,
				Title:      args[0],
				Start:      startAt,
				End:        startAt.Add(duration),
				AllDay:     allDay,
				Status:     models.EventStatusConfirmed,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created event %d: %s\n", e.ID, e.Title)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&calendarID, "calendar", "c", 0, "Calendar id (required)")
	cmd.Flags().StringVarP(&start, "start", "s", "", "Start time (2006-01-02 15:04)")
	cmd.Flags().DurationVar(&duration, "for", time.Hour, "Event duration")
	cmd.Flags().BoolVar(&allDay, "all-day", false, "All-day event")
	return cmd
}

func newEventsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid event id %q", args[0])
			}

			ctx := context.Background()
			d, cleanup, err := openDeps()
			if err != nil {
				return err
			}
			defer cleanup()
			if err := requireLogin(ctx, d); err != nil {
				return err
			}

			if err := d.client.DeleteEvent(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted event %d\n", id)
			return nil
		},
	}
}
