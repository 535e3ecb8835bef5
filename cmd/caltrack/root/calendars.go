package root

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCalendarsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendars",
		Short: "Manage calendars",
	}

	cmd.AddCommand(
		newCalendarsListCmd(),
		newCalendarsVisibilityCmd("show", true),
		newCalendarsVisibilityCmd("hide", false),
	)
	return cmd
}

func newCalendarsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List calendars",
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

			cals, err := d.client.ListCalendars(ctx)
			if err != nil {
				return err
			}
			if len(cals) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No calendars.")
				return nil
			}
			for _, c := range cals {
				mark := " "
				if c.Visible {
					mark = "v"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %-4d %s\n", mark, c.ID, c.Name)
			}
			return nil
		},
	}
}

func newCalendarsVisibilityCmd(use string, visible bool) *cobra.Command {
	short := "Hide a calendar"
	if visible {
		short = "Show a calendar"
	}

	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid calendar id %q", args[0])
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

			c, err := d.client.SetCalendarVisibility(ctx, id, visible)
			if err != nil {
				return err
			}
			state := "hidden"
			if c.Visible {
				state = "visible"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Calendar %q is now %s\n", c.Name, state)
			return nil
		},
	}
}
