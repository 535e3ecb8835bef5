package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/andrewbrowne3/caltrack/internal/api"
	"github.com/andrewbrowne3/caltrack/internal/models"
)

func newGoalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Manage goals",
	}

	cmd.AddCommand(
		newGoalsListCmd(),
		newGoalsAddCmd(),
		newGoalsDoneCmd(),
		newGoalsRmCmd(),
	)
	return cmd
}

func newGoalsListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List goals",
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

			goals, err := d.client.ListGoals(ctx, api.GoalFilter{Status: status})
			if err != nil {
				return err
			}
			if len(goals) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No goals.")
				return nil
			}
			for _, g := range goals {
				mark := " "
				if g.IsCompleted {
					mark = "x"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %-4d %s (%s, %.0f%%)\n",
					mark, g.ID, g.Title, g.Status, g.ProgressPercentage)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (active|completed|paused|cancelled)")
	return cmd
}

func newGoalsAddCmd() *cobra.Command {
	var description string
	var priority string
	var frequency string
	var target float64

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a goal",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
			}
			return nil
		},
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

			g, err := d.client.CreateGoal(ctx, api.GoalInput{
				Title:       args[0],
				Description: description,
				Priority:    priority,
				Frequency:   frequency,
				TargetValue: target,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created goal %d: %s\n", g.ID, g.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Goal description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority (low|medium|high)")
	cmd.Flags().StringVarP(&frequency, "frequency", "f", "", "Frequency (daily|weekly|monthly)")
	cmd.Flags().Float64VarP(&target, "target", "t", 0, "Target value")
	return cmd
}

func newGoalsDoneCmd() *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a goal completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid goal id %q", args[0])
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

			g, err := d.client.SetGoalCompletion(ctx, id, !undo)
			if err != nil {
				return err
			}
			if g.Status == models.GoalStatusCompleted {
				fmt.Fprintf(cmd.OutOrStdout(), "Completed: %s\n", g.Title)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Reopened: %s\n", g.Title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Reopen the goal instead")
	return cmd
}

func newGoalsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid goal id %q", args[0])
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

			if err := d.client.DeleteGoal(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted goal %d\n", id)
			return nil
		},
	}
}
