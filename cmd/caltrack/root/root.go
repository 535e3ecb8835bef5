package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "caltrack",
	Short:         "Goal and calendar tracker",
	Long:          "Caltrack is a terminal client for tracking goals and calendar events against a caltrack server.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bare invocation opens the TUI
		return runTUI()
	},
}

func Execute(version, commit, date string) {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} {{.Version}} (commit: %s, built: %s)\n", commit, date))

	rootCmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newGoalsCmd(),
		newEventsCmd(),
		newCalendarsCmd(),
		newTUICmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
