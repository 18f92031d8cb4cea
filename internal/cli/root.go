// Package cli implements the tomato command-line interface using Cobra.
// Each subcommand maps to one engine capability (serve, status, badges, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tomato",
	Short: "tomato — Pomodoro timer with streaks, badges and XP",
	Long: `tomato is a Pomodoro productivity engine.
It tracks completed sessions on a timeline, maintains daily streaks,
awards badges and levels you up as you focus.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
