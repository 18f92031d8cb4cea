package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomato-clock/tomato/internal/daemon"
)

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Skip confirmation")
	resetCmd.Flags().BoolVar(&resetTimeline, "timeline", false, "Also clear the session timeline")
	rootCmd.AddCommand(resetCmd)
}

var (
	resetYes      bool
	resetTimeline bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset gamification progress",
	RunE:  runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		fmt.Print("This erases all XP, badges and streaks. Continue? [y/N] ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.ToLower(strings.TrimSpace(line)) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Gamification.Reset(); err != nil {
		return err
	}
	if resetTimeline {
		if err := d.Timeline.Reset(); err != nil {
			return err
		}
	}

	fmt.Println("Progress reset.")
	return nil
}
