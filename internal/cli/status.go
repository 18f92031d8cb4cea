package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomato-clock/tomato/internal/app/gamification"
	"github.com/tomato-clock/tomato/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show XP, level and streak at a glance",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	rec, err := d.Gamification.Data()
	if err != nil {
		return err
	}

	level := gamification.LevelInfo(rec.Level)
	progress := gamification.ProgressToNextLevel(rec.XP, rec.Level)

	fmt.Printf("%s Level %d — %s\n", level.Icon, level.Level, level.Name)
	fmt.Printf("XP: %d (%d%% to next level, %d XP to go)\n",
		rec.XP, progress.Percentage, progress.XPNeeded)
	fmt.Printf("Streak: %d days (longest %d)\n",
		rec.Stats.CurrentStreak, rec.Stats.LongestStreak)
	fmt.Printf("Tomatoes: %d  Focus time: %.0f minutes\n",
		rec.Stats.TomatoesCompleted, rec.Stats.TotalMinutes)
	fmt.Printf("Badges: %d of %d\n", len(rec.EarnedBadges), len(gamification.AllBadges()))

	return nil
}
