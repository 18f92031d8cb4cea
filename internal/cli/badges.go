package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomato-clock/tomato/internal/daemon"
)

func init() {
	badgesCmd.Flags().BoolVar(&badgesAll, "all", false, "Include locked badges")
	rootCmd.AddCommand(badgesCmd)
}

var badgesAll bool

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List earned badges",
	RunE:  runBadges,
}

func runBadges(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	statuses, err := d.Gamification.AllBadgesWithStatus()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BADGE\tTIER\tSTATUS\tPROGRESS")
	shown := 0
	for _, st := range statuses {
		if !st.Earned && !badgesAll {
			continue
		}
		status := "locked"
		if st.Earned {
			status = "earned"
		}
		fmt.Fprintf(w, "%s %s\t%s\t%s\t%d%%\n",
			st.Icon, st.Name, st.Tier, status, st.Progress.Percentage)
		shown++
	}
	if shown == 0 {
		fmt.Println("No badges earned yet. Complete a tomato to get started!")
		return nil
	}
	return w.Flush()
}
