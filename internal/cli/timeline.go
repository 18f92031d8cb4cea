package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomato-clock/tomato/internal/app/timeanalysis"
	"github.com/tomato-clock/tomato/internal/daemon"
)

func init() {
	timelineCmd.Flags().BoolVar(&timelineAnalyze, "analyze", false, "Show productivity by time of day")
	rootCmd.AddCommand(timelineCmd)
}

var timelineAnalyze bool

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show completed sessions",
	RunE:  runTimeline,
}

func runTimeline(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	entries, err := d.Timeline.All()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No sessions recorded yet.")
		return nil
	}

	if timelineAnalyze {
		stats := timeanalysis.Analyze(entries)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME OF DAY\tSESSIONS\tMINUTES\tAVG/SESSION")
		for _, row := range timeanalysis.Report(stats) {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\n",
				row.TimeOfDay, row.Count, row.TotalMinutes, row.AvgMinutesPerSession)
		}
		if best := timeanalysis.MostProductive(stats); best != "" {
			fmt.Fprintf(w, "\nMost productive: %s\n", best)
		}
		return w.Flush()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tTYPE\tMINUTES\tNOTE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%.0f\t%s\n",
			e.EffectiveTime().Format("2006-01-02 15:04"),
			e.Type, e.Duration.Minutes(), e.Note)
	}
	return w.Flush()
}
