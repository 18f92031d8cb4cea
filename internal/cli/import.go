package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomato-clock/tomato/internal/daemon"
)

func init() {
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import gamification data from a JSON export",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	result := d.Gamification.Import(string(data))
	if !result.Success {
		return fmt.Errorf("import failed: %s", result.Error)
	}

	rec, err := d.Gamification.Data()
	if err != nil {
		return err
	}
	fmt.Printf("Imported: %d XP, level %d, %d badges\n",
		rec.XP, rec.Level, len(rec.EarnedBadges))
	return nil
}
