package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomato-clock/tomato/internal/daemon"
)

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export gamification data as JSON",
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	data, err := d.Gamification.Export()
	if err != nil {
		return err
	}

	if exportOut != "" {
		if err := os.WriteFile(exportOut, []byte(data), 0600); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", exportOut)
		return nil
	}
	fmt.Println(data)
	return nil
}
