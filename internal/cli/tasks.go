package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomato-clock/tomato/internal/daemon"
)

func init() {
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksDoneCmd)
	tasksCmd.AddCommand(tasksRmCmd)
	rootCmd.AddCommand(tasksCmd)
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage the task list",
	RunE:  runTasksList,
}

func runTasksList(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	list, err := d.Tasks.All()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No tasks yet. Add one with: tomato tasks add <name>")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTOMATOES\tMINUTES\tDONE")
	for _, t := range list {
		done := ""
		if t.Completed {
			done = "✓"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.0f\t%s\n",
			shortID(t.ID), t.Name, t.TomatoCount, t.TotalMinutes, done)
	}
	return w.Flush()
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		task, err := d.Tasks.Add(strings.Join(args, " "), "")
		if err != nil {
			return err
		}
		fmt.Printf("Added %s (%s)\n", task.Name, shortID(task.ID))
		return nil
	},
}

var tasksDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Toggle a task's completed state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		id, err := resolveTaskID(d, args[0])
		if err != nil {
			return err
		}
		task, err := d.Tasks.ToggleComplete(id)
		if err != nil {
			return err
		}
		state := "open"
		if task.Completed {
			state = "done"
		}
		fmt.Printf("%s is now %s\n", task.Name, state)
		return nil
	},
}

var tasksRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		id, err := resolveTaskID(d, args[0])
		if err != nil {
			return err
		}
		if err := d.Tasks.Delete(id); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	},
}
