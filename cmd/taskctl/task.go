package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ashureev/taskpilot/internal/domain"
	"github.com/ashureev/taskpilot/internal/tasks"
	"github.com/spf13/cobra"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Inspect the current task",
	}

	var asJSON bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := tasks.Load()
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(task)
			}
			printTask(cmd.OutOrStdout(), task)
			return nil
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "print the task as JSON")

	cmd.AddCommand(show)
	return cmd
}

func printTask(w io.Writer, t *domain.TaskRecord) {
	fmt.Fprintln(w, t.Title)
	fmt.Fprintln(w, strings.Repeat("─", len([]rune(t.Title))))
	fmt.Fprintln(w, t.Description)
	fmt.Fprintf(w, "\nEstimated time: %s\n", t.EstimatedTime)

	fmt.Fprintf(w, "\nImplementation steps (%d):\n", t.StepCount())
	for i, step := range t.Steps {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step)
	}

	fmt.Fprintln(w, "\nSuggested tests:")
	for _, test := range t.SuggestedTests {
		fmt.Fprintf(w, "  %s\n", test)
	}

	fmt.Fprintln(w, "\nAcceptance criteria:")
	for _, c := range t.AcceptanceCriteria {
		fmt.Fprintf(w, "  ✔ %s\n", c)
	}

	fmt.Fprintf(w, "\nImplementation suggestion:\n  %s\n", t.ImplementationSuggestion)
}
