package cmd

import (
	"fmt"
	"os"

	"github.com/badgeforge/badgeforge/internal/graph"
	"github.com/badgeforge/badgeforge/internal/rules"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <graph.json>",
	Short: "Check a graph for structural defects",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read graph file: %w", err)
	}
	g, err := graph.Decode(data)
	if err != nil {
		return err
	}

	// Full defect list, never just the first problem
	errs := rules.ValidateGraph(&g)
	if len(errs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "graph is valid")
		return nil
	}
	for _, e := range errs {
		fmt.Fprintf(cmd.OutOrStdout(), "defect: %v\n", e)
	}
	return fmt.Errorf("%d defects found", len(errs))
}
