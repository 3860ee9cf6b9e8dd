package cmd

import (
	"fmt"
	"os"

	"github.com/badgeforge/badgeforge/internal/graph"
	"github.com/badgeforge/badgeforge/internal/rules"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile <graph.json>",
	Short: "Compile an editor graph into a rule definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

var decompileCmd = &cobra.Command{
	Use:   "decompile <rule.json>",
	Short: "Reconstruct an editable graph from a rule definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(decompileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read graph file: %w", err)
	}
	g, err := graph.Decode(data)
	if err != nil {
		return err
	}

	rule, err := rules.Compile(&g)
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}
	out, err := rules.Serialize(rule)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runDecompile(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read rule file: %w", err)
	}
	rule, err := rules.Deserialize(data)
	if err != nil {
		return fmt.Errorf("failed to load rule: %w", err)
	}

	g, err := rules.Decompile(rule)
	if err != nil {
		return fmt.Errorf("decompilation failed: %w", err)
	}
	out, err := graph.Encode(&g)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
