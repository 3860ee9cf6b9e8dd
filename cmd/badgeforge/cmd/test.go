package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/badgeforge/badgeforge/internal/bridge"
	"github.com/badgeforge/badgeforge/internal/core/config"
	"github.com/badgeforge/badgeforge/internal/graph"
	"github.com/badgeforge/badgeforge/internal/rules"
	"github.com/spf13/cobra"
)

var testContextFile string

var testCmd = &cobra.Command{
	Use:   "test <graph.json>",
	Short: "Compile a graph and evaluate it against a test context",
	Args:  cobra.ExactArgs(1),
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
	testCmd.Flags().StringVar(&testContextFile, "context", "", "test context JSON file")
}

func runTest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

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

	tc := bridge.TestContext{Timestamp: time.Now().UTC()}
	if testContextFile != "" {
		raw, err := os.ReadFile(testContextFile)
		if err != nil {
			return fmt.Errorf("failed to read test context: %w", err)
		}
		if err := json.Unmarshal(raw, &tc); err != nil {
			return fmt.Errorf("failed to parse test context: %w", err)
		}
	}

	client := bridge.NewClient(cfg.EngineURL, cfg.RequestTimeout)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	result, err := client.Evaluate(ctx, rule, tc)
	if err != nil {
		return err
	}
	if result.Error != "" {
		return fmt.Errorf("evaluation engine error: %s", result.Error)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
