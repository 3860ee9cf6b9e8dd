package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/badgeforge/badgeforge/internal/graph"
	"github.com/badgeforge/badgeforge/internal/rules"
	"github.com/badgeforge/badgeforge/internal/store"
	"github.com/badgeforge/badgeforge/internal/types"
	"github.com/spf13/cobra"
)

var (
	publishCode      string
	publishName      string
	publishEventType string
)

var publishCmd = &cobra.Command{
	Use:   "publish <graph.json>",
	Short: "Compile a graph and persist the rule definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().StringVar(&publishCode, "code", "", "stable rule code")
	publishCmd.Flags().StringVar(&publishName, "name", "", "rule display name")
	publishCmd.Flags().StringVar(&publishEventType, "event-type", "", "trigger event type")
}

func runPublish(cmd *cobra.Command, args []string) error {
	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read graph file: %w", err)
	}
	g, err := graph.Decode(data)
	if err != nil {
		return err
	}

	meta := rules.Metadata{Code: publishCode, Name: publishName, EventType: publishEventType}
	if errs := rules.ValidateForPublish(&g, meta); len(errs) > 0 {
		return errors.Join(errs...)
	}

	rule, err := rules.Compile(&g)
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}
	rule.Code = meta.Code
	rule.Name = meta.Name
	rule.EventType = meta.EventType

	serialized, err := rules.Serialize(rule)
	if err != nil {
		return err
	}

	db, err := store.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	rulestore, err := store.NewStore(db)
	if err != nil {
		return err
	}

	id := types.NewRuleID()
	if err := rulestore.Put(id, meta, serialized); err != nil {
		return err
	}

	log.Printf("Published rule %s (%s)", id, meta.Code)
	fmt.Fprintln(cmd.OutOrStdout(), string(id))
	return nil
}
