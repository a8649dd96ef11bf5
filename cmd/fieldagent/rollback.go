package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldagent/fieldagent/internal/events"
	"github.com/fieldagent/fieldagent/internal/ledger"
	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/ui"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback <record-id>",
	Short: "Delete the artifacts a recorded batch created",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rb := ledger.NewRollbacker(store, records, logger)
		result, err := rb.Rollback(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		deleted := make([]model.ArtifactRef, 0, len(result.Deleted))
		for _, item := range result.Deleted {
			deleted = append(deleted, model.ArtifactRef{Type: item.Type, Handle: item.Handle})
		}
		if err := publisher.Publish(cmd.Context(), events.TopicRolledBack, events.RolledBack{
			RecordID:  result.RecordID,
			Deleted:   deleted,
			Protected: len(result.Protected),
			Failed:    len(result.Failed),
		}); err != nil {
			logger.Warn("publish rollback event failed", "err", err)
		}

		if jsonOutput {
			printJSON(result)
			return nil
		}

		printRollbackItems(ui.RenderSuccess("deleted"), result.Deleted)
		printRollbackItems(ui.RenderWarn("protected"), result.Protected)
		printRollbackItems(ui.RenderMuted("missing"), result.Missing)
		printRollbackItems(ui.RenderFailure("failed"), result.Failed)

		if result.StatusChanged {
			fmt.Printf("Record %s marked rolled_back\n", result.RecordID)
		} else {
			fmt.Printf("Record %s remains active\n", result.RecordID)
		}
		return nil
	},
}

func printRollbackItems(label string, items []ledger.RollbackItem) {
	for _, item := range items {
		line := fmt.Sprintf("  [%s] %s %s", label, item.Type, item.Handle)
		if item.Reason != "" {
			line += " (" + item.Reason + ")"
		}
		fmt.Println(line)
	}
}
