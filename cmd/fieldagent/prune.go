package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldagent/fieldagent/internal/events"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove rolled-back operation records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, _ := cmd.Flags().GetInt("keep")
		configAge, _ := cmd.Flags().GetDuration("configs-older-than")

		// Collect the IDs first so the pruned event can name them.
		recs, err := records.List()
		if err != nil {
			return err
		}
		var ids []string
		for _, r := range recs {
			if r.RolledBack() {
				ids = append(ids, r.ID)
			}
		}

		removed, err := records.Prune()
		if err != nil {
			return err
		}

		if keep > 0 {
			cleaned, err := records.Cleanup(keep)
			if err != nil {
				return err
			}
			removed += len(cleaned)
			ids = append(ids, cleaned...)
		}

		var prunedConfigs []string
		if configAge > 0 {
			prunedConfigs, err = configs.PruneOlderThan(configAge)
			if err != nil {
				return err
			}
		}

		if removed > 0 {
			if err := publisher.Publish(cmd.Context(), events.TopicPruned, events.Pruned{
				Removed: removed,
				IDs:     ids,
			}); err != nil {
				logger.Warn("publish pruned event failed", "err", err)
			}
		}

		if jsonOutput {
			printJSON(struct {
				Removed int      `json:"removed"`
				IDs     []string `json:"ids,omitempty"`
				Configs []string `json:"configs,omitempty"`
			}{removed, ids, prunedConfigs})
			return nil
		}
		fmt.Printf("Removed %d records\n", removed)
		if len(prunedConfigs) > 0 {
			fmt.Printf("Removed %d stored configs\n", len(prunedConfigs))
		}
		return nil
	},
}

func init() {
	pruneCmd.Flags().Int("keep", 0, "additionally keep only the newest N records")
	pruneCmd.Flags().Duration("configs-older-than", 0, "also remove stored configs older than this age (e.g. 720h)")
}
