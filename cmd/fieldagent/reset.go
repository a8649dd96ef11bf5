package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every schema artifact and all operation records",
	Long: `reset removes all sections, entry types, fields, category groups, and tag
groups from the schema store, in dependency order, and deletes every
operation record. It refuses to run without --force.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			return fmt.Errorf("reset deletes the entire schema; re-run with --force to confirm")
		}

		deleted, failed := resetSchema(cmd.Context())

		recs, err := records.List()
		if err != nil {
			return err
		}
		removedRecords := 0
		for _, r := range recs {
			if err := records.Delete(r.ID); err != nil {
				logger.Warn("delete record failed", "id", r.ID, "err", err)
				continue
			}
			removedRecords++
		}

		if err := store.RebuildProjectConfig(cmd.Context()); err != nil {
			logger.Warn("rebuild project config failed", "err", err)
		}

		fmt.Printf("Deleted %d artifacts (%d failed), removed %d records\n", deleted, failed, removedRecords)
		return nil
	},
}

// resetSchema deletes artifacts in dependency order so nothing is removed
// while something else still references it.
func resetSchema(ctx context.Context) (deleted, failed int) {
	del := func(kind, handle string, err error) {
		if err != nil {
			logger.Warn("delete failed", "kind", kind, "handle", handle, "err", err)
			failed++
			return
		}
		deleted++
	}

	if sections, err := store.ListSections(ctx); err == nil {
		for _, s := range sections {
			del("section", s.Handle, store.DeleteSection(ctx, s.Handle))
		}
	}
	if entryTypes, err := store.ListEntryTypes(ctx); err == nil {
		for _, et := range entryTypes {
			del("entryType", et.Handle, store.DeleteEntryType(ctx, et.Handle))
		}
	}
	if fields, err := store.ListFields(ctx); err == nil {
		for _, f := range fields {
			del("field", f.Handle, store.DeleteField(ctx, f.Handle))
		}
	}
	if groups, err := store.ListCategoryGroups(ctx); err == nil {
		for _, g := range groups {
			del("categoryGroup", g.Handle, store.DeleteCategoryGroup(ctx, g.Handle))
		}
	}
	if groups, err := store.ListTagGroups(ctx); err == nil {
		for _, g := range groups {
			del("tagGroup", g.Handle, store.DeleteTagGroup(ctx, g.Handle))
		}
	}
	return deleted, failed
}

func init() {
	resetCmd.Flags().Bool("force", false, "confirm deleting everything")
}
