package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [record-id]",
	Short: "List operation records, or show one in full",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			record, err := records.Get(args[0])
			if err != nil {
				return err
			}
			if record == nil {
				return fmt.Errorf("record %q not found", args[0])
			}
			if jsonOutput {
				printJSON(record)
			} else {
				printRecordDetail(record)
			}
			return nil
		}

		limit, _ := cmd.Flags().GetInt("limit")
		recs, err := records.List()
		if err != nil {
			return err
		}
		if limit > 0 && len(recs) > limit {
			recs = recs[:limit]
		}
		if jsonOutput {
			printJSON(recs)
		} else {
			printRecordTable(recs)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum records to list (0 = all)")
}
