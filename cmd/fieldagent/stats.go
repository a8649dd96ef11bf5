package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldagent/fieldagent/internal/registry"
)

type ledgerStats struct {
	Records    int `json:"records"`
	Active     int `json:"active"`
	RolledBack int `json:"rolledBack"`
	Created    int `json:"artifactsCreated"`
	Failed     int `json:"artifactsFailed"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show registry and ledger statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := records.List()
		if err != nil {
			return err
		}

		var ls ledgerStats
		ls.Records = len(recs)
		for _, r := range recs {
			if r.RolledBack() {
				ls.RolledBack++
			} else {
				ls.Active++
			}
			ls.Created += r.TotalCreated()
			ls.Failed += r.TotalFailed()
		}

		if jsonOutput {
			printJSON(struct {
				Registry registry.Stats `json:"registry"`
				Ledger   ledgerStats    `json:"ledger"`
			}{reg.Stats(), ls})
			return nil
		}

		rs := reg.Stats()
		fmt.Println("Registry:")
		fmt.Printf("  kinds:       %d\n", rs.Total)
		fmt.Printf("  auto:        %d\n", rs.Auto)
		fmt.Printf("  manual:      %d\n", rs.Manual)
		fmt.Printf("  overridden:  %d\n", rs.Overridden)
		fmt.Printf("  skipped:     %d\n", rs.Skipped)
		fmt.Println("Ledger:")
		fmt.Printf("  records:     %d\n", ls.Records)
		fmt.Printf("  active:      %d\n", ls.Active)
		fmt.Printf("  rolled back: %d\n", ls.RolledBack)
		fmt.Printf("  created:     %d\n", ls.Created)
		fmt.Printf("  failed:      %d\n", ls.Failed)
		return nil
	},
}
