package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/fieldagent/fieldagent/internal/events"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream schema change events from NATS",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.NATSURL == "" {
			return fmt.Errorf("watch requires FIELDAGENT_NATS_URL (or nats_url in the settings file)")
		}

		sub, err := events.NewNATSSubscriber(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("connecting to NATS: %w", err)
		}
		defer sub.Close()

		ch, cancel, err := sub.Subscribe("fieldagent.>")
		if err != nil {
			return fmt.Errorf("subscribing to events: %w", err)
		}
		defer cancel()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		fmt.Fprintln(os.Stderr, "Watching for schema changes (ctrl-c to stop)")
		for {
			select {
			case <-ctx.Done():
				return nil
			case data, ok := <-ch:
				if !ok {
					return nil
				}
				if jsonOutput {
					fmt.Println(string(data))
					continue
				}
				printEvent(data)
			}
		}
	},
}

// printEvent renders an event payload as one human line, falling back to
// the raw JSON for unrecognized shapes.
func printEvent(data []byte) {
	var applied events.PlanApplied
	if err := json.Unmarshal(data, &applied); err == nil && applied.RecordID != "" && applied.Operations > 0 {
		fmt.Printf("plan applied: %s (%d ops, %d created, %d failed)\n",
			applied.RecordID, applied.Operations, applied.Created, applied.Failed)
		return
	}
	var rolled events.RolledBack
	if err := json.Unmarshal(data, &rolled); err == nil && rolled.RecordID != "" && len(rolled.Deleted) > 0 {
		fmt.Printf("rolled back: %s (%d deleted, %d protected, %d failed)\n",
			rolled.RecordID, len(rolled.Deleted), rolled.Protected, rolled.Failed)
		return
	}
	fmt.Println(string(data))
}
