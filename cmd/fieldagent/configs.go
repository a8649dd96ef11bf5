package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fieldagent/fieldagent/internal/configstore"
	"github.com/fieldagent/fieldagent/internal/events"
	"github.com/fieldagent/fieldagent/internal/planner"
)

var configsCmd = &cobra.Command{
	Use:   "configs",
	Short: "Manage stored plan configurations",
}

var configsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored configurations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := configs.List()
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(entries)
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tOPERATIONS\tSTORED")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%d\t%s\n", e.Name, e.Operations, e.StoredAt.Format("2006-01-02 15:04:05"))
		}
		w.Flush()
		fmt.Printf("\n%d stored configs\n", len(entries))
		return nil
	},
}

var configsSaveCmd = &cobra.Command{
	Use:   "save <name> <plan-file>",
	Short: "Store a plan file under a name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		plan, err := planner.ParsePlan(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", args[1], err)
		}
		file, err := configs.Save(args[0], plan)
		if err != nil {
			return err
		}
		if err := publisher.Publish(cmd.Context(), events.TopicConfigStored, events.ConfigStored{Name: args[0]}); err != nil {
			logger.Warn("publish config stored event failed", "err", err)
		}
		fmt.Printf("Stored as %s\n", file)
		return nil
	},
}

var configsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a stored configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, file, err := configs.Get(args[0])
		if err != nil {
			return err
		}
		if plan == nil {
			return fmt.Errorf("stored config %q not found", args[0])
		}
		if !jsonOutput {
			fmt.Fprintf(os.Stderr, "# %s\n", file)
		}
		printJSON(plan)
		return nil
	},
}

var configsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configs.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %q\n", args[0])
		return nil
	},
}

var configsPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List built-in presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := configstore.Presets()
		if jsonOutput {
			printJSON(names)
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	configsCmd.AddCommand(configsListCmd)
	configsCmd.AddCommand(configsSaveCmd)
	configsCmd.AddCommand(configsShowCmd)
	configsCmd.AddCommand(configsDeleteCmd)
	configsCmd.AddCommand(configsPresetsCmd)
}
