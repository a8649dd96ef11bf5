package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect the field kind registry",
}

var registryKindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List registered field kinds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			printJSON(reg.Kinds())
			return nil
		}
		for _, kind := range reg.Kinds() {
			fmt.Println(kind)
		}
		return nil
	},
}

var registryDocsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Print the field kind documentation given to the planner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print(reg.Docs())
		return nil
	},
}

var registrySchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON plan schema for all field kinds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printJSON(reg.PlanSchema())
		return nil
	},
}

func init() {
	registryCmd.AddCommand(registryKindsCmd)
	registryCmd.AddCommand(registryDocsCmd)
	registryCmd.AddCommand(registrySchemaCmd)
}
