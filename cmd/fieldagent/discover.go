package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldagent/fieldagent/internal/discovery"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Inspect the current schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := discovery.New(store)
		project, err := svc.Project(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(project)
			return nil
		}
		fmt.Print(project.Render())
		return nil
	},
}

var discoverHandleCmd = &cobra.Command{
	Use:   "handle <handle>",
	Short: "Check whether a handle is free to use",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := discovery.New(store)
		avail, err := svc.CheckHandle(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(avail)
			return nil
		}
		switch {
		case avail.Reserved:
			fmt.Printf("%q is reserved and can never be used\n", avail.Handle)
		case !avail.Available:
			fmt.Printf("%q is taken by a %s\n", avail.Handle, avail.TakenBy)
		default:
			fmt.Printf("%q is available\n", avail.Handle)
		}
		return nil
	},
}

var discoverFieldsCmd = &cobra.Command{
	Use:   "fields <entry-type-handle>",
	Short: "List an entry type's fields in layout order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := discovery.New(store)
		fields, err := svc.EntryTypeFields(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(fields)
			return nil
		}
		for _, f := range fields {
			fmt.Printf("%s (%s): %s\n", f.Handle, f.Kind, f.Name)
		}
		if len(fields) == 0 {
			fmt.Println("(no fields)")
		}
		return nil
	},
}

func init() {
	discoverCmd.AddCommand(discoverHandleCmd)
	discoverCmd.AddCommand(discoverFieldsCmd)
}
