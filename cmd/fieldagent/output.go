package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printResults(results []model.OpResult) {
	succeeded := 0
	for _, r := range results {
		marker := ui.RenderSuccess("ok")
		if !r.Success {
			marker = ui.RenderFailure("FAILED")
		} else {
			succeeded++
		}
		fmt.Printf("%2d. [%s] %s %s: %s\n",
			r.Index+1, marker, r.Operation.Type, r.Operation.Target, r.Message)
		if r.Blocks != nil {
			for _, f := range r.Blocks.Fields {
				fmt.Printf("      %s\n", ui.RenderMuted("field "+f.Handle))
			}
			for _, et := range r.Blocks.EntryTypes {
				fmt.Printf("      %s\n", ui.RenderMuted("entry type "+et.Handle))
			}
		}
	}
	fmt.Printf("\n%d/%d operations succeeded\n", succeeded, len(results))
}

func printRecordTable(recs []*model.OperationRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTYPE\tCREATED\tFAILED\tWHEN\tSOURCE")
	for _, r := range recs {
		source := r.Source
		if len(source) > 40 {
			source = source[:37] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID,
			string(r.Status),
			r.Type,
			r.TotalCreated(),
			r.TotalFailed(),
			r.Time().Format("2006-01-02 15:04:05"),
			source,
		)
	}
	w.Flush()
	fmt.Printf("\n%d records\n", len(recs))
}

func printRecordDetail(r *model.OperationRecord) {
	fmt.Printf("ID:          %s\n", r.ID)
	fmt.Printf("Status:      %s\n", r.Status)
	fmt.Printf("Type:        %s\n", r.Type)
	fmt.Printf("Source:      %s\n", r.Source)
	fmt.Printf("When:        %s\n", r.Time().Format(time.RFC3339))
	if r.Description != "" {
		fmt.Printf("Description: %s\n", r.Description)
	}
	printRefs("Created fields", r.CreatedFields)
	printRefs("Created entry types", r.CreatedEntryTypes)
	printRefs("Created sections", r.CreatedSections)
	printRefs("Created category groups", r.CreatedCategoryGroups)
	printRefs("Created tag groups", r.CreatedTagGroups)
	printRefs("Failed fields", r.FailedFields)
	printRefs("Failed entry types", r.FailedEntryTypes)
	printRefs("Failed sections", r.FailedSections)
	printRefs("Failed category groups", r.FailedCategoryGroups)
	printRefs("Failed tag groups", r.FailedTagGroups)
}

func printRefs(label string, refs []model.ArtifactRef) {
	if len(refs) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for _, ref := range refs {
		if ref.Name != "" && ref.Name != ref.Handle {
			fmt.Printf("  - %s (%s)\n", ref.Handle, ref.Name)
		} else {
			fmt.Printf("  - %s\n", ref.Handle)
		}
	}
}
