package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldagent/fieldagent/internal/configstore"
	"github.com/fieldagent/fieldagent/internal/events"
	"github.com/fieldagent/fieldagent/internal/ledger"
	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/planner"
)

var applyCmd = &cobra.Command{
	Use:   "apply <plan-file | stored-config | preset>",
	Short: "Execute an operations plan against the schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, source, recType, err := loadPlan(args[0])
		if err != nil {
			return err
		}
		return runPlan(cmd.Context(), plan, recType, source)
	},
}

// loadPlan resolves a plan argument: a JSON file on disk first, then a
// stored config by name, then a built-in preset.
func loadPlan(arg string) (*model.PlanDocument, string, string, error) {
	if data, err := os.ReadFile(arg); err == nil {
		plan, err := planner.ParsePlan(data)
		if err != nil {
			return nil, "", "", fmt.Errorf("parse %s: %w", arg, err)
		}
		return plan, arg, "config", nil
	}

	if plan, _, err := configs.Get(arg); err == nil && plan != nil {
		return plan, arg, "config", nil
	}

	plan, err := configstore.Preset(arg)
	if err != nil {
		return nil, "", "", fmt.Errorf("%q is not a plan file, stored config, or preset (presets: %s)",
			arg, strings.Join(configstore.Presets(), ", "))
	}
	return plan, arg, "preset", nil
}

// runPlan executes a plan, persists the operation record, and publishes the
// applied event. Partial failure is reported in the results, not as an error.
func runPlan(ctx context.Context, plan *model.PlanDocument, recType, source string) error {
	results := exec.Execute(ctx, plan)

	record, err := ledger.BuildRecord(recType, source, plan.Description, time.Now(), results)
	if err != nil {
		return fmt.Errorf("build operation record: %w", err)
	}
	if err := records.Save(record); err != nil {
		return fmt.Errorf("save operation record: %w", err)
	}

	if err := publisher.Publish(ctx, events.TopicPlanApplied, events.PlanApplied{
		RecordID:   record.ID,
		Source:     source,
		Operations: len(results),
		Created:    record.TotalCreated(),
		Failed:     record.TotalFailed(),
	}); err != nil {
		logger.Warn("publish plan applied event failed", "err", err)
	}

	if jsonOutput {
		printJSON(struct {
			Record  *model.OperationRecord `json:"record"`
			Results []model.OpResult       `json:"results"`
		}{record, results})
		return nil
	}

	printResults(results)
	fmt.Printf("Recorded as %s\n", record.ID)
	return nil
}
