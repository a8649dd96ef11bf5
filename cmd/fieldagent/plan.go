package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldagent/fieldagent/internal/discovery"
	"github.com/fieldagent/fieldagent/internal/events"
	"github.com/fieldagent/fieldagent/internal/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan <prompt...>",
	Short: "Generate an operations plan from a natural language prompt",
	Long: `plan sends the prompt to the configured LLM together with the field kind
documentation and the current schema, and prints the resulting operations
plan. Use --apply to execute it immediately, or --save to store it for later.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.Join(args, " ")
		applyNow, _ := cmd.Flags().GetBool("apply")
		saveName, _ := cmd.Flags().GetString("save")

		gemini, err := planner.NewGemini(cmd.Context(), cfg.GeminiAPIKey, cfg.PlannerModel,
			reg, discovery.New(store), logger)
		if err != nil {
			return err
		}

		plan, err := gemini.Plan(cmd.Context(), prompt)
		if err != nil {
			return fmt.Errorf("generate plan: %w", err)
		}

		if saveName != "" {
			if _, err := configs.Save(saveName, plan); err != nil {
				return fmt.Errorf("save plan: %w", err)
			}
			if err := publisher.Publish(cmd.Context(), events.TopicConfigStored, events.ConfigStored{Name: saveName}); err != nil {
				logger.Warn("publish config stored event failed", "err", err)
			}
			fmt.Printf("Saved plan as %q\n", saveName)
		}

		if applyNow {
			return runPlan(cmd.Context(), plan, "prompt", prompt)
		}

		printJSON(plan)
		return nil
	},
}

func init() {
	planCmd.Flags().Bool("apply", false, "execute the generated plan immediately")
	planCmd.Flags().String("save", "", "store the generated plan under this name")
}
