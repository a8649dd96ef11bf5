package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fieldagent/fieldagent/internal/discovery"
	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/registry"
)

const promptHeader = `You translate content-modeling requests into a JSON operations plan.

Reply with a single JSON object:
{
  "name": "short plan name",
  "description": "one sentence",
  "operations": [ ... ]
}

Each operation has "type" (create, modify, delete), "target" (field,
entryType, section, categoryGroup, tagGroup), and for creates a "create"
payload keyed by the target. Modifies need "targetId" (the handle) and a
"modify" payload with an "actions" list. Never emit delete operations;
removal is handled elsewhere.

Rules:
- Handles are camelCase and must not collide with existing ones.
- Field configs use "field_type" with one of the registered kinds below.
- Create fields before the entry types that use them, and entry types
  before the sections that use them, within the same plan.
- Only reference existing artifacts listed in the current schema, or ones
  created earlier in the same plan.`

// buildSystemPrompt assembles the system instruction: output contract,
// registered kind reference, and the current schema snapshot.
func buildSystemPrompt(reg *registry.Registry, project *discovery.ProjectContext) string {
	var sb strings.Builder
	sb.WriteString(promptHeader)
	sb.WriteString("\n\n")
	sb.WriteString(reg.Docs())
	sb.WriteString("\n# Current schema\n\n")
	sb.WriteString(project.Render())
	return sb.String()
}

// responseSchema builds the JSON schema the model's reply must satisfy:
// the plan document envelope, with the registry's per-kind field config
// schemas wired into the create payload so generated plans can only use
// registered kinds and their settings keys.
func responseSchema(reg *registry.Registry) map[string]any {
	kindSchemas, _ := reg.PlanSchema()["kinds"].(map[string]any)
	kinds := make([]string, 0, len(kindSchemas))
	for kind := range kindSchemas {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	fieldVariants := make([]any, 0, len(kinds))
	for _, kind := range kinds {
		fieldVariants = append(fieldVariants, kindSchemas[kind])
	}

	operation := map[string]any{
		"type":     "object",
		"required": []string{"type", "target"},
		"properties": map[string]any{
			"type":     map[string]any{"enum": []string{"create", "modify", "delete"}},
			"target":   map[string]any{"enum": []string{"field", "entryType", "section", "categoryGroup", "tagGroup"}},
			"targetId": map[string]any{"type": "string"},
			"create": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"field":         map[string]any{"anyOf": fieldVariants},
					"entryType":     map[string]any{"type": "object"},
					"section":       map[string]any{"type": "object"},
					"categoryGroup": map[string]any{"type": "object"},
					"tagGroup":      map[string]any{"type": "object"},
				},
			},
			"modify": map[string]any{
				"type":     "object",
				"required": []string{"actions"},
				"properties": map[string]any{
					"actions": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "object"},
					},
				},
			},
		},
	}

	return map[string]any{
		"type":     "object",
		"required": []string{"operations"},
		"properties": map[string]any{
			"name":        map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"operations":  map[string]any{"type": "array", "items": operation},
		},
	}
}

// ParsePlan decodes a model reply into a validated plan. Markdown code
// fences around the JSON are tolerated, unknown JSON keys are not.
func ParsePlan(raw []byte) (*model.PlanDocument, error) {
	cleaned := stripFences(raw)
	var plan model.PlanDocument
	dec := json.NewDecoder(bytes.NewReader(cleaned))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("plan is not valid JSON: %w", err)
	}
	if len(plan.Operations) == 0 {
		return nil, fmt.Errorf("plan contains no operations")
	}
	if err := model.ValidatePlan(&plan); err != nil {
		return nil, fmt.Errorf("plan failed validation: %w", err)
	}
	return &plan, nil
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(trimmed, []byte("```")) {
		return trimmed
	}
	if idx := bytes.IndexByte(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = bytes.TrimSpace(trimmed)
	trimmed = bytes.TrimSuffix(trimmed, []byte("```"))
	return bytes.TrimSpace(trimmed)
}
