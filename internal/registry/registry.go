package registry

import (
	"fmt"
	"strings"
)

// Registry is the immutable kind table produced by Builder.Build. Lookups
// are exact and case-sensitive.
type Registry struct {
	defs   map[string]*Definition // canonical kind -> definition
	byName map[string]*Definition // kind and aliases -> definition
	kinds  []string               // canonical kinds, sorted
	stats  Stats
}

// Stats summarizes how the registry was assembled.
type Stats struct {
	Total      int // registered kinds
	Auto       int // surviving auto-discovered definitions
	Manual     int // manual definitions
	Overridden int // auto definitions replaced by manual ones
	Skipped    int // duplicate registrations dropped
}

// Resolve looks up a definition by kind or alias.
func (r *Registry) Resolve(kind string) (*Definition, bool) {
	def, ok := r.byName[kind]
	return def, ok
}

// Kinds returns the canonical kind identifiers in sorted order.
func (r *Registry) Kinds() []string {
	out := make([]string, len(r.kinds))
	copy(out, r.kinds)
	return out
}

// Definitions returns every definition, sorted by canonical kind.
func (r *Registry) Definitions() []*Definition {
	out := make([]*Definition, 0, len(r.kinds))
	for _, kind := range r.kinds {
		out = append(out, r.defs[kind])
	}
	return out
}

// Stats returns assembly statistics.
func (r *Registry) Stats() Stats {
	return r.stats
}

// Docs renders a markdown reference of every registered kind: identifier,
// aliases, engine class, summary, and documented settings. The planner
// embeds it in its prompt and the CLI prints it for authors.
func (r *Registry) Docs() string {
	var sb strings.Builder
	sb.WriteString("# Field Kinds\n")
	for _, def := range r.Definitions() {
		sb.WriteString(fmt.Sprintf("\n## %s\n", def.Kind))
		if def.DisplayName != "" {
			sb.WriteString(fmt.Sprintf("%s", def.DisplayName))
			if len(def.Aliases) > 0 {
				sb.WriteString(fmt.Sprintf(" (aliases: %s)", strings.Join(def.Aliases, ", ")))
			}
			sb.WriteString("\n")
		}
		if def.Summary != "" {
			sb.WriteString(def.Summary + "\n")
		}
		if len(def.Settings) > 0 {
			sb.WriteString("\nSettings:\n")
			for _, s := range def.Settings {
				line := fmt.Sprintf("- `%s`", s.Name)
				if s.Type != "" {
					line += fmt.Sprintf(" (%s)", s.Type)
				}
				if s.Description != "" {
					line += ": " + s.Description
				}
				sb.WriteString(line + "\n")
			}
		}
	}
	return sb.String()
}

// PlanSchema returns a JSON-schema style description of the accepted field
// configs, keyed by kind. The planner sends it to the model so generated
// plans use real kinds and settings keys.
func (r *Registry) PlanSchema() map[string]any {
	kinds := make(map[string]any, len(r.kinds))
	for _, def := range r.Definitions() {
		props := map[string]any{
			"name":       map[string]any{"type": "string"},
			"handle":     map[string]any{"type": "string"},
			"field_type": map[string]any{"const": def.Kind},
		}
		for _, s := range def.Settings {
			entry := map[string]any{}
			if s.Type != "" && s.Type != "any" {
				entry["type"] = s.Type
			}
			if s.Description != "" {
				entry["description"] = s.Description
			}
			props[s.Name] = entry
		}
		kinds[def.Kind] = map[string]any{
			"type":       "object",
			"required":   []string{"name", "handle", "field_type"},
			"properties": props,
		}
	}
	return map[string]any{"kinds": kinds}
}
