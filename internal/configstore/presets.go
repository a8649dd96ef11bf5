package configstore

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fieldagent/fieldagent/internal/model"
)

//go:embed presets/*.json
var presetFS embed.FS

// Presets returns the names of the built-in plans, sorted.
func Presets() []string {
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// Preset loads one built-in plan by name.
func Preset(name string) (*model.PlanDocument, error) {
	data, err := presetFS.ReadFile("presets/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(Presets(), ", "))
	}
	var plan model.PlanDocument
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("decoding preset %q: %w", name, err)
	}
	return &plan, nil
}
