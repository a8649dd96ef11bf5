// Package registry holds the field-kind registry: the mapping from logical
// field kinds ("dropdown", "matrix") to the code that builds, updates, and
// validates fields of that kind. The registry is assembled once at startup
// by a two-pass builder (auto-discovery, then manual definitions) and is
// immutable afterwards.
package registry

import (
	"fmt"

	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/schema"
)

// Factory builds a new field from a normalized config. The config has
// already passed plan validation and kind resolution; the factory owns
// per-kind settings interpretation.
type Factory func(fctx *Context, cfg model.FieldConfig) (*schema.Field, error)

// Updater applies a partial update to an existing field and returns a
// human-readable description of each change applied.
type Updater func(fctx *Context, field *schema.Field, updates map[string]any) ([]string, error)

// Validator checks a normalized config for per-kind problems before the
// factory runs. A nil validator means configs of this kind are accepted
// as-is.
type Validator func(cfg model.FieldConfig) error

// Source records which builder pass produced a definition.
type Source string

const (
	SourceAuto   Source = "auto"
	SourceManual Source = "manual"
)

// SettingDoc documents one settings key a kind accepts. It feeds the
// generated kind reference and the planner prompt.
type SettingDoc struct {
	Name        string
	Type        string
	Description string
}

// Definition is one registered field kind.
type Definition struct {
	Kind        string
	Aliases     []string
	EngineClass string
	DisplayName string
	Summary     string
	Settings    []SettingDoc
	Factory     Factory
	Updater     Updater
	Validator   Validator
	Source      Source
}

func (d *Definition) validate() error {
	if d.Kind == "" {
		return fmt.Errorf("definition has no kind")
	}
	if d.EngineClass == "" {
		return fmt.Errorf("definition %q has no engine class", d.Kind)
	}
	if d.Factory == nil {
		return fmt.Errorf("definition %q has no factory", d.Kind)
	}
	return nil
}
