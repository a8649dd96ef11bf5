// Package fieldkind provides the hand-written field-kind definitions that
// override the registry's auto-discovered generics. Each definition knows
// how to turn a declarative config into a concrete field of its engine
// class, including defaults, option normalization, and nested creation for
// block containers.
package fieldkind

import (
	"fmt"

	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/registry"
	"github.com/fieldagent/fieldagent/internal/schema"
)

// RegisterAll installs every manual definition on the builder. It is called
// once at startup, after auto-discovery.
func RegisterAll(b *registry.Builder) error {
	groups := [][]registry.Definition{
		textDefinitions(),
		choiceDefinitions(),
		relationDefinitions(),
		tableDefinitions(),
		blockDefinitions(),
	}
	for _, defs := range groups {
		for _, def := range defs {
			if err := b.Register(def); err != nil {
				return fmt.Errorf("registering field kind %q: %w", def.Kind, err)
			}
		}
	}
	return nil
}

// NewRegistry assembles the standard registry: an auto-discovery pass over
// the engine catalog, then the manual definitions on top.
func NewRegistry(b *registry.Builder) (*registry.Registry, error) {
	b.AutoDiscover(schema.EngineCatalog())
	if err := RegisterAll(b); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// baseField scaffolds the identity portion of a field. Per-kind factories
// fill in settings afterwards.
func baseField(cfg model.FieldConfig, kind, engineClass string) *schema.Field {
	return &schema.Field{
		Name:         cfg.Name(),
		Handle:       cfg.Handle(),
		Kind:         kind,
		EngineClass:  engineClass,
		Instructions: cfg.Instructions(),
		Searchable:   cfg.Searchable(),
	}
}

// setIfPresent copies a config key into the field's settings when the plan
// supplied it, leaving engine defaults alone otherwise.
func setIfPresent(field *schema.Field, cfg model.FieldConfig, keys ...string) {
	for _, key := range keys {
		if cfg.Has(key) {
			field.SetSetting(key, cfg[key])
		}
	}
}
