package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/schema"
)

// reservedConfigKeys are config keys consumed by the generic field
// scaffolding rather than copied into per-kind settings.
var reservedConfigKeys = map[string]bool{
	"name":         true,
	"handle":       true,
	"field_type":   true,
	"instructions": true,
	"searchable":   true,
	"settings":     true,
}

// Builder assembles a Registry in two passes. AutoDiscover synthesizes a
// generic definition for every class in the engine catalog, then Register
// installs hand-written definitions on top. A manual definition always
// wins over an auto-discovered one for the same kind; a duplicate within
// the same pass is logged and skipped, keeping the first registration.
type Builder struct {
	logger     *slog.Logger
	auto       map[string]*Definition
	manual     map[string]*Definition
	overridden int
	skipped    int
}

// NewBuilder returns an empty builder. A nil logger falls back to the
// default slog logger.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		logger: logger,
		auto:   make(map[string]*Definition),
		manual: make(map[string]*Definition),
	}
}

// AutoDiscover registers a generic definition for every catalog entry and
// returns the number registered. The generic definition maps identity keys
// (name, handle, instructions, searchable) and copies everything else into
// the field's settings untouched.
func (b *Builder) AutoDiscover(catalog []schema.EngineFieldType) int {
	registered := 0
	for _, engineType := range catalog {
		kind := KindFromClass(engineType.Class)
		if _, ok := b.auto[kind]; ok {
			b.skipped++
			b.logger.Warn("duplicate auto-discovered field kind, keeping first",
				"kind", kind, "class", engineType.Class)
			continue
		}
		b.auto[kind] = genericDefinition(kind, engineType)
		registered++
	}
	return registered
}

// Register installs a manual definition. A duplicate manual kind is logged,
// skipped, and reported as an error; the first registration stays in place.
func (b *Builder) Register(def Definition) error {
	if err := def.validate(); err != nil {
		return err
	}
	if _, ok := b.manual[def.Kind]; ok {
		b.skipped++
		b.logger.Warn("duplicate field kind registration skipped", "kind", def.Kind)
		return fmt.Errorf("field kind %q is already registered", def.Kind)
	}
	def.Source = SourceManual
	if _, ok := b.auto[def.Kind]; ok {
		b.overridden++
		b.logger.Debug("manual definition overrides auto-discovered kind", "kind", def.Kind)
	}
	b.manual[def.Kind] = &def
	return nil
}

// Build produces the immutable registry. The builder can keep being used
// afterwards, but the returned registry never changes.
func (b *Builder) Build() *Registry {
	// Manual precedence extends to aliases: a manual definition that names
	// an auto-discovered kind among its aliases replaces that generic
	// scaffold entirely, so the alias resolves to the specialization.
	manualAlias := make(map[string]*Definition)
	for _, def := range b.manual {
		for _, alias := range def.Aliases {
			manualAlias[alias] = def
		}
	}

	defs := make(map[string]*Definition, len(b.auto)+len(b.manual))
	autoCount := 0
	overridden := b.overridden
	for kind, def := range b.auto {
		if _, ok := b.manual[kind]; ok {
			continue
		}
		if winner, ok := manualAlias[kind]; ok {
			overridden++
			b.logger.Debug("manual alias overrides auto-discovered kind",
				"kind", kind, "manual", winner.Kind)
			continue
		}
		defs[kind] = def
		autoCount++
	}
	manualCount := 0
	for kind, def := range b.manual {
		defs[kind] = def
		manualCount++
	}

	byName := make(map[string]*Definition, len(defs)*2)
	kinds := make([]string, 0, len(defs))
	for kind, def := range defs {
		byName[kind] = def
		kinds = append(kinds, kind)
	}
	// Aliases resolve second so a canonical kind can never be shadowed.
	for _, def := range defs {
		for _, alias := range def.Aliases {
			if existing, ok := byName[alias]; ok {
				if existing != def {
					b.logger.Warn("field kind alias collides, skipping",
						"alias", alias, "kind", def.Kind, "existing", existing.Kind)
				}
				continue
			}
			byName[alias] = def
		}
	}
	sort.Strings(kinds)

	return &Registry{
		defs:   defs,
		byName: byName,
		kinds:  kinds,
		stats: Stats{
			Total:      len(defs),
			Auto:       autoCount,
			Manual:     manualCount,
			Overridden: overridden,
			Skipped:    b.skipped,
		},
	}
}

// KindFromClass derives the snake_case kind identifier for an engine
// class name, e.g. "PlainText" becomes "plain_text".
func KindFromClass(class string) string {
	var sb strings.Builder
	for i, r := range class {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func genericDefinition(kind string, engineType schema.EngineFieldType) *Definition {
	settings := make([]SettingDoc, 0, len(engineType.SettingsAttributes))
	for _, attr := range engineType.SettingsAttributes {
		settings = append(settings, SettingDoc{Name: attr, Type: "any"})
	}
	return &Definition{
		Kind:        kind,
		EngineClass: engineType.Class,
		DisplayName: engineType.DisplayName,
		Summary:     fmt.Sprintf("Auto-discovered %s field.", engineType.DisplayName),
		Settings:    settings,
		Factory:     GenericFactory(engineType.Class, kind),
		Updater:     GenericUpdater,
		Source:      SourceAuto,
	}
}

// GenericFactory returns a factory that scaffolds a field of the given
// engine class and copies every non-identity config key into its settings.
// Manual definitions reuse it as their starting point.
func GenericFactory(engineClass, kind string) Factory {
	return func(fctx *Context, cfg model.FieldConfig) (*schema.Field, error) {
		field := &schema.Field{
			Name:         cfg.Name(),
			Handle:       cfg.Handle(),
			Kind:         kind,
			EngineClass:  engineClass,
			Instructions: cfg.Instructions(),
			Searchable:   cfg.Searchable(),
		}
		for key, value := range cfg {
			if reservedConfigKeys[key] {
				continue
			}
			field.SetSetting(key, value)
		}
		return field, nil
	}
}

// GenericUpdater applies a partial update map to a field: identity keys
// update the field itself, everything else updates its settings. Manual
// updaters fall back to it for keys they do not treat specially.
func GenericUpdater(fctx *Context, field *schema.Field, updates map[string]any) ([]string, error) {
	keys := make([]string, 0, len(updates))
	for key := range updates {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var changes []string
	for _, key := range keys {
		value := updates[key]
		switch key {
		case "name":
			if s, ok := value.(string); ok && s != "" {
				field.Name = s
				changes = append(changes, fmt.Sprintf("Updated name to %q", s))
			}
		case "instructions":
			if s, ok := value.(string); ok {
				field.Instructions = s
				changes = append(changes, "Updated instructions")
			}
		case "searchable":
			if v, ok := value.(bool); ok {
				field.Searchable = v
				changes = append(changes, fmt.Sprintf("Updated searchable to %v", v))
			}
		case "handle", "field_type":
			return nil, fmt.Errorf("%s cannot be changed on an existing field", key)
		default:
			field.SetSetting(key, value)
			changes = append(changes, fmt.Sprintf("Updated %s to %v", key, value))
		}
	}
	return changes, nil
}
