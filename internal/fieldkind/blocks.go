package fieldkind

import (
	"encoding/json"
	"fmt"

	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/registry"
	"github.com/fieldagent/fieldagent/internal/schema"
)

// blockDefinitions covers the container kinds that create nested schema
// artifacts while they build: matrix (nested entry types) and content
// block (nested fields).
func blockDefinitions() []registry.Definition {
	return []registry.Definition{
		{
			Kind:        "matrix",
			EngineClass: schema.ClassMatrix,
			DisplayName: "Matrix",
			Summary:     "Repeating blocks of nested entry types.",
			Settings: []registry.SettingDoc{
				{Name: "entryTypes", Type: "array", Description: "Nested entry type configs, or handles of existing entry types."},
				{Name: "minEntries", Type: "integer"},
				{Name: "maxEntries", Type: "integer"},
				{Name: "viewMode", Type: "string", Description: "cards, blocks, or index; defaults to cards."},
			},
			Factory:   matrixFactory,
			Updater:   blockStructureUpdater("entryTypes"),
			Validator: validateMatrix,
		},
		{
			Kind:        "content_block",
			Aliases:     []string{"contentblock"},
			EngineClass: schema.ClassContentBlock,
			DisplayName: "Content Block",
			Summary:     "A fixed group of nested fields edited as one unit.",
			Settings: []registry.SettingDoc{
				{Name: "fields", Type: "array", Description: "Nested field configs."},
				{Name: "viewMode", Type: "string", Description: "grouped, pane, or inline; defaults to grouped."},
			},
			Factory:   contentBlockFactory,
			Updater:   blockStructureUpdater("fields"),
			Validator: validateContentBlock,
		},
	}
}

func matrixFactory(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
	raw := cfg.GetSlice("entryTypes")
	if len(raw) == 0 {
		return nil, fmt.Errorf("matrix field %q has no entry types", cfg.Handle())
	}

	handles := make([]string, 0, len(raw))
	for i, item := range raw {
		switch v := item.(type) {
		case string:
			// Reference to an entry type that already exists.
			existing, err := fctx.Store.EntryTypeByHandle(fctx.Ctx, v)
			if err != nil {
				return nil, fmt.Errorf("looking up entry type %q: %w", v, err)
			}
			if existing == nil {
				return nil, fmt.Errorf("matrix field %q references unknown entry type %q", cfg.Handle(), v)
			}
			handles = append(handles, v)
		case map[string]any:
			if fctx.Creator == nil {
				return nil, fmt.Errorf("matrix field %q needs nested entry type creation, which this context does not support", cfg.Handle())
			}
			etc, err := decodeEntryTypeConfig(v)
			if err != nil {
				return nil, fmt.Errorf("matrix field %q entry type %d: %w", cfg.Handle(), i, err)
			}
			created, err := fctx.Creator.CreateEntryType(fctx.Ctx, etc)
			if err != nil {
				return nil, fmt.Errorf("matrix field %q entry type %q: %w", cfg.Handle(), etc.Handle, err)
			}
			fctx.Track(model.ArtifactRef{
				Type:   model.TargetEntryType.String(),
				Handle: created.Handle,
				Name:   created.Name,
				ID:     created.ID,
			})
			handles = append(handles, created.Handle)
		default:
			return nil, fmt.Errorf("matrix field %q entry type %d has unsupported type %T", cfg.Handle(), i, item)
		}
	}

	field := baseField(cfg, "matrix", schema.ClassMatrix)
	field.SetSetting("entryTypes", handles)
	field.SetSetting("viewMode", viewModeOr(cfg, "cards"))
	setIfPresent(field, cfg, "minEntries", "maxEntries")
	return field, nil
}

func contentBlockFactory(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
	raw := cfg.GetSlice("fields")
	if len(raw) == 0 {
		return nil, fmt.Errorf("content block field %q has no nested fields", cfg.Handle())
	}
	if fctx.Creator == nil {
		return nil, fmt.Errorf("content block field %q needs nested field creation, which this context does not support", cfg.Handle())
	}

	handles := make([]string, 0, len(raw))
	for i, item := range raw {
		nested, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("content block field %q nested field %d must be an object", cfg.Handle(), i)
		}
		created, err := fctx.Creator.CreateField(fctx.Ctx, model.FieldConfig(nested))
		if err != nil {
			return nil, fmt.Errorf("content block field %q nested field %d: %w", cfg.Handle(), i, err)
		}
		fctx.Track(model.ArtifactRef{
			Type:   model.TargetField.String(),
			Handle: created.Handle,
			Name:   created.Name,
			ID:     created.ID,
		})
		handles = append(handles, created.Handle)
	}

	field := baseField(cfg, "content_block", schema.ClassContentBlock)
	field.SetSetting("fields", handles)
	field.SetSetting("viewMode", viewModeOr(cfg, "grouped"))
	return field, nil
}

// blockStructureUpdater wraps GenericUpdater for container kinds. The
// named setting lists nested artifacts; rewriting it through a field
// update would orphan or clobber them, so that key yields a warning in
// the change list instead of being applied.
func blockStructureUpdater(structuralKey string) registry.Updater {
	return func(fctx *registry.Context, field *schema.Field, updates map[string]any) ([]string, error) {
		var changes []string
		if _, ok := updates[structuralKey]; ok {
			rest := make(map[string]any, len(updates))
			for k, v := range updates {
				if k != structuralKey {
					rest[k] = v
				}
			}
			updates = rest
			changes = append(changes, fmt.Sprintf(
				"WARNING: %s was not updated; nested artifacts must be created or modified directly, not through a %s field update",
				structuralKey, field.Kind))
		}
		applied, err := registry.GenericUpdater(fctx, field, updates)
		if err != nil {
			return nil, err
		}
		return append(changes, applied...), nil
	}
}

func decodeEntryTypeConfig(raw map[string]any) (*model.EntryTypeConfig, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var etc model.EntryTypeConfig
	if err := json.Unmarshal(data, &etc); err != nil {
		return nil, err
	}
	if etc.Name == "" || etc.Handle == "" {
		return nil, fmt.Errorf("nested entry type needs a name and a handle")
	}
	return &etc, nil
}

func validateMatrix(cfg model.FieldConfig) error {
	if len(cfg.GetSlice("entryTypes")) == 0 {
		return fmt.Errorf("entryTypes must not be empty")
	}
	return nil
}

func validateContentBlock(cfg model.FieldConfig) error {
	if len(cfg.GetSlice("fields")) == 0 {
		return fmt.Errorf("fields must not be empty")
	}
	return nil
}
