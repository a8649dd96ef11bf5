package executor

import (
	"context"
	"fmt"

	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/schema"
)

func (r *run) createEntryTypeOp(ctx context.Context, cfg *model.EntryTypeConfig) model.OpResult {
	if cfg == nil {
		return failure("create entryType operation has no entry type config")
	}
	entryType, err := r.createEntryType(ctx, cfg)
	if err != nil {
		return failure(err.Error())
	}
	return model.OpResult{
		Success: true,
		Message: fmt.Sprintf("Created entry type %q (%s)", entryType.Name, entryType.Handle),
		Created: &model.ArtifactRef{
			Type:   model.TargetEntryType.String(),
			Handle: entryType.Handle,
			Name:   entryType.Name,
			ID:     entryType.ID,
		},
	}
}

// createEntryType builds an entry type's layout from its field references
// and saves it. Reserved and unresolvable field handles are skipped with a
// warning rather than failing the whole entry type.
func (r *run) createEntryType(ctx context.Context, cfg *model.EntryTypeConfig) (*schema.EntryType, error) {
	if cfg.Handle == "" {
		return nil, fmt.Errorf("entry type config has no handle")
	}
	if existing, err := r.store.EntryTypeByHandle(ctx, cfg.Handle); err != nil {
		return nil, fmt.Errorf("checking entry type handle %q: %w", cfg.Handle, err)
	} else if existing != nil {
		return nil, fmt.Errorf("an entry type with handle %q already exists", cfg.Handle)
	}

	tabName := cfg.TabName
	if tabName == "" {
		tabName = "Content"
	}

	var elements []schema.LayoutElement
	if cfg.TitleEnabled() {
		elements = append(elements, schema.LayoutElement{Type: schema.ElementTitle})
	}
	for _, ref := range cfg.Fields {
		if schema.IsReservedHandle(ref.Handle) {
			r.logger.Warn("skipping reserved field handle in entry type layout",
				"entryType", cfg.Handle, "field", ref.Handle)
			continue
		}
		field, err := r.resolveLayoutField(ctx, ref.Handle)
		if err != nil {
			return nil, err
		}
		if field == nil {
			r.logger.Warn("skipping unknown field in entry type layout",
				"entryType", cfg.Handle, "field", ref.Handle)
			continue
		}
		elements = append(elements, schema.LayoutElement{
			Type:        schema.ElementField,
			FieldHandle: field.Handle,
			FieldID:     field.ID,
			Required:    ref.Required,
		})
	}

	entryType := &schema.EntryType{
		Name:          cfg.Name,
		Handle:        cfg.Handle,
		HasTitleField: cfg.TitleEnabled(),
		TitleFormat:   cfg.TitleFormat,
		Layout: schema.Layout{
			Tabs: []schema.Tab{{Name: tabName, Elements: elements}},
		},
	}
	if err := r.store.SaveEntryType(ctx, entryType); err != nil {
		return nil, fmt.Errorf("saving entry type %q: %w", cfg.Handle, err)
	}
	r.createdEntryTypes[cfg.Handle] = entryType
	return entryType, nil
}

// resolveLayoutField checks the batch index before the store, so an entry
// type can reference a field created earlier in the same plan even if the
// store's field index has not caught up. A miss is (nil, nil).
func (r *run) resolveLayoutField(ctx context.Context, handle string) (*schema.Field, error) {
	if field, ok := r.createdFields[handle]; ok {
		return field, nil
	}
	field, err := r.store.FieldByHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("looking up field %q: %w", handle, err)
	}
	return field, nil
}

// resolveEntryType checks the batch index before the store. A miss is
// (nil, nil).
func (r *run) resolveEntryType(ctx context.Context, handle string) (*schema.EntryType, error) {
	if entryType, ok := r.createdEntryTypes[handle]; ok {
		return entryType, nil
	}
	entryType, err := r.store.EntryTypeByHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("looking up entry type %q: %w", handle, err)
	}
	return entryType, nil
}
