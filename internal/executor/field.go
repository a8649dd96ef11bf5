package executor

import (
	"context"
	"fmt"

	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/registry"
	"github.com/fieldagent/fieldagent/internal/schema"
)

func (r *run) createFieldOp(ctx context.Context, cfg model.FieldConfig) model.OpResult {
	if cfg == nil {
		return failure("create field operation has no field config")
	}
	tracker := &registry.BlockTracker{}
	field, err := r.createField(ctx, cfg, tracker)
	if err != nil {
		return failure(err.Error())
	}
	return model.OpResult{
		Success: true,
		Message: fmt.Sprintf("Created field %q (%s)", field.Name, field.Handle),
		Created: &model.ArtifactRef{
			Type:   model.TargetField.String(),
			Handle: field.Handle,
			Name:   field.Name,
			ID:     field.ID,
		},
		Blocks: tracker.Summary(),
	}
}

// CreateField lets factories create nested fields through the run, so the
// nested artifacts land in the batch index like any other creation.
func (r *run) CreateField(ctx context.Context, cfg model.FieldConfig) (*schema.Field, error) {
	return r.createField(ctx, cfg, nil)
}

// CreateEntryType is the entry-type side of the nested creation contract.
func (r *run) CreateEntryType(ctx context.Context, cfg *model.EntryTypeConfig) (*schema.EntryType, error) {
	return r.createEntryType(ctx, cfg)
}

func (r *run) createField(ctx context.Context, cfg model.FieldConfig, tracker *registry.BlockTracker) (*schema.Field, error) {
	cfg = cfg.Normalize()

	handle := cfg.Handle()
	if handle == "" {
		return nil, fmt.Errorf("field config has no handle")
	}
	if schema.IsReservedHandle(handle) {
		return nil, fmt.Errorf("handle %q is reserved", handle)
	}
	kind := cfg.Kind()
	def, ok := r.registry.Resolve(kind)
	if !ok {
		return nil, fmt.Errorf("unknown field type %q", kind)
	}

	if existing, err := r.store.FieldByHandle(ctx, handle); err != nil {
		return nil, fmt.Errorf("checking handle %q: %w", handle, err)
	} else if existing != nil {
		return nil, fmt.Errorf("a field with handle %q already exists", handle)
	}
	if _, ok := r.createdFields[handle]; ok {
		return nil, fmt.Errorf("a field with handle %q was already created in this batch", handle)
	}

	if def.Validator != nil {
		if err := def.Validator(cfg); err != nil {
			return nil, fmt.Errorf("invalid %s field %q: %w", def.Kind, handle, err)
		}
	}

	fctx := &registry.Context{
		Ctx:     ctx,
		Store:   r.store,
		Creator: r,
		Blocks:  tracker,
		Logger:  r.logger,
	}
	field, err := def.Factory(fctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := r.store.SaveField(ctx, field); err != nil {
		return nil, fmt.Errorf("saving field %q: %w", handle, err)
	}
	// Freshly saved fields may not be visible to handle lookups until the
	// store's field index reloads; force it now so same-batch layout
	// resolution has a chance.
	if err := r.store.RefreshFields(ctx); err != nil {
		r.logger.Warn("field index refresh failed after save", "handle", handle, "error", err)
	}
	r.createdFields[handle] = field
	return field, nil
}

// lookupField resolves a field handle against the batch index first, then
// the store, refreshing the field index and retrying up to the configured
// bound. When a field created in this batch is still not visible after the
// retries, the error says so, because that is a timing problem and not a
// missing field.
func (r *run) lookupField(ctx context.Context, handle string) (*schema.Field, error) {
	for attempt := 1; ; attempt++ {
		field, err := r.store.FieldByHandle(ctx, handle)
		if err != nil {
			return nil, fmt.Errorf("looking up field %q: %w", handle, err)
		}
		if field != nil {
			return field, nil
		}
		if attempt >= r.retryAttempts {
			break
		}
		r.logger.Debug("field not visible yet, refreshing",
			"handle", handle, "attempt", attempt)
		if err := r.store.RefreshFields(ctx); err != nil {
			return nil, fmt.Errorf("refreshing field index: %w", err)
		}
		r.sleep(r.retryDelay)
	}
	if _, createdHere := r.createdFields[handle]; createdHere {
		return nil, fmt.Errorf("field %q was created in this batch but is not yet visible after %d attempts; re-run the operation", handle, r.retryAttempts)
	}
	return nil, fmt.Errorf("field %q not found", handle)
}

func (r *run) updateFieldOp(ctx context.Context, handle string, updates map[string]any) model.OpResult {
	if len(updates) == 0 {
		return failure("update field action has no updates")
	}
	field, err := r.lookupField(ctx, handle)
	if err != nil {
		return failure(err.Error())
	}

	def, ok := r.registry.Resolve(field.Kind)
	updater := registry.GenericUpdater
	if ok && def.Updater != nil {
		updater = def.Updater
	}
	fctx := &registry.Context{Ctx: ctx, Store: r.store, Logger: r.logger}
	changes, err := updater(fctx, field, updates)
	if err != nil {
		return failuref("updating field %q: %v", handle, err)
	}
	if err := r.store.SaveField(ctx, field); err != nil {
		return failuref("saving field %q: %v", handle, err)
	}
	if len(changes) == 0 {
		changes = []string{"No effective changes"}
	}
	return model.OpResult{
		Success: true,
		Message: fmt.Sprintf("Updated field %q", handle),
		Modified: &model.ModifiedRef{
			Type:    model.TargetField.String(),
			Handle:  handle,
			Changes: changes,
		},
	}
}
