package executor

import (
	"context"
	"fmt"

	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/schema"
)

func (r *run) executeModify(ctx context.Context, op model.Operation) model.OpResult {
	if op.Modify == nil || len(op.Modify.Actions) == 0 {
		return failure("modify operation has no actions")
	}
	if op.TargetID == "" {
		return failure("modify operation has no targetId")
	}
	switch op.Target {
	case model.TargetEntryType:
		return r.modifyEntryType(ctx, op.TargetID, op.Modify.Actions)
	case model.TargetSection:
		return r.modifySection(ctx, op.TargetID, op.Modify.Actions)
	case model.TargetField:
		return r.modifyField(ctx, op.TargetID, op.Modify.Actions)
	}
	return failuref("modify is not supported for target %q", op.Target)
}

func (r *run) modifyEntryType(ctx context.Context, handle string, actions []model.ModifyAction) model.OpResult {
	entryType, err := r.resolveEntryType(ctx, handle)
	if err != nil {
		return failure(err.Error())
	}
	if entryType == nil {
		return failuref("entry type %q not found", handle)
	}

	var changes []string
	for i, action := range actions {
		switch action.Action {
		case "addField":
			fieldHandle := action.ResolveFieldHandle()
			if fieldHandle == "" {
				return failuref("action %d: addField has no field handle", i)
			}
			if entryType.Layout.HasField(fieldHandle) {
				changes = append(changes, fmt.Sprintf("Field %q already in layout", fieldHandle))
				continue
			}
			// The field may have been created seconds ago; lookupField
			// refreshes the index and retries before giving up.
			field, err := r.lookupField(ctx, fieldHandle)
			if err != nil {
				return failuref("action %d: %v", i, err)
			}
			required := false
			if action.Field != nil {
				required = action.Field.Required
			}
			appendFieldElement(entryType, schema.LayoutElement{
				Type:        schema.ElementField,
				FieldHandle: field.Handle,
				FieldID:     field.ID,
				Required:    required,
			})
			changes = append(changes, fmt.Sprintf("Added field %q", fieldHandle))

		case "removeField":
			fieldHandle := action.ResolveFieldHandle()
			if fieldHandle == "" {
				return failuref("action %d: removeField has no field handle", i)
			}
			if !removeFieldElement(entryType, fieldHandle) {
				return failuref("action %d: field %q is not in the layout of %q", i, fieldHandle, handle)
			}
			changes = append(changes, fmt.Sprintf("Removed field %q", fieldHandle))

		case "updateEntryType":
			applied := applyEntryTypeUpdates(entryType, action.Updates)
			if len(applied) == 0 {
				return failuref("action %d: updateEntryType has no applicable updates", i)
			}
			changes = append(changes, applied...)

		case "updateField":
			fieldHandle := action.ResolveFieldHandle()
			if fieldHandle == "" {
				return failuref("action %d: updateField has no field handle", i)
			}
			result := r.updateFieldOp(ctx, fieldHandle, action.Updates)
			if !result.Success {
				return failuref("action %d: %s", i, result.Message)
			}
			changes = append(changes, result.Modified.Changes...)

		default:
			return failuref("action %d: unknown entry type action %q", i, action.Action)
		}
	}

	if err := r.store.SaveEntryType(ctx, entryType); err != nil {
		return failuref("saving entry type %q: %v", handle, err)
	}
	return model.OpResult{
		Success: true,
		Message: fmt.Sprintf("Modified entry type %q", handle),
		Modified: &model.ModifiedRef{
			Type:    model.TargetEntryType.String(),
			Handle:  handle,
			Changes: changes,
		},
	}
}

func (r *run) modifySection(ctx context.Context, handle string, actions []model.ModifyAction) model.OpResult {
	section, err := r.store.SectionByHandle(ctx, handle)
	if err != nil {
		return failuref("looking up section %q: %v", handle, err)
	}
	if section == nil {
		return failuref("section %q not found", handle)
	}

	var changes []string
	for i, action := range actions {
		switch action.Action {
		case "addEntryType":
			etHandle := action.ResolveEntryTypeHandle()
			if etHandle == "" {
				return failuref("action %d: addEntryType has no entry type handle", i)
			}
			if containsString(section.EntryTypeHandles, etHandle) {
				changes = append(changes, fmt.Sprintf("Entry type %q already attached", etHandle))
				continue
			}
			entryType, err := r.resolveEntryType(ctx, etHandle)
			if err != nil {
				return failuref("action %d: %v", i, err)
			}
			if entryType == nil {
				return failuref("action %d: entry type %q not found", i, etHandle)
			}
			section.EntryTypeHandles = append(section.EntryTypeHandles, etHandle)
			changes = append(changes, fmt.Sprintf("Added entry type %q", etHandle))

		case "removeEntryType":
			etHandle := action.ResolveEntryTypeHandle()
			if etHandle == "" {
				return failuref("action %d: removeEntryType has no entry type handle", i)
			}
			if !containsString(section.EntryTypeHandles, etHandle) {
				return failuref("action %d: entry type %q is not attached to section %q", i, etHandle, handle)
			}
			if len(section.EntryTypeHandles) == 1 {
				return failuref("action %d: cannot remove the last entry type from section %q", i, handle)
			}
			count, err := r.store.EntryTypeEntryCount(ctx, etHandle)
			if err != nil {
				return failuref("action %d: checking entries for %q: %v", i, etHandle, err)
			}
			if count > 0 {
				return failuref("action %d: entry type %q still has %d entries; delete or reassign them before removing it from section %q", i, etHandle, count, handle)
			}
			kept := section.EntryTypeHandles[:0]
			for _, h := range section.EntryTypeHandles {
				if h != etHandle {
					kept = append(kept, h)
				}
			}
			section.EntryTypeHandles = kept
			changes = append(changes, fmt.Sprintf("Removed entry type %q", etHandle))

		case "updateSettings":
			applied := applySectionUpdates(section, action.Updates)
			if len(applied) == 0 {
				return failuref("action %d: updateSettings has no applicable updates", i)
			}
			changes = append(changes, applied...)

		default:
			return failuref("action %d: unknown section action %q", i, action.Action)
		}
	}

	if err := r.store.SaveSection(ctx, section); err != nil {
		return failuref("saving section %q: %v", handle, err)
	}
	return model.OpResult{
		Success: true,
		Message: fmt.Sprintf("Modified section %q", handle),
		Modified: &model.ModifiedRef{
			Type:    model.TargetSection.String(),
			Handle:  handle,
			Changes: changes,
		},
	}
}

func (r *run) modifyField(ctx context.Context, handle string, actions []model.ModifyAction) model.OpResult {
	var changes []string
	for i, action := range actions {
		switch action.Action {
		case "updateField", "update", "":
			result := r.updateFieldOp(ctx, handle, action.Updates)
			if !result.Success {
				return failuref("action %d: %s", i, result.Message)
			}
			changes = append(changes, result.Modified.Changes...)
		default:
			return failuref("action %d: unknown field action %q", i, action.Action)
		}
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

// appendFieldElement adds the element to the entry type's first tab,
// creating a Content tab when the layout has none.
func appendFieldElement(entryType *schema.EntryType, el schema.LayoutElement) {
	if len(entryType.Layout.Tabs) == 0 {
		entryType.Layout.Tabs = []schema.Tab{{Name: "Content"}}
	}
	tab := &entryType.Layout.Tabs[0]
	tab.Elements = append(tab.Elements, el)
}

func removeFieldElement(entryType *schema.EntryType, fieldHandle string) bool {
	removed := false
	for ti := range entryType.Layout.Tabs {
		tab := &entryType.Layout.Tabs[ti]
		kept := tab.Elements[:0]
		for _, el := range tab.Elements {
			if el.Type == schema.ElementField && el.FieldHandle == fieldHandle {
				removed = true
				continue
			}
			kept = append(kept, el)
		}
		tab.Elements = kept
	}
	return removed
}

func applyEntryTypeUpdates(entryType *schema.EntryType, updates map[string]any) []string {
	var changes []string
	if name, ok := updates["name"].(string); ok && name != "" {
		entryType.Name = name
		changes = append(changes, fmt.Sprintf("Updated name to %q", name))
	}
	if tf, ok := updates["titleFormat"].(string); ok {
		entryType.TitleFormat = tf
		changes = append(changes, "Updated titleFormat")
	}
	if hasTitle, ok := updates["hasTitleField"].(bool); ok {
		entryType.HasTitleField = hasTitle
		changes = append(changes, fmt.Sprintf("Updated hasTitleField to %v", hasTitle))
	}
	return changes
}

func applySectionUpdates(section *schema.Section, updates map[string]any) []string {
	var changes []string
	if name, ok := updates["name"].(string); ok && name != "" {
		section.Name = name
		changes = append(changes, fmt.Sprintf("Updated name to %q", name))
	}
	if v, ok := updates["enableVersioning"].(bool); ok {
		section.EnableVersioning = v
		changes = append(changes, fmt.Sprintf("Updated enableVersioning to %v", v))
	}
	if v, ok := updates["hasUrls"].(bool); ok {
		section.HasURLs = v
		changes = append(changes, fmt.Sprintf("Updated hasUrls to %v", v))
	}
	if uri, ok := updates["uriFormat"].(string); ok {
		section.URIFormat = uri
		changes = append(changes, "Updated uriFormat")
	}
	if uri, ok := updates["uri"].(string); ok {
		section.URIFormat = uri
		changes = append(changes, "Updated uriFormat")
	}
	if tpl, ok := updates["template"].(string); ok {
		section.Template = tpl
		changes = append(changes, "Updated template")
	}
	if levels, ok := updates["maxLevels"].(float64); ok {
		section.MaxLevels = int(levels)
		changes = append(changes, fmt.Sprintf("Updated maxLevels to %d", int(levels)))
	}
	return changes
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
