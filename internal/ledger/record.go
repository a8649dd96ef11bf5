package ledger

import (
	"time"

	"github.com/fieldagent/fieldagent/internal/idgen"
	"github.com/fieldagent/fieldagent/internal/model"
)

// BuildRecord assembles the operation record for one executed batch. Every
// created artifact, including nested block artifacts, lands in a created
// bucket; every failed create operation lands in a failed bucket keyed by
// the config it was trying to apply.
func BuildRecord(recType, source, description string, now time.Time, results []model.OpResult) (*model.OperationRecord, error) {
	id, err := idgen.NewRecordID(now)
	if err != nil {
		return nil, err
	}
	record := &model.OperationRecord{
		ID:          id,
		Type:        recType,
		Source:      source,
		Description: description,
		Timestamp:   now.Unix(),
		Status:      model.RecordActive,
	}
	for _, result := range results {
		if result.Created != nil {
			addCreated(record, *result.Created)
		}
		if result.Blocks != nil {
			for _, ref := range result.Blocks.Fields {
				addCreated(record, ref)
			}
			for _, ref := range result.Blocks.EntryTypes {
				addCreated(record, ref)
			}
		}
		if !result.Success && result.Operation.Type == model.OpCreate {
			addFailed(record, failedRef(result.Operation))
		}
	}
	return record, nil
}

func addCreated(record *model.OperationRecord, ref model.ArtifactRef) {
	switch ref.Type {
	case model.TargetField.String():
		record.CreatedFields = append(record.CreatedFields, ref)
	case model.TargetEntryType.String():
		record.CreatedEntryTypes = append(record.CreatedEntryTypes, ref)
	case model.TargetSection.String():
		record.CreatedSections = append(record.CreatedSections, ref)
	case model.TargetCategoryGroup.String():
		record.CreatedCategoryGroups = append(record.CreatedCategoryGroups, ref)
	case model.TargetTagGroup.String():
		record.CreatedTagGroups = append(record.CreatedTagGroups, ref)
	}
}

func addFailed(record *model.OperationRecord, ref model.ArtifactRef) {
	switch ref.Type {
	case model.TargetField.String():
		record.FailedFields = append(record.FailedFields, ref)
	case model.TargetEntryType.String():
		record.FailedEntryTypes = append(record.FailedEntryTypes, ref)
	case model.TargetSection.String():
		record.FailedSections = append(record.FailedSections, ref)
	case model.TargetCategoryGroup.String():
		record.FailedCategoryGroups = append(record.FailedCategoryGroups, ref)
	case model.TargetTagGroup.String():
		record.FailedTagGroups = append(record.FailedTagGroups, ref)
	}
}

// failedRef recovers the intended handle and name from a failed create
// operation's payload, so the record shows what was attempted.
func failedRef(op model.Operation) model.ArtifactRef {
	ref := model.ArtifactRef{Type: op.Target.String()}
	if op.Create == nil {
		return ref
	}
	switch op.Target {
	case model.TargetField:
		if op.Create.Field != nil {
			cfg := op.Create.Field.Normalize()
			ref.Handle = cfg.Handle()
			ref.Name = cfg.Name()
		}
	case model.TargetEntryType:
		if op.Create.EntryType != nil {
			ref.Handle = op.Create.EntryType.Handle
			ref.Name = op.Create.EntryType.Name
		}
	case model.TargetSection:
		if op.Create.Section != nil {
			ref.Handle = op.Create.Section.Handle
			ref.Name = op.Create.Section.Name
		}
	case model.TargetCategoryGroup:
		if op.Create.CategoryGroup != nil {
			ref.Handle = op.Create.CategoryGroup.Handle
			ref.Name = op.Create.CategoryGroup.Name
		}
	case model.TargetTagGroup:
		if op.Create.TagGroup != nil {
			ref.Handle = op.Create.TagGroup.Handle
			ref.Name = op.Create.TagGroup.Name
		}
	}
	return ref
}
