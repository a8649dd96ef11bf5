package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/schema"
)

// UsagePolicy decides what happens when an artifact's usage cannot be
// determined during rollback.
type UsagePolicy int

const (
	// FailOpen deletes the artifact anyway when the usage lookup errors.
	// Used for artifact kinds whose deletion the engine itself guards.
	FailOpen UsagePolicy = iota
	// FailClosed protects the artifact when the usage lookup errors.
	// Used for group kinds, where deletion cascades to their items.
	FailClosed
)

func (p UsagePolicy) String() string {
	if p == FailClosed {
		return "fail-closed"
	}
	return "fail-open"
}

// usagePolicies maps artifact kinds to their policy on usage-check errors.
var usagePolicies = map[model.Target]UsagePolicy{
	model.TargetSection:       FailOpen,
	model.TargetEntryType:     FailOpen,
	model.TargetField:         FailOpen,
	model.TargetCategoryGroup: FailClosed,
	model.TargetTagGroup:      FailClosed,
}

// RollbackItem is one artifact's fate during a rollback.
type RollbackItem struct {
	Type   string `json:"type"`
	Handle string `json:"handle"`
	Reason string `json:"reason,omitempty"`
}

// RollbackResult summarizes one rollback run.
type RollbackResult struct {
	RecordID  string         `json:"recordId"`
	Deleted   []RollbackItem `json:"deleted"`
	Protected []RollbackItem `json:"protected"`
	Failed    []RollbackItem `json:"failed"`
	Missing   []RollbackItem `json:"missing"`
	// StatusChanged reports whether the record transitioned to
	// rolled_back: at least one deletion and zero failures.
	StatusChanged bool `json:"statusChanged"`
}

// Rollbacker undoes recorded batches against a schema store.
type Rollbacker struct {
	store   schema.Store
	records *FileStore
	logger  *slog.Logger
}

// NewRollbacker returns a rollback service over the given stores.
func NewRollbacker(store schema.Store, records *FileStore, logger *slog.Logger) *Rollbacker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rollbacker{store: store, records: records, logger: logger}
}

// Rollback deletes the artifacts a recorded batch created, in dependency
// order: sections first, then entry types, fields, category groups, and
// tag groups. In-use artifacts are protected, not deleted. The record
// transitions to rolled_back only when at least one artifact was deleted
// and nothing failed.
func (rb *Rollbacker) Rollback(ctx context.Context, recordID string) (*RollbackResult, error) {
	record, err := rb.records.Get(recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("operation %s not found", recordID)
	}
	if record.RolledBack() {
		return nil, fmt.Errorf("operation %s has already been rolled back", recordID)
	}

	result := &RollbackResult{RecordID: recordID}
	rb.rollbackRefs(ctx, result, model.TargetSection, record.CreatedSections)
	rb.rollbackRefs(ctx, result, model.TargetEntryType, record.CreatedEntryTypes)
	rb.rollbackRefs(ctx, result, model.TargetField, record.CreatedFields)
	rb.rollbackRefs(ctx, result, model.TargetCategoryGroup, record.CreatedCategoryGroups)
	rb.rollbackRefs(ctx, result, model.TargetTagGroup, record.CreatedTagGroups)

	if len(result.Deleted) > 0 {
		// Clear dangling references out of the store's schema projection.
		if err := rb.store.RebuildProjectConfig(ctx); err != nil {
			rb.logger.Warn("project config rebuild failed after rollback",
				"record", recordID, "error", err)
		}
	}
	if len(result.Deleted) > 0 && len(result.Failed) == 0 {
		if err := rb.records.MarkRolledBack(recordID); err != nil {
			return result, fmt.Errorf("marking record rolled back: %w", err)
		}
		result.StatusChanged = true
	}
	return result, nil
}

func (rb *Rollbacker) rollbackRefs(ctx context.Context, result *RollbackResult, target model.Target, refs []model.ArtifactRef) {
	for _, ref := range refs {
		item := RollbackItem{Type: target.String(), Handle: ref.Handle}

		exists, err := rb.exists(ctx, target, ref.Handle)
		if err != nil {
			item.Reason = err.Error()
			result.Failed = append(result.Failed, item)
			continue
		}
		if !exists {
			item.Reason = "already removed"
			result.Missing = append(result.Missing, item)
			continue
		}

		count, err := rb.usage(ctx, target, ref.Handle)
		if err != nil {
			policy := usagePolicies[target]
			if policy == FailClosed {
				item.Reason = fmt.Sprintf("usage check failed (%s): %v", policy, err)
				result.Protected = append(result.Protected, item)
				continue
			}
			rb.logger.Warn("usage check failed, deleting anyway",
				"type", target.String(), "handle", ref.Handle, "policy", policy.String(), "error", err)
		} else if count > 0 {
			item.Reason = fmt.Sprintf("in use by %d items", count)
			result.Protected = append(result.Protected, item)
			continue
		}

		if err := rb.delete(ctx, target, ref.Handle); err != nil {
			item.Reason = err.Error()
			result.Failed = append(result.Failed, item)
			continue
		}
		result.Deleted = append(result.Deleted, item)
	}
}

func (rb *Rollbacker) exists(ctx context.Context, target model.Target, handle string) (bool, error) {
	switch target {
	case model.TargetSection:
		s, err := rb.store.SectionByHandle(ctx, handle)
		return s != nil, err
	case model.TargetEntryType:
		et, err := rb.store.EntryTypeByHandle(ctx, handle)
		return et != nil, err
	case model.TargetField:
		f, err := rb.store.FieldByHandle(ctx, handle)
		return f != nil, err
	case model.TargetCategoryGroup:
		g, err := rb.store.CategoryGroupByHandle(ctx, handle)
		return g != nil, err
	case model.TargetTagGroup:
		g, err := rb.store.TagGroupByHandle(ctx, handle)
		return g != nil, err
	}
	return false, fmt.Errorf("unknown artifact type %q", target)
}

func (rb *Rollbacker) usage(ctx context.Context, target model.Target, handle string) (int64, error) {
	switch target {
	case model.TargetSection:
		return rb.store.SectionEntryCount(ctx, handle)
	case model.TargetEntryType:
		return rb.store.EntryTypeEntryCount(ctx, handle)
	case model.TargetField:
		return rb.store.FieldContentCount(ctx, handle)
	case model.TargetCategoryGroup:
		return rb.store.CategoryGroupItemCount(ctx, handle)
	case model.TargetTagGroup:
		return rb.store.TagGroupItemCount(ctx, handle)
	}
	return 0, fmt.Errorf("unknown artifact type %q", target)
}

func (rb *Rollbacker) delete(ctx context.Context, target model.Target, handle string) error {
	switch target {
	case model.TargetSection:
		return rb.store.DeleteSection(ctx, handle)
	case model.TargetEntryType:
		return rb.store.DeleteEntryType(ctx, handle)
	case model.TargetField:
		return rb.store.DeleteField(ctx, handle)
	case model.TargetCategoryGroup:
		return rb.store.DeleteCategoryGroup(ctx, handle)
	case model.TargetTagGroup:
		return rb.store.DeleteTagGroup(ctx, handle)
	}
	return fmt.Errorf("unknown artifact type %q", target)
}
