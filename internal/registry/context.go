package registry

import (
	"context"
	"log/slog"

	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/schema"
)

// SchemaCreator creates schema artifacts on behalf of a factory. Block
// container factories (matrix, content block) use it to create their
// nested fields and entry types without reaching back into the executor.
type SchemaCreator interface {
	CreateField(ctx context.Context, cfg model.FieldConfig) (*schema.Field, error)
	CreateEntryType(ctx context.Context, cfg *model.EntryTypeConfig) (*schema.EntryType, error)
}

// Context carries the collaborators a factory or updater may need. Store
// and Logger are always set; Creator and Blocks are set when the caller
// supports nested creation.
type Context struct {
	Ctx     context.Context
	Store   schema.Store
	Creator SchemaCreator
	Blocks  *BlockTracker
	Logger  *slog.Logger
}

// Track records a nested artifact on the context's block tracker, if one
// is attached.
func (c *Context) Track(ref model.ArtifactRef) {
	if c.Blocks == nil {
		return
	}
	c.Blocks.Add(ref)
}

// BlockTracker accumulates the nested artifacts created while a block
// container field is built, so the operation result and the history record
// can account for them.
type BlockTracker struct {
	Fields     []model.ArtifactRef
	EntryTypes []model.ArtifactRef
}

// Add records one nested artifact under the bucket matching its type.
func (t *BlockTracker) Add(ref model.ArtifactRef) {
	switch ref.Type {
	case model.TargetEntryType.String():
		t.EntryTypes = append(t.EntryTypes, ref)
	default:
		t.Fields = append(t.Fields, ref)
	}
}

// Empty reports whether nothing was tracked.
func (t *BlockTracker) Empty() bool {
	return len(t.Fields) == 0 && len(t.EntryTypes) == 0
}

// Summary returns the tracked artifacts as a result summary, or nil when
// nothing was tracked.
func (t *BlockTracker) Summary() *model.BlockSummary {
	if t.Empty() {
		return nil
	}
	return &model.BlockSummary{Fields: t.Fields, EntryTypes: t.EntryTypes}
}
