package executor

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/fieldagent/fieldagent/internal/fieldkind"
	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/registry"
	"github.com/fieldagent/fieldagent/internal/schema"
	"github.com/fieldagent/fieldagent/internal/schema/memory"
)

func newTestExecutor(t *testing.T, store *memory.Store, opts ...Option) *Executor {
	t.Helper()
	reg, err := fieldkind.NewRegistry(registry.NewBuilder(slog.New(slog.DiscardHandler)))
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}
	opts = append([]Option{
		WithLogger(slog.New(slog.DiscardHandler)),
		WithSleep(func(time.Duration) {}),
	}, opts...)
	return New(store, reg, opts...)
}

func fieldOp(cfg model.FieldConfig) model.Operation {
	return model.Operation{
		Type:   model.OpCreate,
		Target: model.TargetField,
		Create: &model.CreatePayload{Field: cfg},
	}
}

func TestExecuteCreateField(t *testing.T) {
	store := memory.New()
	ex := newTestExecutor(t, store)

	results := ex.Execute(context.Background(), &model.PlanDocument{
		Operations: []model.Operation{
			fieldOp(model.FieldConfig{
				"name": "Body", "handle": "body", "field_type": "rich_text",
			}),
		},
	})
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	res := results[0]
	if !res.Success {
		t.Fatalf("operation failed: %s", res.Message)
	}
	if res.Created == nil || res.Created.Handle != "body" {
		t.Fatalf("Created = %+v", res.Created)
	}

	field, err := store.FieldByHandle(context.Background(), "body")
	if err != nil || field == nil {
		t.Fatalf("field not persisted (err %v)", err)
	}
	if field.EngineClass != schema.ClassRichText {
		t.Fatalf("EngineClass = %q", field.EngineClass)
	}
}

func TestExecuteRejectsReservedHandle(t *testing.T) {
	ex := newTestExecutor(t, memory.New())
	results := ex.Execute(context.Background(), &model.PlanDocument{
		Operations: []model.Operation{
			fieldOp(model.FieldConfig{
				"name": "Title", "handle": "title", "field_type": "text",
			}),
		},
	})
	if results[0].Success {
		t.Fatal("reserved handle should fail")
	}
	if !strings.Contains(results[0].Message, "reserved") {
		t.Fatalf("message = %q", results[0].Message)
	}
}

func TestExecuteRejectsDuplicateHandle(t *testing.T) {
	store := memory.New()
	ex := newTestExecutor(t, store)
	ctx := context.Background()

	cfg := model.FieldConfig{"name": "Body", "handle": "body", "field_type": "text"}
	first := ex.Execute(ctx, &model.PlanDocument{Operations: []model.Operation{fieldOp(cfg)}})
	if !first[0].Success {
		t.Fatalf("first create failed: %s", first[0].Message)
	}
	second := ex.Execute(ctx, &model.PlanDocument{Operations: []model.Operation{fieldOp(cfg)}})
	if second[0].Success {
		t.Fatal("duplicate handle should fail")
	}
}

func TestExecuteUnknownFieldType(t *testing.T) {
	ex := newTestExecutor(t, memory.New())
	results := ex.Execute(context.Background(), &model.PlanDocument{
		Operations: []model.Operation{
			fieldOp(model.FieldConfig{
				"name": "X", "handle": "x", "field_type": "hologram",
			}),
		},
	})
	if results[0].Success {
		t.Fatal("unknown field type should fail")
	}
	if !strings.Contains(results[0].Message, "hologram") {
		t.Fatalf("message = %q", results[0].Message)
	}
}

func TestFailedOperationDoesNotAbortBatch(t *testing.T) {
	store := memory.New()
	ex := newTestExecutor(t, store)

	results := ex.Execute(context.Background(), &model.PlanDocument{
		Operations: []model.Operation{
			fieldOp(model.FieldConfig{"name": "Bad", "handle": "title", "field_type": "text"}),
			fieldOp(model.FieldConfig{"name": "Good", "handle": "good", "field_type": "text"}),
		},
	})
	if results[0].Success {
		t.Fatal("first operation should fail")
	}
	if !results[1].Success {
		t.Fatalf("second operation should succeed: %s", results[1].Message)
	}
	if field, _ := store.FieldByHandle(context.Background(), "good"); field == nil {
		t.Fatal("second field not persisted")
	}
}

func TestSameBatchEntryTypeSeesLaggedField(t *testing.T) {
	store := memory.New()
	store.SetVisibilityLag(5) // far beyond the forced refresh after save
	ex := newTestExecutor(t, store)

	results := ex.Execute(context.Background(), &model.PlanDocument{
		Operations: []model.Operation{
			fieldOp(model.FieldConfig{"name": "Body", "handle": "body", "field_type": "text"}),
			{
				Type:   model.OpCreate,
				Target: model.TargetEntryType,
				Create: &model.CreatePayload{EntryType: &model.EntryTypeConfig{
					Name:   "Article",
					Handle: "article",
					Fields: []model.FieldRef{{Handle: "body", Required: true}},
				}},
			},
		},
	})
	for i, res := range results {
		if !res.Success {
			t.Fatalf("operation %d failed: %s", i, res.Message)
		}
	}

	entryType, _ := store.EntryTypeByHandle(context.Background(), "article")
	if entryType == nil {
		t.Fatal("entry type not persisted")
	}
	if !entryType.Layout.HasField("body") {
		t.Fatalf("layout missing body: %+v", entryType.Layout)
	}
	// Title element comes first by default.
	first := entryType.Layout.Tabs[0].Elements[0]
	if first.Type != schema.ElementTitle {
		t.Fatalf("first element = %+v, want title", first)
	}
}

func TestEntryTypeSkipsReservedAndUnknownFields(t *testing.T) {
	store := memory.New()
	ex := newTestExecutor(t, store)

	results := ex.Execute(context.Background(), &model.PlanDocument{
		Operations: []model.Operation{
			{
				Type:   model.OpCreate,
				Target: model.TargetEntryType,
				Create: &model.CreatePayload{EntryType: &model.EntryTypeConfig{
					Name:   "Article",
					Handle: "article",
					Fields: []model.FieldRef{{Handle: "title"}, {Handle: "ghost"}},
				}},
			},
		},
	})
	if !results[0].Success {
		t.Fatalf("operation failed: %s", results[0].Message)
	}
	entryType, _ := store.EntryTypeByHandle(context.Background(), "article")
	if got := len(entryType.Layout.FieldHandles()); got != 0 {
		t.Fatalf("layout fields = %d, want 0 (reserved and unknown skipped)", got)
	}
}

func TestModifyAddFieldRetriesThroughLag(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	// Entry type exists; field exists but needs two refreshes to surface.
	if err := store.SaveEntryType(ctx, &schema.EntryType{Name: "Article", Handle: "article", HasTitleField: true}); err != nil {
		t.Fatalf("SaveEntryType: %v", err)
	}
	store.SetVisibilityLag(2)
	if err := store.SaveField(ctx, &schema.Field{Name: "Body", Handle: "body", Kind: "text"}); err != nil {
		t.Fatalf("SaveField: %v", err)
	}

	ex := newTestExecutor(t, store)
	results := ex.Execute(ctx, &model.PlanDocument{
		Operations: []model.Operation{
			{
				Type:     model.OpModify,
				Target:   model.TargetEntryType,
				TargetID: "article",
				Modify: &model.ModifyPayload{Actions: []model.ModifyAction{
					{Action: "addField", FieldHandle: "body"},
				}},
			},
		},
	})
	if !results[0].Success {
		t.Fatalf("modify failed: %s", results[0].Message)
	}

	entryType, _ := store.EntryTypeByHandle(ctx, "article")
	if !entryType.Layout.HasField("body") {
		t.Fatal("field not added to layout")
	}
	if store.RefreshCalls() < 2 {
		t.Fatalf("RefreshCalls = %d, want at least 2", store.RefreshCalls())
	}
}

func TestModifyAddFieldExhaustsRetries(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	if err := store.SaveEntryType(ctx, &schema.EntryType{Name: "Article", Handle: "article"}); err != nil {
		t.Fatalf("SaveEntryType: %v", err)
	}

	ex := newTestExecutor(t, store, WithRetry(3, time.Millisecond))
	results := ex.Execute(ctx, &model.PlanDocument{
		Operations: []model.Operation{
			{
				Type:     model.OpModify,
				Target:   model.TargetEntryType,
				TargetID: "article",
				Modify: &model.ModifyPayload{Actions: []model.ModifyAction{
					{Action: "addField", Field: &model.FieldRef{Handle: "ghost"}},
				}},
			},
		},
	})
	if results[0].Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(results[0].Message, `"ghost" not found`) {
		t.Fatalf("message = %q", results[0].Message)
	}
}

func TestModifyTimingErrorNamesBatchCreation(t *testing.T) {
	store := memory.New()
	store.SetVisibilityLag(100)
	ctx := context.Background()
	if err := store.SaveEntryType(ctx, &schema.EntryType{Name: "Article", Handle: "article"}); err != nil {
		t.Fatalf("SaveEntryType: %v", err)
	}

	ex := newTestExecutor(t, store, WithRetry(2, time.Millisecond))
	results := ex.Execute(ctx, &model.PlanDocument{
		Operations: []model.Operation{
			fieldOp(model.FieldConfig{"name": "Body", "handle": "body", "field_type": "text"}),
			{
				Type:     model.OpModify,
				Target:   model.TargetEntryType,
				TargetID: "article",
				Modify: &model.ModifyPayload{Actions: []model.ModifyAction{
					{Action: "addField", FieldHandle: "body"},
				}},
			},
		},
	})
	if results[1].Success {
		t.Fatal("expected timing failure")
	}
	if !strings.Contains(results[1].Message, "not yet visible") {
		t.Fatalf("message = %q", results[1].Message)
	}
}

func TestModifyEntryTypeRemoveAndUpdate(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	entryType := &schema.EntryType{
		Name: "Article", Handle: "article", HasTitleField: true,
		Layout: schema.Layout{Tabs: []schema.Tab{{
			Name: "Content",
			Elements: []schema.LayoutElement{
				{Type: schema.ElementTitle},
				{Type: schema.ElementField, FieldHandle: "body"},
			},
		}}},
	}
	if err := store.SaveEntryType(ctx, entryType); err != nil {
		t.Fatalf("SaveEntryType: %v", err)
	}

	ex := newTestExecutor(t, store)
	results := ex.Execute(ctx, &model.PlanDocument{
		Operations: []model.Operation{
			{
				Type:     model.OpModify,
				Target:   model.TargetEntryType,
				TargetID: "article",
				Modify: &model.ModifyPayload{Actions: []model.ModifyAction{
					{Action: "removeField", FieldHandle: "body"},
					{Action: "updateEntryType", Updates: map[string]any{"name": "Story"}},
				}},
			},
		},
	})
	if !results[0].Success {
		t.Fatalf("modify failed: %s", results[0].Message)
	}

	got, _ := store.EntryTypeByHandle(ctx, "article")
	if got.Layout.HasField("body") {
		t.Fatal("field should be removed")
	}
	if got.Name != "Story" {
		t.Fatalf("Name = %q, want Story", got.Name)
	}
}

func TestCreateSectionWithMissingEntryTypesFails(t *testing.T) {
	store := memory.New()
	ex := newTestExecutor(t, store)

	results := ex.Execute(context.Background(), &model.PlanDocument{
		Operations: []model.Operation{
			{
				Type:   model.OpCreate,
				Target: model.TargetSection,
				Create: &model.CreatePayload{Section: &model.SectionConfig{
					Name: "Blog", Handle: "blog", Type: "channel",
					EntryTypes: []model.EntryTypeRef{{Handle: "post"}, {Handle: "review"}},
				}},
			},
		},
	})
	if results[0].Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(results[0].Message, "entry types not found: post, review") {
		t.Fatalf("message = %q", results[0].Message)
	}
	if sec, _ := store.SectionByHandle(context.Background(), "blog"); sec != nil {
		t.Fatal("section should not be persisted")
	}
}

func TestCreateSectionSynthesizesDefaultEntryType(t *testing.T) {
	store := memory.New()
	ex := newTestExecutor(t, store)
	ctx := context.Background()

	results := ex.Execute(ctx, &model.PlanDocument{
		Operations: []model.Operation{
			{
				Type:   model.OpCreate,
				Target: model.TargetSection,
				Create: &model.CreatePayload{Section: &model.SectionConfig{
					Name: "News Items", Handle: "newsItems",
				}},
			},
		},
	})
	res := results[0]
	if !res.Success {
		t.Fatalf("create failed: %s", res.Message)
	}
	if res.Blocks == nil || len(res.Blocks.EntryTypes) != 1 {
		t.Fatalf("Blocks = %+v, want one synthesized entry type", res.Blocks)
	}

	section, _ := store.SectionByHandle(ctx, "newsItems")
	if section == nil {
		t.Fatal("section not persisted")
	}
	if section.Type != schema.SectionChannel {
		t.Fatalf("Type = %q, want channel default", section.Type)
	}
	if section.URIFormat != "news-items/{slug}" {
		t.Fatalf("URIFormat = %q", section.URIFormat)
	}
	if section.Template != "newsItems/_entry" {
		t.Fatalf("Template = %q", section.Template)
	}
	if entryType, _ := store.EntryTypeByHandle(ctx, "newsItems"); entryType == nil {
		t.Fatal("default entry type not persisted")
	}
}

func TestCreateSingleSectionURI(t *testing.T) {
	store := memory.New()
	ex := newTestExecutor(t, store)
	ctx := context.Background()

	ex.Execute(ctx, &model.PlanDocument{
		Operations: []model.Operation{
			{
				Type:   model.OpCreate,
				Target: model.TargetSection,
				Create: &model.CreatePayload{Section: &model.SectionConfig{
					Name: "About Us", Handle: "aboutUs", Type: "single",
				}},
			},
		},
	})
	section, _ := store.SectionByHandle(ctx, "aboutUs")
	if section == nil {
		t.Fatal("section not persisted")
	}
	if section.URIFormat != "about-us" {
		t.Fatalf("URIFormat = %q, want about-us", section.URIFormat)
	}
}

func TestModifySectionActions(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	if err := store.SaveEntryType(ctx, &schema.EntryType{Name: "Post", Handle: "post"}); err != nil {
		t.Fatalf("SaveEntryType: %v", err)
	}
	if err := store.SaveEntryType(ctx, &schema.EntryType{Name: "Review", Handle: "review"}); err != nil {
		t.Fatalf("SaveEntryType: %v", err)
	}
	if err := store.SaveSection(ctx, &schema.Section{
		Name: "Blog", Handle: "blog", Type: schema.SectionChannel,
		EntryTypeHandles: []string{"post"},
	}); err != nil {
		t.Fatalf("SaveSection: %v", err)
	}

	ex := newTestExecutor(t, store)
	results := ex.Execute(ctx, &model.PlanDocument{
		Operations: []model.Operation{
			{
				Type:     model.OpModify,
				Target:   model.TargetSection,
				TargetID: "blog",
				Modify: &model.ModifyPayload{Actions: []model.ModifyAction{
					{Action: "addEntryType", EntryType: &model.HandleRef{Handle: "review"}},
					{Action: "updateSettings", Updates: map[string]any{"name": "Journal", "maxLevels": float64(3)}},
				}},
			},
		},
	})
	if !results[0].Success {
		t.Fatalf("modify failed: %s", results[0].Message)
	}

	section, _ := store.SectionByHandle(ctx, "blog")
	if len(section.EntryTypeHandles) != 2 {
		t.Fatalf("EntryTypeHandles = %v", section.EntryTypeHandles)
	}
	if section.Name != "Journal" || section.MaxLevels != 3 {
		t.Fatalf("section = %+v", section)
	}
}

func TestModifySectionCannotRemoveLastEntryType(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	if err := store.SaveEntryType(ctx, &schema.EntryType{Name: "Post", Handle: "post"}); err != nil {
		t.Fatalf("SaveEntryType: %v", err)
	}
	if err := store.SaveSection(ctx, &schema.Section{
		Name: "Blog", Handle: "blog", Type: schema.SectionChannel,
		EntryTypeHandles: []string{"post"},
	}); err != nil {
		t.Fatalf("SaveSection: %v", err)
	}

	ex := newTestExecutor(t, store)
	results := ex.Execute(ctx, &model.PlanDocument{
		Operations: []model.Operation{
			{
				Type:     model.OpModify,
				Target:   model.TargetSection,
				TargetID: "blog",
				Modify: &model.ModifyPayload{Actions: []model.ModifyAction{
					{Action: "removeEntryType", EntryTypeHandle: "post"},
				}},
			},
		},
	})
	if results[0].Success {
		t.Fatal("removing the last entry type should fail")
	}
}

func TestModifySectionCannotRemoveEntryTypeWithEntries(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	for _, h := range []string{"post", "video"} {
		if err := store.SaveEntryType(ctx, &schema.EntryType{Name: h, Handle: h}); err != nil {
			t.Fatalf("SaveEntryType %s: %v", h, err)
		}
	}
	if err := store.SaveSection(ctx, &schema.Section{
		Name: "Blog", Handle: "blog", Type: schema.SectionChannel,
		EntryTypeHandles: []string{"post", "video"},
	}); err != nil {
		t.Fatalf("SaveSection: %v", err)
	}
	store.SetEntryTypeEntryCount("video", 7)

	ex := newTestExecutor(t, store)
	results := ex.Execute(ctx, &model.PlanDocument{
		Operations: []model.Operation{
			{
				Type:     model.OpModify,
				Target:   model.TargetSection,
				TargetID: "blog",
				Modify: &model.ModifyPayload{Actions: []model.ModifyAction{
					{Action: "removeEntryType", EntryTypeHandle: "video"},
				}},
			},
		},
	})
	if results[0].Success {
		t.Fatal("removing an entry type with entries should fail")
	}
	if !strings.Contains(results[0].Message, "7 entries") {
		t.Fatalf("message = %q, want entry count named", results[0].Message)
	}

	section, _ := store.SectionByHandle(ctx, "blog")
	if len(section.EntryTypeHandles) != 2 {
		t.Fatalf("EntryTypeHandles = %v, want untouched", section.EntryTypeHandles)
	}

	// An unused type still comes off cleanly.
	store.SetEntryTypeEntryCount("video", 0)
	results = ex.Execute(ctx, &model.PlanDocument{
		Operations: []model.Operation{
			{
				Type:     model.OpModify,
				Target:   model.TargetSection,
				TargetID: "blog",
				Modify: &model.ModifyPayload{Actions: []model.ModifyAction{
					{Action: "removeEntryType", EntryTypeHandle: "video"},
				}},
			},
		},
	})
	if !results[0].Success {
		t.Fatalf("modify failed: %s", results[0].Message)
	}
}

func TestUpdateFieldThroughModify(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	if err := store.SaveField(ctx, &schema.Field{Name: "Price", Handle: "price", Kind: "number"}); err != nil {
		t.Fatalf("SaveField: %v", err)
	}

	ex := newTestExecutor(t, store)
	results := ex.Execute(ctx, &model.PlanDocument{
		Operations: []model.Operation{
			{
				Type:     model.OpModify,
				Target:   model.TargetField,
				TargetID: "price",
				Modify: &model.ModifyPayload{Actions: []model.ModifyAction{
					{Action: "updateField", Updates: map[string]any{"name": "Unit Price", "min": float64(0)}},
				}},
			},
		},
	})
	if !results[0].Success {
		t.Fatalf("modify failed: %s", results[0].Message)
	}
	if results[0].Modified == nil || len(results[0].Modified.Changes) != 2 {
		t.Fatalf("Modified = %+v", results[0].Modified)
	}

	field, _ := store.FieldByHandle(ctx, "price")
	if field.Name != "Unit Price" {
		t.Fatalf("Name = %q", field.Name)
	}
	if field.Setting("min") != float64(0) {
		t.Fatalf("min = %v", field.Setting("min"))
	}
}

func TestDeleteIsInformationalNoOp(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	if err := store.SaveField(ctx, &schema.Field{Name: "Body", Handle: "body", Kind: "text"}); err != nil {
		t.Fatalf("SaveField: %v", err)
	}

	ex := newTestExecutor(t, store)
	results := ex.Execute(ctx, &model.PlanDocument{
		Operations: []model.Operation{
			{Type: model.OpDelete, Target: model.TargetField, TargetID: "body"},
		},
	})
	if !results[0].Success {
		t.Fatalf("delete should report success: %s", results[0].Message)
	}
	if !strings.Contains(results[0].Message, "rollback") {
		t.Fatalf("message = %q", results[0].Message)
	}
	if field, _ := store.FieldByHandle(ctx, "body"); field == nil {
		t.Fatal("field must not be deleted")
	}
}

func TestCreateMatrixInPlan(t *testing.T) {
	store := memory.New()
	ex := newTestExecutor(t, store)
	ctx := context.Background()

	results := ex.Execute(ctx, &model.PlanDocument{
		Operations: []model.Operation{
			fieldOp(model.FieldConfig{
				"name": "Page Builder", "handle": "pageBuilder", "field_type": "matrix",
				"entryTypes": []any{
					map[string]any{"name": "Text Block", "handle": "textBlock"},
				},
			}),
		},
	})
	res := results[0]
	if !res.Success {
		t.Fatalf("create failed: %s", res.Message)
	}
	if res.Blocks == nil || len(res.Blocks.EntryTypes) != 1 {
		t.Fatalf("Blocks = %+v", res.Blocks)
	}
	if entryType, _ := store.EntryTypeByHandle(ctx, "textBlock"); entryType == nil {
		t.Fatal("nested entry type not persisted")
	}
}

func TestCreateGroups(t *testing.T) {
	store := memory.New()
	ex := newTestExecutor(t, store)
	ctx := context.Background()

	results := ex.Execute(ctx, &model.PlanDocument{
		Operations: []model.Operation{
			{
				Type:   model.OpCreate,
				Target: model.TargetCategoryGroup,
				Create: &model.CreatePayload{CategoryGroup: &model.GroupConfig{
					Name: "Topics", Handle: "topics", HasURLs: true,
				}},
			},
			{
				Type:   model.OpCreate,
				Target: model.TargetTagGroup,
				Create: &model.CreatePayload{TagGroup: &model.GroupConfig{
					Name: "Keywords", Handle: "keywords",
				}},
			},
		},
	})
	for i, res := range results {
		if !res.Success {
			t.Fatalf("operation %d failed: %s", i, res.Message)
		}
	}

	group, _ := store.CategoryGroupByHandle(ctx, "topics")
	if group == nil {
		t.Fatal("category group not persisted")
	}
	if group.URIFormat != "topics/{slug}" {
		t.Fatalf("URIFormat = %q", group.URIFormat)
	}
	if tg, _ := store.TagGroupByHandle(ctx, "keywords"); tg == nil {
		t.Fatal("tag group not persisted")
	}
}

func TestKebab(t *testing.T) {
	tests := []struct{ in, want string }{
		{"newsItems", "news-items"},
		{"blog", "blog"},
		{"aboutUs", "about-us"},
	}
	for _, tt := range tests {
		if got := kebab(tt.in); got != tt.want {
			t.Errorf("kebab(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
