package discovery

import (
	"context"
	"strings"
	"testing"

	"github.com/fieldagent/fieldagent/internal/schema"
	"github.com/fieldagent/fieldagent/internal/schema/memory"
)

func seededService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	if err := store.SaveField(ctx, &schema.Field{Name: "Body", Handle: "body", Kind: "rich_text"}); err != nil {
		t.Fatalf("SaveField: %v", err)
	}
	if err := store.SaveField(ctx, &schema.Field{Name: "Hero", Handle: "hero", Kind: "image"}); err != nil {
		t.Fatalf("SaveField: %v", err)
	}
	if err := store.SaveEntryType(ctx, &schema.EntryType{
		Name: "Post", Handle: "post", HasTitleField: true,
		Layout: schema.Layout{Tabs: []schema.Tab{{
			Name: "Content",
			Elements: []schema.LayoutElement{
				{Type: schema.ElementTitle},
				{Type: schema.ElementField, FieldHandle: "body"},
				{Type: schema.ElementField, FieldHandle: "vanished"},
			},
		}}},
	}); err != nil {
		t.Fatalf("SaveEntryType: %v", err)
	}
	if err := store.SaveSection(ctx, &schema.Section{
		Name: "Blog", Handle: "blog", Type: schema.SectionChannel,
		EntryTypeHandles: []string{"post"},
	}); err != nil {
		t.Fatalf("SaveSection: %v", err)
	}
	return New(store), store
}

func TestEntryTypeFields(t *testing.T) {
	svc, _ := seededService(t)
	fields, err := svc.EntryTypeFields(context.Background(), "post")
	if err != nil {
		t.Fatalf("EntryTypeFields: %v", err)
	}
	if len(fields) != 1 || fields[0].Handle != "body" {
		t.Fatalf("fields = %+v, want body only (vanished skipped)", fields)
	}

	if _, err := svc.EntryTypeFields(context.Background(), "ghost"); err == nil {
		t.Fatal("expected error for unknown entry type")
	}
}

func TestCheckHandle(t *testing.T) {
	svc, _ := seededService(t)
	ctx := context.Background()

	free, err := svc.CheckHandle(ctx, "sidebar")
	if err != nil {
		t.Fatalf("CheckHandle: %v", err)
	}
	if !free.Available {
		t.Fatalf("sidebar should be available: %+v", free)
	}

	taken, _ := svc.CheckHandle(ctx, "body")
	if taken.Available {
		t.Fatal("body should be taken")
	}
	if len(taken.TakenBy) != 1 || taken.TakenBy[0] != "field" {
		t.Fatalf("TakenBy = %v", taken.TakenBy)
	}

	reserved, _ := svc.CheckHandle(ctx, "title")
	if reserved.Available || !reserved.Reserved {
		t.Fatalf("title should be reserved: %+v", reserved)
	}

	// Section and entry type share the handle in this fixture? No, but
	// a handle held by multiple namespaces lists each one.
	multi, _ := svc.CheckHandle(ctx, "post")
	if len(multi.TakenBy) != 1 || multi.TakenBy[0] != "entryType" {
		t.Fatalf("TakenBy = %v", multi.TakenBy)
	}
}

func TestProjectRender(t *testing.T) {
	svc, _ := seededService(t)
	pc, err := svc.Project(context.Background())
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	out := pc.Render()
	for _, want := range []string{
		"body (rich_text): Body",
		"post: Post [fields: body, vanished]",
		"blog (channel): entry types post",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("Render missing %q:\n%s", want, out)
		}
	}
}

func TestProjectRenderEmpty(t *testing.T) {
	svc := New(memory.New())
	pc, err := svc.Project(context.Background())
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if !strings.Contains(pc.Render(), "(none)") {
		t.Fatal("empty project should render (none) markers")
	}
}
