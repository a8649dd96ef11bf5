package registry

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/schema"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestKindFromClass(t *testing.T) {
	tests := []struct {
		class string
		want  string
	}{
		{"PlainText", "plain_text"},
		{"Assets", "assets"},
		{"ButtonGroup", "button_group"},
		{"MultiSelect", "multi_select"},
		{"Json", "json"},
		{"Matrix", "matrix"},
	}
	for _, tt := range tests {
		if got := KindFromClass(tt.class); got != tt.want {
			t.Errorf("KindFromClass(%q) = %q, want %q", tt.class, got, tt.want)
		}
	}
}

func TestAutoDiscoverRegistersCatalog(t *testing.T) {
	b := NewBuilder(discardLogger())
	n := b.AutoDiscover(schema.EngineCatalog())
	if n != len(schema.EngineCatalog()) {
		t.Fatalf("AutoDiscover = %d, want %d", n, len(schema.EngineCatalog()))
	}

	reg := b.Build()
	def, ok := reg.Resolve("plain_text")
	if !ok {
		t.Fatal("plain_text not resolvable after auto-discovery")
	}
	if def.Source != SourceAuto {
		t.Fatalf("Source = %q, want auto", def.Source)
	}
	if def.EngineClass != schema.ClassPlainText {
		t.Fatalf("EngineClass = %q, want %q", def.EngineClass, schema.ClassPlainText)
	}
}

func TestManualOverridesAuto(t *testing.T) {
	b := NewBuilder(discardLogger())
	b.AutoDiscover(schema.EngineCatalog())

	if err := b.Register(Definition{
		Kind:        "dropdown",
		EngineClass: schema.ClassDropdown,
		DisplayName: "Dropdown",
		Factory:     GenericFactory(schema.ClassDropdown, "dropdown"),
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	reg := b.Build()
	def, ok := reg.Resolve("dropdown")
	if !ok {
		t.Fatal("dropdown not resolvable")
	}
	if def.Source != SourceManual {
		t.Fatalf("Source = %q, want manual", def.Source)
	}
	stats := reg.Stats()
	if stats.Overridden != 1 {
		t.Fatalf("Overridden = %d, want 1", stats.Overridden)
	}
	if stats.Total != len(schema.EngineCatalog()) {
		t.Fatalf("Total = %d, want %d", stats.Total, len(schema.EngineCatalog()))
	}
}

func TestDuplicateManualRegistrationSkipped(t *testing.T) {
	b := NewBuilder(discardLogger())
	first := Definition{
		Kind:        "text",
		EngineClass: schema.ClassPlainText,
		DisplayName: "First",
		Factory:     GenericFactory(schema.ClassPlainText, "text"),
	}
	second := first
	second.DisplayName = "Second"

	if err := b.Register(first); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := b.Register(second); err == nil {
		t.Fatal("expected duplicate registration error")
	}

	reg := b.Build()
	def, _ := reg.Resolve("text")
	if def.DisplayName != "First" {
		t.Fatalf("DisplayName = %q, want First (first registration kept)", def.DisplayName)
	}
	if reg.Stats().Skipped != 1 {
		t.Fatalf("Skipped = %d, want 1", reg.Stats().Skipped)
	}
}

func TestAliasesResolve(t *testing.T) {
	b := NewBuilder(discardLogger())
	if err := b.Register(Definition{
		Kind:        "rich_text",
		Aliases:     []string{"richtext", "ckeditor"},
		EngineClass: schema.ClassRichText,
		Factory:     GenericFactory(schema.ClassRichText, "rich_text"),
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	reg := b.Build()

	for _, name := range []string{"rich_text", "richtext", "ckeditor"} {
		def, ok := reg.Resolve(name)
		if !ok {
			t.Fatalf("Resolve(%q): not found", name)
		}
		if def.Kind != "rich_text" {
			t.Fatalf("Resolve(%q).Kind = %q", name, def.Kind)
		}
	}
	if _, ok := reg.Resolve("Rich_Text"); ok {
		t.Fatal("resolution should be case-sensitive")
	}
}

func TestManualAliasOverridesAutoKind(t *testing.T) {
	b := NewBuilder(discardLogger())
	b.AutoDiscover(schema.EngineCatalog())

	if err := b.Register(Definition{
		Kind:        "text",
		Aliases:     []string{"plain_text", "plaintext"},
		EngineClass: schema.ClassPlainText,
		DisplayName: "Text",
		Factory:     GenericFactory(schema.ClassPlainText, "text"),
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	reg := b.Build()

	// The alias must reach the manual specialization, not the generic
	// scaffold auto-discovered under the same name.
	for _, name := range []string{"text", "plain_text", "plaintext"} {
		def, ok := reg.Resolve(name)
		if !ok {
			t.Fatalf("Resolve(%q): not found", name)
		}
		if def.Kind != "text" || def.Source != SourceManual {
			t.Fatalf("Resolve(%q) = kind %q source %q, want manual text", name, def.Kind, def.Source)
		}
	}

	for _, kind := range reg.Kinds() {
		if kind == "plain_text" {
			t.Fatal("shadowed auto kind still listed as canonical")
		}
	}
	if got := reg.Stats().Overridden; got != 1 {
		t.Fatalf("Overridden = %d, want 1", got)
	}
}

func TestAliasCannotShadowKind(t *testing.T) {
	b := NewBuilder(discardLogger())
	if err := b.Register(Definition{
		Kind:        "number",
		EngineClass: schema.ClassNumber,
		Factory:     GenericFactory(schema.ClassNumber, "number"),
	}); err != nil {
		t.Fatalf("Register number: %v", err)
	}
	if err := b.Register(Definition{
		Kind:        "range",
		Aliases:     []string{"number"},
		EngineClass: schema.ClassRange,
		Factory:     GenericFactory(schema.ClassRange, "range"),
	}); err != nil {
		t.Fatalf("Register range: %v", err)
	}
	reg := b.Build()

	def, _ := reg.Resolve("number")
	if def.Kind != "number" {
		t.Fatalf("alias shadowed canonical kind: got %q", def.Kind)
	}
}

func TestGenericFactoryCopiesSettings(t *testing.T) {
	factory := GenericFactory(schema.ClassNumber, "number")
	cfg := model.FieldConfig{
		"name":       "Price",
		"handle":     "price",
		"field_type": "number",
		"searchable": true,
		"min":        float64(0),
		"decimals":   float64(2),
	}
	field, err := factory(&Context{Logger: discardLogger()}, cfg)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if field.Name != "Price" || field.Handle != "price" {
		t.Fatalf("identity not mapped: %+v", field)
	}
	if !field.Searchable {
		t.Fatal("searchable not mapped")
	}
	if field.Setting("min") != float64(0) || field.Setting("decimals") != float64(2) {
		t.Fatalf("settings not copied: %+v", field.Settings)
	}
	if field.Setting("name") != nil || field.Setting("field_type") != nil {
		t.Fatal("identity keys leaked into settings")
	}
}

func TestGenericUpdater(t *testing.T) {
	field := &schema.Field{Name: "Price", Handle: "price", Kind: "number"}
	changes, err := GenericUpdater(nil, field, map[string]any{
		"name": "Unit Price",
		"min":  float64(1),
	})
	if err != nil {
		t.Fatalf("GenericUpdater: %v", err)
	}
	if field.Name != "Unit Price" {
		t.Fatalf("Name = %q", field.Name)
	}
	if field.Setting("min") != float64(1) {
		t.Fatalf("min = %v", field.Setting("min"))
	}
	if len(changes) != 2 {
		t.Fatalf("changes = %v, want 2 entries", changes)
	}
}

func TestGenericUpdaterRejectsHandleChange(t *testing.T) {
	field := &schema.Field{Name: "Price", Handle: "price"}
	if _, err := GenericUpdater(nil, field, map[string]any{"handle": "cost"}); err == nil {
		t.Fatal("expected error for handle change")
	}
}

func TestDocsListsKinds(t *testing.T) {
	b := NewBuilder(discardLogger())
	b.AutoDiscover(schema.EngineCatalog())
	docs := b.Build().Docs()

	for _, want := range []string{"## plain_text", "## matrix", "`maxRelations`"} {
		if !strings.Contains(docs, want) {
			t.Fatalf("Docs missing %q", want)
		}
	}
}

func TestPlanSchemaPerKind(t *testing.T) {
	b := NewBuilder(discardLogger())
	b.AutoDiscover(schema.EngineCatalog())
	ps := b.Build().PlanSchema()

	kinds, ok := ps["kinds"].(map[string]any)
	if !ok {
		t.Fatalf("kinds missing: %+v", ps)
	}
	if _, ok := kinds["dropdown"]; !ok {
		t.Fatal("dropdown missing from plan schema")
	}
}

func TestBlockTracker(t *testing.T) {
	var tr BlockTracker
	if !tr.Empty() {
		t.Fatal("new tracker should be empty")
	}
	if tr.Summary() != nil {
		t.Fatal("empty tracker summary should be nil")
	}
	tr.Add(model.ArtifactRef{Type: "field", Handle: "blockBody"})
	tr.Add(model.ArtifactRef{Type: "entryType", Handle: "textBlock"})
	sum := tr.Summary()
	if sum == nil || len(sum.Fields) != 1 || len(sum.EntryTypes) != 1 {
		t.Fatalf("Summary = %+v", sum)
	}
}
