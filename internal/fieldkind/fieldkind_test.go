package fieldkind

import (
	"context"
	"log/slog"
	"reflect"
	"testing"

	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/registry"
	"github.com/fieldagent/fieldagent/internal/schema"
	"github.com/fieldagent/fieldagent/internal/schema/memory"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := NewRegistry(registry.NewBuilder(slog.New(slog.DiscardHandler)))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func testContext(store *memory.Store) *registry.Context {
	return &registry.Context{
		Ctx:    context.Background(),
		Store:  store,
		Blocks: &registry.BlockTracker{},
		Logger: slog.New(slog.DiscardHandler),
	}
}

func build(t *testing.T, reg *registry.Registry, fctx *registry.Context, cfg model.FieldConfig) *schema.Field {
	t.Helper()
	def, ok := reg.Resolve(cfg.Kind())
	if !ok {
		t.Fatalf("kind %q not registered", cfg.Kind())
	}
	normalized := cfg.Normalize()
	if def.Validator != nil {
		if err := def.Validator(normalized); err != nil {
			t.Fatalf("validator for %q: %v", cfg.Kind(), err)
		}
	}
	field, err := def.Factory(fctx, normalized)
	if err != nil {
		t.Fatalf("factory for %q: %v", cfg.Kind(), err)
	}
	return field
}

func TestManualKindsOverrideAutoDiscovery(t *testing.T) {
	reg := testRegistry(t)

	for _, kind := range []string{"text", "dropdown", "matrix", "asset", "assets", "image", "table"} {
		def, ok := reg.Resolve(kind)
		if !ok {
			t.Fatalf("kind %q not registered", kind)
		}
		if def.Source != registry.SourceManual {
			t.Errorf("kind %q source = %q, want manual", kind, def.Source)
		}
	}

	for alias, kind := range map[string]string{
		"plain_text": "text",
		"richtext":   "rich_text",
		"select":     "dropdown",
		"radio":      "radio_buttons",
		"boolean":    "lightswitch",
		"url":        "link",
		"entry":      "entries",
	} {
		def, ok := reg.Resolve(alias)
		if !ok {
			t.Fatalf("alias %q not resolvable", alias)
		}
		if def.Kind != kind {
			t.Errorf("alias %q resolved to %q, want %q", alias, def.Kind, kind)
		}
	}
}

func TestTextFieldDefaults(t *testing.T) {
	reg := testRegistry(t)
	fctx := testContext(memory.New())

	field := build(t, reg, fctx, model.FieldConfig{
		"name": "Summary", "handle": "summary", "field_type": "text",
		"multiline": true,
	})
	if field.EngineClass != schema.ClassPlainText {
		t.Fatalf("EngineClass = %q", field.EngineClass)
	}
	if field.Setting("multiline") != true {
		t.Fatal("multiline not set")
	}
	if field.Setting("initialRows") != 4 {
		t.Fatalf("initialRows = %v, want default 4", field.Setting("initialRows"))
	}

	single := build(t, reg, fctx, model.FieldConfig{
		"name": "Title Tag", "handle": "titleTag", "field_type": "text",
	})
	if single.Setting("initialRows") != nil {
		t.Fatal("initialRows should be unset without multiline")
	}
}

func TestSettingsObjectIsFlattened(t *testing.T) {
	reg := testRegistry(t)
	fctx := testContext(memory.New())

	field := build(t, reg, fctx, model.FieldConfig{
		"name": "Summary", "handle": "summary", "field_type": "text",
		"settings": map[string]any{"charLimit": float64(160), "placeholder": "One sentence"},
	})
	if field.Setting("charLimit") != float64(160) {
		t.Fatalf("charLimit = %v", field.Setting("charLimit"))
	}
	if field.Setting("placeholder") != "One sentence" {
		t.Fatalf("placeholder = %v", field.Setting("placeholder"))
	}
}

func TestDateFallsBackToShowDate(t *testing.T) {
	reg := testRegistry(t)
	fctx := testContext(memory.New())

	field := build(t, reg, fctx, model.FieldConfig{
		"name": "Published At", "handle": "publishedAt", "field_type": "date",
		"showDate": false, "showTime": false,
	})
	if field.Setting("showDate") != true {
		t.Fatal("showDate should fall back to true when both parts are disabled")
	}
}

func TestMoneyDefaults(t *testing.T) {
	reg := testRegistry(t)
	fctx := testContext(memory.New())

	field := build(t, reg, fctx, model.FieldConfig{
		"name": "Price", "handle": "price", "field_type": "money",
	})
	if field.Setting("currency") != "USD" {
		t.Fatalf("currency = %v, want USD", field.Setting("currency"))
	}
	if field.Setting("showCurrency") != true {
		t.Fatal("showCurrency should default to true")
	}
}

func TestAssetTrio(t *testing.T) {
	reg := testRegistry(t)
	fctx := testContext(memory.New())

	asset := build(t, reg, fctx, model.FieldConfig{
		"name": "Attachment", "handle": "attachment", "field_type": "asset",
	})
	if asset.EngineClass != schema.ClassAssets {
		t.Fatalf("asset EngineClass = %q", asset.EngineClass)
	}
	if asset.Setting("maxRelations") != 1 {
		t.Fatalf("asset maxRelations = %v, want 1", asset.Setting("maxRelations"))
	}

	assets := build(t, reg, fctx, model.FieldConfig{
		"name": "Downloads", "handle": "downloads", "field_type": "assets",
	})
	if assets.Setting("maxRelations") != nil {
		t.Fatalf("assets maxRelations = %v, want unbounded", assets.Setting("maxRelations"))
	}

	image := build(t, reg, fctx, model.FieldConfig{
		"name": "Hero Image", "handle": "heroImage", "field_type": "image",
	})
	if !reflect.DeepEqual(image.Setting("allowedKinds"), []string{"image"}) {
		t.Fatalf("image allowedKinds = %v", image.Setting("allowedKinds"))
	}
	if image.Setting("restrictFiles") != true {
		t.Fatal("image restrictFiles should be true")
	}
	if image.Setting("maxRelations") != 1 {
		t.Fatalf("image maxRelations = %v, want 1", image.Setting("maxRelations"))
	}
}

func TestValidatorRejectsEmptyOptions(t *testing.T) {
	reg := testRegistry(t)
	def, _ := reg.Resolve("dropdown")
	err := def.Validator(model.FieldConfig{
		"name": "Status", "handle": "status", "field_type": "dropdown",
	})
	if err == nil {
		t.Fatal("expected error for empty options")
	}
}

func TestValidatorRejectsInvertedBounds(t *testing.T) {
	reg := testRegistry(t)
	def, _ := reg.Resolve("number")
	err := def.Validator(model.FieldConfig{
		"name": "Qty", "handle": "qty", "field_type": "number",
		"min": float64(10), "max": float64(1),
	})
	if err == nil {
		t.Fatal("expected error for min > max")
	}
}
