package fieldkind

import (
	"testing"
)

func TestColumnHandle(t *testing.T) {
	tests := []struct {
		heading string
		want    string
	}{
		{"First Name", "firstName"},
		{"Price (USD)", "priceUsd"},
		{"SKU", "sku"},
		{"Quantity", "quantity"},
		{"2nd Place", "col2ndPlace"},
		{"  spaced   out  ", "spacedOut"},
		{"---", "col"},
	}
	for _, tt := range tests {
		if got := columnHandle(tt.heading); got != tt.want {
			t.Errorf("columnHandle(%q) = %q, want %q", tt.heading, got, tt.want)
		}
	}
}

func TestPrepareColumns(t *testing.T) {
	cols, err := prepareColumns([]any{
		map[string]any{"heading": "First Name"},
		map[string]any{"heading": "Age", "type": "number", "width": float64(10)},
		map[string]any{"heading": "Notes", "type": "bogus"},
	})
	if err != nil {
		t.Fatalf("prepareColumns: %v", err)
	}
	if len(cols) != 3 {
		t.Fatalf("len = %d, want 3", len(cols))
	}

	first := cols["col1"].(map[string]any)
	if first["handle"] != "firstName" {
		t.Fatalf("col1 handle = %v", first["handle"])
	}
	if first["type"] != "singleline" {
		t.Fatalf("col1 type = %v, want singleline default", first["type"])
	}

	second := cols["col2"].(map[string]any)
	if second["type"] != "number" || second["width"] != float64(10) {
		t.Fatalf("col2 = %v", second)
	}

	third := cols["col3"].(map[string]any)
	if third["type"] != "singleline" {
		t.Fatalf("unknown type should fall back to singleline, got %v", third["type"])
	}
}

func TestPrepareColumnsDuplicateHandles(t *testing.T) {
	cols, err := prepareColumns([]any{
		map[string]any{"heading": "Name"},
		map[string]any{"heading": "Name"},
	})
	if err != nil {
		t.Fatalf("prepareColumns: %v", err)
	}
	h1 := cols["col1"].(map[string]any)["handle"]
	h2 := cols["col2"].(map[string]any)["handle"]
	if h1 == h2 {
		t.Fatalf("duplicate handles not disambiguated: %v", h1)
	}
}

func TestPrepareColumnsStringShorthand(t *testing.T) {
	cols, err := prepareColumns([]any{
		"First Name",
		map[string]any{"heading": "Age", "type": "number"},
	})
	if err != nil {
		t.Fatalf("prepareColumns: %v", err)
	}

	first := cols["col1"].(map[string]any)
	if first["heading"] != "First Name" {
		t.Fatalf("col1 heading = %v", first["heading"])
	}
	if first["handle"] != "firstName" {
		t.Fatalf("col1 handle = %v, want camel-cased heading", first["handle"])
	}
	if first["type"] != "singleline" {
		t.Fatalf("col1 type = %v, want singleline", first["type"])
	}
	if cols["col2"].(map[string]any)["type"] != "number" {
		t.Fatalf("col2 = %v", cols["col2"])
	}
}

func TestPrepareColumnsErrors(t *testing.T) {
	if _, err := prepareColumns(nil); err == nil {
		t.Fatal("expected error for empty columns")
	}
	if _, err := prepareColumns([]any{map[string]any{"type": "number"}}); err == nil {
		t.Fatal("expected error for column without heading")
	}
	if _, err := prepareColumns([]any{float64(3)}); err == nil {
		t.Fatal("expected error for non-object, non-string column")
	}
	if _, err := prepareColumns([]any{""}); err == nil {
		t.Fatal("expected error for empty shorthand heading")
	}
}
