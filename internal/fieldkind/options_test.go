package fieldkind

import (
	"reflect"
	"testing"
)

func TestPrepareOptions(t *testing.T) {
	tests := []struct {
		name    string
		in      []any
		want    []map[string]any
		wantErr bool
	}{
		{
			name: "bare strings",
			in:   []any{"Draft", "Published"},
			want: []map[string]any{
				{"label": "Draft", "value": "Draft", "default": false},
				{"label": "Published", "value": "Published", "default": false},
			},
		},
		{
			name: "label falls back to value",
			in:   []any{map[string]any{"value": "draft"}},
			want: []map[string]any{
				{"label": "draft", "value": "draft", "default": false},
			},
		},
		{
			name: "value falls back to label",
			in:   []any{map[string]any{"label": "Draft"}},
			want: []map[string]any{
				{"label": "Draft", "value": "Draft", "default": false},
			},
		},
		{
			name: "default coerced from string",
			in:   []any{map[string]any{"label": "Draft", "value": "draft", "default": "true"}},
			want: []map[string]any{
				{"label": "Draft", "value": "draft", "default": true},
			},
		},
		{
			name: "icon preserved",
			in:   []any{map[string]any{"label": "Left", "value": "left", "icon": "align-left"}},
			want: []map[string]any{
				{"label": "Left", "value": "left", "default": false, "icon": "align-left"},
			},
		},
		{
			name: "empty list",
			in:   nil,
			want: nil,
		},
		{
			name:    "neither label nor value",
			in:      []any{map[string]any{"default": true}},
			wantErr: true,
		},
		{
			name:    "unsupported element type",
			in:      []any{42},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := prepareOptions(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("prepareOptions: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrepareOptionsIdempotent(t *testing.T) {
	in := []any{"Draft", map[string]any{"label": "Live", "default": true}}
	first, err := prepareOptions(in)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}

	roundTrip := make([]any, len(first))
	for i, opt := range first {
		roundTrip[i] = map[string]any(opt)
	}
	second, err := prepareOptions(roundTrip)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("not idempotent:\nfirst  %v\nsecond %v", first, second)
	}
}

func TestCoerceBool(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{true, true},
		{false, false},
		{"true", true},
		{"1", true},
		{"yes", true},
		{"no", false},
		{float64(1), true},
		{float64(0), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := coerceBool(tt.in); got != tt.want {
			t.Errorf("coerceBool(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
