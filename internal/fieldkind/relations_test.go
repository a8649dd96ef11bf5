package fieldkind

import (
	"reflect"
	"testing"

	"github.com/fieldagent/fieldagent/internal/model"
)

func TestNormalizeSources(t *testing.T) {
	tests := []struct {
		name string
		cfg  model.FieldConfig
		want any
	}{
		{"absent", model.FieldConfig{}, "*"},
		{"star string", model.FieldConfig{"sources": "*"}, "*"},
		{"empty string", model.FieldConfig{"sources": ""}, "*"},
		{"single string", model.FieldConfig{"sources": "volume:uploads"}, []string{"volume:uploads"}},
		{"list", model.FieldConfig{"sources": []any{"volume:uploads", "volume:docs"}}, []string{"volume:uploads", "volume:docs"}},
		{"list with star", model.FieldConfig{"sources": []any{"volume:uploads", "*"}}, "*"},
		{"empty list", model.FieldConfig{"sources": []any{}}, "*"},
		{"list of empties", model.FieldConfig{"sources": []any{"", ""}}, "*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeSources(tt.cfg)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("normalizeSources = %#v, want %#v", got, tt.want)
			}
		})
	}
}
