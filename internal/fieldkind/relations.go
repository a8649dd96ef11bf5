package fieldkind

import (
	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/registry"
	"github.com/fieldagent/fieldagent/internal/schema"
)

// relationDefinitions covers the relational kinds. The asset family comes
// in three flavors: "asset" relates to a single file, "assets" to any
// number, and "image" is a single file restricted to image kinds.
func relationDefinitions() []registry.Definition {
	return []registry.Definition{
		{
			Kind:        "asset",
			EngineClass: schema.ClassAssets,
			DisplayName: "Asset",
			Summary:     "Single related file.",
			Settings: []registry.SettingDoc{
				{Name: "sources", Type: "array", Description: "Volume sources; \"*\" or omitted means all."},
			},
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				field := baseField(cfg, "asset", schema.ClassAssets)
				field.SetSetting("sources", normalizeSources(cfg))
				field.SetSetting("maxRelations", 1)
				field.SetSetting("viewMode", viewModeOr(cfg, "list"))
				return field, nil
			},
			Updater: registry.GenericUpdater,
		},
		{
			Kind:        "assets",
			EngineClass: schema.ClassAssets,
			DisplayName: "Assets",
			Summary:     "Any number of related files.",
			Settings: []registry.SettingDoc{
				{Name: "sources", Type: "array", Description: "Volume sources; \"*\" or omitted means all."},
				{Name: "maxRelations", Type: "integer", Description: "Upper bound; omitted means unbounded."},
				{Name: "minRelations", Type: "integer"},
			},
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				field := baseField(cfg, "assets", schema.ClassAssets)
				field.SetSetting("sources", normalizeSources(cfg))
				field.SetSetting("viewMode", viewModeOr(cfg, "list"))
				setIfPresent(field, cfg, "maxRelations", "minRelations")
				return field, nil
			},
			Updater: registry.GenericUpdater,
		},
		{
			Kind:        "image",
			EngineClass: schema.ClassAssets,
			DisplayName: "Image",
			Summary:     "Single related image; uploads are restricted to image files.",
			Settings: []registry.SettingDoc{
				{Name: "sources", Type: "array", Description: "Volume sources; \"*\" or omitted means all."},
				{Name: "maxRelations", Type: "integer", Description: "Defaults to 1."},
			},
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				field := baseField(cfg, "image", schema.ClassAssets)
				field.SetSetting("sources", normalizeSources(cfg))
				field.SetSetting("allowedKinds", []string{"image"})
				field.SetSetting("restrictFiles", true)
				field.SetSetting("maxRelations", cfg.GetInt("maxRelations", 1))
				field.SetSetting("viewMode", viewModeOr(cfg, "large"))
				return field, nil
			},
			Updater: registry.GenericUpdater,
		},
		{
			Kind:        "entries",
			Aliases:     []string{"entry"},
			EngineClass: schema.ClassEntries,
			DisplayName: "Entries",
			Summary:     "Related entries from selected sections.",
			Settings: []registry.SettingDoc{
				{Name: "sources", Type: "array", Description: "Section sources; \"*\" or omitted means all."},
				{Name: "maxRelations", Type: "integer"},
			},
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				field := baseField(cfg, "entries", schema.ClassEntries)
				field.SetSetting("sources", normalizeSources(cfg))
				setIfPresent(field, cfg, "maxRelations")
				return field, nil
			},
			Updater: registry.GenericUpdater,
		},
		{
			Kind:        "categories",
			Aliases:     []string{"category"},
			EngineClass: schema.ClassCategories,
			DisplayName: "Categories",
			Summary:     "Related categories from selected groups.",
			Settings: []registry.SettingDoc{
				{Name: "sources", Type: "array", Description: "Category group sources; \"*\" or omitted means all."},
				{Name: "maxRelations", Type: "integer"},
			},
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				field := baseField(cfg, "categories", schema.ClassCategories)
				field.SetSetting("sources", normalizeSources(cfg))
				setIfPresent(field, cfg, "maxRelations")
				return field, nil
			},
			Updater: registry.GenericUpdater,
		},
		{
			Kind:        "users",
			Aliases:     []string{"user"},
			EngineClass: schema.ClassUsers,
			DisplayName: "Users",
			Summary:     "Related user accounts.",
			Settings: []registry.SettingDoc{
				{Name: "sources", Type: "array", Description: "User group sources; \"*\" or omitted means all."},
				{Name: "maxRelations", Type: "integer"},
			},
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				field := baseField(cfg, "users", schema.ClassUsers)
				field.SetSetting("sources", normalizeSources(cfg))
				setIfPresent(field, cfg, "maxRelations")
				return field, nil
			},
			Updater: registry.GenericUpdater,
		},
		{
			Kind:        "tags",
			EngineClass: schema.ClassTags,
			DisplayName: "Tags",
			Summary:     "Tags from one tag group.",
			Settings: []registry.SettingDoc{
				{Name: "source", Type: "string", Description: "Tag group source."},
			},
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				field := baseField(cfg, "tags", schema.ClassTags)
				setIfPresent(field, cfg, "source")
				return field, nil
			},
			Updater: registry.GenericUpdater,
		},
	}
}

// normalizeSources resolves the accepted sources forms to either "*"
// (unrestricted) or a non-empty string list. An absent or empty value,
// and a list that resolves to nothing, both mean unrestricted.
func normalizeSources(cfg model.FieldConfig) any {
	switch v := cfg["sources"].(type) {
	case string:
		if v == "" || v == "*" {
			return "*"
		}
		return []string{v}
	case []any:
		list := cfg.GetStringSlice("sources")
		filtered := list[:0]
		for _, s := range list {
			if s == "" {
				continue
			}
			if s == "*" {
				return "*"
			}
			filtered = append(filtered, s)
		}
		if len(filtered) == 0 {
			return "*"
		}
		return filtered
	}
	return "*"
}

func viewModeOr(cfg model.FieldConfig, fallback string) string {
	if vm := cfg.GetString("viewMode"); vm != "" {
		return vm
	}
	return fallback
}
