package fieldkind

import (
	"fmt"

	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/registry"
	"github.com/fieldagent/fieldagent/internal/schema"
)

// textDefinitions covers plain text, rich text, and the scalar kinds.
func textDefinitions() []registry.Definition {
	return []registry.Definition{
		{
			Kind:        "text",
			Aliases:     []string{"plain_text"},
			EngineClass: schema.ClassPlainText,
			DisplayName: "Plain Text",
			Summary:     "Single or multi-line plain text input.",
			Settings: []registry.SettingDoc{
				{Name: "multiline", Type: "boolean", Description: "Render as a textarea."},
				{Name: "initialRows", Type: "integer", Description: "Textarea height; only with multiline."},
				{Name: "charLimit", Type: "integer", Description: "Maximum character count."},
				{Name: "placeholder", Type: "string"},
			},
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				field := baseField(cfg, "text", schema.ClassPlainText)
				multiline := cfg.GetBool("multiline", false)
				field.SetSetting("multiline", multiline)
				if multiline {
					field.SetSetting("initialRows", cfg.GetInt("initialRows", 4))
				}
				setIfPresent(field, cfg, "charLimit", "placeholder")
				return field, nil
			},
			Updater: registry.GenericUpdater,
		},
		{
			Kind:        "rich_text",
			Aliases:     []string{"richtext", "ckeditor"},
			EngineClass: schema.ClassRichText,
			DisplayName: "Rich Text",
			Summary:     "Formatted text with an editor toolbar.",
			Settings: []registry.SettingDoc{
				{Name: "purifyHtml", Type: "boolean", Description: "Strip unsafe markup on save; defaults to true."},
			},
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				field := baseField(cfg, "rich_text", schema.ClassRichText)
				field.SetSetting("purifyHtml", cfg.GetBool("purifyHtml", true))
				return field, nil
			},
			Updater: registry.GenericUpdater,
		},
		{
			Kind:        "email",
			EngineClass: schema.ClassEmail,
			DisplayName: "Email",
			Summary:     "Email address input with format validation.",
			Settings: []registry.SettingDoc{
				{Name: "placeholder", Type: "string"},
			},
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				field := baseField(cfg, "email", schema.ClassEmail)
				setIfPresent(field, cfg, "placeholder")
				return field, nil
			},
			Updater: registry.GenericUpdater,
		},
		{
			Kind:        "number",
			EngineClass: schema.ClassNumber,
			DisplayName: "Number",
			Summary:     "Numeric input with optional bounds and affixes.",
			Settings: []registry.SettingDoc{
				{Name: "min", Type: "number"},
				{Name: "max", Type: "number"},
				{Name: "decimals", Type: "integer", Description: "Decimal places; 0 for integers."},
				{Name: "prefix", Type: "string"},
				{Name: "suffix", Type: "string"},
			},
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				field := baseField(cfg, "number", schema.ClassNumber)
				field.SetSetting("decimals", cfg.GetInt("decimals", 0))
				setIfPresent(field, cfg, "min", "max", "prefix", "suffix")
				return field, nil
			},
			Updater:   registry.GenericUpdater,
			Validator: validateBounds,
		},
		{
			Kind:        "money",
			EngineClass: schema.ClassMoney,
			DisplayName: "Money",
			Summary:     "Currency amount stored with its ISO currency code.",
			Settings: []registry.SettingDoc{
				{Name: "currency", Type: "string", Description: "ISO 4217 code; defaults to USD."},
				{Name: "showCurrency", Type: "boolean"},
				{Name: "min", Type: "number"},
				{Name: "max", Type: "number"},
			},
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				field := baseField(cfg, "money", schema.ClassMoney)
				currency := cfg.GetString("currency")
				if currency == "" {
					currency = "USD"
				}
				field.SetSetting("currency", currency)
				field.SetSetting("showCurrency", cfg.GetBool("showCurrency", true))
				setIfPresent(field, cfg, "min", "max")
				return field, nil
			},
			Updater:   registry.GenericUpdater,
			Validator: validateBounds,
		},
		{
			Kind:        "range",
			EngineClass: schema.ClassRange,
			DisplayName: "Range",
			Summary:     "Slider between a minimum and maximum.",
			Settings: []registry.SettingDoc{
				{Name: "min", Type: "number", Description: "Defaults to 0."},
				{Name: "max", Type: "number", Description: "Defaults to 100."},
				{Name: "step", Type: "number", Description: "Defaults to 1."},
				{Name: "suffix", Type: "string"},
			},
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				field := baseField(cfg, "range", schema.ClassRange)
				field.SetSetting("min", cfg.GetFloat("min", 0))
				field.SetSetting("max", cfg.GetFloat("max", 100))
				field.SetSetting("step", cfg.GetFloat("step", 1))
				setIfPresent(field, cfg, "suffix")
				return field, nil
			},
			Updater:   registry.GenericUpdater,
			Validator: validateBounds,
		},
		{
			Kind:        "lightswitch",
			Aliases:     []string{"boolean", "toggle"},
			EngineClass: schema.ClassLightswitch,
			DisplayName: "Lightswitch",
			Summary:     "On/off toggle.",
			Settings: []registry.SettingDoc{
				{Name: "default", Type: "boolean", Description: "Initial state for new entries."},
				{Name: "onLabel", Type: "string"},
				{Name: "offLabel", Type: "string"},
			},
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				field := baseField(cfg, "lightswitch", schema.ClassLightswitch)
				field.SetSetting("default", cfg.GetBool("default", false))
				setIfPresent(field, cfg, "onLabel", "offLabel")
				return field, nil
			},
			Updater: registry.GenericUpdater,
		},
		{
			Kind:        "date",
			Aliases:     []string{"datetime"},
			EngineClass: schema.ClassDate,
			DisplayName: "Date",
			Summary:     "Date picker, optionally with time and time zone.",
			Settings: []registry.SettingDoc{
				{Name: "showDate", Type: "boolean", Description: "Defaults to true."},
				{Name: "showTime", Type: "boolean"},
				{Name: "showTimeZone", Type: "boolean"},
			},
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				field := baseField(cfg, "date", schema.ClassDate)
				showDate := cfg.GetBool("showDate", true)
				showTime := cfg.GetBool("showTime", false)
				// A date field that shows neither part is useless; fall
				// back to showing the date.
				if !showDate && !showTime {
					showDate = true
				}
				field.SetSetting("showDate", showDate)
				field.SetSetting("showTime", showTime)
				field.SetSetting("showTimeZone", cfg.GetBool("showTimeZone", false))
				return field, nil
			},
			Updater: registry.GenericUpdater,
		},
		{
			Kind:        "time",
			EngineClass: schema.ClassTime,
			DisplayName: "Time",
			Summary:     "Time-of-day picker.",
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				return baseField(cfg, "time", schema.ClassTime), nil
			},
			Updater: registry.GenericUpdater,
		},
		{
			Kind:        "color",
			EngineClass: schema.ClassColor,
			DisplayName: "Color",
			Summary:     "Color picker with an optional preset palette.",
			Settings: []registry.SettingDoc{
				{Name: "palette", Type: "array", Description: "Preset hex values."},
				{Name: "allowCustomColors", Type: "boolean", Description: "Defaults to true."},
			},
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				field := baseField(cfg, "color", schema.ClassColor)
				field.SetSetting("allowCustomColors", cfg.GetBool("allowCustomColors", true))
				setIfPresent(field, cfg, "palette")
				return field, nil
			},
			Updater: registry.GenericUpdater,
		},
		{
			Kind:        "icon",
			EngineClass: schema.ClassIcon,
			DisplayName: "Icon",
			Summary:     "Icon picker.",
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				return baseField(cfg, "icon", schema.ClassIcon), nil
			},
			Updater: registry.GenericUpdater,
		},
		{
			Kind:        "country",
			EngineClass: schema.ClassCountry,
			DisplayName: "Country",
			Summary:     "Country selector.",
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				return baseField(cfg, "country", schema.ClassCountry), nil
			},
			Updater: registry.GenericUpdater,
		},
		{
			Kind:        "addresses",
			Aliases:     []string{"address"},
			EngineClass: schema.ClassAddresses,
			DisplayName: "Addresses",
			Summary:     "Structured postal addresses.",
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				return baseField(cfg, "addresses", schema.ClassAddresses), nil
			},
			Updater: registry.GenericUpdater,
		},
		{
			Kind:        "json",
			EngineClass: schema.ClassJSON,
			DisplayName: "JSON",
			Summary:     "Raw JSON document with syntax-checked editing.",
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				return baseField(cfg, "json", schema.ClassJSON), nil
			},
			Updater: registry.GenericUpdater,
		},
		{
			Kind:        "link",
			Aliases:     []string{"url", "hyperlink"},
			EngineClass: schema.ClassLink,
			DisplayName: "Link",
			Summary:     "Link to a URL or internal content.",
			Settings: []registry.SettingDoc{
				{Name: "types", Type: "array", Description: "Allowed link types; defaults to [\"url\"]."},
				{Name: "showLabelField", Type: "boolean"},
			},
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				field := baseField(cfg, "link", schema.ClassLink)
				types := cfg.GetStringSlice("types")
				if len(types) == 0 {
					types = []string{"url"}
				}
				field.SetSetting("types", types)
				field.SetSetting("showLabelField", cfg.GetBool("showLabelField", false))
				return field, nil
			},
			Updater: registry.GenericUpdater,
		},
	}
}

// validateBounds rejects configs whose min exceeds max.
func validateBounds(cfg model.FieldConfig) error {
	if !cfg.Has("min") || !cfg.Has("max") {
		return nil
	}
	min := cfg.GetFloat("min", 0)
	max := cfg.GetFloat("max", 0)
	if min > max {
		return fmt.Errorf("min (%v) exceeds max (%v)", min, max)
	}
	return nil
}
