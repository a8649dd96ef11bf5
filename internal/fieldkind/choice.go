package fieldkind

import (
	"fmt"

	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/registry"
	"github.com/fieldagent/fieldagent/internal/schema"
)

// choiceDefinitions covers the options-backed kinds. They share option
// normalization and a non-empty-options validator.
func choiceDefinitions() []registry.Definition {
	optionSettings := []registry.SettingDoc{
		{Name: "options", Type: "array", Description: "Option list; bare strings or {label, value, default} objects."},
	}
	return []registry.Definition{
		{
			Kind:        "dropdown",
			Aliases:     []string{"select"},
			EngineClass: schema.ClassDropdown,
			DisplayName: "Dropdown",
			Summary:     "Single choice from a dropdown.",
			Settings:    optionSettings,
			Factory:     optionsFactory("dropdown", schema.ClassDropdown),
			Updater:     optionsUpdater,
			Validator:   validateOptions,
		},
		{
			Kind:        "checkboxes",
			EngineClass: schema.ClassCheckboxes,
			DisplayName: "Checkboxes",
			Summary:     "Multiple choices from checkboxes.",
			Settings:    optionSettings,
			Factory:     optionsFactory("checkboxes", schema.ClassCheckboxes),
			Updater:     optionsUpdater,
			Validator:   validateOptions,
		},
		{
			Kind:        "radio_buttons",
			Aliases:     []string{"radio"},
			EngineClass: schema.ClassRadioButtons,
			DisplayName: "Radio Buttons",
			Summary:     "Single choice from radio buttons.",
			Settings:    optionSettings,
			Factory:     optionsFactory("radio_buttons", schema.ClassRadioButtons),
			Updater:     optionsUpdater,
			Validator:   validateOptions,
		},
		{
			Kind:        "multi_select",
			Aliases:     []string{"multiselect"},
			EngineClass: schema.ClassMultiSelect,
			DisplayName: "Multi-select",
			Summary:     "Multiple choices from a select box.",
			Settings:    optionSettings,
			Factory:     optionsFactory("multi_select", schema.ClassMultiSelect),
			Updater:     optionsUpdater,
			Validator:   validateOptions,
		},
		{
			Kind:        "button_group",
			EngineClass: schema.ClassButtonGroup,
			DisplayName: "Button Group",
			Summary:     "Single choice rendered as a button row; options may carry an icon.",
			Settings: []registry.SettingDoc{
				{Name: "options", Type: "array", Description: "Option list; objects may include an icon key."},
			},
			Factory:   optionsFactory("button_group", schema.ClassButtonGroup),
			Updater:   optionsUpdater,
			Validator: validateOptions,
		},
	}
}

func optionsFactory(kind, engineClass string) registry.Factory {
	return func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
		field := baseField(cfg, kind, engineClass)
		options, err := prepareOptions(cfg.GetSlice("options"))
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", cfg.Handle(), err)
		}
		field.SetSetting("options", options)
		return field, nil
	}
}

// optionsUpdater re-normalizes an incoming options list, then hands the
// rest of the update to the generic path.
func optionsUpdater(fctx *registry.Context, field *schema.Field, updates map[string]any) ([]string, error) {
	if raw, ok := updates["options"].([]any); ok {
		options, err := prepareOptions(raw)
		if err != nil {
			return nil, err
		}
		field.SetSetting("options", options)
		rest := make(map[string]any, len(updates))
		for k, v := range updates {
			if k != "options" {
				rest[k] = v
			}
		}
		changes, err := registry.GenericUpdater(fctx, field, rest)
		if err != nil {
			return nil, err
		}
		return append(changes, fmt.Sprintf("Updated options (%d entries)", len(options))), nil
	}
	return registry.GenericUpdater(fctx, field, updates)
}

func validateOptions(cfg model.FieldConfig) error {
	raw := cfg.GetSlice("options")
	if len(raw) == 0 {
		return fmt.Errorf("options must not be empty")
	}
	_, err := prepareOptions(raw)
	return err
}
