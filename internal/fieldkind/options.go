package fieldkind

import "fmt"

// prepareOptions normalizes a raw options list into the canonical
// {label, value, default} form the engine expects. Accepted input shapes:
//
//   - a bare string, which becomes both label and value
//   - an object with label and/or value, each falling back to the other
//
// The default flag is coerced to a bool and defaults to false. Button
// groups additionally carry an icon key, preserved when present. The
// normalization is idempotent: feeding its output back in produces the
// same result.
func prepareOptions(raw []any) ([]map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]map[string]any, 0, len(raw))
	for i, item := range raw {
		switch v := item.(type) {
		case string:
			out = append(out, map[string]any{
				"label":   v,
				"value":   v,
				"default": false,
			})
		case map[string]any:
			label, _ := v["label"].(string)
			value, _ := v["value"].(string)
			if label == "" && value == "" {
				return nil, fmt.Errorf("option %d has neither label nor value", i)
			}
			if label == "" {
				label = value
			}
			if value == "" {
				value = label
			}
			opt := map[string]any{
				"label":   label,
				"value":   value,
				"default": coerceBool(v["default"]),
			}
			if icon, ok := v["icon"].(string); ok && icon != "" {
				opt["icon"] = icon
			}
			out = append(out, opt)
		default:
			return nil, fmt.Errorf("option %d has unsupported type %T", i, item)
		}
	}
	return out, nil
}

// coerceBool interprets the loose truthy forms plans use for flags.
func coerceBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true" || b == "1" || b == "yes"
	case float64:
		return b != 0
	case int:
		return b != 0
	}
	return false
}
