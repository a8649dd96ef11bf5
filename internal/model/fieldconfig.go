package model

// FieldConfig is the declarative configuration for one field, as emitted by
// the planner: name, handle, field_type, plus per-kind settings either at
// the root or nested under "settings". Factories receive the normalized
// (flattened) form.
type FieldConfig map[string]any

// Name returns the display name.
func (c FieldConfig) Name() string { return c.GetString("name") }

// Handle returns the machine handle.
func (c FieldConfig) Handle() string { return c.GetString("handle") }

// Kind returns the field kind identifier (the "field_type" key).
func (c FieldConfig) Kind() string { return c.GetString("field_type") }

// Instructions returns the author-facing instructions text.
func (c FieldConfig) Instructions() string { return c.GetString("instructions") }

// Searchable reports whether the field content should be indexed.
func (c FieldConfig) Searchable() bool { return c.GetBool("searchable", false) }

// Normalize returns a copy with the "settings" object flattened into the
// root. Root-level keys win over settings keys of the same name, matching
// how plans are authored (root keys are the canonical identity fields).
func (c FieldConfig) Normalize() FieldConfig {
	out := make(FieldConfig, len(c))
	if settings, ok := c["settings"].(map[string]any); ok {
		for k, v := range settings {
			out[k] = v
		}
	}
	for k, v := range c {
		if k == "settings" {
			continue
		}
		out[k] = v
	}
	return out
}

// Has reports whether the key is present.
func (c FieldConfig) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// GetString returns the string value for key, or "" when absent or not a
// string.
func (c FieldConfig) GetString(key string) string {
	if s, ok := c[key].(string); ok {
		return s
	}
	return ""
}

// GetBool returns the bool value for key, or fallback when absent.
func (c FieldConfig) GetBool(key string, fallback bool) bool {
	if b, ok := c[key].(bool); ok {
		return b
	}
	return fallback
}

// GetInt returns the integer value for key. JSON numbers decode as float64,
// so both representations are accepted.
func (c FieldConfig) GetInt(key string, fallback int) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

// GetFloat returns the numeric value for key, or fallback when absent.
func (c FieldConfig) GetFloat(key string, fallback float64) float64 {
	switch v := c[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return fallback
}

// GetSlice returns the list value for key, or nil.
func (c FieldConfig) GetSlice(key string) []any {
	if s, ok := c[key].([]any); ok {
		return s
	}
	return nil
}

// GetStringSlice returns the list value for key with every element coerced
// to a string; non-string elements are skipped.
func (c FieldConfig) GetStringSlice(key string) []string {
	raw := c.GetSlice(key)
	if raw == nil {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// GetMap returns the object value for key, or nil.
func (c FieldConfig) GetMap(key string) map[string]any {
	if m, ok := c[key].(map[string]any); ok {
		return m
	}
	return nil
}
