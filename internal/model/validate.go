package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors. Validation
// problems are collected and returned together so callers can report every
// issue in one pass instead of failing on the first.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field
// messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// ValidatePlan checks a plan document for structural problems. It returns a
// *ValidationError listing every violation, or nil when the plan is valid.
// Per-kind field settings are validated separately by the field registry.
func ValidatePlan(p *PlanDocument) error {
	var ve ValidationError

	if p == nil {
		ve.add("plan", "is required")
		return &ve
	}
	if len(p.Operations) == 0 {
		ve.add("operations", "must contain at least one operation")
	}

	for i, op := range p.Operations {
		prefix := fmt.Sprintf("operations[%d]", i)

		if !op.Type.IsValid() {
			ve.add(prefix+".type", "invalid value %q", op.Type)
		}
		if !op.Target.IsValid() {
			ve.add(prefix+".target", "invalid value %q", op.Target)
		}

		switch op.Type {
		case OpCreate:
			validateCreate(&ve, prefix, op)
		case OpModify:
			if op.TargetID == "" {
				ve.add(prefix+".targetId", "is required for modify operations")
			}
			if op.Modify == nil || len(op.Modify.Actions) == 0 {
				ve.add(prefix+".modify.actions", "must contain at least one action")
			}
		case OpDelete:
			if op.TargetID == "" {
				ve.add(prefix+".targetId", "is required for delete operations")
			}
		}
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

func validateCreate(ve *ValidationError, prefix string, op Operation) {
	if op.Create == nil {
		ve.add(prefix+".create", "payload is required for create operations")
		return
	}

	switch op.Target {
	case TargetField:
		if op.Create.Field == nil {
			ve.add(prefix+".create.field", "is required")
			return
		}
		cfg := op.Create.Field
		if cfg.Name() == "" {
			ve.add(prefix+".create.field.name", "is required")
		}
		if cfg.Handle() == "" {
			ve.add(prefix+".create.field.handle", "is required")
		}
		if cfg.Kind() == "" {
			ve.add(prefix+".create.field.field_type", "is required")
		}
	case TargetEntryType:
		et := op.Create.EntryType
		if et == nil {
			ve.add(prefix+".create.entryType", "is required")
			return
		}
		if et.Name == "" {
			ve.add(prefix+".create.entryType.name", "is required")
		}
		if et.Handle == "" {
			ve.add(prefix+".create.entryType.handle", "is required")
		}
	case TargetSection:
		s := op.Create.Section
		if s == nil {
			ve.add(prefix+".create.section", "is required")
			return
		}
		if s.Name == "" && s.Handle == "" {
			ve.add(prefix+".create.section", "requires a name or a handle")
		}
		if s.Type != "" && s.Type != "single" && s.Type != "channel" && s.Type != "structure" {
			ve.add(prefix+".create.section.type", "invalid value %q (want single, channel, or structure)", s.Type)
		}
	case TargetCategoryGroup:
		validateGroup(ve, prefix+".create.categoryGroup", op.Create.CategoryGroup)
	case TargetTagGroup:
		validateGroup(ve, prefix+".create.tagGroup", op.Create.TagGroup)
	}
}

func validateGroup(ve *ValidationError, prefix string, g *GroupConfig) {
	if g == nil {
		ve.add(prefix, "is required")
		return
	}
	if g.Name == "" {
		ve.add(prefix+".name", "is required")
	}
	if g.Handle == "" {
		ve.add(prefix+".handle", "is required")
	}
}
