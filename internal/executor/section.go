package executor

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/schema"
)

func (r *run) createSectionOp(ctx context.Context, cfg *model.SectionConfig) model.OpResult {
	if cfg == nil {
		return failure("create section operation has no section config")
	}
	if cfg.Handle == "" {
		return failure("section config has no handle")
	}

	sectionType := schema.SectionType(cfg.Type)
	if cfg.Type == "" {
		sectionType = schema.SectionChannel
	}
	if !sectionType.IsValid() {
		return failuref("unknown section type %q", cfg.Type)
	}

	if existing, err := r.store.SectionByHandle(ctx, cfg.Handle); err != nil {
		return failuref("checking section handle %q: %v", cfg.Handle, err)
	} else if existing != nil {
		return failuref("a section with handle %q already exists", cfg.Handle)
	}

	// Resolve every referenced entry type before touching the store: a
	// section with a partially resolved entry type list is worse than no
	// section at all.
	var handles []string
	var missing []string
	for _, ref := range cfg.EntryTypes {
		entryType, err := r.resolveEntryType(ctx, ref.Handle)
		if err != nil {
			return failure(err.Error())
		}
		if entryType == nil {
			missing = append(missing, ref.Handle)
			continue
		}
		handles = append(handles, entryType.Handle)
	}
	if len(missing) > 0 {
		return failuref("section %q: entry types not found: %s", cfg.Handle, strings.Join(missing, ", "))
	}

	var defaultCreated *schema.EntryType
	if len(handles) == 0 {
		// A section cannot exist without an entry type; synthesize one
		// mirroring the section when the plan configured none.
		etc := cfg.DefaultEntryType
		if etc == nil {
			etc = &model.EntryTypeConfig{Name: cfg.Name, Handle: cfg.Handle}
		}
		entryType, err := r.createEntryType(ctx, etc)
		if err != nil {
			return failuref("section %q: creating default entry type: %v", cfg.Handle, err)
		}
		defaultCreated = entryType
		handles = append(handles, entryType.Handle)
	}

	section := &schema.Section{
		Name:             cfg.Name,
		Handle:           cfg.Handle,
		Type:             sectionType,
		EntryTypeHandles: handles,
		EnableVersioning: cfg.EnableVersioning == nil || *cfg.EnableVersioning,
		MaxLevels:        cfg.MaxLevels,
		HasURLs:          cfg.HasURLs == nil || *cfg.HasURLs,
	}
	if section.HasURLs {
		section.URIFormat = cfg.URI
		if section.URIFormat == "" {
			section.URIFormat = defaultURIFormat(cfg.Handle, sectionType)
		}
		section.Template = cfg.Template
		if section.Template == "" {
			section.Template = cfg.Handle + "/_entry"
		}
	}

	if err := r.store.SaveSection(ctx, section); err != nil {
		return failuref("saving section %q: %v", cfg.Handle, err)
	}

	result := model.OpResult{
		Success: true,
		Message: fmt.Sprintf("Created section %q (%s)", section.Name, section.Handle),
		Created: &model.ArtifactRef{
			Type:   model.TargetSection.String(),
			Handle: section.Handle,
			Name:   section.Name,
			ID:     section.ID,
		},
	}
	if defaultCreated != nil {
		result.Message += fmt.Sprintf(" with default entry type %q", defaultCreated.Handle)
		result.Blocks = &model.BlockSummary{
			EntryTypes: []model.ArtifactRef{{
				Type:   model.TargetEntryType.String(),
				Handle: defaultCreated.Handle,
				Name:   defaultCreated.Name,
				ID:     defaultCreated.ID,
			}},
		}
	}
	return result
}

// defaultURIFormat derives the URI pattern for a section that asked for
// URLs without specifying one. Singles get a fixed page URI; everything
// else nests entries under the section slug.
func defaultURIFormat(handle string, sectionType schema.SectionType) string {
	base := kebab(handle)
	if sectionType == schema.SectionSingle {
		return base
	}
	return base + "/{slug}"
}

// kebab converts a camelCase handle to kebab-case for URI segments.
func kebab(handle string) string {
	var sb strings.Builder
	for i, r := range handle {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (r *run) createCategoryGroupOp(ctx context.Context, cfg *model.GroupConfig) model.OpResult {
	if cfg == nil {
		return failure("create categoryGroup operation has no group config")
	}
	if existing, err := r.store.CategoryGroupByHandle(ctx, cfg.Handle); err != nil {
		return failuref("checking category group handle %q: %v", cfg.Handle, err)
	} else if existing != nil {
		return failuref("a category group with handle %q already exists", cfg.Handle)
	}

	group := &schema.CategoryGroup{
		Name:      cfg.Name,
		Handle:    cfg.Handle,
		MaxLevels: cfg.MaxLevels,
		HasURLs:   cfg.HasURLs,
	}
	if group.HasURLs {
		group.URIFormat = cfg.URI
		if group.URIFormat == "" {
			group.URIFormat = kebab(cfg.Handle) + "/{slug}"
		}
		group.Template = cfg.Template
	}
	if err := r.store.SaveCategoryGroup(ctx, group); err != nil {
		return failuref("saving category group %q: %v", cfg.Handle, err)
	}
	return model.OpResult{
		Success: true,
		Message: fmt.Sprintf("Created category group %q (%s)", group.Name, group.Handle),
		Created: &model.ArtifactRef{
			Type:   model.TargetCategoryGroup.String(),
			Handle: group.Handle,
			Name:   group.Name,
			ID:     group.ID,
		},
	}
}

func (r *run) createTagGroupOp(ctx context.Context, cfg *model.GroupConfig) model.OpResult {
	if cfg == nil {
		return failure("create tagGroup operation has no group config")
	}
	if existing, err := r.store.TagGroupByHandle(ctx, cfg.Handle); err != nil {
		return failuref("checking tag group handle %q: %v", cfg.Handle, err)
	} else if existing != nil {
		return failuref("a tag group with handle %q already exists", cfg.Handle)
	}

	group := &schema.TagGroup{Name: cfg.Name, Handle: cfg.Handle}
	if err := r.store.SaveTagGroup(ctx, group); err != nil {
		return failuref("saving tag group %q: %v", cfg.Handle, err)
	}
	return model.OpResult{
		Success: true,
		Message: fmt.Sprintf("Created tag group %q (%s)", group.Name, group.Handle),
		Created: &model.ArtifactRef{
			Type:   model.TargetTagGroup.String(),
			Handle: group.Handle,
			Name:   group.Name,
			ID:     group.ID,
		},
	}
}
