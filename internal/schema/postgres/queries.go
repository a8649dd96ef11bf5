package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/fieldagent/fieldagent/internal/schema"
)

// fieldColumns is the column list used for SELECT statements on the fields table.
const fieldColumns = `id, name, handle, kind, engine_class, instructions, searchable, settings`

// entryTypeColumns is the column list for the entry_types table.
const entryTypeColumns = `id, name, handle, has_title_field, title_format, layout`

// sectionColumns is the column list for the sections table.
const sectionColumns = `id, name, handle, type, entry_types, enable_versioning, max_levels, has_urls, uri_format, template`

// categoryGroupColumns is the column list for the category_groups table.
const categoryGroupColumns = `id, name, handle, max_levels, has_urls, uri_format, template`

// tagGroupColumns is the column list for the tag_groups table.
const tagGroupColumns = `id, name, handle`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (duplicate handle).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func blankHandleError(artifact string) *schema.SaveError {
	return &schema.SaveError{Artifact: artifact, Errors: map[string][]string{
		"handle": {"cannot be blank"},
	}}
}

func takenHandleError(artifact, handle string) *schema.SaveError {
	return &schema.SaveError{Artifact: artifact, Handle: handle, Errors: map[string][]string{
		"handle": {fmt.Sprintf("handle %q is already taken", handle)},
	}}
}

func querySaveField(ctx context.Context, db executor, f *schema.Field) error {
	if f.Handle == "" {
		return blankHandleError("field")
	}

	settings, err := marshalJSONB(f.Settings)
	if err != nil {
		return fmt.Errorf("marshal field settings: %w", err)
	}

	if f.ID == 0 {
		err := db.QueryRowContext(ctx, `
			INSERT INTO fields (name, handle, kind, engine_class, instructions, searchable, settings)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			f.Name, f.Handle, f.Kind, f.EngineClass, f.Instructions, f.Searchable, settings,
		).Scan(&f.ID)
		if isUniqueViolation(err) {
			return takenHandleError("field", f.Handle)
		}
		return err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE fields
		SET name = $1, handle = $2, kind = $3, engine_class = $4,
			instructions = $5, searchable = $6, settings = $7, updated_at = now()
		WHERE id = $8`,
		f.Name, f.Handle, f.Kind, f.EngineClass, f.Instructions, f.Searchable, settings, f.ID,
	)
	if isUniqueViolation(err) {
		return takenHandleError("field", f.Handle)
	}
	if err != nil {
		return err
	}
	return requireRow(res, fmt.Sprintf("field %q not found", f.Handle))
}

func queryDeleteField(ctx context.Context, db executor, handle string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM fields WHERE handle = $1`, handle)
	if err != nil {
		return err
	}
	return requireRow(res, fmt.Sprintf("field %q not found", handle))
}

func queryFieldByHandle(ctx context.Context, db executor, handle string) (*schema.Field, error) {
	row := db.QueryRowContext(ctx, `SELECT `+fieldColumns+` FROM fields WHERE handle = $1`, handle)
	return noRowsNil(scanField(row))
}

func queryFieldByID(ctx context.Context, db executor, id int64) (*schema.Field, error) {
	row := db.QueryRowContext(ctx, `SELECT `+fieldColumns+` FROM fields WHERE id = $1`, id)
	return noRowsNil(scanField(row))
}

func queryListFields(ctx context.Context, db executor) ([]*schema.Field, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+fieldColumns+` FROM fields ORDER BY handle`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFields(rows)
}

func querySaveEntryType(ctx context.Context, db executor, et *schema.EntryType) error {
	if et.Handle == "" {
		return blankHandleError("entry type")
	}

	layout, err := marshalJSONB(et.Layout)
	if err != nil {
		return fmt.Errorf("marshal entry type layout: %w", err)
	}

	if et.ID == 0 {
		err := db.QueryRowContext(ctx, `
			INSERT INTO entry_types (name, handle, has_title_field, title_format, layout)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			et.Name, et.Handle, et.HasTitleField, et.TitleFormat, layout,
		).Scan(&et.ID)
		if isUniqueViolation(err) {
			return takenHandleError("entry type", et.Handle)
		}
		return err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE entry_types
		SET name = $1, handle = $2, has_title_field = $3, title_format = $4,
			layout = $5, updated_at = now()
		WHERE id = $6`,
		et.Name, et.Handle, et.HasTitleField, et.TitleFormat, layout, et.ID,
	)
	if isUniqueViolation(err) {
		return takenHandleError("entry type", et.Handle)
	}
	if err != nil {
		return err
	}
	return requireRow(res, fmt.Sprintf("entry type %q not found", et.Handle))
}

func queryDeleteEntryType(ctx context.Context, db executor, handle string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM entry_types WHERE handle = $1`, handle)
	if err != nil {
		return err
	}
	return requireRow(res, fmt.Sprintf("entry type %q not found", handle))
}

func queryEntryTypeByHandle(ctx context.Context, db executor, handle string) (*schema.EntryType, error) {
	row := db.QueryRowContext(ctx, `SELECT `+entryTypeColumns+` FROM entry_types WHERE handle = $1`, handle)
	return noRowsNil(scanEntryType(row))
}

func queryEntryTypeByID(ctx context.Context, db executor, id int64) (*schema.EntryType, error) {
	row := db.QueryRowContext(ctx, `SELECT `+entryTypeColumns+` FROM entry_types WHERE id = $1`, id)
	return noRowsNil(scanEntryType(row))
}

func queryListEntryTypes(ctx context.Context, db executor) ([]*schema.EntryType, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+entryTypeColumns+` FROM entry_types ORDER BY handle`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntryTypes(rows)
}

func querySaveSection(ctx context.Context, db executor, sec *schema.Section) error {
	if sec.Handle == "" {
		return blankHandleError("section")
	}
	if len(sec.EntryTypeHandles) == 0 {
		return &schema.SaveError{Artifact: "section", Handle: sec.Handle, Errors: map[string][]string{
			"entryTypes": {"at least one entry type is required"},
		}}
	}

	entryTypes, err := marshalJSONB(sec.EntryTypeHandles)
	if err != nil {
		return fmt.Errorf("marshal section entry types: %w", err)
	}

	if sec.ID == 0 {
		err := db.QueryRowContext(ctx, `
			INSERT INTO sections (name, handle, type, entry_types, enable_versioning, max_levels, has_urls, uri_format, template)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			sec.Name, sec.Handle, string(sec.Type), entryTypes,
			sec.EnableVersioning, sec.MaxLevels, sec.HasURLs, sec.URIFormat, sec.Template,
		).Scan(&sec.ID)
		if isUniqueViolation(err) {
			return takenHandleError("section", sec.Handle)
		}
		return err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE sections
		SET name = $1, handle = $2, type = $3, entry_types = $4,
			enable_versioning = $5, max_levels = $6, has_urls = $7,
			uri_format = $8, template = $9, updated_at = now()
		WHERE id = $10`,
		sec.Name, sec.Handle, string(sec.Type), entryTypes,
		sec.EnableVersioning, sec.MaxLevels, sec.HasURLs, sec.URIFormat, sec.Template, sec.ID,
	)
	if isUniqueViolation(err) {
		return takenHandleError("section", sec.Handle)
	}
	if err != nil {
		return err
	}
	return requireRow(res, fmt.Sprintf("section %q not found", sec.Handle))
}

func queryDeleteSection(ctx context.Context, db executor, handle string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM sections WHERE handle = $1`, handle)
	if err != nil {
		return err
	}
	return requireRow(res, fmt.Sprintf("section %q not found", handle))
}

func querySectionByHandle(ctx context.Context, db executor, handle string) (*schema.Section, error) {
	row := db.QueryRowContext(ctx, `SELECT `+sectionColumns+` FROM sections WHERE handle = $1`, handle)
	return noRowsNil(scanSection(row))
}

func queryListSections(ctx context.Context, db executor) ([]*schema.Section, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+sectionColumns+` FROM sections ORDER BY handle`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSections(rows)
}

func querySaveCategoryGroup(ctx context.Context, db executor, g *schema.CategoryGroup) error {
	if g.Handle == "" {
		return blankHandleError("category group")
	}

	if g.ID == 0 {
		err := db.QueryRowContext(ctx, `
			INSERT INTO category_groups (name, handle, max_levels, has_urls, uri_format, template)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			g.Name, g.Handle, g.MaxLevels, g.HasURLs, g.URIFormat, g.Template,
		).Scan(&g.ID)
		if isUniqueViolation(err) {
			return takenHandleError("category group", g.Handle)
		}
		return err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE category_groups
		SET name = $1, handle = $2, max_levels = $3, has_urls = $4,
			uri_format = $5, template = $6, updated_at = now()
		WHERE id = $7`,
		g.Name, g.Handle, g.MaxLevels, g.HasURLs, g.URIFormat, g.Template, g.ID,
	)
	if isUniqueViolation(err) {
		return takenHandleError("category group", g.Handle)
	}
	if err != nil {
		return err
	}
	return requireRow(res, fmt.Sprintf("category group %q not found", g.Handle))
}

func queryDeleteCategoryGroup(ctx context.Context, db executor, handle string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM category_groups WHERE handle = $1`, handle)
	if err != nil {
		return err
	}
	return requireRow(res, fmt.Sprintf("category group %q not found", handle))
}

func queryCategoryGroupByHandle(ctx context.Context, db executor, handle string) (*schema.CategoryGroup, error) {
	row := db.QueryRowContext(ctx, `SELECT `+categoryGroupColumns+` FROM category_groups WHERE handle = $1`, handle)
	return noRowsNil(scanCategoryGroup(row))
}

func queryListCategoryGroups(ctx context.Context, db executor) ([]*schema.CategoryGroup, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+categoryGroupColumns+` FROM category_groups ORDER BY handle`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCategoryGroups(rows)
}

func querySaveTagGroup(ctx context.Context, db executor, g *schema.TagGroup) error {
	if g.Handle == "" {
		return blankHandleError("tag group")
	}

	if g.ID == 0 {
		err := db.QueryRowContext(ctx, `
			INSERT INTO tag_groups (name, handle)
			VALUES ($1, $2)
			RETURNING id`,
			g.Name, g.Handle,
		).Scan(&g.ID)
		if isUniqueViolation(err) {
			return takenHandleError("tag group", g.Handle)
		}
		return err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE tag_groups
		SET name = $1, handle = $2, updated_at = now()
		WHERE id = $3`,
		g.Name, g.Handle, g.ID,
	)
	if isUniqueViolation(err) {
		return takenHandleError("tag group", g.Handle)
	}
	if err != nil {
		return err
	}
	return requireRow(res, fmt.Sprintf("tag group %q not found", g.Handle))
}

func queryDeleteTagGroup(ctx context.Context, db executor, handle string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM tag_groups WHERE handle = $1`, handle)
	if err != nil {
		return err
	}
	return requireRow(res, fmt.Sprintf("tag group %q not found", handle))
}

func queryTagGroupByHandle(ctx context.Context, db executor, handle string) (*schema.TagGroup, error) {
	row := db.QueryRowContext(ctx, `SELECT `+tagGroupColumns+` FROM tag_groups WHERE handle = $1`, handle)
	return noRowsNil(scanTagGroup(row))
}

func queryListTagGroups(ctx context.Context, db executor) ([]*schema.TagGroup, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+tagGroupColumns+` FROM tag_groups ORDER BY handle`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTagGroups(rows)
}

// queryUsageCount reads the mirrored usage counter for one artifact.
// A missing row means the artifact has no content and counts as zero.
func queryUsageCount(ctx context.Context, db executor, artifactType, handle string) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `
		SELECT item_count FROM usage_counts
		WHERE artifact_type = $1 AND handle = $2`,
		artifactType, handle,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// projectConfigSnapshot is the shape of the project_config payload.
type projectConfigSnapshot struct {
	RebuiltAt      time.Time               `json:"rebuiltAt"`
	Fields         []*schema.Field         `json:"fields"`
	EntryTypes     []*schema.EntryType     `json:"entryTypes"`
	Sections       []*schema.Section       `json:"sections"`
	CategoryGroups []*schema.CategoryGroup `json:"categoryGroups"`
	TagGroups      []*schema.TagGroup      `json:"tagGroups"`
}

func queryRebuildProjectConfig(ctx context.Context, db executor) error {
	snapshot := projectConfigSnapshot{RebuiltAt: time.Now().UTC()}

	var err error
	if snapshot.Fields, err = queryListFields(ctx, db); err != nil {
		return fmt.Errorf("list fields: %w", err)
	}
	if snapshot.EntryTypes, err = queryListEntryTypes(ctx, db); err != nil {
		return fmt.Errorf("list entry types: %w", err)
	}
	if snapshot.Sections, err = queryListSections(ctx, db); err != nil {
		return fmt.Errorf("list sections: %w", err)
	}
	if snapshot.CategoryGroups, err = queryListCategoryGroups(ctx, db); err != nil {
		return fmt.Errorf("list category groups: %w", err)
	}
	if snapshot.TagGroups, err = queryListTagGroups(ctx, db); err != nil {
		return fmt.Errorf("list tag groups: %w", err)
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal project config: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO project_config (key, payload, rebuilt_at)
		VALUES ('current', $1, now())
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, rebuilt_at = now()`,
		payload,
	)
	if err != nil {
		return fmt.Errorf("store project config: %w", err)
	}
	return nil
}

// requireRow returns an error with the given message when res affected no rows.
func requireRow(res sql.Result, msg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New(msg)
	}
	return nil
}
