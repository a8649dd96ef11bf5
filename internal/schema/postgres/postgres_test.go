package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/fieldagent/fieldagent/internal/schema"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

// fieldRowColumns is the column list for scanField results.
var fieldRowColumns = []string{
	"id", "name", "handle", "kind", "engine_class", "instructions", "searchable", "settings",
}

func TestMarshalJSONB(t *testing.T) {
	if b, err := marshalJSONB(map[string]any(nil)); err != nil || b != nil {
		t.Errorf("marshalJSONB(nil map) = %s, %v; want nil, nil", b, err)
	}
	if b, err := marshalJSONB([]string(nil)); err != nil || b != nil {
		t.Errorf("marshalJSONB(nil slice) = %s, %v; want nil, nil", b, err)
	}
	b, err := marshalJSONB(map[string]any{"rows": float64(4)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != `{"rows":4}` {
		t.Errorf("marshalJSONB = %s", b)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Error("expected unique violation for code 23505")
	}
	if isUniqueViolation(&pq.Error{Code: "42P01"}) {
		t.Error("did not expect unique violation for code 42P01")
	}
	if isUniqueViolation(errors.New("plain error")) {
		t.Error("did not expect unique violation for plain error")
	}
}

func TestQuerySaveField_Insert(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("INSERT INTO fields").
		WithArgs("Summary", "summary", "text", "craft\\fields\\PlainText", "", false, []byte(`{"multiline":true}`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	f := &schema.Field{
		Name:        "Summary",
		Handle:      "summary",
		Kind:        "text",
		EngineClass: `craft\fields\PlainText`,
		Settings:    map[string]any{"multiline": true},
	}
	if err := querySaveField(context.Background(), db, f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.ID != 7 {
		t.Errorf("expected ID 7 assigned, got %d", f.ID)
	}
}

func TestQuerySaveField_BlankHandle(t *testing.T) {
	db, _ := newMockDB(t)

	err := querySaveField(context.Background(), db, &schema.Field{Name: "No Handle"})
	var saveErr *schema.SaveError
	if !errors.As(err, &saveErr) {
		t.Fatalf("expected *schema.SaveError, got %v", err)
	}
	if saveErr.Artifact != "field" {
		t.Errorf("expected field artifact, got %q", saveErr.Artifact)
	}
}

func TestQuerySaveField_DuplicateHandle(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("INSERT INTO fields").
		WillReturnError(&pq.Error{Code: "23505"})

	f := &schema.Field{Name: "Summary", Handle: "summary", Kind: "text", EngineClass: `craft\fields\PlainText`}
	err := querySaveField(context.Background(), db, f)
	var saveErr *schema.SaveError
	if !errors.As(err, &saveErr) {
		t.Fatalf("expected *schema.SaveError, got %v", err)
	}
	if saveErr.Handle != "summary" {
		t.Errorf("expected handle summary in error, got %q", saveErr.Handle)
	}
}

func TestQuerySaveField_Update(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("UPDATE fields").
		WithArgs("Summary", "summary", "text", "craft\\fields\\PlainText", "Keep it short", true, sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	f := &schema.Field{
		ID: 7, Name: "Summary", Handle: "summary", Kind: "text",
		EngineClass: `craft\fields\PlainText`, Instructions: "Keep it short", Searchable: true,
		Settings: map[string]any{"multiline": true},
	}
	if err := querySaveField(context.Background(), db, f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryFieldByHandle(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows(fieldRowColumns).
		AddRow(int64(3), "Body", "body", "rich_text", "craft\\ckeditor\\Field", nil, true, []byte(`{"purifyHtml":true}`))
	mock.ExpectQuery("SELECT .+ FROM fields WHERE handle").
		WithArgs("body").
		WillReturnRows(rows)

	f, err := queryFieldByHandle(context.Background(), db, "body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f == nil || f.ID != 3 || f.Kind != "rich_text" {
		t.Fatalf("unexpected field: %+v", f)
	}
	if got := f.Setting("purifyHtml"); got != true {
		t.Errorf("expected purifyHtml setting true, got %v", got)
	}
}

func TestQueryFieldByHandle_Miss(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .+ FROM fields WHERE handle").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(fieldRowColumns))

	f, err := queryFieldByHandle(context.Background(), db, "ghost")
	if err != nil {
		t.Fatalf("expected nil error on miss, got %v", err)
	}
	if f != nil {
		t.Fatalf("expected nil field on miss, got %+v", f)
	}
}

func TestQueryListFields(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows(fieldRowColumns).
		AddRow(int64(1), "Body", "body", "rich_text", "craft\\ckeditor\\Field", nil, false, nil).
		AddRow(int64(2), "Summary", "summary", "text", "craft\\fields\\PlainText", nil, false, nil)
	mock.ExpectQuery("SELECT .+ FROM fields ORDER BY handle").
		WillReturnRows(rows)

	fields, err := queryListFields(context.Background(), db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Handle != "body" || fields[1].Handle != "summary" {
		t.Errorf("unexpected order: %q, %q", fields[0].Handle, fields[1].Handle)
	}
}

func TestQueryDeleteField_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("DELETE FROM fields WHERE handle").
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := queryDeleteField(context.Background(), db, "ghost")
	if err == nil {
		t.Fatal("expected error deleting missing field")
	}
}

func TestQuerySaveSection_RequiresEntryTypes(t *testing.T) {
	db, _ := newMockDB(t)

	sec := &schema.Section{Name: "Blog", Handle: "blog", Type: schema.SectionChannel}
	err := querySaveSection(context.Background(), db, sec)
	var saveErr *schema.SaveError
	if !errors.As(err, &saveErr) {
		t.Fatalf("expected *schema.SaveError, got %v", err)
	}
	if _, ok := saveErr.Errors["entryTypes"]; !ok {
		t.Errorf("expected entryTypes error, got %+v", saveErr.Errors)
	}
}

func TestQuerySectionByHandle(t *testing.T) {
	db, mock := newMockDB(t)

	cols := []string{"id", "name", "handle", "type", "entry_types", "enable_versioning", "max_levels", "has_urls", "uri_format", "template"}
	rows := sqlmock.NewRows(cols).
		AddRow(int64(4), "Blog", "blog", "channel", []byte(`["post"]`), true, 0, true, "blog/{slug}", "blog/_entry")
	mock.ExpectQuery("SELECT .+ FROM sections WHERE handle").
		WithArgs("blog").
		WillReturnRows(rows)

	sec, err := querySectionByHandle(context.Background(), db, "blog")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sec == nil || sec.Type != schema.SectionChannel {
		t.Fatalf("unexpected section: %+v", sec)
	}
	if len(sec.EntryTypeHandles) != 1 || sec.EntryTypeHandles[0] != "post" {
		t.Errorf("unexpected entry types: %v", sec.EntryTypeHandles)
	}
}

func TestQueryUsageCount(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT item_count FROM usage_counts").
		WithArgs("section", "blog").
		WillReturnRows(sqlmock.NewRows([]string{"item_count"}).AddRow(int64(12)))

	count, err := queryUsageCount(context.Background(), db, "section", "blog")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 12 {
		t.Errorf("expected count 12, got %d", count)
	}
}

func TestQueryUsageCount_Missing(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT item_count FROM usage_counts").
		WithArgs("field", "ghost").
		WillReturnRows(sqlmock.NewRows([]string{"item_count"}))

	count, err := queryUsageCount(context.Background(), db, "field", "ghost")
	if err != nil {
		t.Fatalf("expected nil error for missing counter, got %v", err)
	}
	if count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}
}

func TestQueryRebuildProjectConfig(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .+ FROM fields ORDER BY handle").
		WillReturnRows(sqlmock.NewRows(fieldRowColumns))
	mock.ExpectQuery("SELECT .+ FROM entry_types ORDER BY handle").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "handle", "has_title_field", "title_format", "layout"}))
	mock.ExpectQuery("SELECT .+ FROM sections ORDER BY handle").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "handle", "type", "entry_types", "enable_versioning", "max_levels", "has_urls", "uri_format", "template"}))
	mock.ExpectQuery("SELECT .+ FROM category_groups ORDER BY handle").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "handle", "max_levels", "has_urls", "uri_format", "template"}))
	mock.ExpectQuery("SELECT .+ FROM tag_groups ORDER BY handle").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "handle"}))
	mock.ExpectExec("INSERT INTO project_config").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryRebuildProjectConfig(context.Background(), db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
