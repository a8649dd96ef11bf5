// Package postgres implements the schema.Store interface backed by PostgreSQL.
// It mirrors the engine's schema tables so plans can run against a real
// database instead of the in-memory store.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/fieldagent/fieldagent/internal/schema"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements schema.Store backed by a PostgreSQL database.
type Store struct {
	db *sql.DB
}

// Compile-time check that Store implements schema.Store.
var _ schema.Store = (*Store)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveField(ctx context.Context, field *schema.Field) error {
	return querySaveField(ctx, s.db, field)
}

func (s *Store) DeleteField(ctx context.Context, handle string) error {
	return queryDeleteField(ctx, s.db, handle)
}

func (s *Store) FieldByHandle(ctx context.Context, handle string) (*schema.Field, error) {
	return queryFieldByHandle(ctx, s.db, handle)
}

func (s *Store) FieldByID(ctx context.Context, id int64) (*schema.Field, error) {
	return queryFieldByID(ctx, s.db, id)
}

func (s *Store) ListFields(ctx context.Context) ([]*schema.Field, error) {
	return queryListFields(ctx, s.db)
}

func (s *Store) SaveEntryType(ctx context.Context, entryType *schema.EntryType) error {
	return querySaveEntryType(ctx, s.db, entryType)
}

func (s *Store) DeleteEntryType(ctx context.Context, handle string) error {
	return queryDeleteEntryType(ctx, s.db, handle)
}

func (s *Store) EntryTypeByHandle(ctx context.Context, handle string) (*schema.EntryType, error) {
	return queryEntryTypeByHandle(ctx, s.db, handle)
}

func (s *Store) EntryTypeByID(ctx context.Context, id int64) (*schema.EntryType, error) {
	return queryEntryTypeByID(ctx, s.db, id)
}

func (s *Store) ListEntryTypes(ctx context.Context) ([]*schema.EntryType, error) {
	return queryListEntryTypes(ctx, s.db)
}

func (s *Store) SaveSection(ctx context.Context, section *schema.Section) error {
	return querySaveSection(ctx, s.db, section)
}

func (s *Store) DeleteSection(ctx context.Context, handle string) error {
	return queryDeleteSection(ctx, s.db, handle)
}

func (s *Store) SectionByHandle(ctx context.Context, handle string) (*schema.Section, error) {
	return querySectionByHandle(ctx, s.db, handle)
}

func (s *Store) ListSections(ctx context.Context) ([]*schema.Section, error) {
	return queryListSections(ctx, s.db)
}

func (s *Store) SaveCategoryGroup(ctx context.Context, group *schema.CategoryGroup) error {
	return querySaveCategoryGroup(ctx, s.db, group)
}

func (s *Store) DeleteCategoryGroup(ctx context.Context, handle string) error {
	return queryDeleteCategoryGroup(ctx, s.db, handle)
}

func (s *Store) CategoryGroupByHandle(ctx context.Context, handle string) (*schema.CategoryGroup, error) {
	return queryCategoryGroupByHandle(ctx, s.db, handle)
}

func (s *Store) ListCategoryGroups(ctx context.Context) ([]*schema.CategoryGroup, error) {
	return queryListCategoryGroups(ctx, s.db)
}

func (s *Store) SaveTagGroup(ctx context.Context, group *schema.TagGroup) error {
	return querySaveTagGroup(ctx, s.db, group)
}

func (s *Store) DeleteTagGroup(ctx context.Context, handle string) error {
	return queryDeleteTagGroup(ctx, s.db, handle)
}

func (s *Store) TagGroupByHandle(ctx context.Context, handle string) (*schema.TagGroup, error) {
	return queryTagGroupByHandle(ctx, s.db, handle)
}

func (s *Store) ListTagGroups(ctx context.Context) ([]*schema.TagGroup, error) {
	return queryListTagGroups(ctx, s.db)
}

func (s *Store) SectionEntryCount(ctx context.Context, handle string) (int64, error) {
	return queryUsageCount(ctx, s.db, "section", handle)
}

func (s *Store) EntryTypeEntryCount(ctx context.Context, handle string) (int64, error) {
	return queryUsageCount(ctx, s.db, "entryType", handle)
}

func (s *Store) FieldContentCount(ctx context.Context, handle string) (int64, error) {
	return queryUsageCount(ctx, s.db, "field", handle)
}

func (s *Store) CategoryGroupItemCount(ctx context.Context, handle string) (int64, error) {
	return queryUsageCount(ctx, s.db, "categoryGroup", handle)
}

func (s *Store) TagGroupItemCount(ctx context.Context, handle string) (int64, error) {
	return queryUsageCount(ctx, s.db, "tagGroup", handle)
}

// RefreshFields is a no-op: SQL reads see committed writes immediately, so
// there is no index lag to clear.
func (s *Store) RefreshFields(ctx context.Context) error {
	return nil
}

// RebuildProjectConfig reserializes every artifact into the project_config
// snapshot row, clearing references to artifacts that no longer exist.
func (s *Store) RebuildProjectConfig(ctx context.Context) error {
	return queryRebuildProjectConfig(ctx, s.db)
}
