// Package ledger persists operation records (what each executed batch
// created) and undoes them. Records live as one JSON file per batch under
// the storage directory, named by the record ID.
package ledger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fieldagent/fieldagent/internal/model"
)

// FileStore reads and writes operation records under a directory.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// NewFileStore opens (creating if needed) the record directory.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating record directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Dir returns the record directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes the record to its file, replacing any previous version.
func (s *FileStore) Save(record *model.OperationRecord) error {
	if record.ID == "" {
		return fmt.Errorf("record has no ID")
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", record.ID, err)
	}
	if err := os.WriteFile(s.path(record.ID), data, 0o644); err != nil {
		return fmt.Errorf("writing record %s: %w", record.ID, err)
	}
	return nil
}

// Get loads one record by ID. A missing record is (nil, nil).
func (s *FileStore) Get(id string) (*model.OperationRecord, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading record %s: %w", id, err)
	}
	var record model.OperationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", id, err)
	}
	record.NormalizeStatus()
	return &record, nil
}

// List loads every record, newest first. Files that fail to decode are
// logged and skipped so one corrupt record cannot hide the rest.
func (s *FileStore) List() ([]*model.OperationRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading record directory %s: %w", s.dir, err)
	}
	var records []*model.OperationRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		record, err := s.Get(id)
		if err != nil {
			s.logger.Warn("skipping unreadable operation record", "id", id, "error", err)
			continue
		}
		if record != nil {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Timestamp != records[j].Timestamp {
			return records[i].Timestamp > records[j].Timestamp
		}
		return records[i].ID > records[j].ID
	})
	return records, nil
}

// Delete removes a record file. Deleting a missing record is an error.
func (s *FileStore) Delete(id string) error {
	if err := os.Remove(s.path(id)); err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	return nil
}

// MarkRolledBack flips the record status to rolled_back and persists it.
func (s *FileStore) MarkRolledBack(id string) error {
	record, err := s.Get(id)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("operation %s not found", id)
	}
	record.Status = model.RecordRolledBack
	return s.Save(record)
}

// Prune deletes every rolled-back record and returns how many were
// removed.
func (s *FileStore) Prune() (int, error) {
	records, err := s.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, record := range records {
		if !record.RolledBack() {
			continue
		}
		if err := s.Delete(record.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Cleanup keeps the newest max records and deletes the rest, returning the
// IDs removed. A non-positive max disables cleanup.
func (s *FileStore) Cleanup(max int) ([]string, error) {
	if max <= 0 {
		return nil, nil
	}
	records, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(records) <= max {
		return nil, nil
	}
	var removed []string
	for _, record := range records[max:] {
		if err := s.Delete(record.ID); err != nil {
			return removed, err
		}
		removed = append(removed, record.ID)
	}
	return removed, nil
}
