// Package configstore persists reusable operation plans: ad hoc stored
// configs under the storage directory, plus a small set of built-in
// presets compiled into the binary.
package configstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fieldagent/fieldagent/internal/model"
)

// DefaultMaxStored bounds how many stored configs are kept before the
// oldest are dropped.
const DefaultMaxStored = 50

// Store manages stored plan configs in a directory.
type Store struct {
	dir    string
	max    int
	logger *slog.Logger
	now    func() time.Time
}

// Entry describes one stored config.
type Entry struct {
	Name       string    `json:"name"`     // filename without extension
	File       string    `json:"file"`     // full path
	StoredAt   time.Time `json:"storedAt"` // parsed from the filename
	Operations int       `json:"operations"`
}

// New opens (creating if needed) the config directory. A non-positive max
// falls back to DefaultMaxStored.
func New(dir string, max int, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if max <= 0 {
		max = DefaultMaxStored
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return &Store{dir: dir, max: max, logger: logger, now: time.Now}, nil
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9-]+`)

// SanitizeName reduces a config name to a safe filename stem: unsafe
// character runs become single underscores and edges are trimmed.
func SanitizeName(name string) string {
	cleaned := unsafeNameChars.ReplaceAllString(name, "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		cleaned = "config"
	}
	return cleaned
}

// Save stores a plan as <sanitized>_<unix>.json and enforces the retention
// bound. It returns the stored filename stem.
func (s *Store) Save(name string, plan *model.PlanDocument) (string, error) {
	stem := fmt.Sprintf("%s_%d", SanitizeName(name), s.now().Unix())
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding config %q: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, stem+".json"), data, 0o644); err != nil {
		return "", fmt.Errorf("writing config %q: %w", name, err)
	}
	if err := s.enforceRetention(); err != nil {
		s.logger.Warn("stored config retention sweep failed", "error", err)
	}
	return stem, nil
}

// Get loads a stored config. The name may be an exact filename stem or a
// bare config name, in which case the newest matching config wins. A
// missing config is (nil, "", nil).
func (s *Store) Get(name string) (*model.PlanDocument, string, error) {
	entries, err := s.List()
	if err != nil {
		return nil, "", err
	}
	prefix := SanitizeName(name) + "_"
	for _, entry := range entries { // newest first
		if entry.Name != name && !strings.HasPrefix(entry.Name, prefix) {
			continue
		}
		data, err := os.ReadFile(entry.File)
		if err != nil {
			return nil, "", fmt.Errorf("reading config %s: %w", entry.Name, err)
		}
		var plan model.PlanDocument
		if err := json.Unmarshal(data, &plan); err != nil {
			return nil, "", fmt.Errorf("decoding config %s: %w", entry.Name, err)
		}
		return &plan, entry.Name, nil
	}
	return nil, "", nil
}

// List returns every stored config, newest first.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading config directory %s: %w", s.dir, err)
	}
	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		stem := strings.TrimSuffix(de.Name(), ".json")
		entry := Entry{
			Name: stem,
			File: filepath.Join(s.dir, de.Name()),
		}
		if ts, ok := parseTimestamp(stem); ok {
			entry.StoredAt = ts
		} else if info, err := de.Info(); err == nil {
			entry.StoredAt = info.ModTime()
		}
		if data, err := os.ReadFile(entry.File); err == nil {
			var plan model.PlanDocument
			if json.Unmarshal(data, &plan) == nil {
				entry.Operations = len(plan.Operations)
			}
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].StoredAt.Equal(entries[j].StoredAt) {
			return entries[i].StoredAt.After(entries[j].StoredAt)
		}
		return entries[i].Name > entries[j].Name
	})
	return entries, nil
}

// Delete removes one stored config by filename stem.
func (s *Store) Delete(name string) error {
	if err := os.Remove(filepath.Join(s.dir, name+".json")); err != nil {
		return fmt.Errorf("deleting config %s: %w", name, err)
	}
	return nil
}

// PruneOlderThan deletes stored configs whose stored-at time is older than
// maxAge, returning the names removed. A non-positive maxAge removes
// nothing.
func (s *Store) PruneOlderThan(maxAge time.Duration) ([]string, error) {
	if maxAge <= 0 {
		return nil, nil
	}
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	cutoff := s.now().Add(-maxAge)
	var removed []string
	for _, entry := range entries {
		if !entry.StoredAt.Before(cutoff) {
			continue
		}
		if err := s.Delete(entry.Name); err != nil {
			return removed, err
		}
		removed = append(removed, entry.Name)
	}
	return removed, nil
}

func (s *Store) enforceRetention() error {
	entries, err := s.List()
	if err != nil {
		return err
	}
	for _, entry := range entries[min(len(entries), s.max):] {
		if err := s.Delete(entry.Name); err != nil {
			return err
		}
		s.logger.Debug("dropped stored config past retention bound", "name", entry.Name)
	}
	return nil
}

// parseTimestamp extracts the trailing _<unix> component of a stem.
func parseTimestamp(stem string) (time.Time, bool) {
	idx := strings.LastIndex(stem, "_")
	if idx < 0 {
		return time.Time{}, false
	}
	var unix int64
	if _, err := fmt.Sscanf(stem[idx+1:], "%d", &unix); err != nil {
		return time.Time{}, false
	}
	return time.Unix(unix, 0).UTC(), true
}
