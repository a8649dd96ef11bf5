package sync

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fieldagent/fieldagent/internal/configstore"
	"github.com/fieldagent/fieldagent/internal/model"
)

// RecordSource lists operation records for export.
type RecordSource interface {
	List() ([]*model.OperationRecord, error)
}

// ConfigSource lists and loads stored plan configs for export.
type ConfigSource interface {
	List() ([]configstore.Entry, error)
	Get(name string) (*model.PlanDocument, string, error)
}

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version     string    `json:"version"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	RecordCount int       `json:"record_count"`
	ConfigCount int       `json:"config_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// storedConfig is the export shape of one stored plan config.
type storedConfig struct {
	Name     string              `json:"name"`
	StoredAt time.Time           `json:"stored_at"`
	Plan     *model.PlanDocument `json:"plan"`
}

// ExportJSONL writes all operation records and stored configs as JSONL to w.
// Records are sorted by ID so output is stable across runs.
func ExportJSONL(records RecordSource, configs ConfigSource, w io.Writer) error {
	recs, err := records.List()
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].ID < recs[j].ID
	})

	entries, err := configs.List()
	if err != nil {
		return fmt.Errorf("list configs: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:     "1",
		Type:        "header",
		Timestamp:   time.Now().UTC(),
		RecordCount: len(recs),
		ConfigCount: len(entries),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, r := range recs {
		if err := enc.Encode(record{Type: "record", Data: r}); err != nil {
			return fmt.Errorf("encode record %s: %w", r.ID, err)
		}
	}

	for _, e := range entries {
		plan, _, err := configs.Get(e.Name)
		if err != nil {
			return fmt.Errorf("load config %s: %w", e.Name, err)
		}
		cfg := storedConfig{Name: e.Name, StoredAt: e.StoredAt, Plan: plan}
		if err := enc.Encode(record{Type: "config", Data: cfg}); err != nil {
			return fmt.Errorf("encode config %s: %w", e.Name, err)
		}
	}

	return nil
}
