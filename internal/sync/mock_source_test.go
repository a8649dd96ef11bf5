package sync

import (
	"fmt"
	"time"

	"github.com/fieldagent/fieldagent/internal/configstore"
	"github.com/fieldagent/fieldagent/internal/model"
)

// mockRecords is an in-memory RecordSource.
type mockRecords struct {
	records []*model.OperationRecord
	err     error
}

func (m *mockRecords) List() ([]*model.OperationRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*model.OperationRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

// mockConfigs is an in-memory ConfigSource.
type mockConfigs struct {
	plans map[string]*model.PlanDocument
	when  time.Time
}

func newMockConfigs() *mockConfigs {
	return &mockConfigs{plans: map[string]*model.PlanDocument{}, when: time.Now().UTC()}
}

func (m *mockConfigs) List() ([]configstore.Entry, error) {
	var entries []configstore.Entry
	for name := range m.plans {
		entries = append(entries, configstore.Entry{Name: name, StoredAt: m.when})
	}
	return entries, nil
}

func (m *mockConfigs) Get(name string) (*model.PlanDocument, string, error) {
	plan, ok := m.plans[name]
	if !ok {
		return nil, "", fmt.Errorf("config %q not found", name)
	}
	return plan, name + ".json", nil
}
