package events

import (
	"context"

	"github.com/fieldagent/fieldagent/internal/model"
)

// Event topic constants
const (
	TopicPlanApplied  = "fieldagent.plan.applied"
	TopicRolledBack   = "fieldagent.operation.rolledback"
	TopicPruned       = "fieldagent.records.pruned"
	TopicConfigStored = "fieldagent.config.stored"
)

// Event types

type PlanApplied struct {
	RecordID   string `json:"record_id"`
	Source     string `json:"source"`
	Operations int    `json:"operations"`
	Created    int    `json:"created"`
	Failed     int    `json:"failed"`
}

type RolledBack struct {
	RecordID  string              `json:"record_id"`
	Deleted   []model.ArtifactRef `json:"deleted,omitempty"`
	Protected int                 `json:"protected"`
	Failed    int                 `json:"failed"`
}

type Pruned struct {
	Removed int      `json:"removed"`
	IDs     []string `json:"ids,omitempty"`
}

type ConfigStored struct {
	Name string `json:"name"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
