package model

import (
	"strings"
	"time"
)

// RecordStatus is the rollback state of an operation record.
type RecordStatus string

const (
	// RecordActive means rollback has not been attempted, or an attempt
	// had no effect.
	RecordActive RecordStatus = "active"
	// RecordRolledBack means a rollback deleted at least one artifact
	// with zero failures.
	RecordRolledBack RecordStatus = "rolled_back"
)

// legacyRolledBackMarker is the description suffix older records used
// before the explicit status field existed.
const legacyRolledBackMarker = "[ROLLED BACK]"

// OperationRecord is the rollback ledger entry for one executed batch:
// exactly what was created (and what failed), so the batch can be undone.
// Records are created once, persisted immediately, and mutated only by the
// rollback status transition.
type OperationRecord struct {
	ID          string        `json:"id"`
	Type        string        `json:"type"`   // e.g. "prompt", "config", "preset"
	Source      string        `json:"source"` // prompt text, config filename
	Timestamp   int64         `json:"timestamp"`
	Status      RecordStatus  `json:"status,omitempty"`
	Description string        `json:"description,omitempty"`

	CreatedFields         []ArtifactRef `json:"createdFields"`
	FailedFields          []ArtifactRef `json:"failedFields"`
	CreatedEntryTypes     []ArtifactRef `json:"createdEntryTypes"`
	FailedEntryTypes      []ArtifactRef `json:"failedEntryTypes"`
	CreatedSections       []ArtifactRef `json:"createdSections"`
	FailedSections        []ArtifactRef `json:"failedSections"`
	CreatedCategoryGroups []ArtifactRef `json:"createdCategoryGroups"`
	FailedCategoryGroups  []ArtifactRef `json:"failedCategoryGroups"`
	CreatedTagGroups      []ArtifactRef `json:"createdTagGroups"`
	FailedTagGroups       []ArtifactRef `json:"failedTagGroups"`
}

// NormalizeStatus fills in Status for records written before the explicit
// field existed, recognizing the legacy description marker.
func (r *OperationRecord) NormalizeStatus() {
	if r.Status != "" {
		return
	}
	if strings.Contains(r.Description, legacyRolledBackMarker) {
		r.Status = RecordRolledBack
		return
	}
	r.Status = RecordActive
}

// RolledBack reports whether the record has been rolled back.
func (r *OperationRecord) RolledBack() bool {
	return r.Status == RecordRolledBack ||
		(r.Status == "" && strings.Contains(r.Description, legacyRolledBackMarker))
}

// Time returns the record timestamp as a time.Time.
func (r *OperationRecord) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

// TotalCreated returns the number of artifacts the batch created.
func (r *OperationRecord) TotalCreated() int {
	return len(r.CreatedFields) + len(r.CreatedEntryTypes) + len(r.CreatedSections) +
		len(r.CreatedCategoryGroups) + len(r.CreatedTagGroups)
}

// TotalFailed returns the number of artifacts the batch failed to create.
func (r *OperationRecord) TotalFailed() int {
	return len(r.FailedFields) + len(r.FailedEntryTypes) + len(r.FailedSections) +
		len(r.FailedCategoryGroups) + len(r.FailedTagGroups)
}
