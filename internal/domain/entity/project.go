package entity

import "time"

// SchemaVersion identifies which task data model a project uses.
// Projects created before the template/instance migration stay on the
// legacy flat task table until migrated; the flag is set once at
// migration time and consulted directly, never inferred from row counts.
type SchemaVersion string

const (
	SchemaLegacy SchemaVersion = "legacy"
	SchemaV2     SchemaVersion = "v2"
)

// IsValid returns true if the schema version is known
func (v SchemaVersion) IsValid() bool {
	return v == SchemaLegacy || v == SchemaV2
}

// Project represents a manufacturing project with a task schedule
type Project struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Code          string        `json:"code"`
	SchemaVersion SchemaVersion `json:"schema_version"`
	MilestoneDate *time.Time    `json:"milestone_date,omitempty"`
	IsActive      bool          `json:"is_active"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
