package entity

import (
	"time"

	"github.com/MontiPy/pic-tracking-sub000/internal/domain/workflow"
)

// Anchor describes how a template's canonical due date is derived
type Anchor string

const (
	AnchorFixed             Anchor = "fixed"
	AnchorMilestoneRelative Anchor = "milestone_relative"
	AnchorTaskRelative      Anchor = "task_relative"
)

// IsValid returns true if the anchor is a known anchor kind
func (a Anchor) IsValid() bool {
	switch a {
	case AnchorFixed, AnchorMilestoneRelative, AnchorTaskRelative:
		return true
	}
	return false
}

// TaskType represents a reusable task definition shared across projects
type TaskType struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	DefaultOffsetDays int       `json:"default_offset_days"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TaskTemplate is the project-level canonical definition of a task.
// Its canonical due date is the authoritative date for every instance
// that has not set an override.
type TaskTemplate struct {
	ID               int64      `json:"id"`
	ProjectID        int64      `json:"project_id"`
	TaskTypeID       int64      `json:"task_type_id"`
	TaskTypeName     string     `json:"task_type_name,omitempty"`
	CanonicalDueDate time.Time  `json:"canonical_due_date"`
	Anchor           Anchor     `json:"anchor"`
	AnchorTemplateID *int64     `json:"anchor_template_id,omitempty"`
	OffsetDays       int        `json:"offset_days"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TaskInstance is a supplier-specific occurrence of a template.
// ActualDueDate, when set, is an override that detaches the instance
// from template date propagation until cleared.
type TaskInstance struct {
	ID            int64           `json:"id"`
	SupplierID    int64           `json:"supplier_id"`
	ProjectID     int64           `json:"project_id"`
	TemplateID    int64           `json:"template_id"`
	Status        workflow.Status `json:"status"`
	ActualDueDate *time.Time      `json:"actual_due_date,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	IsApplied     bool            `json:"is_applied"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// EffectiveDueDate is derived: the override if set, else the linked
	// template's canonical due date. Populated on reads, never stored.
	EffectiveDueDate time.Time `json:"effective_due_date"`
}

// Overridden reports whether the instance has detached from template
// date propagation.
func (i *TaskInstance) Overridden() bool {
	return i.ActualDueDate != nil
}
