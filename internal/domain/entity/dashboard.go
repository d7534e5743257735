package entity

import "time"

// TaskRow is the model-independent shape of a task in listings and
// reports. V2 instances and legacy tasks both project into it.
type TaskRow struct {
	ID               int64      `json:"id"`
	Model            string     `json:"model"` // "v2" or "legacy"
	SupplierID       int64      `json:"supplier_id"`
	SupplierName     string     `json:"supplier_name"`
	ProjectID        int64      `json:"project_id"`
	ProjectName      string     `json:"project_name"`
	TaskName         string     `json:"task_name"`
	Status           string     `json:"status"`
	EffectiveDueDate time.Time  `json:"effective_due_date"`
	Overridden       bool       `json:"overridden"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// PerformerSummary ranks a supplier or project by completion ratio
type PerformerSummary struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	TotalTasks      int     `json:"total_tasks"`
	CompletedTasks  int     `json:"completed_tasks"`
	CompletionRatio float64 `json:"completion_ratio"`
}

// DashboardSnapshot is the derived dashboard view. It is cached with a
// short TTL and always recomputable from template and instance state.
type DashboardSnapshot struct {
	GeneratedAt     time.Time          `json:"generated_at"`
	StatusCounts    map[string]int     `json:"status_counts"`
	TotalTasks      int                `json:"total_tasks"`
	CompletedTasks  int                `json:"completed_tasks"`
	OverdueTasks    int                `json:"overdue_tasks"`
	UpcomingTasks   int                `json:"upcoming_tasks"`
	SupplierCount   int                `json:"supplier_count"`
	ProjectCount    int                `json:"project_count"`
	TopSuppliers    []PerformerSummary `json:"top_suppliers"`
	BottomSuppliers []PerformerSummary `json:"bottom_suppliers"`
	TopProjects     []PerformerSummary `json:"top_projects"`
	BottomProjects  []PerformerSummary `json:"bottom_projects"`
}
