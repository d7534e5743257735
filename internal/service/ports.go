// Package service implements the portal's business operations over the
// repository layer: reference CRUD, schedule propagation, bulk task
// updates and dashboard aggregation. Writes run inside a single
// database transaction; cache invalidation happens strictly after
// commit and is best-effort.
package service

import (
	"database/sql"
	"time"

	"github.com/MontiPy/pic-tracking-sub000/internal/domain/entity"
	"github.com/MontiPy/pic-tracking-sub000/internal/repository"
)

// TxRunner scopes a function to one database transaction
type TxRunner interface {
	WithTransaction(fn func(*sql.Tx) error) error
}

// Invalidator drops derived cache entries after a committed write
type Invalidator interface {
	InvalidateDashboard()
	InvalidateSupplier(id int64)
	InvalidateProject(id int64)
}

// SupplierStore is the supplier persistence surface used by services
type SupplierStore interface {
	Create(supplier *entity.Supplier) error
	GetByID(id int64) (*entity.Supplier, error)
	List(activeOnly bool) ([]*entity.Supplier, error)
	Update(supplier *entity.Supplier, prevUpdatedAt time.Time) (int64, error)
}

// ProjectStore is the project persistence surface used by services
type ProjectStore interface {
	Create(project *entity.Project) error
	GetByID(id int64) (*entity.Project, error)
	List(activeOnly bool) ([]*entity.Project, error)
	Update(project *entity.Project, prevUpdatedAt time.Time) (int64, error)
	AssignSupplier(tx *sql.Tx, projectID, supplierID int64) error
	ListAssignedSuppliers(projectID int64) ([]int64, error)
}

// TaskTypeStore is the task type persistence surface used by services
type TaskTypeStore interface {
	Create(taskType *entity.TaskType) error
	GetByID(id int64) (*entity.TaskType, error)
	List() ([]*entity.TaskType, error)
	Update(taskType *entity.TaskType, prevUpdatedAt time.Time) (int64, error)
}

// TemplateStore is the template persistence surface used by services
type TemplateStore interface {
	Create(tx *sql.Tx, template *entity.TaskTemplate) error
	GetByID(id int64) (*entity.TaskTemplate, error)
	ListByProject(projectID int64, activeOnly bool) ([]*entity.TaskTemplate, error)
	UpdateDueDate(tx *sql.Tx, id int64, dueDate, prevUpdatedAt time.Time) (int64, error)
	SetActive(id int64, active bool, prevUpdatedAt time.Time) (int64, error)
}

// InstanceStore is the instance persistence surface used by services
type InstanceStore interface {
	MaterializeForSupplier(tx *sql.Tx, projectID, supplierID int64) (int64, error)
	MaterializeForTemplate(tx *sql.Tx, templateID int64) (int64, error)
	GetByID(id int64) (*entity.TaskInstance, error)
	GetByIDs(tx *sql.Tx, ids []int64) ([]*entity.TaskInstance, error)
	Update(tx *sql.Tx, instance *entity.TaskInstance) error
}

// TaskQueryStore serves unified read-side task listings
type TaskQueryStore interface {
	ListTaskRows(filter repository.TaskFilter) ([]entity.TaskRow, error)
}
