package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/apperr"
	"github.com/MontiPy/pic-tracking-sub000/internal/domain/entity"
)

// CatalogService handles reference CRUD for suppliers, projects and
// task types. Every update carries the optimistic-lock timestamp;
// a stale timestamp is rejected with Conflict.
type CatalogService struct {
	suppliers SupplierStore
	projects  ProjectStore
	taskTypes TaskTypeStore
	cache     Invalidator
	logger    *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	suppliers SupplierStore,
	projects ProjectStore,
	taskTypes TaskTypeStore,
	cache Invalidator,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		suppliers: suppliers,
		projects:  projects,
		taskTypes: taskTypes,
		cache:     cache,
		logger:    logger,
	}
}

// CreateSupplier validates and creates a supplier
func (s *CatalogService) CreateSupplier(supplier *entity.Supplier) error {
	if supplier.Name == "" {
		return apperr.Validation("name", "name is required")
	}
	if supplier.Code == "" {
		return apperr.Validation("code", "code is required")
	}
	supplier.IsActive = true

	if err := s.suppliers.Create(supplier); err != nil {
		return err
	}

	s.logger.Info("Supplier created",
		zap.Int64("id", supplier.ID),
		zap.String("code", supplier.Code))
	return nil
}

// GetSupplier retrieves one supplier
func (s *CatalogService) GetSupplier(id int64) (*entity.Supplier, error) {
	supplier, err := s.suppliers.GetByID(id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperr.NotFound("supplier not found")
	}
	return supplier, nil
}

// ListSuppliers retrieves suppliers
func (s *CatalogService) ListSuppliers(activeOnly bool) ([]*entity.Supplier, error) {
	return s.suppliers.List(activeOnly)
}

// UpdateSupplier rewrites a supplier's mutable fields
func (s *CatalogService) UpdateSupplier(supplier *entity.Supplier, prevUpdatedAt time.Time) error {
	if supplier.Name == "" {
		return apperr.Validation("name", "name is required")
	}
	if supplier.Code == "" {
		return apperr.Validation("code", "code is required")
	}

	affected, err := s.suppliers.Update(supplier, prevUpdatedAt)
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.staleOrMissingSupplier(supplier.ID)
	}

	s.cache.InvalidateSupplier(supplier.ID)
	s.cache.InvalidateDashboard()
	return nil
}

// CreateProject validates and creates a project. New projects always
// use the v2 data model; the legacy flag exists only for rows migrated
// from the old system.
func (s *CatalogService) CreateProject(project *entity.Project) error {
	if project.Name == "" {
		return apperr.Validation("name", "name is required")
	}
	if project.Code == "" {
		return apperr.Validation("code", "code is required")
	}
	if project.SchemaVersion == "" {
		project.SchemaVersion = entity.SchemaV2
	}
	if !project.SchemaVersion.IsValid() {
		return apperr.Validation("schema_version", "schema_version must be legacy or v2")
	}
	project.IsActive = true

	if err := s.projects.Create(project); err != nil {
		return err
	}

	s.logger.Info("Project created",
		zap.Int64("id", project.ID),
		zap.String("code", project.Code))
	return nil
}

// GetProject retrieves one project
func (s *CatalogService) GetProject(id int64) (*entity.Project, error) {
	project, err := s.projects.GetByID(id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperr.NotFound("project not found")
	}
	return project, nil
}

// ListProjects retrieves projects
func (s *CatalogService) ListProjects(activeOnly bool) ([]*entity.Project, error) {
	return s.projects.List(activeOnly)
}

// UpdateProject rewrites a project's mutable fields
func (s *CatalogService) UpdateProject(project *entity.Project, prevUpdatedAt time.Time) error {
	if project.Name == "" {
		return apperr.Validation("name", "name is required")
	}
	if project.Code == "" {
		return apperr.Validation("code", "code is required")
	}
	if !project.SchemaVersion.IsValid() {
		return apperr.Validation("schema_version", "schema_version must be legacy or v2")
	}

	affected, err := s.projects.Update(project, prevUpdatedAt)
	if err != nil {
		return err
	}
	if affected == 0 {
		existing, err := s.projects.GetByID(project.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperr.NotFound("project not found")
		}
		return apperr.Conflict("prev_updated_at", "project was modified by another request")
	}

	s.cache.InvalidateProject(project.ID)
	s.cache.InvalidateDashboard()
	return nil
}

// CreateTaskType validates and creates a task type
func (s *CatalogService) CreateTaskType(taskType *entity.TaskType) error {
	if taskType.Name == "" {
		return apperr.Validation("name", "name is required")
	}

	if err := s.taskTypes.Create(taskType); err != nil {
		return err
	}

	s.logger.Info("Task type created",
		zap.Int64("id", taskType.ID),
		zap.String("name", taskType.Name))
	return nil
}

// GetTaskType retrieves one task type
func (s *CatalogService) GetTaskType(id int64) (*entity.TaskType, error) {
	taskType, err := s.taskTypes.GetByID(id)
	if err != nil {
		return nil, err
	}
	if taskType == nil {
		return nil, apperr.NotFound("task type not found")
	}
	return taskType, nil
}

// ListTaskTypes retrieves all task types
func (s *CatalogService) ListTaskTypes() ([]*entity.TaskType, error) {
	return s.taskTypes.List()
}

// UpdateTaskType rewrites a task type's mutable fields
func (s *CatalogService) UpdateTaskType(taskType *entity.TaskType, prevUpdatedAt time.Time) error {
	if taskType.Name == "" {
		return apperr.Validation("name", "name is required")
	}

	affected, err := s.taskTypes.Update(taskType, prevUpdatedAt)
	if err != nil {
		return err
	}
	if affected == 0 {
		existing, err := s.taskTypes.GetByID(taskType.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperr.NotFound("task type not found")
		}
		return apperr.Conflict("prev_updated_at", "task type was modified by another request")
	}
	return nil
}

func (s *CatalogService) staleOrMissingSupplier(id int64) error {
	existing, err := s.suppliers.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.NotFound("supplier not found")
	}
	return apperr.Conflict("prev_updated_at", "supplier was modified by another request")
}
