package service

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/apperr"
	"github.com/MontiPy/pic-tracking-sub000/internal/domain/entity"
)

// ScheduleService owns the project task schedule: template lifecycle,
// supplier assignment and canonical due-date changes. The effective due
// date of an instance is always derived from its template unless the
// instance has set an override, so changing a template's canonical date
// is a single-row write that every non-overridden instance follows.
type ScheduleService struct {
	projects  ProjectStore
	suppliers SupplierStore
	taskTypes TaskTypeStore
	templates TemplateStore
	instances InstanceStore
	tx        TxRunner
	cache     Invalidator
	logger    *zap.Logger
}

// NewScheduleService creates a new schedule service
func NewScheduleService(
	projects ProjectStore,
	suppliers SupplierStore,
	taskTypes TaskTypeStore,
	templates TemplateStore,
	instances InstanceStore,
	tx TxRunner,
	cache Invalidator,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		projects:  projects,
		suppliers: suppliers,
		taskTypes: taskTypes,
		templates: templates,
		instances: instances,
		tx:        tx,
		cache:     cache,
		logger:    logger,
	}
}

// CreateTemplate adds a task to a project's schedule and backfills one
// instance per already-assigned supplier, all in one transaction.
func (s *ScheduleService) CreateTemplate(template *entity.TaskTemplate) error {
	if template.CanonicalDueDate.IsZero() {
		return apperr.Validation("canonical_due_date", "canonical_due_date is required")
	}
	if template.Anchor == "" {
		template.Anchor = entity.AnchorFixed
	}
	if !template.Anchor.IsValid() {
		return apperr.Validation("anchor", "anchor must be fixed, milestone_relative or task_relative")
	}
	if template.Anchor == entity.AnchorTaskRelative && template.AnchorTemplateID == nil {
		return apperr.Validation("anchor_template_id", "anchor_template_id is required for task_relative anchor")
	}

	project, err := s.projects.GetByID(template.ProjectID)
	if err != nil {
		return err
	}
	if project == nil {
		return apperr.NotFound("project not found")
	}
	if project.SchemaVersion != entity.SchemaV2 {
		return apperr.Validation("project_id", "project is on the legacy data model")
	}

	taskType, err := s.taskTypes.GetByID(template.TaskTypeID)
	if err != nil {
		return err
	}
	if taskType == nil {
		return apperr.NotFound("task type not found")
	}

	template.IsActive = true

	var created int64
	err = s.tx.WithTransaction(func(tx *sql.Tx) error {
		if err := s.templates.Create(tx, template); err != nil {
			return err
		}
		created, err = s.instances.MaterializeForTemplate(tx, template.ID)
		return err
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateProject(template.ProjectID)
	s.cache.InvalidateDashboard()

	s.logger.Info("Template created",
		zap.Int64("id", template.ID),
		zap.Int64("project_id", template.ProjectID),
		zap.Int64("instances_created", created))
	return nil
}

// GetTemplate retrieves one template
func (s *ScheduleService) GetTemplate(id int64) (*entity.TaskTemplate, error) {
	template, err := s.templates.GetByID(id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, apperr.NotFound("template not found")
	}
	return template, nil
}

// ListProjectTemplates retrieves a project's templates
func (s *ScheduleService) ListProjectTemplates(projectID int64, activeOnly bool) ([]*entity.TaskTemplate, error) {
	project, err := s.projects.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperr.NotFound("project not found")
	}
	return s.templates.ListByProject(projectID, activeOnly)
}

// SetTemplateDueDate changes a template's canonical due date. Every
// instance without an override follows the new date; overridden
// instances keep their own date until the override is cleared.
func (s *ScheduleService) SetTemplateDueDate(templateID int64, newDate, prevUpdatedAt time.Time) (*entity.TaskTemplate, error) {
	if newDate.IsZero() {
		return nil, apperr.Validation("due_date", "due_date is required")
	}

	template, err := s.templates.GetByID(templateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, apperr.NotFound("template not found")
	}
	if !template.IsActive {
		return nil, apperr.Validation("template_id", "template is disabled")
	}

	err = s.tx.WithTransaction(func(tx *sql.Tx) error {
		affected, err := s.templates.UpdateDueDate(tx, templateID, newDate, prevUpdatedAt)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.Conflict("prev_updated_at", "template was modified by another request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateProject(template.ProjectID)
	s.cache.InvalidateDashboard()

	s.logger.Info("Template due date changed",
		zap.Int64("id", templateID),
		zap.Time("due_date", newDate))

	return s.templates.GetByID(templateID)
}

// SetTemplateActive soft-enables or soft-disables a template
func (s *ScheduleService) SetTemplateActive(templateID int64, active bool, prevUpdatedAt time.Time) error {
	template, err := s.templates.GetByID(templateID)
	if err != nil {
		return err
	}
	if template == nil {
		return apperr.NotFound("template not found")
	}

	affected, err := s.templates.SetActive(templateID, active, prevUpdatedAt)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.Conflict("prev_updated_at", "template was modified by another request")
	}

	s.cache.InvalidateProject(template.ProjectID)
	s.cache.InvalidateDashboard()
	return nil
}

// AssignSupplier assigns a supplier to a project and materializes one
// instance per active template, idempotently, in one transaction.
// Re-assigning an already-assigned supplier creates nothing.
func (s *ScheduleService) AssignSupplier(projectID, supplierID int64) (int64, error) {
	project, err := s.projects.GetByID(projectID)
	if err != nil {
		return 0, err
	}
	if project == nil {
		return 0, apperr.NotFound("project not found")
	}
	if project.SchemaVersion != entity.SchemaV2 {
		return 0, apperr.Validation("project_id", "project is on the legacy data model")
	}

	supplier, err := s.suppliers.GetByID(supplierID)
	if err != nil {
		return 0, err
	}
	if supplier == nil {
		return 0, apperr.NotFound("supplier not found")
	}

	var created int64
	err = s.tx.WithTransaction(func(tx *sql.Tx) error {
		if err := s.projects.AssignSupplier(tx, projectID, supplierID); err != nil {
			return err
		}
		created, err = s.instances.MaterializeForSupplier(tx, projectID, supplierID)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.cache.InvalidateSupplier(supplierID)
	s.cache.InvalidateProject(projectID)
	s.cache.InvalidateDashboard()

	s.logger.Info("Supplier assigned to project",
		zap.Int64("project_id", projectID),
		zap.Int64("supplier_id", supplierID),
		zap.Int64("instances_created", created))
	return created, nil
}
