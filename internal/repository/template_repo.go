package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/domain/entity"
)

// TemplateRepository handles project task template database operations
type TemplateRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *sql.DB, logger *zap.Logger) *TemplateRepository {
	return &TemplateRepository{
		db:     db,
		logger: logger,
	}
}

const templateColumns = `
	t.id, t.project_id, t.task_type_id, tt.name, t.canonical_due_date,
	t.anchor, t.anchor_template_id, t.offset_days, t.is_active,
	t.created_at, t.updated_at
`

// Create creates a new template
func (r *TemplateRepository) Create(tx *sql.Tx, template *entity.TaskTemplate) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO project_task_templates (
			project_id, task_type_id, canonical_due_date, anchor,
			anchor_template_id, offset_days, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	args := []interface{}{
		template.ProjectID,
		template.TaskTypeID,
		template.CanonicalDueDate,
		string(template.Anchor),
		template.AnchorTemplateID,
		template.OffsetDays,
		template.IsActive,
		now,
		now,
	}

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.Exec(query, args...)
	} else {
		result, err = r.db.Exec(query, args...)
	}

	if err != nil {
		if mapped := mapConstraintErr(err, "template"); mapped != err {
			return mapped
		}
		r.logger.Error("Failed to create template", zap.Error(err))
		return fmt.Errorf("failed to create template: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	template.ID = id
	template.CreatedAt = now
	template.UpdatedAt = now
	return nil
}

// GetByID retrieves a template by ID; returns nil when absent
func (r *TemplateRepository) GetByID(id int64) (*entity.TaskTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM project_task_templates t
		JOIN task_types tt ON tt.id = t.task_type_id
		WHERE t.id = ?
	`

	template, err := scanTemplate(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get template by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return template, nil
}

// ListByProject retrieves a project's templates ordered by due date
func (r *TemplateRepository) ListByProject(projectID int64, activeOnly bool) ([]*entity.TaskTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM project_task_templates t
		JOIN task_types tt ON tt.id = t.task_type_id
		WHERE t.project_id = ?
	`
	if activeOnly {
		query += " AND t.is_active = 1"
	}
	query += " ORDER BY t.canonical_due_date, t.id"

	rows, err := r.db.Query(query, projectID)
	if err != nil {
		r.logger.Error("Failed to list templates", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []*entity.TaskTemplate
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, template)
	}

	return templates, rows.Err()
}

// UpdateDueDate rewrites the canonical due date behind the
// optimistic-lock timestamp. Instances without an override follow the
// new date by derivation; no instance rows are touched. Zero rows
// matched means the template is missing or prevUpdatedAt is stale.
func (r *TemplateRepository) UpdateDueDate(tx *sql.Tx, id int64, dueDate time.Time, prevUpdatedAt time.Time) (int64, error) {
	now := time.Now().UTC()
	query := `
		UPDATE project_task_templates
		SET canonical_due_date = ?, updated_at = ?
		WHERE id = ? AND updated_at = ?
	`

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.Exec(query, dueDate, now, id, prevUpdatedAt)
	} else {
		result, err = r.db.Exec(query, dueDate, now, id, prevUpdatedAt)
	}

	if err != nil {
		r.logger.Error("Failed to update template due date", zap.Int64("id", id), zap.Error(err))
		return 0, fmt.Errorf("failed to update template due date: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}

// SetActive soft-enables or soft-disables a template. Templates are
// never hard-deleted while instances reference them.
func (r *TemplateRepository) SetActive(id int64, active bool, prevUpdatedAt time.Time) (int64, error) {
	now := time.Now().UTC()
	query := `
		UPDATE project_task_templates
		SET is_active = ?, updated_at = ?
		WHERE id = ? AND updated_at = ?
	`

	result, err := r.db.Exec(query, active, now, id, prevUpdatedAt)
	if err != nil {
		r.logger.Error("Failed to set template active flag", zap.Int64("id", id), zap.Error(err))
		return 0, fmt.Errorf("failed to set template active flag: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTemplate(row scanner) (*entity.TaskTemplate, error) {
	var template entity.TaskTemplate
	var anchor string
	var anchorTemplateID sql.NullInt64

	err := row.Scan(
		&template.ID,
		&template.ProjectID,
		&template.TaskTypeID,
		&template.TaskTypeName,
		&template.CanonicalDueDate,
		&anchor,
		&anchorTemplateID,
		&template.OffsetDays,
		&template.IsActive,
		&template.CreatedAt,
		&template.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	template.Anchor = entity.Anchor(anchor)
	if anchorTemplateID.Valid {
		template.AnchorTemplateID = &anchorTemplateID.Int64
	}
	return &template, nil
}
