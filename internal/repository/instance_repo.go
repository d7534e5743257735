package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/domain/entity"
	"github.com/MontiPy/pic-tracking-sub000/internal/domain/workflow"
)

// InstanceRepository handles supplier task instance database operations
type InstanceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInstanceRepository creates a new instance repository
func NewInstanceRepository(db *sql.DB, logger *zap.Logger) *InstanceRepository {
	return &InstanceRepository{
		db:     db,
		logger: logger,
	}
}

const instanceColumns = `
	i.id, i.supplier_id, i.project_id, i.template_id, i.status,
	i.actual_due_date, i.notes, i.is_applied, i.completed_at,
	i.created_at, i.updated_at,
	COALESCE(i.actual_due_date, t.canonical_due_date)
`

// MaterializeForSupplier creates one instance per active template of
// the project for the given supplier. Idempotent on the
// (supplier, template) pair: existing instances are left untouched.
func (r *InstanceRepository) MaterializeForSupplier(tx *sql.Tx, projectID, supplierID int64) (int64, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO supplier_task_instances (
			supplier_id, project_id, template_id, status, notes, is_applied,
			created_at, updated_at
		)
		SELECT ?, t.project_id, t.id, 'not_started', '', 1, ?, ?
		FROM project_task_templates t
		WHERE t.project_id = ? AND t.is_active = 1
		ON CONFLICT (supplier_id, template_id) DO NOTHING
	`

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.Exec(query, supplierID, now, now, projectID)
	} else {
		result, err = r.db.Exec(query, supplierID, now, now, projectID)
	}

	if err != nil {
		r.logger.Error("Failed to materialize instances for supplier",
			zap.Int64("project_id", projectID),
			zap.Int64("supplier_id", supplierID),
			zap.Error(err))
		return 0, fmt.Errorf("failed to materialize instances: %w", err)
	}

	created, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return created, nil
}

// MaterializeForTemplate backfills instances of a new template for
// every supplier already assigned to its project. Idempotent on the
// (supplier, template) pair.
func (r *InstanceRepository) MaterializeForTemplate(tx *sql.Tx, templateID int64) (int64, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO supplier_task_instances (
			supplier_id, project_id, template_id, status, notes, is_applied,
			created_at, updated_at
		)
		SELECT ps.supplier_id, t.project_id, t.id, 'not_started', '', 1, ?, ?
		FROM project_task_templates t
		JOIN project_suppliers ps ON ps.project_id = t.project_id
		WHERE t.id = ? AND t.is_active = 1
		ON CONFLICT (supplier_id, template_id) DO NOTHING
	`

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.Exec(query, now, now, templateID)
	} else {
		result, err = r.db.Exec(query, now, now, templateID)
	}

	if err != nil {
		r.logger.Error("Failed to materialize instances for template",
			zap.Int64("template_id", templateID),
			zap.Error(err))
		return 0, fmt.Errorf("failed to materialize instances: %w", err)
	}

	created, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return created, nil
}

// GetByID retrieves an instance with its derived effective due date;
// returns nil when absent
func (r *InstanceRepository) GetByID(id int64) (*entity.TaskInstance, error) {
	query := `
		SELECT ` + instanceColumns + `
		FROM supplier_task_instances i
		JOIN project_task_templates t ON t.id = i.template_id
		WHERE i.id = ?
	`

	instance, err := scanInstance(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get instance by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get instance: %w", err)
	}
	return instance, nil
}

// GetByIDs retrieves the given instances inside a transaction, ordered
// by id. Callers compare the result length against the request to
// detect missing rows.
func (r *InstanceRepository) GetByIDs(tx *sql.Tx, ids []int64) ([]*entity.TaskInstance, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	query := `
		SELECT ` + instanceColumns + `
		FROM supplier_task_instances i
		JOIN project_task_templates t ON t.id = i.template_id
		WHERE i.id IN (` + placeholders + `)
		ORDER BY i.id
	`

	args := make([]interface{}, len(ids))
	for idx, id := range ids {
		args[idx] = id
	}

	var rows *sql.Rows
	var err error
	if tx != nil {
		rows, err = tx.Query(query, args...)
	} else {
		rows, err = r.db.Query(query, args...)
	}

	if err != nil {
		r.logger.Error("Failed to get instances by IDs", zap.Error(err))
		return nil, fmt.Errorf("failed to get instances: %w", err)
	}
	defer rows.Close()

	var instances []*entity.TaskInstance
	for rows.Next() {
		instance, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan instance: %w", err)
		}
		instances = append(instances, instance)
	}

	return instances, rows.Err()
}

// Update rewrites an instance's mutable fields and bumps updated_at.
// The instance struct is updated in place with the new timestamp.
func (r *InstanceRepository) Update(tx *sql.Tx, instance *entity.TaskInstance) error {
	now := time.Now().UTC()
	query := `
		UPDATE supplier_task_instances
		SET status = ?, actual_due_date = ?, notes = ?, is_applied = ?,
			completed_at = ?, updated_at = ?
		WHERE id = ?
	`

	args := []interface{}{
		instance.Status.String(),
		instance.ActualDueDate,
		instance.Notes,
		instance.IsApplied,
		instance.CompletedAt,
		now,
		instance.ID,
	}

	var err error
	if tx != nil {
		_, err = tx.Exec(query, args...)
	} else {
		_, err = r.db.Exec(query, args...)
	}

	if err != nil {
		r.logger.Error("Failed to update instance", zap.Int64("id", instance.ID), zap.Error(err))
		return fmt.Errorf("failed to update instance: %w", err)
	}

	instance.UpdatedAt = now
	return nil
}

// exprTime scans a timestamp produced by a SQL expression (like the
// effective-due-date COALESCE), whose declared type is lost, so the
// driver returns a string instead of time.Time. It parses with the
// driver's own timestamp formats, in UTC to match the _loc=UTC DSN.
type exprTime struct {
	t time.Time
}

func (v *exprTime) Scan(src interface{}) error {
	switch s := src.(type) {
	case time.Time:
		v.t = s
		return nil
	case string:
		return v.parse(s)
	case []byte:
		return v.parse(string(s))
	}
	return fmt.Errorf("unsupported timestamp value of type %T", src)
}

func (v *exprTime) parse(s string) error {
	s = strings.TrimSuffix(s, "Z")
	for _, format := range sqlite3.SQLiteTimestampFormats {
		if t, err := time.ParseInLocation(format, s, time.UTC); err == nil {
			v.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp format %q", s)
}

func scanInstance(row scanner) (*entity.TaskInstance, error) {
	var instance entity.TaskInstance
	var status string
	var actualDue, completedAt sql.NullTime
	var effectiveDue exprTime

	err := row.Scan(
		&instance.ID,
		&instance.SupplierID,
		&instance.ProjectID,
		&instance.TemplateID,
		&status,
		&actualDue,
		&instance.Notes,
		&instance.IsApplied,
		&completedAt,
		&instance.CreatedAt,
		&instance.UpdatedAt,
		&effectiveDue,
	)
	if err != nil {
		return nil, err
	}
	instance.EffectiveDueDate = effectiveDue.t

	instance.Status = workflow.Status(status)
	if actualDue.Valid {
		instance.ActualDueDate = &actualDue.Time
	}
	if completedAt.Valid {
		instance.CompletedAt = &completedAt.Time
	}
	return &instance, nil
}
