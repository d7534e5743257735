package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/domain/entity"
)

// TaskTypeRepository handles task type database operations
type TaskTypeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTaskTypeRepository creates a new task type repository
func NewTaskTypeRepository(db *sql.DB, logger *zap.Logger) *TaskTypeRepository {
	return &TaskTypeRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new task type
func (r *TaskTypeRepository) Create(taskType *entity.TaskType) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO task_types (name, description, default_offset_days, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		taskType.Name,
		taskType.Description,
		taskType.DefaultOffsetDays,
		now,
		now,
	)
	if err != nil {
		if mapped := mapConstraintErr(err, "task type"); mapped != err {
			return mapped
		}
		r.logger.Error("Failed to create task type", zap.Error(err))
		return fmt.Errorf("failed to create task type: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	taskType.ID = id
	taskType.CreatedAt = now
	taskType.UpdatedAt = now
	return nil
}

// GetByID retrieves a task type by ID; returns nil when absent
func (r *TaskTypeRepository) GetByID(id int64) (*entity.TaskType, error) {
	query := `
		SELECT id, name, description, default_offset_days, created_at, updated_at
		FROM task_types
		WHERE id = ?
	`

	var taskType entity.TaskType
	err := r.db.QueryRow(query, id).Scan(
		&taskType.ID,
		&taskType.Name,
		&taskType.Description,
		&taskType.DefaultOffsetDays,
		&taskType.CreatedAt,
		&taskType.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get task type by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get task type: %w", err)
	}

	return &taskType, nil
}

// List retrieves all task types ordered by name
func (r *TaskTypeRepository) List() ([]*entity.TaskType, error) {
	query := `
		SELECT id, name, description, default_offset_days, created_at, updated_at
		FROM task_types
		ORDER BY name
	`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to list task types", zap.Error(err))
		return nil, fmt.Errorf("failed to list task types: %w", err)
	}
	defer rows.Close()

	var taskTypes []*entity.TaskType
	for rows.Next() {
		var taskType entity.TaskType
		err := rows.Scan(
			&taskType.ID,
			&taskType.Name,
			&taskType.Description,
			&taskType.DefaultOffsetDays,
			&taskType.CreatedAt,
			&taskType.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task type: %w", err)
		}
		taskTypes = append(taskTypes, &taskType)
	}

	return taskTypes, rows.Err()
}

// Update rewrites a task type's mutable fields behind the
// optimistic-lock timestamp; zero rows matched means missing or stale.
func (r *TaskTypeRepository) Update(taskType *entity.TaskType, prevUpdatedAt time.Time) (int64, error) {
	now := time.Now().UTC()
	query := `
		UPDATE task_types
		SET name = ?, description = ?, default_offset_days = ?, updated_at = ?
		WHERE id = ? AND updated_at = ?
	`

	result, err := r.db.Exec(query,
		taskType.Name,
		taskType.Description,
		taskType.DefaultOffsetDays,
		now,
		taskType.ID,
		prevUpdatedAt,
	)
	if err != nil {
		if mapped := mapConstraintErr(err, "task type"); mapped != err {
			return 0, mapped
		}
		r.logger.Error("Failed to update task type", zap.Int64("id", taskType.ID), zap.Error(err))
		return 0, fmt.Errorf("failed to update task type: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected > 0 {
		taskType.UpdatedAt = now
	}
	return affected, nil
}
