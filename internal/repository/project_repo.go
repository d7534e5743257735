package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/domain/entity"
)

// ProjectRepository handles project database operations
type ProjectRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new project
func (r *ProjectRepository) Create(project *entity.Project) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO projects (name, code, schema_version, milestone_date, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		project.Name,
		project.Code,
		string(project.SchemaVersion),
		project.MilestoneDate,
		project.IsActive,
		now,
		now,
	)
	if err != nil {
		if mapped := mapConstraintErr(err, "project"); mapped != err {
			return mapped
		}
		r.logger.Error("Failed to create project", zap.Error(err))
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	project.ID = id
	project.CreatedAt = now
	project.UpdatedAt = now
	return nil
}

// GetByID retrieves a project by ID; returns nil when absent
func (r *ProjectRepository) GetByID(id int64) (*entity.Project, error) {
	query := `
		SELECT id, name, code, schema_version, milestone_date, is_active, created_at, updated_at
		FROM projects
		WHERE id = ?
	`
	return r.scanOne(r.db.QueryRow(query, id))
}

// List retrieves projects ordered by name
func (r *ProjectRepository) List(activeOnly bool) ([]*entity.Project, error) {
	query := `
		SELECT id, name, code, schema_version, milestone_date, is_active, created_at, updated_at
		FROM projects
	`
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY name"

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err))
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*entity.Project
	for rows.Next() {
		project, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

// Update rewrites a project's mutable fields behind the optimistic-lock
// timestamp; zero rows matched means missing or stale.
func (r *ProjectRepository) Update(project *entity.Project, prevUpdatedAt time.Time) (int64, error) {
	now := time.Now().UTC()
	query := `
		UPDATE projects
		SET name = ?, code = ?, schema_version = ?, milestone_date = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND updated_at = ?
	`

	result, err := r.db.Exec(query,
		project.Name,
		project.Code,
		string(project.SchemaVersion),
		project.MilestoneDate,
		project.IsActive,
		now,
		project.ID,
		prevUpdatedAt,
	)
	if err != nil {
		if mapped := mapConstraintErr(err, "project"); mapped != err {
			return 0, mapped
		}
		r.logger.Error("Failed to update project", zap.Int64("id", project.ID), zap.Error(err))
		return 0, fmt.Errorf("failed to update project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected > 0 {
		project.UpdatedAt = now
	}
	return affected, nil
}

// AssignSupplier records a supplier-project assignment, idempotently
func (r *ProjectRepository) AssignSupplier(tx *sql.Tx, projectID, supplierID int64) error {
	query := `
		INSERT INTO project_suppliers (project_id, supplier_id, assigned_at)
		VALUES (?, ?, ?)
		ON CONFLICT (project_id, supplier_id) DO NOTHING
	`

	var err error
	if tx != nil {
		_, err = tx.Exec(query, projectID, supplierID, time.Now().UTC())
	} else {
		_, err = r.db.Exec(query, projectID, supplierID, time.Now().UTC())
	}

	if err != nil {
		if mapped := mapConstraintErr(err, "assignment"); mapped != err {
			return mapped
		}
		r.logger.Error("Failed to assign supplier",
			zap.Int64("project_id", projectID),
			zap.Int64("supplier_id", supplierID),
			zap.Error(err))
		return fmt.Errorf("failed to assign supplier: %w", err)
	}

	return nil
}

// ListAssignedSuppliers returns the IDs of suppliers assigned to a project
func (r *ProjectRepository) ListAssignedSuppliers(projectID int64) ([]int64, error) {
	rows, err := r.db.Query(
		"SELECT supplier_id FROM project_suppliers WHERE project_id = ? ORDER BY supplier_id",
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned suppliers: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan supplier id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ProjectRepository) scanOne(row *sql.Row) (*entity.Project, error) {
	var project entity.Project
	var schemaVersion string
	var milestone sql.NullTime

	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Code,
		&schemaVersion,
		&milestone,
		&project.IsActive,
		&project.CreatedAt,
		&project.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get project", zap.Error(err))
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	project.SchemaVersion = entity.SchemaVersion(schemaVersion)
	if milestone.Valid {
		project.MilestoneDate = &milestone.Time
	}
	return &project, nil
}

func (r *ProjectRepository) scanRow(rows *sql.Rows) (*entity.Project, error) {
	var project entity.Project
	var schemaVersion string
	var milestone sql.NullTime

	err := rows.Scan(
		&project.ID,
		&project.Name,
		&project.Code,
		&schemaVersion,
		&milestone,
		&project.IsActive,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	project.SchemaVersion = entity.SchemaVersion(schemaVersion)
	if milestone.Valid {
		project.MilestoneDate = &milestone.Time
	}
	return &project, nil
}
