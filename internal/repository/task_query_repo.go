package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/domain/entity"
)

// TaskFilter narrows the unified task listing. A zero filter matches
// every applied task across both data models.
type TaskFilter struct {
	SupplierID  *int64
	ProjectID   *int64
	Statuses    []string
	DueBefore   *time.Time
	DueAfter    *time.Time
	OverdueOnly bool
	Now         time.Time // reference time for OverdueOnly
	Limit       int       // <= 0 means no limit
	Offset      int
}

// TaskQueryRepository serves the read side: unified task listings over
// both data models, routed by each project's schema_version. A legacy
// project's rows only ever come from the legacy table and a v2
// project's only from the instance join; row counts are never used to
// pick a model.
type TaskQueryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTaskQueryRepository creates a new task query repository
func NewTaskQueryRepository(db *sql.DB, logger *zap.Logger) *TaskQueryRepository {
	return &TaskQueryRepository{
		db:     db,
		logger: logger,
	}
}

// ListTaskRows returns applied tasks matching the filter, ordered by
// effective due date then model then id. The ordering is total, which
// keeps listings and the snapshots derived from them reproducible.
func (r *TaskQueryRepository) ListTaskRows(filter TaskFilter) ([]entity.TaskRow, error) {
	v2Where, v2Args := filter.clauses("i", "COALESCE(i.actual_due_date, t.canonical_due_date)")
	legacyWhere, legacyArgs := filter.clauses("l", "l.due_date")

	// The legacy arm goes first: its due/completed/updated columns are
	// bare table columns, so their declared time types carry over to the
	// whole compound select and both arms scan as time.Time. The ORDER BY
	// spans both arms, so arm order does not affect results.
	query := `
		SELECT l.id AS id, 'legacy' AS model, l.supplier_id, s.name AS supplier_name,
			l.project_id, p.name AS project_name, l.task_name,
			l.status, l.due_date AS effective_due_date,
			0 AS overridden, l.completed_at, l.updated_at
		FROM legacy_supplier_tasks l
		JOIN suppliers s ON s.id = l.supplier_id
		JOIN projects p ON p.id = l.project_id
		WHERE p.schema_version = 'legacy'` + legacyWhere + `
		UNION ALL
		SELECT i.id, 'v2' AS model, i.supplier_id, s.name AS supplier_name,
			i.project_id, p.name AS project_name, tt.name AS task_name,
			i.status, COALESCE(i.actual_due_date, t.canonical_due_date) AS effective_due_date,
			i.actual_due_date IS NOT NULL AS overridden, i.completed_at, i.updated_at
		FROM supplier_task_instances i
		JOIN project_task_templates t ON t.id = i.template_id
		JOIN task_types tt ON tt.id = t.task_type_id
		JOIN suppliers s ON s.id = i.supplier_id
		JOIN projects p ON p.id = i.project_id
		WHERE p.schema_version = 'v2' AND i.is_applied = 1 AND t.is_active = 1` + v2Where + `
		ORDER BY effective_due_date, model, id
		LIMIT ? OFFSET ?
	`

	limit := filter.Limit
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}

	args := append(legacyArgs, v2Args...)
	args = append(args, limit, filter.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list tasks", zap.Error(err))
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []entity.TaskRow
	for rows.Next() {
		var row entity.TaskRow
		var completedAt sql.NullTime

		err := rows.Scan(
			&row.ID,
			&row.Model,
			&row.SupplierID,
			&row.SupplierName,
			&row.ProjectID,
			&row.ProjectName,
			&row.TaskName,
			&row.Status,
			&row.EffectiveDueDate,
			&row.Overridden,
			&completedAt,
			&row.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}

		if completedAt.Valid {
			row.CompletedAt = &completedAt.Time
		}
		tasks = append(tasks, row)
	}

	return tasks, rows.Err()
}

// clauses renders the filter as AND conditions for one arm of the
// union, given that arm's table alias and effective-due-date expression.
func (f TaskFilter) clauses(alias, dueExpr string) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.SupplierID != nil {
		conds = append(conds, alias+".supplier_id = ?")
		args = append(args, *f.SupplierID)
	}
	if f.ProjectID != nil {
		conds = append(conds, alias+".project_id = ?")
		args = append(args, *f.ProjectID)
	}
	if len(f.Statuses) > 0 {
		placeholders := strings.Repeat("?,", len(f.Statuses))
		conds = append(conds, alias+".status IN ("+placeholders[:len(placeholders)-1]+")")
		for _, s := range f.Statuses {
			args = append(args, s)
		}
	}
	if f.DueBefore != nil {
		conds = append(conds, dueExpr+" <= ?")
		args = append(args, *f.DueBefore)
	}
	if f.DueAfter != nil {
		conds = append(conds, dueExpr+" >= ?")
		args = append(args, *f.DueAfter)
	}
	if f.OverdueOnly {
		conds = append(conds, alias+".status NOT IN ('completed', 'cancelled')")
		conds = append(conds, dueExpr+" < ?")
		args = append(args, f.Now)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(conds, " AND "), args
}
