package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/domain/entity"
)

// SupplierRepository handles supplier database operations
type SupplierRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *sql.DB, logger *zap.Logger) *SupplierRepository {
	return &SupplierRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new supplier
func (r *SupplierRepository) Create(supplier *entity.Supplier) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO suppliers (name, code, contact_email, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		supplier.Name,
		supplier.Code,
		supplier.ContactEmail,
		supplier.IsActive,
		now,
		now,
	)
	if err != nil {
		if mapped := mapConstraintErr(err, "supplier"); mapped != err {
			return mapped
		}
		r.logger.Error("Failed to create supplier", zap.Error(err))
		return fmt.Errorf("failed to create supplier: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	supplier.ID = id
	supplier.CreatedAt = now
	supplier.UpdatedAt = now
	return nil
}

// GetByID retrieves a supplier by ID; returns nil when absent
func (r *SupplierRepository) GetByID(id int64) (*entity.Supplier, error) {
	query := `
		SELECT id, name, code, contact_email, is_active, created_at, updated_at
		FROM suppliers
		WHERE id = ?
	`

	var supplier entity.Supplier
	err := r.db.QueryRow(query, id).Scan(
		&supplier.ID,
		&supplier.Name,
		&supplier.Code,
		&supplier.ContactEmail,
		&supplier.IsActive,
		&supplier.CreatedAt,
		&supplier.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get supplier by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}

	return &supplier, nil
}

// List retrieves suppliers ordered by name
func (r *SupplierRepository) List(activeOnly bool) ([]*entity.Supplier, error) {
	query := `
		SELECT id, name, code, contact_email, is_active, created_at, updated_at
		FROM suppliers
	`
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY name"

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to list suppliers", zap.Error(err))
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []*entity.Supplier
	for rows.Next() {
		var supplier entity.Supplier
		err := rows.Scan(
			&supplier.ID,
			&supplier.Name,
			&supplier.Code,
			&supplier.ContactEmail,
			&supplier.IsActive,
			&supplier.CreatedAt,
			&supplier.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		suppliers = append(suppliers, &supplier)
	}

	return suppliers, rows.Err()
}

// Update rewrites a supplier's mutable fields, guarded by the
// optimistic-lock timestamp. Returns the number of rows matched: zero
// means the row is missing or prevUpdatedAt is stale.
func (r *SupplierRepository) Update(supplier *entity.Supplier, prevUpdatedAt time.Time) (int64, error) {
	now := time.Now().UTC()
	query := `
		UPDATE suppliers
		SET name = ?, code = ?, contact_email = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND updated_at = ?
	`

	result, err := r.db.Exec(query,
		supplier.Name,
		supplier.Code,
		supplier.ContactEmail,
		supplier.IsActive,
		now,
		supplier.ID,
		prevUpdatedAt,
	)
	if err != nil {
		if mapped := mapConstraintErr(err, "supplier"); mapped != err {
			return 0, mapped
		}
		r.logger.Error("Failed to update supplier", zap.Int64("id", supplier.ID), zap.Error(err))
		return 0, fmt.Errorf("failed to update supplier: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected > 0 {
		supplier.UpdatedAt = now
	}
	return affected, nil
}
