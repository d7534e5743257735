package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/migrations"
	"github.com/MontiPy/pic-tracking-sub000/pkg/database"
)

// newTestDB opens a throwaway database with the full schema applied
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db, zap.NewNop()).RunMigrations(migrations.FS))
	return db
}

func mustExec(t *testing.T, db *database.DB, query string, args ...interface{}) int64 {
	t.Helper()
	result, err := db.Exec(query, args...)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func seedSupplier(t *testing.T, db *database.DB, name, code string) int64 {
	return mustExec(t, db,
		"INSERT INTO suppliers (name, code) VALUES (?, ?)", name, code)
}

func seedProject(t *testing.T, db *database.DB, name, code, schemaVersion string) int64 {
	return mustExec(t, db,
		"INSERT INTO projects (name, code, schema_version) VALUES (?, ?, ?)",
		name, code, schemaVersion)
}

func seedTaskType(t *testing.T, db *database.DB, name string) int64 {
	return mustExec(t, db, "INSERT INTO task_types (name) VALUES (?)", name)
}

func assignSupplier(t *testing.T, db *database.DB, projectID, supplierID int64) {
	mustExec(t, db,
		"INSERT INTO project_suppliers (project_id, supplier_id) VALUES (?, ?)",
		projectID, supplierID)
}

func seedLegacyTask(t *testing.T, db *database.DB, supplierID, projectID int64, name, status string, due time.Time) int64 {
	return mustExec(t, db,
		`INSERT INTO legacy_supplier_tasks (supplier_id, project_id, task_name, status, due_date)
		 VALUES (?, ?, ?, ?, ?)`,
		supplierID, projectID, name, status, due)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
