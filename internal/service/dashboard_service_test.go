package service

import (
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/apperr"
	"github.com/MontiPy/pic-tracking-sub000/internal/domain/entity"
	"github.com/MontiPy/pic-tracking-sub000/internal/repository"
)

// fakeCacheStore is an in-memory CacheStore tracking hit/miss traffic
type fakeCacheStore struct {
	fakeCache
	entries map[string]interface{}
	sets    int
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{
		fakeCache: *newFakeCache(),
		entries:   make(map[string]interface{}),
	}
}

func (f *fakeCacheStore) Get(key string) (interface{}, bool) {
	value, ok := f.entries[key]
	return value, ok
}

func (f *fakeCacheStore) Set(key string, value interface{}, ttl time.Duration) {
	f.entries[key] = value
	f.sets++
}

type countingQueryStore struct {
	rows  []entity.TaskRow
	calls int
}

func (c *countingQueryStore) ListTaskRows(filter repository.TaskFilter) ([]entity.TaskRow, error) {
	c.calls++
	return c.rows, nil
}

func row(id, supplierID, projectID int64, status string, due time.Time) entity.TaskRow {
	return entity.TaskRow{
		ID:               id,
		Model:            "v2",
		SupplierID:       supplierID,
		SupplierName:     "Supplier " + string(rune('A'+supplierID-1)),
		ProjectID:        projectID,
		ProjectName:      "Project " + string(rune('A'+projectID-1)),
		TaskName:         "PPAP",
		Status:           status,
		EffectiveDueDate: due,
	}
}

func newDashboardService(queries TaskQueryStore, cacheStore *fakeCacheStore) *DashboardService {
	suppliers := &mockSupplierStore{
		getByIDFunc: func(id int64) (*entity.Supplier, error) {
			if id == 404 {
				return nil, nil
			}
			return &entity.Supplier{ID: id, Name: "Acme"}, nil
		},
	}
	projects := &mockProjectStore{
		getByIDFunc: func(id int64) (*entity.Project, error) { return v2Project(id), nil },
	}
	return NewDashboardService(queries, suppliers, projects, cacheStore, 5*time.Minute, zap.NewNop())
}

func TestComputeDashboard_Counts(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	queries := &countingQueryStore{rows: []entity.TaskRow{
		row(1, 1, 1, "completed", now.AddDate(0, 0, -10)),
		row(2, 1, 1, "in_progress", now.AddDate(0, 0, -2)), // overdue
		row(3, 2, 1, "not_started", now.AddDate(0, 0, 3)),  // upcoming
		row(4, 2, 1, "not_started", now.AddDate(0, 0, 30)), // neither
		row(5, 2, 1, "cancelled", now.AddDate(0, 0, -5)),   // excluded from ratios and overdue
	}}
	svc := newDashboardService(queries, newFakeCacheStore())

	snapshot, err := svc.ComputeDashboard(now)
	if err != nil {
		t.Fatalf("ComputeDashboard() error = %v", err)
	}

	if snapshot.TotalTasks != 5 {
		t.Errorf("total = %d, want 5", snapshot.TotalTasks)
	}
	if snapshot.CompletedTasks != 1 {
		t.Errorf("completed = %d, want 1", snapshot.CompletedTasks)
	}
	if snapshot.OverdueTasks != 1 {
		t.Errorf("overdue = %d, want 1", snapshot.OverdueTasks)
	}
	if snapshot.UpcomingTasks != 1 {
		t.Errorf("upcoming = %d, want 1", snapshot.UpcomingTasks)
	}
	if snapshot.StatusCounts["cancelled"] != 1 {
		t.Errorf("status_counts[cancelled] = %d, want 1", snapshot.StatusCounts["cancelled"])
	}

	// supplier 1: 1 of 2 completed; supplier 2: 0 of 2 (cancelled excluded)
	if len(snapshot.TopSuppliers) != 2 {
		t.Fatalf("top suppliers = %d, want 2", len(snapshot.TopSuppliers))
	}
	if snapshot.TopSuppliers[0].ID != 1 || snapshot.TopSuppliers[0].CompletionRatio != 0.5 {
		t.Errorf("top supplier = %+v, want id 1 at 0.5", snapshot.TopSuppliers[0])
	}
	if snapshot.BottomSuppliers[0].ID != 2 || snapshot.BottomSuppliers[0].TotalTasks != 2 {
		t.Errorf("bottom supplier = %+v, want id 2 with 2 counted tasks", snapshot.BottomSuppliers[0])
	}
}

func TestComputeDashboard_Deterministic(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	// suppliers 1..4 all at the same ratio: ties must break by id
	var rows []entity.TaskRow
	for supplierID := int64(4); supplierID >= 1; supplierID-- {
		rows = append(rows,
			row(supplierID*10, supplierID, 1, "completed", now.AddDate(0, 0, 5)),
			row(supplierID*10+1, supplierID, 1, "in_progress", now.AddDate(0, 0, 5)),
		)
	}
	queries := &countingQueryStore{rows: rows}

	first, err := newDashboardService(queries, newFakeCacheStore()).ComputeDashboard(now)
	if err != nil {
		t.Fatalf("ComputeDashboard() error = %v", err)
	}
	second, err := newDashboardService(queries, newFakeCacheStore()).ComputeDashboard(now)
	if err != nil {
		t.Fatalf("ComputeDashboard() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("two computations over identical state differ")
	}

	for i, want := range []int64{1, 2, 3, 4} {
		if first.TopSuppliers[i].ID != want {
			t.Errorf("top supplier[%d] = %d, want %d (ties break by id)", i, first.TopSuppliers[i].ID, want)
		}
		if first.BottomSuppliers[i].ID != want {
			t.Errorf("bottom supplier[%d] = %d, want %d (ties break by id)", i, first.BottomSuppliers[i].ID, want)
		}
	}
}

func TestComputeDashboard_ServesFromCache(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	queries := &countingQueryStore{rows: []entity.TaskRow{
		row(1, 1, 1, "in_progress", now.AddDate(0, 0, 1)),
	}}
	cacheStore := newFakeCacheStore()
	svc := newDashboardService(queries, cacheStore)

	first, err := svc.ComputeDashboard(now)
	if err != nil {
		t.Fatalf("ComputeDashboard() error = %v", err)
	}
	second, err := svc.ComputeDashboard(now.Add(time.Minute))
	if err != nil {
		t.Fatalf("second ComputeDashboard() error = %v", err)
	}

	if queries.calls != 1 {
		t.Errorf("query calls = %d, want 1 (second read from cache)", queries.calls)
	}
	if first != second {
		t.Error("cached snapshot not reused")
	}
}

func TestSupplierSummary(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	queries := &countingQueryStore{rows: []entity.TaskRow{
		row(1, 1, 1, "completed", now.AddDate(0, 0, -10)),
		row(2, 1, 1, "blocked", now.AddDate(0, 0, -1)),
		row(3, 1, 2, "cancelled", now.AddDate(0, 0, -1)),
	}}
	svc := newDashboardService(queries, newFakeCacheStore())

	summary, err := svc.SupplierSummary(1, now)
	if err != nil {
		t.Fatalf("SupplierSummary() error = %v", err)
	}

	if summary.TotalTasks != 2 {
		t.Errorf("total = %d, want 2 (cancelled excluded)", summary.TotalTasks)
	}
	if summary.CompletionRatio != 0.5 {
		t.Errorf("ratio = %v, want 0.5", summary.CompletionRatio)
	}
	if summary.OverdueTasks != 1 {
		t.Errorf("overdue = %d, want 1", summary.OverdueTasks)
	}
}

func TestSupplierSummary_NotFound(t *testing.T) {
	svc := newDashboardService(&countingQueryStore{}, newFakeCacheStore())

	_, err := svc.SupplierSummary(404, time.Now().UTC())
	if !apperr.IsNotFound(err) {
		t.Fatalf("SupplierSummary() error = %v, want NotFound", err)
	}
}
