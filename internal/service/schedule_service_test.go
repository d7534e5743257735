package service

import (
	"database/sql"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/apperr"
	"github.com/MontiPy/pic-tracking-sub000/internal/domain/entity"
)

type mockProjectStore struct {
	getByIDFunc        func(id int64) (*entity.Project, error)
	assignSupplierFunc func(tx *sql.Tx, projectID, supplierID int64) error
}

func (m *mockProjectStore) Create(project *entity.Project) error { return nil }
func (m *mockProjectStore) GetByID(id int64) (*entity.Project, error) {
	return m.getByIDFunc(id)
}
func (m *mockProjectStore) List(activeOnly bool) ([]*entity.Project, error) { return nil, nil }
func (m *mockProjectStore) Update(project *entity.Project, prevUpdatedAt time.Time) (int64, error) {
	return 0, nil
}
func (m *mockProjectStore) AssignSupplier(tx *sql.Tx, projectID, supplierID int64) error {
	if m.assignSupplierFunc != nil {
		return m.assignSupplierFunc(tx, projectID, supplierID)
	}
	return nil
}
func (m *mockProjectStore) ListAssignedSuppliers(projectID int64) ([]int64, error) {
	return nil, nil
}

type mockSupplierStore struct {
	getByIDFunc func(id int64) (*entity.Supplier, error)
}

func (m *mockSupplierStore) Create(supplier *entity.Supplier) error { return nil }
func (m *mockSupplierStore) GetByID(id int64) (*entity.Supplier, error) {
	return m.getByIDFunc(id)
}
func (m *mockSupplierStore) List(activeOnly bool) ([]*entity.Supplier, error) { return nil, nil }
func (m *mockSupplierStore) Update(supplier *entity.Supplier, prevUpdatedAt time.Time) (int64, error) {
	return 0, nil
}

type mockTaskTypeStore struct {
	getByIDFunc func(id int64) (*entity.TaskType, error)
}

func (m *mockTaskTypeStore) Create(taskType *entity.TaskType) error { return nil }
func (m *mockTaskTypeStore) GetByID(id int64) (*entity.TaskType, error) {
	return m.getByIDFunc(id)
}
func (m *mockTaskTypeStore) List() ([]*entity.TaskType, error) { return nil, nil }
func (m *mockTaskTypeStore) Update(taskType *entity.TaskType, prevUpdatedAt time.Time) (int64, error) {
	return 0, nil
}

type mockTemplateStore struct {
	createFunc        func(tx *sql.Tx, template *entity.TaskTemplate) error
	getByIDFunc       func(id int64) (*entity.TaskTemplate, error)
	updateDueDateFunc func(tx *sql.Tx, id int64, dueDate, prevUpdatedAt time.Time) (int64, error)
	setActiveFunc     func(id int64, active bool, prevUpdatedAt time.Time) (int64, error)
}

func (m *mockTemplateStore) Create(tx *sql.Tx, template *entity.TaskTemplate) error {
	if m.createFunc != nil {
		return m.createFunc(tx, template)
	}
	template.ID = 1
	return nil
}
func (m *mockTemplateStore) GetByID(id int64) (*entity.TaskTemplate, error) {
	return m.getByIDFunc(id)
}
func (m *mockTemplateStore) ListByProject(projectID int64, activeOnly bool) ([]*entity.TaskTemplate, error) {
	return nil, nil
}
func (m *mockTemplateStore) UpdateDueDate(tx *sql.Tx, id int64, dueDate, prevUpdatedAt time.Time) (int64, error) {
	return m.updateDueDateFunc(tx, id, dueDate, prevUpdatedAt)
}
func (m *mockTemplateStore) SetActive(id int64, active bool, prevUpdatedAt time.Time) (int64, error) {
	return m.setActiveFunc(id, active, prevUpdatedAt)
}

type mockMaterializer struct {
	fakeInstanceStore
	forSupplierFunc func(tx *sql.Tx, projectID, supplierID int64) (int64, error)
	forTemplateFunc func(tx *sql.Tx, templateID int64) (int64, error)
}

func (m *mockMaterializer) MaterializeForSupplier(tx *sql.Tx, projectID, supplierID int64) (int64, error) {
	return m.forSupplierFunc(tx, projectID, supplierID)
}

func (m *mockMaterializer) MaterializeForTemplate(tx *sql.Tx, templateID int64) (int64, error) {
	return m.forTemplateFunc(tx, templateID)
}

func v2Project(id int64) *entity.Project {
	return &entity.Project{ID: id, Name: "P-1", SchemaVersion: entity.SchemaV2, IsActive: true}
}

func legacyProject(id int64) *entity.Project {
	return &entity.Project{ID: id, Name: "P-0", SchemaVersion: entity.SchemaLegacy, IsActive: true}
}

func activeTemplate(id, projectID int64) *entity.TaskTemplate {
	return &entity.TaskTemplate{
		ID:               id,
		ProjectID:        projectID,
		TaskTypeID:       1,
		CanonicalDueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Anchor:           entity.AnchorFixed,
		IsActive:         true,
		UpdatedAt:        time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newScheduleService(
	projects *mockProjectStore,
	suppliers *mockSupplierStore,
	taskTypes *mockTaskTypeStore,
	templates *mockTemplateStore,
	instances InstanceStore,
	cache *fakeCache,
) *ScheduleService {
	return NewScheduleService(projects, suppliers, taskTypes, templates, instances, fakeTxRunner{}, cache, zap.NewNop())
}

func TestCreateTemplate_LegacyProjectRejected(t *testing.T) {
	projects := &mockProjectStore{
		getByIDFunc: func(id int64) (*entity.Project, error) { return legacyProject(id), nil },
	}
	svc := newScheduleService(projects, nil, nil, &mockTemplateStore{}, &fakeInstanceStore{}, newFakeCache())

	err := svc.CreateTemplate(&entity.TaskTemplate{
		ProjectID:        1,
		TaskTypeID:       1,
		CanonicalDueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if !apperr.IsValidation(err) {
		t.Fatalf("CreateTemplate() error = %v, want ValidationError", err)
	}
}

func TestCreateTemplate_MaterializesForAssignedSuppliers(t *testing.T) {
	projects := &mockProjectStore{
		getByIDFunc: func(id int64) (*entity.Project, error) { return v2Project(id), nil },
	}
	taskTypes := &mockTaskTypeStore{
		getByIDFunc: func(id int64) (*entity.TaskType, error) {
			return &entity.TaskType{ID: id, Name: "PPAP"}, nil
		},
	}
	var materializedTemplate int64
	instances := &mockMaterializer{
		forTemplateFunc: func(tx *sql.Tx, templateID int64) (int64, error) {
			materializedTemplate = templateID
			return 3, nil
		},
	}
	cache := newFakeCache()
	svc := newScheduleService(projects, nil, taskTypes, &mockTemplateStore{}, instances, cache)

	template := &entity.TaskTemplate{
		ProjectID:        1,
		TaskTypeID:       1,
		CanonicalDueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := svc.CreateTemplate(template); err != nil {
		t.Fatalf("CreateTemplate() error = %v", err)
	}

	if !template.IsActive {
		t.Error("new template not active")
	}
	if template.Anchor != entity.AnchorFixed {
		t.Errorf("anchor defaulted to %s, want fixed", template.Anchor)
	}
	if materializedTemplate != template.ID {
		t.Errorf("materialized template %d, want %d", materializedTemplate, template.ID)
	}
	if cache.projects[1] != 1 || cache.dashboard != 1 {
		t.Error("caches not invalidated after create")
	}
}

func TestCreateTemplate_TaskRelativeNeedsAnchorTemplate(t *testing.T) {
	svc := newScheduleService(nil, nil, nil, &mockTemplateStore{}, &fakeInstanceStore{}, newFakeCache())

	err := svc.CreateTemplate(&entity.TaskTemplate{
		ProjectID:        1,
		TaskTypeID:       1,
		CanonicalDueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Anchor:           entity.AnchorTaskRelative,
	})
	if !apperr.IsValidation(err) {
		t.Fatalf("CreateTemplate() error = %v, want ValidationError", err)
	}
	if apperr.As(err).Field != "anchor_template_id" {
		t.Errorf("field = %q, want anchor_template_id", apperr.As(err).Field)
	}
}

func TestSetTemplateDueDate_PropagatesBySingleWrite(t *testing.T) {
	template := activeTemplate(1, 10)
	newDate := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	var wrote bool
	templates := &mockTemplateStore{
		getByIDFunc: func(id int64) (*entity.TaskTemplate, error) {
			if wrote {
				updated := *template
				updated.CanonicalDueDate = newDate
				return &updated, nil
			}
			return template, nil
		},
		updateDueDateFunc: func(tx *sql.Tx, id int64, dueDate, prevUpdatedAt time.Time) (int64, error) {
			if !dueDate.Equal(newDate) {
				t.Errorf("UpdateDueDate date = %v, want %v", dueDate, newDate)
			}
			wrote = true
			return 1, nil
		},
	}
	cache := newFakeCache()
	svc := newScheduleService(nil, nil, nil, templates, &fakeInstanceStore{}, cache)

	updated, err := svc.SetTemplateDueDate(1, newDate, template.UpdatedAt)
	if err != nil {
		t.Fatalf("SetTemplateDueDate() error = %v", err)
	}
	if !updated.CanonicalDueDate.Equal(newDate) {
		t.Errorf("canonical date = %v, want %v", updated.CanonicalDueDate, newDate)
	}
	if cache.projects[10] != 1 || cache.dashboard != 1 {
		t.Error("caches not invalidated after date change")
	}
}

func TestSetTemplateDueDate_StaleVersionConflicts(t *testing.T) {
	template := activeTemplate(1, 10)
	templates := &mockTemplateStore{
		getByIDFunc: func(id int64) (*entity.TaskTemplate, error) { return template, nil },
		updateDueDateFunc: func(tx *sql.Tx, id int64, dueDate, prevUpdatedAt time.Time) (int64, error) {
			return 0, nil
		},
	}
	cache := newFakeCache()
	svc := newScheduleService(nil, nil, nil, templates, &fakeInstanceStore{}, cache)

	_, err := svc.SetTemplateDueDate(1, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), template.UpdatedAt.Add(-time.Minute))
	if !apperr.IsConflict(err) {
		t.Fatalf("SetTemplateDueDate() error = %v, want Conflict", err)
	}
	if cache.dashboard != 0 {
		t.Error("cache invalidated despite conflict")
	}
}

func TestSetTemplateDueDate_DisabledTemplateRejected(t *testing.T) {
	template := activeTemplate(1, 10)
	template.IsActive = false
	templates := &mockTemplateStore{
		getByIDFunc: func(id int64) (*entity.TaskTemplate, error) { return template, nil },
	}
	svc := newScheduleService(nil, nil, nil, templates, &fakeInstanceStore{}, newFakeCache())

	_, err := svc.SetTemplateDueDate(1, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), template.UpdatedAt)
	if !apperr.IsValidation(err) {
		t.Fatalf("SetTemplateDueDate() error = %v, want ValidationError", err)
	}
}

func TestAssignSupplier_Idempotent(t *testing.T) {
	projects := &mockProjectStore{
		getByIDFunc: func(id int64) (*entity.Project, error) { return v2Project(id), nil },
	}
	suppliers := &mockSupplierStore{
		getByIDFunc: func(id int64) (*entity.Supplier, error) {
			return &entity.Supplier{ID: id, Name: "Acme"}, nil
		},
	}
	assigned := false
	instances := &mockMaterializer{
		forSupplierFunc: func(tx *sql.Tx, projectID, supplierID int64) (int64, error) {
			if assigned {
				return 0, nil
			}
			assigned = true
			return 4, nil
		},
	}
	svc := newScheduleService(projects, suppliers, nil, &mockTemplateStore{}, instances, newFakeCache())

	created, err := svc.AssignSupplier(1, 2)
	if err != nil {
		t.Fatalf("AssignSupplier() error = %v", err)
	}
	if created != 4 {
		t.Fatalf("first assignment created %d instances, want 4", created)
	}

	created, err = svc.AssignSupplier(1, 2)
	if err != nil {
		t.Fatalf("repeated AssignSupplier() error = %v", err)
	}
	if created != 0 {
		t.Errorf("repeated assignment created %d instances, want 0", created)
	}
}

func TestAssignSupplier_LegacyProjectRejected(t *testing.T) {
	projects := &mockProjectStore{
		getByIDFunc: func(id int64) (*entity.Project, error) { return legacyProject(id), nil },
	}
	svc := newScheduleService(projects, nil, nil, &mockTemplateStore{}, &fakeInstanceStore{}, newFakeCache())

	_, err := svc.AssignSupplier(1, 2)
	if !apperr.IsValidation(err) {
		t.Fatalf("AssignSupplier() error = %v, want ValidationError", err)
	}
}
