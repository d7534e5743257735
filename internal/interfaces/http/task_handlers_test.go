package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MontiPy/pic-tracking-sub000/internal/apperr"
	"github.com/MontiPy/pic-tracking-sub000/internal/domain/workflow"
)

func contextWithQuery(query string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/tasks?"+query, nil)
	return c
}

func TestTaskFilterFromQuery(t *testing.T) {
	query := url.Values{
		"supplier_id": {"3"},
		"project_id":  {"7"},
		"status":      {"in_progress, blocked"},
		"due_before":  {"2026-04-01"},
		"due_after":   {"2026-03-01"},
		"overdue":     {"true"},
		"limit":       {"50"},
		"offset":      {"100"},
	}

	filter, err := taskFilterFromQuery(contextWithQuery(query.Encode()))
	if err != nil {
		t.Fatalf("taskFilterFromQuery() error = %v", err)
	}

	if filter.SupplierID == nil || *filter.SupplierID != 3 {
		t.Errorf("supplier_id = %v, want 3", filter.SupplierID)
	}
	if filter.ProjectID == nil || *filter.ProjectID != 7 {
		t.Errorf("project_id = %v, want 7", filter.ProjectID)
	}
	if len(filter.Statuses) != 2 || filter.Statuses[0] != "in_progress" || filter.Statuses[1] != "blocked" {
		t.Errorf("statuses = %v", filter.Statuses)
	}
	if filter.DueBefore == nil || !filter.DueBefore.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("due_before = %v", filter.DueBefore)
	}
	if !filter.OverdueOnly {
		t.Error("overdue flag not set")
	}
	if filter.Limit != 50 || filter.Offset != 100 {
		t.Errorf("limit/offset = %d/%d, want 50/100", filter.Limit, filter.Offset)
	}
}

func TestTaskFilterFromQuery_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"bad supplier id", "supplier_id=acme", "supplier_id"},
		{"bad project id", "project_id=x", "project_id"},
		{"unknown status", "status=done", "status"},
		{"bad date", "due_before=01/04/2026", "due_before"},
		{"negative limit", "limit=-1", "limit"},
		{"bad offset", "offset=ten", "offset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := taskFilterFromQuery(contextWithQuery(tt.query))
			if !apperr.IsValidation(err) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if apperr.As(err).Field != tt.field {
				t.Errorf("field = %q, want %q", apperr.As(err).Field, tt.field)
			}
		})
	}
}

func TestTaskPatchRequest_ToPatch(t *testing.T) {
	status := "in_progress"
	due := "2026-03-10"

	patch, err := TaskPatchRequest{Status: &status, DueDate: &due}.toPatch()
	if err != nil {
		t.Fatalf("toPatch() error = %v", err)
	}
	if patch.Status == nil || *patch.Status != workflow.StatusInProgress {
		t.Errorf("status = %v", patch.Status)
	}
	if patch.DueDate == nil || !patch.DueDate.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("due_date = %v", patch.DueDate)
	}
}

func TestTaskPatchRequest_DueDateAndClearExclusive(t *testing.T) {
	due := "2026-03-10"
	_, err := TaskPatchRequest{DueDate: &due, ClearDueDate: true}.toPatch()
	if !apperr.IsValidation(err) {
		t.Fatalf("toPatch() error = %v, want ValidationError", err)
	}
}

func TestTaskPatchRequest_UnknownStatus(t *testing.T) {
	status := "done"
	_, err := TaskPatchRequest{Status: &status}.toPatch()
	if !apperr.IsValidation(err) {
		t.Fatalf("toPatch() error = %v, want ValidationError", err)
	}
}
