package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/apperr"
	"github.com/MontiPy/pic-tracking-sub000/internal/domain/workflow"
	"github.com/MontiPy/pic-tracking-sub000/internal/repository"
	"github.com/MontiPy/pic-tracking-sub000/internal/service"
)

// taskFilterFromQuery builds a TaskFilter from listing query params
func taskFilterFromQuery(c *gin.Context) (repository.TaskFilter, error) {
	var filter repository.TaskFilter

	if v := c.Query("supplier_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, apperr.Validation("supplier_id", "supplier_id must be an integer")
		}
		filter.SupplierID = &id
	}
	if v := c.Query("project_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, apperr.Validation("project_id", "project_id must be an integer")
		}
		filter.ProjectID = &id
	}
	if v := c.Query("status"); v != "" {
		for _, s := range strings.Split(v, ",") {
			s = strings.TrimSpace(s)
			if !workflow.Status(s).IsValid() {
				return filter, apperr.Validation("status", "unknown status "+s)
			}
			filter.Statuses = append(filter.Statuses, s)
		}
	}
	if v := c.Query("due_before"); v != "" {
		parsed, err := parseDate("due_before", v)
		if err != nil {
			return filter, err
		}
		filter.DueBefore = &parsed
	}
	if v := c.Query("due_after"); v != "" {
		parsed, err := parseDate("due_after", v)
		if err != nil {
			return filter, err
		}
		filter.DueAfter = &parsed
	}
	filter.OverdueOnly = c.Query("overdue") == "true"

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return filter, apperr.Validation("limit", "limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, apperr.Validation("offset", "offset must be a non-negative integer")
		}
		filter.Offset = offset
	}

	return filter, nil
}

// ListTasks handles GET /api/v1/tasks
func (h *Handlers) ListTasks(c *gin.Context) {
	filter, err := taskFilterFromQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	tasks, err := h.tasks.ListTasks(filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

// GetTask handles GET /api/v1/tasks/:id
func (h *Handlers) GetTask(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	instance, err := h.tasks.GetInstance(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, instance)
}

// TaskPatchRequest is the wire shape of an instance patch. Omitted
// fields are untouched; clear_due_date removes the override and
// re-subscribes the instance to template date changes.
type TaskPatchRequest struct {
	Status       *string `json:"status"`
	DueDate      *string `json:"due_date"`
	ClearDueDate bool    `json:"clear_due_date"`
	Notes        *string `json:"notes"`
	IsApplied    *bool   `json:"is_applied"`
}

func (r TaskPatchRequest) toPatch() (service.InstancePatch, error) {
	patch := service.InstancePatch{
		ClearDueDate: r.ClearDueDate,
		Notes:        r.Notes,
		IsApplied:    r.IsApplied,
	}

	if r.Status != nil {
		status := workflow.Status(*r.Status)
		if !status.IsValid() {
			return patch, apperr.Validation("status", "unknown status "+*r.Status)
		}
		patch.Status = &status
	}
	if r.DueDate != nil {
		if r.ClearDueDate {
			return patch, apperr.Validation("due_date", "due_date and clear_due_date are mutually exclusive")
		}
		due, err := parseDate("due_date", *r.DueDate)
		if err != nil {
			return patch, err
		}
		patch.DueDate = &due
	}

	return patch, nil
}

// UpdateTaskRequest is the body for single-instance updates
type UpdateTaskRequest struct {
	TaskPatchRequest
	PrevUpdatedAt string `json:"prev_updated_at"`
}

// UpdateTask handles PATCH /api/v1/tasks/:id
func (h *Handlers) UpdateTask(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errMalformedBody)
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	prev, err := parseTimestamp("prev_updated_at", req.PrevUpdatedAt)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	instance, err := h.tasks.UpdateInstance(id, patch, prev)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, instance)
}

// BulkUpdateRequest is the body for the bulk operator. prev_updated_at
// entries are optional per-instance optimistic-lock checks, keyed by
// instance id.
type BulkUpdateRequest struct {
	InstanceIDs   []int64           `json:"instance_ids"`
	Patch         TaskPatchRequest  `json:"patch"`
	PrevUpdatedAt map[string]string `json:"prev_updated_at"`
}

// BulkUpdateTasks handles POST /api/v1/tasks/bulk-update. The batch is
// one transaction: any failure rolls back every change.
func (h *Handlers) BulkUpdateTasks(c *gin.Context) {
	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errMalformedBody)
		return
	}

	patch, err := req.Patch.toPatch()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var prevByID map[int64]time.Time
	if len(req.PrevUpdatedAt) > 0 {
		prevByID = make(map[int64]time.Time, len(req.PrevUpdatedAt))
		for key, value := range req.PrevUpdatedAt {
			id, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				respondError(c, h.logger, apperr.Validation("prev_updated_at", "keys must be instance ids"))
				return
			}
			prev, err := parseTimestamp("prev_updated_at", value)
			if err != nil {
				respondError(c, h.logger, err)
				return
			}
			prevByID[id] = prev
		}
	}

	result, err := h.tasks.BulkUpdate(req.InstanceIDs, patch, prevByID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDashboard handles GET /api/v1/dashboard
func (h *Handlers) GetDashboard(c *gin.Context) {
	snapshot, err := h.dashboard.ComputeDashboard(time.Now().UTC())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetSupplierSummary handles GET /api/v1/suppliers/:id/summary
func (h *Handlers) GetSupplierSummary(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	summary, err := h.dashboard.SupplierSummary(id, time.Now().UTC())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetProjectSummary handles GET /api/v1/projects/:id/summary
func (h *Handlers) GetProjectSummary(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	summary, err := h.dashboard.ProjectSummary(id, time.Now().UTC())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ExportTaskReport handles GET /api/v1/reports/tasks.xlsx with the
// same filters as the task listing
func (h *Handlers) ExportTaskReport(c *gin.Context) {
	filter, err := taskFilterFromQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	rows, err := h.tasks.ListTasks(filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="tasks.xlsx"`)
	c.Status(http.StatusOK)

	if err := h.reports.Write(c.Writer, rows, time.Now().UTC()); err != nil {
		h.logger.Error("Failed to stream task report", zap.Error(err))
	}
}
