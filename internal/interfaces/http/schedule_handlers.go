package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MontiPy/pic-tracking-sub000/internal/domain/entity"
)

// TemplateRequest is the create body for project task templates
type TemplateRequest struct {
	TaskTypeID       int64  `json:"task_type_id"`
	CanonicalDueDate string `json:"canonical_due_date"`
	Anchor           string `json:"anchor"`
	AnchorTemplateID *int64 `json:"anchor_template_id"`
	OffsetDays       int    `json:"offset_days"`
}

// CreateTemplate handles POST /api/v1/projects/:id/templates
func (h *Handlers) CreateTemplate(c *gin.Context) {
	projectID, err := parseIDParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errMalformedBody)
		return
	}

	dueDate, err := parseDate("canonical_due_date", req.CanonicalDueDate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	template := &entity.TaskTemplate{
		ProjectID:        projectID,
		TaskTypeID:       req.TaskTypeID,
		CanonicalDueDate: dueDate,
		Anchor:           entity.Anchor(req.Anchor),
		AnchorTemplateID: req.AnchorTemplateID,
		OffsetDays:       req.OffsetDays,
	}
	if err := h.schedule.CreateTemplate(template); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, template)
}

// GetTemplate handles GET /api/v1/templates/:id
func (h *Handlers) GetTemplate(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	template, err := h.schedule.GetTemplate(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, template)
}

// ListProjectTemplates handles GET /api/v1/projects/:id/templates
func (h *Handlers) ListProjectTemplates(c *gin.Context) {
	projectID, err := parseIDParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	activeOnly := c.Query("active") != "false"

	templates, err := h.schedule.ListProjectTemplates(projectID, activeOnly)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, templates)
}

// DueDateRequest is the body for canonical due date changes
type DueDateRequest struct {
	DueDate       string `json:"due_date"`
	PrevUpdatedAt string `json:"prev_updated_at"`
}

// SetTemplateDueDate handles PUT /api/v1/templates/:id/due-date.
// Every instance of the template without an override follows the new
// date; overridden instances are unaffected.
func (h *Handlers) SetTemplateDueDate(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req DueDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errMalformedBody)
		return
	}

	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	prev, err := parseTimestamp("prev_updated_at", req.PrevUpdatedAt)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	template, err := h.schedule.SetTemplateDueDate(id, dueDate, prev)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, template)
}

// ActiveRequest is the body for template soft-disable
type ActiveRequest struct {
	IsActive      *bool  `json:"is_active"`
	PrevUpdatedAt string `json:"prev_updated_at"`
}

// SetTemplateActive handles PUT /api/v1/templates/:id/active
func (h *Handlers) SetTemplateActive(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req ActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errMalformedBody)
		return
	}
	if req.IsActive == nil {
		respondError(c, h.logger, errMissingField("is_active"))
		return
	}

	prev, err := parseTimestamp("prev_updated_at", req.PrevUpdatedAt)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.schedule.SetTemplateActive(id, *req.IsActive, prev); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusOK)
}

// AssignSupplierRequest is the body for supplier-project assignment
type AssignSupplierRequest struct {
	SupplierID int64 `json:"supplier_id"`
}

// AssignSupplier handles POST /api/v1/projects/:id/suppliers. The
// assignment materializes one instance per active template; repeating
// it is a no-op.
func (h *Handlers) AssignSupplier(c *gin.Context) {
	projectID, err := parseIDParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req AssignSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errMalformedBody)
		return
	}

	created, err := h.schedule.AssignSupplier(projectID, req.SupplierID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project_id":        projectID,
		"supplier_id":       req.SupplierID,
		"instances_created": created,
	})
}
