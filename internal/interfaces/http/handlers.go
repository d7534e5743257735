package http

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/domain/entity"
	"github.com/MontiPy/pic-tracking-sub000/internal/service"
)

// ReportWriter renders task rows into a downloadable workbook
type ReportWriter interface {
	Write(w io.Writer, rows []entity.TaskRow, now time.Time) error
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	catalog   *service.CatalogService
	schedule  *service.ScheduleService
	tasks     *service.TaskService
	dashboard *service.DashboardService
	reports   ReportWriter
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	catalog *service.CatalogService,
	schedule *service.ScheduleService,
	tasks *service.TaskService,
	dashboard *service.DashboardService,
	reports ReportWriter,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		catalog:   catalog,
		schedule:  schedule,
		tasks:     tasks,
		dashboard: dashboard,
		reports:   reports,
		logger:    logger,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// SupplierRequest is the create/update body for suppliers
type SupplierRequest struct {
	Name          string `json:"name"`
	Code          string `json:"code"`
	ContactEmail  string `json:"contact_email"`
	IsActive      *bool  `json:"is_active"`
	PrevUpdatedAt string `json:"prev_updated_at"`
}

// CreateSupplier handles POST /api/v1/suppliers
func (h *Handlers) CreateSupplier(c *gin.Context) {
	var req SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errMalformedBody)
		return
	}

	supplier := &entity.Supplier{
		Name:         req.Name,
		Code:         req.Code,
		ContactEmail: req.ContactEmail,
	}
	if err := h.catalog.CreateSupplier(supplier); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, supplier)
}

// GetSupplier handles GET /api/v1/suppliers/:id
func (h *Handlers) GetSupplier(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	supplier, err := h.catalog.GetSupplier(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, supplier)
}

// ListSuppliers handles GET /api/v1/suppliers
func (h *Handlers) ListSuppliers(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	suppliers, err := h.catalog.ListSuppliers(activeOnly)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, suppliers)
}

// UpdateSupplier handles PUT /api/v1/suppliers/:id
func (h *Handlers) UpdateSupplier(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errMalformedBody)
		return
	}

	prev, err := parseTimestamp("prev_updated_at", req.PrevUpdatedAt)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	supplier := &entity.Supplier{
		ID:           id,
		Name:         req.Name,
		Code:         req.Code,
		ContactEmail: req.ContactEmail,
		IsActive:     true,
	}
	if req.IsActive != nil {
		supplier.IsActive = *req.IsActive
	}

	if err := h.catalog.UpdateSupplier(supplier, prev); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, supplier)
}

// ProjectRequest is the create/update body for projects
type ProjectRequest struct {
	Name          string `json:"name"`
	Code          string `json:"code"`
	SchemaVersion string `json:"schema_version"`
	MilestoneDate string `json:"milestone_date"`
	IsActive      *bool  `json:"is_active"`
	PrevUpdatedAt string `json:"prev_updated_at"`
}

func (h *Handlers) projectFromRequest(id int64, req ProjectRequest) (*entity.Project, error) {
	project := &entity.Project{
		ID:            id,
		Name:          req.Name,
		Code:          req.Code,
		SchemaVersion: entity.SchemaVersion(req.SchemaVersion),
		IsActive:      true,
	}
	if req.IsActive != nil {
		project.IsActive = *req.IsActive
	}
	if req.MilestoneDate != "" {
		milestone, err := parseDate("milestone_date", req.MilestoneDate)
		if err != nil {
			return nil, err
		}
		project.MilestoneDate = &milestone
	}
	return project, nil
}

// CreateProject handles POST /api/v1/projects
func (h *Handlers) CreateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errMalformedBody)
		return
	}

	project, err := h.projectFromRequest(0, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.catalog.CreateProject(project); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// GetProject handles GET /api/v1/projects/:id
func (h *Handlers) GetProject(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	project, err := h.catalog.GetProject(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// ListProjects handles GET /api/v1/projects
func (h *Handlers) ListProjects(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	projects, err := h.catalog.ListProjects(activeOnly)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, projects)
}

// UpdateProject handles PUT /api/v1/projects/:id
func (h *Handlers) UpdateProject(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errMalformedBody)
		return
	}

	prev, err := parseTimestamp("prev_updated_at", req.PrevUpdatedAt)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	project, err := h.projectFromRequest(id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.catalog.UpdateProject(project, prev); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// TaskTypeRequest is the create/update body for task types
type TaskTypeRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	DefaultOffsetDays int    `json:"default_offset_days"`
	PrevUpdatedAt     string `json:"prev_updated_at"`
}

// CreateTaskType handles POST /api/v1/task-types
func (h *Handlers) CreateTaskType(c *gin.Context) {
	var req TaskTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errMalformedBody)
		return
	}

	taskType := &entity.TaskType{
		Name:              req.Name,
		Description:       req.Description,
		DefaultOffsetDays: req.DefaultOffsetDays,
	}
	if err := h.catalog.CreateTaskType(taskType); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, taskType)
}

// GetTaskType handles GET /api/v1/task-types/:id
func (h *Handlers) GetTaskType(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	taskType, err := h.catalog.GetTaskType(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, taskType)
}

// ListTaskTypes handles GET /api/v1/task-types
func (h *Handlers) ListTaskTypes(c *gin.Context) {
	taskTypes, err := h.catalog.ListTaskTypes()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, taskTypes)
}

// UpdateTaskType handles PUT /api/v1/task-types/:id
func (h *Handlers) UpdateTaskType(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req TaskTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errMalformedBody)
		return
	}

	prev, err := parseTimestamp("prev_updated_at", req.PrevUpdatedAt)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	taskType := &entity.TaskType{
		ID:                id,
		Name:              req.Name,
		Description:       req.Description,
		DefaultOffsetDays: req.DefaultOffsetDays,
	}
	if err := h.catalog.UpdateTaskType(taskType, prev); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, taskType)
}
