// Package http is the HTTP adapter: it translates JSON requests into
// service calls and application errors into status codes.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/service"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     *zap.Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	catalog *service.CatalogService,
	schedule *service.ScheduleService,
	tasks *service.TaskService,
	dashboard *service.DashboardService,
	reports ReportWriter,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:   config,
		router:   router,
		handlers: NewHandlers(catalog, schedule, tasks, dashboard, reports, logger),
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(loggingMiddleware(s.logger))
	s.router.Use(corsMiddleware())
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.GET("/health", h.HealthCheck)

	api := s.router.Group("/api/v1")
	{
		api.POST("/suppliers", h.CreateSupplier)
		api.GET("/suppliers", h.ListSuppliers)
		api.GET("/suppliers/:id", h.GetSupplier)
		api.PUT("/suppliers/:id", h.UpdateSupplier)
		api.GET("/suppliers/:id/summary", h.GetSupplierSummary)

		api.POST("/projects", h.CreateProject)
		api.GET("/projects", h.ListProjects)
		api.GET("/projects/:id", h.GetProject)
		api.PUT("/projects/:id", h.UpdateProject)
		api.GET("/projects/:id/summary", h.GetProjectSummary)
		api.POST("/projects/:id/suppliers", h.AssignSupplier)
		api.GET("/projects/:id/templates", h.ListProjectTemplates)
		api.POST("/projects/:id/templates", h.CreateTemplate)

		api.POST("/task-types", h.CreateTaskType)
		api.GET("/task-types", h.ListTaskTypes)
		api.GET("/task-types/:id", h.GetTaskType)
		api.PUT("/task-types/:id", h.UpdateTaskType)

		api.GET("/templates/:id", h.GetTemplate)
		api.PUT("/templates/:id/due-date", h.SetTemplateDueDate)
		api.PUT("/templates/:id/active", h.SetTemplateActive)

		api.GET("/tasks", h.ListTasks)
		api.GET("/tasks/:id", h.GetTask)
		api.PATCH("/tasks/:id", h.UpdateTask)
		api.POST("/tasks/bulk-update", h.BulkUpdateTasks)

		api.GET("/dashboard", h.GetDashboard)
		api.GET("/reports/tasks.xlsx", h.ExportTaskReport)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or
// the listener fails
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
