package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskdesk/internal/storage/sqlite"
)

// Server provides the HTTP contract consumed by the UI layer.
type Server struct {
	engine *gin.Engine
	store  *sqlite.Store
	logger *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *sqlite.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine: router,
		store:  store,
		logger: logger,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		projects := api.Group("/projects")
		{
			projects.GET("", s.handleListProjects)
			projects.POST("", s.handleCreateProject)
			projects.PUT(":id", s.handleRenameProject)
			projects.DELETE(":id", s.handleDeleteProject)
			projects.POST(":id/tasks", s.handleCreateTask)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("", s.handleListTasks)
			tasks.POST("/reorder", s.handleReorderTasks)
			tasks.PATCH(":id", s.handleUpdateTask)
			tasks.PUT(":id/completed", s.handleToggleTask)
			tasks.DELETE(":id", s.handleDeleteTask)
			tasks.PUT(":id/tags/:tagID", s.handleAttachTag)
			tasks.DELETE(":id/tags/:tagID", s.handleDetachTag)
		}

		tags := api.Group("/tags")
		{
			tags.GET("", s.handleListTags)
			tags.POST("", s.handleEnsureTag)
			tags.DELETE(":id", s.handleDeleteTag)
		}

		backup := api.Group("/backup")
		{
			backup.GET("/export", s.handleExport)
			backup.POST("/import", s.handleImport)
		}
	}
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError logs the error and returns a JSON payload with a status
// matching the store's error taxonomy.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, sqlite.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, sqlite.ErrProtectedProject):
		status = http.StatusConflict
	}
	s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": err.Error()})
}
