package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"taskdesk/internal/models"
)

type taskCreateRequest struct {
	Title string `json:"title"`
}

// taskPatchRequest carries the sparse update fields. An empty string in
// due_at or project_id clears the column; absent fields stay untouched.
type taskPatchRequest struct {
	Title     *string `json:"title"`
	Notes     *string `json:"notes"`
	Priority  *int64  `json:"priority"`
	DueAt     *string `json:"due_at"`
	ProjectID *string `json:"project_id"`
}

type reorderRequest struct {
	ProjectID *string  `json:"project_id"`
	IDs       []string `json:"ids"`
}

// handleListTasks runs the filtered task query. Query parameters: view
// (today/upcoming/completed/all), project_id, q, tags (comma separated ids)
// and today (YYYY-MM-DD, defaults to the server's current date).
func (s *Server) handleListTasks(c *gin.Context) {
	filter := models.TaskFilter{
		View:   models.View(c.DefaultQuery("view", string(models.ViewAll))),
		Search: c.Query("q"),
		Today:  c.DefaultQuery("today", time.Now().Format("2006-01-02")),
	}
	if pid := c.Query("project_id"); pid != "" {
		filter.ProjectID = &pid
	}
	if raw := c.Query("tags"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				filter.TagIDs = append(filter.TagIDs, id)
			}
		}
	}

	tasks, err := s.store.ListTasks(c.Request.Context(), filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// handleCreateTask inserts a new task into a project.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, err)
		return
	}

	projectID := c.Param("id")
	task, err := s.store.CreateTask(c.Request.Context(), req.Title, &projectID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// handleUpdateTask applies a sparse patch to a task.
func (s *Server) handleUpdateTask(c *gin.Context) {
	var req taskPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, err)
		return
	}

	changes := map[string]any{}
	if req.Title != nil {
		changes["title"] = *req.Title
	}
	if req.Notes != nil {
		changes["notes"] = *req.Notes
	}
	if req.Priority != nil {
		changes["priority"] = *req.Priority
	}
	if req.DueAt != nil {
		changes["due_at"] = nullable(*req.DueAt)
	}
	if req.ProjectID != nil {
		changes["project_id"] = nullable(*req.ProjectID)
	}

	task, err := s.store.UpdateTask(c.Request.Context(), c.Param("id"), changes)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

type toggleRequest struct {
	Completed bool `json:"completed"`
}

// handleToggleTask sets the completion flag.
func (s *Server) handleToggleTask(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, err)
		return
	}

	task, err := s.store.ToggleTaskCompleted(c.Request.Context(), c.Param("id"), req.Completed)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.store.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// handleReorderTasks rewrites the manual order of a project's tasks after a
// drag-and-drop on the client.
func (s *Server) handleReorderTasks(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.store.ReorderTasks(c.Request.Context(), req.ProjectID, req.IDs); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reordered"})
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
