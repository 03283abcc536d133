package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type projectRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// handleListProjects returns all projects in manual order.
func (s *Server) handleListProjects(c *gin.Context) {
	projects, err := s.store.ListProjects(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// handleCreateProject creates a new project; name collisions get a suffix
// instead of failing.
func (s *Server) handleCreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, err)
		return
	}

	project, err := s.store.CreateProject(c.Request.Context(), req.Name, req.Color, req.Icon)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// handleRenameProject renames an existing project.
func (s *Server) handleRenameProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, err)
		return
	}

	project, err := s.store.RenameProject(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

// handleDeleteProject removes a project after moving its tasks to the inbox.
// The user-facing confirmation dialog lives on the client side; by the time
// this endpoint is called the decision has been made.
func (s *Server) handleDeleteProject(c *gin.Context) {
	if err := s.store.DeleteProjectMoveToInbox(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
