package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type tagRequest struct {
	Name string `json:"name"`
}

// handleListTags returns all tags ordered by name.
func (s *Server) handleListTags(c *gin.Context) {
	tags, err := s.store.ListTags(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// handleEnsureTag returns the tag with the given name, creating it on first
// use. Calling it twice with the same name yields the same tag.
func (s *Server) handleEnsureTag(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, err)
		return
	}

	tag, err := s.store.EnsureTag(c.Request.Context(), req.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// handleDeleteTag removes a tag everywhere.
func (s *Server) handleDeleteTag(c *gin.Context) {
	if err := s.store.DeleteTag(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// handleAttachTag links a tag to a task; repeating the call is harmless.
func (s *Server) handleAttachTag(c *gin.Context) {
	if err := s.store.AttachTagToTask(c.Request.Context(), c.Param("id"), c.Param("tagID")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "attached"})
}

// handleDetachTag removes the link; repeating the call is harmless.
func (s *Server) handleDetachTag(c *gin.Context) {
	if err := s.store.DetachTagFromTask(c.Request.Context(), c.Param("id"), c.Param("tagID")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "detached"})
}
