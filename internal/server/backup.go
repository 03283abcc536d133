package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskdesk/internal/storage/sqlite"
)

// handleExport streams the full backup bundle.
func (s *Server) handleExport(c *gin.Context) {
	bundle, err := s.store.ExportBundle(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="taskdesk-backup.json"`)
	c.JSON(http.StatusOK, bundle)
}

// handleImport merges an uploaded bundle into the store. The client is
// expected to have confirmed the merge with the user already; the endpoint
// itself only validates the document.
func (s *Server) handleImport(c *gin.Context) {
	var bundle sqlite.Bundle
	if err := c.ShouldBindJSON(&bundle); err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.store.ImportBundle(c.Request.Context(), bundle); err != nil {
		if errors.Is(err, sqlite.ErrBackupVersion) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "imported"})
}
