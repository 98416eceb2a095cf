package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	inventorydomain "github.com/hogarlink/hogar/internal/inventory/domain"
)

func (s *Server) ClassifySensors(c *gin.Context) {
	resp, err := s.inventorySvc.Classify(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListFreeSensors(c *gin.Context) {
	free, err := s.inventorySvc.ListFree(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": free})
}

func (s *Server) ListAllSensors(c *gin.Context) {
	all, err := s.inventorySvc.ListAll(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": all})
}

func (s *Server) FindSensorOwner(c *gin.Context) {
	owner, err := s.inventorySvc.FindOwner(c.Request.Context(), strings.TrimSpace(c.Param("sensorId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": owner})
}

func isInventoryValidationError(err error) bool {
	switch err {
	case inventorydomain.ErrInvalidOwner,
		inventorydomain.ErrInvalidSensorID:
		return true
	default:
		return false
	}
}
