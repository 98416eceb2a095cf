package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hogarlink/hogar/internal/sensor"
	snapshotdomain "github.com/hogarlink/hogar/internal/snapshot/domain"
)

type createSnapshotRequest struct {
	DeviceID string          `json:"device_id"`
	OwnerID  string          `json:"owner_id"`
	Sensors  json.RawMessage `json:"sensors"`
}

type updateSnapshotRequest struct {
	DeviceID *string         `json:"device_id"`
	OwnerID  *string         `json:"owner_id"`
	Sensors  json.RawMessage `json:"sensors"`
}

func (s *Server) CreateSnapshot(c *gin.Context) {
	var req createSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sensors, err := decodeSensors(req.Sensors)
	if err != nil {
		AbortWithError(c, newValidationError("sensors", "invalid_sensors", "invalid sensor list"))
		return
	}

	snap, err := s.snapshotSvc.Create(c.Request.Context(), snapshotdomain.CreateSnapshotRequest{
		DeviceID: strings.TrimSpace(req.DeviceID),
		OwnerID:  strings.TrimSpace(req.OwnerID),
		Sensors:  sensors,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": snap})
}

func (s *Server) ListSnapshots(c *gin.Context) {
	ownerID := strings.TrimSpace(c.Query("user_id"))
	deviceID := strings.TrimSpace(c.Query("device_id"))

	var (
		snaps []snapshotdomain.SensorSnapshot
		err   error
	)
	switch {
	case ownerID != "":
		snaps, err = s.snapshotSvc.ListByOwner(c.Request.Context(), ownerID)
	case deviceID != "":
		snaps, err = s.snapshotSvc.ListByDevice(c.Request.Context(), deviceID)
	default:
		snaps, err = s.snapshotSvc.List(c.Request.Context())
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": snaps})
}

func (s *Server) GetSnapshotByID(c *gin.Context) {
	snap, err := s.snapshotSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": snap})
}

func (s *Server) UpdateSnapshot(c *gin.Context) {
	var req updateSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := snapshotdomain.UpdateSnapshotRequest{
		ID:       strings.TrimSpace(c.Param("id")),
		DeviceID: req.DeviceID,
		OwnerID:  req.OwnerID,
	}
	if len(req.Sensors) > 0 {
		sensors, err := decodeSensors(req.Sensors)
		if err != nil {
			AbortWithError(c, newValidationError("sensors", "invalid_sensors", "invalid sensor list"))
			return
		}
		update.Sensors = &sensors
	}

	snap, err := s.snapshotSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": snap})
}

func (s *Server) DeleteSnapshot(c *gin.Context) {
	snap, err := s.snapshotSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": snap})
}

func (s *Server) DeleteSnapshotsByDevice(c *gin.Context) {
	deleted, err := s.snapshotSvc.DeleteByDevice(c.Request.Context(), strings.TrimSpace(c.Param("deviceId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": deleted}})
}

func (s *Server) ListSensorTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": sensor.Types()})
}

func isSnapshotValidationError(err error) bool {
	switch err {
	case snapshotdomain.ErrInvalidID,
		snapshotdomain.ErrInvalidOwner,
		snapshotdomain.ErrInvalidDevice,
		snapshotdomain.ErrEmptySensors:
		return true
	default:
		return false
	}
}

func isSensorValidationError(err error) bool {
	switch {
	case errors.Is(err, sensor.ErrMissingID),
		errors.Is(err, sensor.ErrMissingName),
		errors.Is(err, sensor.ErrUnknownType),
		errors.Is(err, sensor.ErrColorRequired),
		errors.Is(err, sensor.ErrColorForbidden):
		return true
	default:
		return false
	}
}
