package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	environmentdomain "github.com/hogarlink/hogar/internal/environment/domain"
	"github.com/hogarlink/hogar/internal/sensor"
)

type createEnvironmentRequest struct {
	Name       string                             `json:"name"`
	StartTime  string                             `json:"start_time"`
	EndTime    string                             `json:"end_time"`
	DaysOfWeek []string                           `json:"days_of_week"`
	Sensors    json.RawMessage                    `json:"sensors"`
	Playlist   []environmentdomain.PlaylistItem   `json:"playlist"`
	DeviceID   string                             `json:"device_id"`
	Active     *bool                              `json:"active"`
}

type updateEnvironmentRequest struct {
	Name       *string                            `json:"name"`
	StartTime  *string                            `json:"start_time"`
	EndTime    *string                            `json:"end_time"`
	DaysOfWeek *[]string                          `json:"days_of_week"`
	Sensors    json.RawMessage                    `json:"sensors"`
	Playlist   *[]environmentdomain.PlaylistItem  `json:"playlist"`
	DeviceID   string                             `json:"device_id"`
	Active     *bool                              `json:"active"`
}

func (s *Server) CreateEnvironment(c *gin.Context) {
	var req createEnvironmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sensors, err := decodeSensors(req.Sensors)
	if err != nil {
		AbortWithError(c, newValidationError("sensors", "invalid_sensors", "invalid sensor list"))
		return
	}

	result, err := s.environmentSvc.Create(c.Request.Context(), environmentdomain.CreateEnvironmentRequest{
		OwnerID:    strings.TrimSpace(c.Param("id")),
		Name:       strings.TrimSpace(req.Name),
		StartTime:  strings.TrimSpace(req.StartTime),
		EndTime:    strings.TrimSpace(req.EndTime),
		DaysOfWeek: req.DaysOfWeek,
		Sensors:    sensors,
		Playlist:   req.Playlist,
		DeviceID:   strings.TrimSpace(req.DeviceID),
		Active:     req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

func (s *Server) UpdateEnvironment(c *gin.Context) {
	var req updateEnvironmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := environmentdomain.UpdateEnvironmentRequest{
		ID:         strings.TrimSpace(c.Param("envId")),
		OwnerID:    strings.TrimSpace(c.Param("id")),
		Name:       req.Name,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		DaysOfWeek: req.DaysOfWeek,
		Playlist:   req.Playlist,
		Active:     req.Active,
		DeviceID:   strings.TrimSpace(req.DeviceID),
	}
	if len(req.Sensors) > 0 {
		sensors, err := decodeSensors(req.Sensors)
		if err != nil {
			AbortWithError(c, newValidationError("sensors", "invalid_sensors", "invalid sensor list"))
			return
		}
		update.Sensors = &sensors
	}

	result, err := s.environmentSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) ListEnvironments(c *gin.Context) {
	summaries, err := s.environmentSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

func (s *Server) GetEnvironmentByID(c *gin.Context) {
	env, err := s.environmentSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": env})
}

func (s *Server) ListUserEnvironments(c *gin.Context) {
	summaries, err := s.environmentSvc.ListByOwner(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

func (s *Server) GetUserEnvironment(c *gin.Context) {
	env, err := s.environmentSvc.GetForOwner(
		c.Request.Context(),
		strings.TrimSpace(c.Param("envId")),
		strings.TrimSpace(c.Param("id")),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": env})
}

func (s *Server) DeleteEnvironment(c *gin.Context) {
	env, err := s.environmentSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("envId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": env})
}

func (s *Server) ToggleEnvironment(c *gin.Context) {
	env, err := s.environmentSvc.Toggle(
		c.Request.Context(),
		strings.TrimSpace(c.Param("envId")),
		strings.TrimSpace(c.Param("id")),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": env})
}

func (s *Server) DescribeEnvironmentSensors(c *gin.Context) {
	described, err := s.inventorySvc.DescribeEnvironments(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": described})
}

// decodeSensors accepts the sensor list either as a JSON array or as a
// string holding the encoded array. Mobile clients send the latter.
func decodeSensors(raw json.RawMessage) ([]sensor.Sensor, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var sensors []sensor.Sensor
	if err := json.Unmarshal(raw, &sensors); err == nil {
		return sensors, nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, err
	}
	if strings.TrimSpace(encoded) == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(encoded), &sensors); err != nil {
		return nil, err
	}
	return sensors, nil
}

func isEnvironmentValidationError(err error) bool {
	switch err {
	case environmentdomain.ErrInvalidID,
		environmentdomain.ErrInvalidOwner,
		environmentdomain.ErrInvalidName,
		environmentdomain.ErrInvalidTime,
		environmentdomain.ErrInvalidDay:
		return true
	default:
		return false
	}
}
