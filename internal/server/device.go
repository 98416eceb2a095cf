package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	devicestatedomain "github.com/hogarlink/hogar/internal/devicestate/domain"
	"go.uber.org/zap"
)

type deviceCommandAck struct {
	DeviceID  string `json:"device_id"`
	CommandID string `json:"command_id"`
	Status    string `json:"status"`
}

// DeviceStatus is the readiness probe for embedded controllers. It checks
// the database, not just the process, because a controller that can reach
// us but gets no state should back off.
func (s *Server) DeviceStatus(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) DeviceData(c *gin.Context) {
	state, err := s.deviceStateSvc.State(
		c.Request.Context(),
		strings.TrimSpace(c.Param("userId")),
		strings.TrimSpace(c.Query("device_id")),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// DeviceCommandAck records command acknowledgements from controllers.
// The payload is logged and accepted; command dispatch itself lives on
// the device side.
func (s *Server) DeviceCommandAck(c *gin.Context) {
	var req deviceCommandAck
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	zap.L().Info("device command ack",
		zap.String("device_id", strings.TrimSpace(req.DeviceID)),
		zap.String("command_id", strings.TrimSpace(req.CommandID)),
		zap.String("status", strings.TrimSpace(req.Status)),
	)

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

// DevicePollRateLimit enforces the per-user poll budget when redis is
// configured. Limiter failures fail open; a redis outage must not take
// the device fleet down with it.
func (s *Server) DevicePollRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.pollLimiter.Enabled() {
			c.Next()
			return
		}

		userID := strings.TrimSpace(c.Param("userId"))
		res, err := s.pollLimiter.AllowPoll(c.Request.Context(), userID)
		if err != nil {
			zap.L().Warn("poll rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			c.Header("Retry-After", res.RetryAfter.Round(time.Second).String())
			AbortWithError(c, ErrTooManyPolls)
			return
		}

		c.Next()
	}
}

func isDeviceStateValidationError(err error) bool {
	return err == devicestatedomain.ErrInvalidOwner
}
