package domain

import (
	"context"
	"errors"
	"time"

	"github.com/hogarlink/hogar/internal/sensor"
)

// DeviceState is the projection served to embedded controllers. When the
// backing environment is inactive every sensor value reads zero; the
// descriptors themselves are kept so the controller knows its channels.
type DeviceState struct {
	DeviceID  string          `json:"device_id"`
	OwnerID   string          `json:"owner_id"`
	Active    bool            `json:"active"`
	Sensors   []sensor.Sensor `json:"sensors"`
	Timestamp time.Time       `json:"timestamp"`
}

type Service interface {
	// State projects the owner's first environment into a device payload.
	// An empty deviceID means the configured default device.
	State(ctx context.Context, ownerID, deviceID string) (DeviceState, error)
}

var (
	ErrInvalidOwner  = errors.New("invalid_owner_id")
	ErrNoEnvironment = errors.New("no_environment_for_owner")
)
