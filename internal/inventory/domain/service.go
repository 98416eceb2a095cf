package domain

import (
	"context"
	"errors"
	"time"

	"github.com/hogarlink/hogar/internal/sensor"
)

// SensorView is a classified sensor. In-use sensors carry the names of
// the environments that reference them; free sensors carry the device and
// observation time of their newest sighting instead.
type SensorView struct {
	sensor.Sensor
	Environments []string   `json:"environments,omitempty"`
	DeviceID     string     `json:"device_id,omitempty"`
	ObservedAt   *time.Time `json:"observed_at,omitempty"`
}

// ClassifyResponse partitions a user's known sensors. InUse and Free are
// disjoint, and together they cover every sensor id known for the user.
type ClassifyResponse struct {
	InUse []SensorView `json:"in_use"`
	Free  []SensorView `json:"free"`
}

// OwnerSource names where a sensor was located during an ownership
// lookup.
type OwnerSource string

const (
	SourceEnvironment OwnerSource = "environment"
	SourceSnapshot    OwnerSource = "snapshot"
)

// OwnerResult reports who holds a sensor and where it was found.
// EnvironmentID and EnvironmentName are set only for environment hits,
// DeviceID and ObservedAt only for snapshot hits.
type OwnerResult struct {
	SensorID        string      `json:"sensor_id"`
	OwnerID         string      `json:"owner_id"`
	Source          OwnerSource `json:"source"`
	EnvironmentID   string      `json:"environment_id,omitempty"`
	EnvironmentName string      `json:"environment_name,omitempty"`
	DeviceID        string      `json:"device_id,omitempty"`
	ObservedAt      *time.Time  `json:"observed_at,omitempty"`
}

// EnvironmentSensors pairs an environment with its sensors, the values
// refreshed from the newest snapshot where one exists.
type EnvironmentSensors struct {
	EnvironmentID   string          `json:"environment_id"`
	EnvironmentName string          `json:"environment_name"`
	Sensors         []sensor.Sensor `json:"sensors"`
}

type Service interface {
	// Classify partitions the owner's sensors into in-use and free.
	Classify(ctx context.Context, ownerID string) (ClassifyResponse, error)
	// ListFree returns the sensors known from snapshots but referenced by
	// no environment of the owner.
	ListFree(ctx context.Context, ownerID string) ([]SensorView, error)
	// ListAll returns every sensor known for the owner, classified.
	ListAll(ctx context.Context, ownerID string) ([]SensorView, error)
	// FindOwner locates a sensor id across all users. Environments are
	// searched before snapshots.
	FindOwner(ctx context.Context, sensorID string) (OwnerResult, error)
	// DescribeEnvironments lists the owner's environments with sensor
	// values refreshed from the snapshot store.
	DescribeEnvironments(ctx context.Context, ownerID string) ([]EnvironmentSensors, error)
}

var (
	ErrInvalidOwner    = errors.New("invalid_owner_id")
	ErrInvalidSensorID = errors.New("invalid_sensor_id")
	ErrSensorNotFound  = errors.New("sensor_not_found")
)
