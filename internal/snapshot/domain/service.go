package domain

import (
	"context"
	"errors"

	"github.com/hogarlink/hogar/internal/sensor"
)

// ReconcileRequest merges a sensor list into the snapshot store. The
// sensor descriptors must already be validated by the caller; the
// reconciler does not re-check shape.
type ReconcileRequest struct {
	OwnerID string
	// DeviceID empty means the configured default device.
	DeviceID string
	Sensors  []sensor.Sensor
}

type ReconcileResult struct {
	SnapshotID string `json:"snapshot_id"`
	DeviceID   string `json:"device_id"`
	// Reconciled counts the sensors upserted into the snapshot.
	Reconciled int `json:"reconciled"`
}

// Reconciler is the piece of the snapshot service the environment write
// path depends on.
type Reconciler interface {
	Reconcile(ctx context.Context, req ReconcileRequest) (ReconcileResult, error)
}

type CreateSnapshotRequest struct {
	DeviceID string
	OwnerID  string
	Sensors  []sensor.Sensor
}

// UpdateSnapshotRequest replaces the provided fields of one snapshot row.
// The sensor list, when present, replaces the stored list in full.
type UpdateSnapshotRequest struct {
	ID       string
	DeviceID *string
	OwnerID  *string
	Sensors  *[]sensor.Sensor
}

type Service interface {
	Reconciler

	Create(ctx context.Context, req CreateSnapshotRequest) (SensorSnapshot, error)
	GetByID(ctx context.Context, id string) (SensorSnapshot, error)
	List(ctx context.Context) ([]SensorSnapshot, error)
	ListByOwner(ctx context.Context, ownerID string) ([]SensorSnapshot, error)
	ListByDevice(ctx context.Context, deviceID string) ([]SensorSnapshot, error)
	Update(ctx context.Context, req UpdateSnapshotRequest) (SensorSnapshot, error)
	Delete(ctx context.Context, id string) (SensorSnapshot, error)
	DeleteByDevice(ctx context.Context, deviceID string) (int64, error)
}

var (
	ErrInvalidID     = errors.New("invalid_snapshot_id")
	ErrInvalidOwner  = errors.New("invalid_snapshot_owner")
	ErrInvalidDevice = errors.New("invalid_device_id")
	ErrEmptySensors  = errors.New("empty_sensor_list")
	ErrNotFound      = errors.New("snapshot_not_found")
)
