package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hogarlink/hogar/internal/sensor"
	"gorm.io/datatypes"
)

// SensorSnapshot is the last known sensor state for a (user, device)
// pair, independent of any environment. Sensor ids are unique within one
// snapshot; the reconciler enforces this by overwrite-in-place or append.
type SensorSnapshot struct {
	ID         snowflake.ID                       `gorm:"primaryKey" json:"id"`
	DeviceID   string                             `gorm:"not null;index:ix_snapshot_owner_device" json:"device_id"`
	OwnerID    snowflake.ID                       `gorm:"not null;index:ix_snapshot_owner_device" json:"owner_id"`
	Sensors    datatypes.JSONSlice[sensor.Sensor] `json:"sensors"`
	ObservedAt time.Time                          `gorm:"not null;index" json:"observed_at"`
}
