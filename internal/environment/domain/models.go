package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hogarlink/hogar/internal/sensor"
	"gorm.io/datatypes"
)

// PlaylistItem is an embedded playlist entry.
type PlaylistItem struct {
	ID    string `json:"id"`
	Theme string `json:"theme"`
}

// Environment is a scheduled grouping of sensors owned by one user. The
// sensor descriptors are embedded, not references: the environment owns
// its copies, and the snapshot store is kept in sync through explicit
// reconciliation.
type Environment struct {
	ID         snowflake.ID                        `gorm:"primaryKey" json:"id"`
	OwnerID    snowflake.ID                        `gorm:"not null;index" json:"owner_id"`
	Name       string                              `gorm:"not null" json:"name"`
	StartTime  string                              `gorm:"not null" json:"start_time"`
	EndTime    string                              `gorm:"not null" json:"end_time"`
	DaysOfWeek datatypes.JSONSlice[string]         `json:"days_of_week"`
	Sensors    datatypes.JSONSlice[sensor.Sensor]  `json:"sensors"`
	Playlist   datatypes.JSONSlice[PlaylistItem]   `json:"playlist"`
	Active     bool                                `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time                           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time                           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Summary is the trimmed listing view.
type Summary struct {
	ID        snowflake.ID `json:"id"`
	OwnerID   snowflake.ID `json:"owner_id"`
	Name      string       `json:"name"`
	StartTime string       `json:"start_time"`
	EndTime   string       `json:"end_time"`
	Active    bool         `json:"active"`
}

func (e Environment) Summary() Summary {
	return Summary{
		ID:        e.ID,
		OwnerID:   e.OwnerID,
		Name:      e.Name,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Active:    e.Active,
	}
}
