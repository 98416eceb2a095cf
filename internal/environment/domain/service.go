package domain

import (
	"context"
	"errors"
	"regexp"

	"github.com/hogarlink/hogar/internal/sensor"
)

// timePattern matches 24-hour HH:mm values; the hour may omit its leading
// zero.
var timePattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTime reports whether v is a valid HH:mm wall-clock value.
func ValidTime(v string) bool {
	return timePattern.MatchString(v)
}

var weekdays = map[string]struct{}{
	"Monday":    {},
	"Tuesday":   {},
	"Wednesday": {},
	"Thursday":  {},
	"Friday":    {},
	"Saturday":  {},
	"Sunday":    {},
}

// ValidWeekday reports whether name is a weekday name.
func ValidWeekday(name string) bool {
	_, ok := weekdays[name]
	return ok
}

type CreateEnvironmentRequest struct {
	OwnerID    string
	Name       string
	StartTime  string
	EndTime    string
	DaysOfWeek []string
	Sensors    []sensor.Sensor
	Playlist   []PlaylistItem
	// DeviceID routes the snapshot reconciliation; empty means the
	// configured default device.
	DeviceID string
	// Active defaults to true when omitted.
	Active *bool
}

// UpdateEnvironmentRequest replaces the provided fields wholesale; the
// sensor list in particular is replaced in full, never merged.
type UpdateEnvironmentRequest struct {
	ID         string
	OwnerID    string
	Name       *string
	StartTime  *string
	EndTime    *string
	DaysOfWeek *[]string
	Sensors    *[]sensor.Sensor
	Playlist   *[]PlaylistItem
	Active     *bool
	DeviceID   string
}

// EnvironmentResult reports the committed environment together with how
// many sensors made it into the snapshot store. Reconciliation is
// best-effort: a smaller count than len(sensors) means the snapshot merge
// failed after the environment write committed.
type EnvironmentResult struct {
	Environment       Environment `json:"environment"`
	ReconciledSensors int         `json:"reconciled_sensors"`
}

type Service interface {
	Create(ctx context.Context, req CreateEnvironmentRequest) (EnvironmentResult, error)
	Update(ctx context.Context, req UpdateEnvironmentRequest) (EnvironmentResult, error)
	Get(ctx context.Context, id string) (Environment, error)
	GetForOwner(ctx context.Context, id, ownerID string) (Environment, error)
	List(ctx context.Context) ([]Summary, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Summary, error)
	Delete(ctx context.Context, id string) (Environment, error)
	Toggle(ctx context.Context, id, ownerID string) (Environment, error)
}

var (
	ErrInvalidID    = errors.New("invalid_environment_id")
	ErrInvalidOwner = errors.New("invalid_owner_id")
	ErrInvalidName  = errors.New("invalid_environment_name")
	ErrInvalidTime  = errors.New("invalid_time_format")
	ErrInvalidDay   = errors.New("invalid_day_of_week")
	ErrNotFound     = errors.New("environment_not_found")
)
