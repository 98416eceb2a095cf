package sensor

import (
	"errors"
	"fmt"
	"strings"
)

// Type classifies a sensor or actuator descriptor.
type Type string

const (
	TypeLight             Type = "LIGHT"
	TypeFan               Type = "FAN"
	TypeAirConditioner    Type = "AIR_CONDITIONER"
	TypeTemperatureSensor Type = "TEMPERATURE_SENSOR"
	TypeHumiditySensor    Type = "HUMIDITY_SENSOR"
	TypeSmartPlug         Type = "SMART_PLUG"
	TypeCurtain           Type = "CURTAIN"
	TypeMotionSensor      Type = "MOTION_SENSOR"
	TypeAirPurifier       Type = "AIR_PURIFIER"
)

var knownTypes = map[Type]struct{}{
	TypeLight:             {},
	TypeFan:               {},
	TypeAirConditioner:    {},
	TypeTemperatureSensor: {},
	TypeHumiditySensor:    {},
	TypeSmartPlug:         {},
	TypeCurtain:           {},
	TypeMotionSensor:      {},
	TypeAirPurifier:       {},
}

// Types returns every known sensor type, for error messages.
func Types() []Type {
	return []Type{
		TypeLight,
		TypeFan,
		TypeAirConditioner,
		TypeTemperatureSensor,
		TypeHumiditySensor,
		TypeSmartPlug,
		TypeCurtain,
		TypeMotionSensor,
		TypeAirPurifier,
	}
}

func (t Type) Valid() bool {
	_, ok := knownTypes[t]
	return ok
}

// Sensor is the descriptor embedded in both environments and snapshots.
// Value semantics depend on the type: intensity for lights and fans,
// on/off for plugs, a reading for temperature and humidity sensors.
type Sensor struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Type  Type    `json:"type"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

var (
	ErrMissingID      = errors.New("missing_sensor_id")
	ErrMissingName    = errors.New("missing_sensor_name")
	ErrUnknownType    = errors.New("unknown_sensor_type")
	ErrColorRequired  = errors.New("color_required_for_light")
	ErrColorForbidden = errors.New("color_only_for_light")
)

// Validate checks the descriptor shape, including the color rule:
// color must be a non-empty string when the type is LIGHT and must be
// absent for every other type. No field is coerced.
func (s Sensor) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(s.Name) == "" {
		return ErrMissingName
	}
	if !s.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, string(s.Type))
	}
	if s.Type == TypeLight {
		if strings.TrimSpace(s.Color) == "" {
			return ErrColorRequired
		}
	} else if s.Color != "" {
		return ErrColorForbidden
	}
	return nil
}

// ValidateList validates every descriptor and reports the first failure
// with its position, so nothing is written on a partially valid list.
func ValidateList(sensors []Sensor) error {
	for i, s := range sensors {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("sensor %d: %w", i+1, err)
		}
	}
	return nil
}
