package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DeviceConfig holds the device-facing defaults: the sentinel device id
// applied when telemetry or reconciliation requests omit one, and the
// poll budget for embedded controllers.
type DeviceConfig struct {
	DefaultDeviceID string  `mapstructure:"defaultDeviceId"`
	PollRate        float64 `mapstructure:"pollRate"`
	PollBurst       int     `mapstructure:"pollBurst"`
}

func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		DefaultDeviceID: "default_device",
		PollRate:        1,
		PollBurst:       5,
	}
}

type DeviceConfigHolder struct {
	current atomic.Value // holds DeviceConfig
}

// NewDeviceConfigHolder reads hogar.yml (volume mount, system dir, or the
// working directory) and keeps the device defaults hot-reloaded on change.
// Missing file means shipped defaults.
func NewDeviceConfigHolder() (*DeviceConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("hogar")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/hogar/config")
	v.AddConfigPath("/etc/hogar")
	v.AddConfigPath(".")

	v.SetEnvPrefix("HOGAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultDeviceConfig()
	v.SetDefault("device.defaultDeviceId", defaults.DefaultDeviceID)
	v.SetDefault("device.pollRate", defaults.PollRate)
	v.SetDefault("device.pollBurst", defaults.PollBurst)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg DeviceConfig
	if err := v.UnmarshalKey("device", &cfg); err != nil {
		return nil, err
	}
	if err := validateDeviceConfig(cfg); err != nil {
		return nil, err
	}

	holder := &DeviceConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated DeviceConfig
		if err := v.UnmarshalKey("device", &updated); err != nil {
			log.Printf("[device-config] reload failed: %v", err)
			return
		}
		if err := validateDeviceConfig(updated); err != nil {
			log.Printf("[device-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[device-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *DeviceConfigHolder) Get() DeviceConfig {
	return h.current.Load().(DeviceConfig)
}

// NewStaticDeviceConfigHolder returns a holder pinned to the given config,
// for tests.
func NewStaticDeviceConfigHolder(cfg DeviceConfig) *DeviceConfigHolder {
	holder := &DeviceConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func validateDeviceConfig(cfg DeviceConfig) error {
	if strings.TrimSpace(cfg.DefaultDeviceID) == "" {
		return errors.New("device.defaultDeviceId cannot be empty")
	}
	if cfg.PollRate <= 0 || cfg.PollBurst <= 0 {
		return errors.New("device poll rate and burst must be positive")
	}
	return nil
}
