package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/hogarlink/hogar/internal/clock"
	"github.com/hogarlink/hogar/internal/config"
	"github.com/hogarlink/hogar/internal/devicestate/domain"
	environmentdomain "github.com/hogarlink/hogar/internal/environment/domain"
	"github.com/hogarlink/hogar/internal/observability/metrics"
	"github.com/hogarlink/hogar/internal/sensor"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	EnvRepo   environmentdomain.Repository
	DeviceCfg *config.DeviceConfigHolder
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	envRepo   environmentdomain.Repository
	deviceCfg *config.DeviceConfigHolder
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("devicestate.service"),
		clock:     p.Clock,
		envRepo:   p.EnvRepo,
		deviceCfg: p.DeviceCfg,
		metrics:   p.Metrics,
	}
}

// State is pinned to the owner's oldest environment so the projection
// stays stable as environments are added.
func (s *Service) State(ctx context.Context, ownerID, deviceID string) (domain.DeviceState, error) {
	owner, err := snowflake.ParseString(strings.TrimSpace(ownerID))
	if err != nil {
		s.metrics.ObserveDevicePoll("invalid")
		return domain.DeviceState{}, domain.ErrInvalidOwner
	}

	env, err := s.envRepo.FindOldestByOwner(ctx, s.db, owner)
	if err != nil {
		s.log.Error("find environment", zap.Error(err))
		s.metrics.ObserveDevicePoll("error")
		return domain.DeviceState{}, err
	}
	if env == nil {
		s.metrics.ObserveDevicePoll("empty")
		return domain.DeviceState{}, domain.ErrNoEnvironment
	}

	if strings.TrimSpace(deviceID) == "" {
		deviceID = s.deviceCfg.Get().DefaultDeviceID
	}

	sensors := make([]sensor.Sensor, 0, len(env.Sensors))
	for _, sn := range env.Sensors {
		if !env.Active {
			sn.Value = 0
		}
		sensors = append(sensors, sn)
	}

	s.metrics.ObserveDevicePoll("ok")
	return domain.DeviceState{
		DeviceID:  deviceID,
		OwnerID:   env.OwnerID.String(),
		Active:    env.Active,
		Sensors:   sensors,
		Timestamp: s.clock.Now(),
	}, nil
}
