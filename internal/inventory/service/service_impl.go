package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	environmentdomain "github.com/hogarlink/hogar/internal/environment/domain"
	"github.com/hogarlink/hogar/internal/inventory/domain"
	"github.com/hogarlink/hogar/internal/sensor"
	snapshotdomain "github.com/hogarlink/hogar/internal/snapshot/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	EnvRepo  environmentdomain.Repository
	SnapRepo snapshotdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	envRepo  environmentdomain.Repository
	snapRepo snapshotdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("inventory.service"),
		envRepo:  p.EnvRepo,
		snapRepo: p.SnapRepo,
	}
}

// Classify walks the owner's environments in creation order, then the
// snapshot store. A sensor referenced by any environment is in-use and
// keeps the descriptor from the first environment that names it; every
// other snapshot sensor is free.
func (s *Service) Classify(ctx context.Context, ownerID string) (domain.ClassifyResponse, error) {
	owner, err := parseID(ownerID)
	if err != nil {
		return domain.ClassifyResponse{}, domain.ErrInvalidOwner
	}

	envs, err := s.envRepo.ListByOwner(ctx, s.db, owner)
	if err != nil {
		s.log.Error("list environments", zap.Error(err))
		return domain.ClassifyResponse{}, err
	}
	snaps, err := s.snapRepo.ListByOwner(ctx, s.db, owner)
	if err != nil {
		s.log.Error("list snapshots", zap.Error(err))
		return domain.ClassifyResponse{}, err
	}

	inUse := make([]domain.SensorView, 0)
	index := make(map[string]int)
	for _, env := range envs {
		for _, sn := range env.Sensors {
			if i, ok := index[sn.ID]; ok {
				inUse[i].Environments = append(inUse[i].Environments, env.Name)
				continue
			}
			index[sn.ID] = len(inUse)
			inUse = append(inUse, domain.SensorView{
				Sensor:       sn,
				Environments: []string{env.Name},
			})
		}
	}

	// Snapshots arrive newest first, so a free sensor is annotated with
	// its latest sighting.
	free := make([]domain.SensorView, 0)
	seen := make(map[string]struct{})
	for _, snap := range snaps {
		for _, sn := range snap.Sensors {
			if _, ok := index[sn.ID]; ok {
				continue
			}
			if _, ok := seen[sn.ID]; ok {
				continue
			}
			seen[sn.ID] = struct{}{}
			observedAt := snap.ObservedAt
			free = append(free, domain.SensorView{
				Sensor:     sn,
				DeviceID:   snap.DeviceID,
				ObservedAt: &observedAt,
			})
		}
	}

	return domain.ClassifyResponse{InUse: inUse, Free: free}, nil
}

func (s *Service) ListFree(ctx context.Context, ownerID string) ([]domain.SensorView, error) {
	res, err := s.Classify(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return res.Free, nil
}

func (s *Service) ListAll(ctx context.Context, ownerID string) ([]domain.SensorView, error) {
	res, err := s.Classify(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	all := make([]domain.SensorView, 0, len(res.InUse)+len(res.Free))
	all = append(all, res.InUse...)
	all = append(all, res.Free...)
	return all, nil
}

// FindOwner searches every user's environments before falling back to
// snapshots. Snapshots are walked newest first, so a sensor that moved
// between devices resolves to its latest sighting.
func (s *Service) FindOwner(ctx context.Context, sensorID string) (domain.OwnerResult, error) {
	sensorID = strings.TrimSpace(sensorID)
	if sensorID == "" {
		return domain.OwnerResult{}, domain.ErrInvalidSensorID
	}

	envs, err := s.envRepo.ListAll(ctx, s.db)
	if err != nil {
		s.log.Error("list environments", zap.Error(err))
		return domain.OwnerResult{}, err
	}
	for _, env := range envs {
		for _, sn := range env.Sensors {
			if sn.ID != sensorID {
				continue
			}
			return domain.OwnerResult{
				SensorID:        sensorID,
				OwnerID:         env.OwnerID.String(),
				Source:          domain.SourceEnvironment,
				EnvironmentID:   env.ID.String(),
				EnvironmentName: env.Name,
			}, nil
		}
	}

	snaps, err := s.snapRepo.ListNewestFirst(ctx, s.db)
	if err != nil {
		s.log.Error("list snapshots", zap.Error(err))
		return domain.OwnerResult{}, err
	}
	for _, snap := range snaps {
		for _, sn := range snap.Sensors {
			if sn.ID != sensorID {
				continue
			}
			observedAt := snap.ObservedAt
			return domain.OwnerResult{
				SensorID:   sensorID,
				OwnerID:    snap.OwnerID.String(),
				Source:     domain.SourceSnapshot,
				DeviceID:   snap.DeviceID,
				ObservedAt: &observedAt,
			}, nil
		}
	}

	return domain.OwnerResult{}, domain.ErrSensorNotFound
}

// DescribeEnvironments returns the owner's environments with each sensor
// value replaced by the newest snapshot reading where one exists. Sensors
// absent from every snapshot keep their stored descriptor.
func (s *Service) DescribeEnvironments(ctx context.Context, ownerID string) ([]domain.EnvironmentSensors, error) {
	owner, err := parseID(ownerID)
	if err != nil {
		return nil, domain.ErrInvalidOwner
	}

	envs, err := s.envRepo.ListByOwner(ctx, s.db, owner)
	if err != nil {
		s.log.Error("list environments", zap.Error(err))
		return nil, err
	}
	snaps, err := s.snapRepo.ListByOwner(ctx, s.db, owner)
	if err != nil {
		s.log.Error("list snapshots", zap.Error(err))
		return nil, err
	}

	// Snapshots arrive newest first; first sighting wins.
	latest := make(map[string]sensor.Sensor)
	for _, snap := range snaps {
		for _, sn := range snap.Sensors {
			if _, ok := latest[sn.ID]; !ok {
				latest[sn.ID] = sn
			}
		}
	}

	out := make([]domain.EnvironmentSensors, 0, len(envs))
	for _, env := range envs {
		sensors := make([]sensor.Sensor, 0, len(env.Sensors))
		for _, sn := range env.Sensors {
			if fresh, ok := latest[sn.ID]; ok {
				sensors = append(sensors, fresh)
				continue
			}
			sensors = append(sensors, sn)
		}
		out = append(out, domain.EnvironmentSensors{
			EnvironmentID:   env.ID.String(),
			EnvironmentName: env.Name,
			Sensors:         sensors,
		})
	}
	return out, nil
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
