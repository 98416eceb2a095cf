package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/hogarlink/hogar/internal/clock"
	"github.com/hogarlink/hogar/internal/config"
	"github.com/hogarlink/hogar/internal/observability/metrics"
	"github.com/hogarlink/hogar/internal/sensor"
	"github.com/hogarlink/hogar/internal/snapshot/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	DeviceCfg *config.DeviceConfigHolder
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	deviceCfg *config.DeviceConfigHolder
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("snapshot.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		deviceCfg: p.DeviceCfg,
		metrics:   p.Metrics,
	}
}

// Reconcile merges the given sensors into the newest snapshot for the
// (owner, device) pair, creating the snapshot when none exists. Sensors
// already present are overwritten in full by id; new ones are appended in
// request order. The snapshot's observation time is bumped on every run,
// even when the merged list is byte-identical to the stored one.
func (s *Service) Reconcile(ctx context.Context, req domain.ReconcileRequest) (domain.ReconcileResult, error) {
	ownerID, err := parseID(req.OwnerID)
	if err != nil {
		return domain.ReconcileResult{}, domain.ErrInvalidOwner
	}
	if len(req.Sensors) == 0 {
		return domain.ReconcileResult{}, domain.ErrEmptySensors
	}
	deviceID := s.normalizeDevice(req.DeviceID)

	snap, err := s.repo.FindNewest(ctx, s.db, ownerID, deviceID)
	if err != nil {
		s.log.Error("find snapshot", zap.Error(err))
		s.metrics.ObserveReconcile("error", 0)
		return domain.ReconcileResult{}, err
	}

	now := s.clock.Now()
	if snap == nil {
		snap = &domain.SensorSnapshot{
			ID:         s.genID.Generate(),
			DeviceID:   deviceID,
			OwnerID:    ownerID,
			Sensors:    datatypes.NewJSONSlice(req.Sensors),
			ObservedAt: now,
		}
		if err := s.repo.Insert(ctx, s.db, snap); err != nil {
			s.log.Error("insert snapshot", zap.Error(err))
			s.metrics.ObserveReconcile("error", 0)
			return domain.ReconcileResult{}, err
		}
		s.metrics.ObserveReconcile("created", len(req.Sensors))
		return domain.ReconcileResult{
			SnapshotID: snap.ID.String(),
			DeviceID:   deviceID,
			Reconciled: len(req.Sensors),
		}, nil
	}

	snap.Sensors = mergeSensors(snap.Sensors, req.Sensors)
	snap.ObservedAt = now
	if err := s.repo.Update(ctx, s.db, snap); err != nil {
		s.log.Error("update snapshot", zap.Error(err))
		s.metrics.ObserveReconcile("error", 0)
		return domain.ReconcileResult{}, err
	}

	s.metrics.ObserveReconcile("merged", len(req.Sensors))
	return domain.ReconcileResult{
		SnapshotID: snap.ID.String(),
		DeviceID:   deviceID,
		Reconciled: len(req.Sensors),
	}, nil
}

// mergeSensors overwrites stored sensors by id and appends the rest.
// Overwrite replaces the whole descriptor, so fields absent from the
// incoming sensor (a dropped color, say) do not survive from the stored
// copy.
func mergeSensors(stored, incoming []sensor.Sensor) []sensor.Sensor {
	index := make(map[string]int, len(stored))
	merged := make([]sensor.Sensor, len(stored), len(stored)+len(incoming))
	copy(merged, stored)
	for i, sn := range merged {
		index[sn.ID] = i
	}

	for _, sn := range incoming {
		if i, ok := index[sn.ID]; ok {
			merged[i] = sn
			continue
		}
		index[sn.ID] = len(merged)
		merged = append(merged, sn)
	}
	return merged
}

func (s *Service) Create(ctx context.Context, req domain.CreateSnapshotRequest) (domain.SensorSnapshot, error) {
	ownerID, err := parseID(req.OwnerID)
	if err != nil {
		return domain.SensorSnapshot{}, domain.ErrInvalidOwner
	}
	if err := sensor.ValidateList(req.Sensors); err != nil {
		return domain.SensorSnapshot{}, err
	}

	snap := &domain.SensorSnapshot{
		ID:         s.genID.Generate(),
		DeviceID:   s.normalizeDevice(req.DeviceID),
		OwnerID:    ownerID,
		Sensors:    datatypes.NewJSONSlice(req.Sensors),
		ObservedAt: s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, snap); err != nil {
		s.log.Error("insert snapshot", zap.Error(err))
		return domain.SensorSnapshot{}, err
	}
	return *snap, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.SensorSnapshot, error) {
	snapID, err := parseID(id)
	if err != nil {
		return domain.SensorSnapshot{}, domain.ErrInvalidID
	}

	snap, err := s.repo.FindByID(ctx, s.db, snapID)
	if err != nil {
		s.log.Error("find snapshot", zap.Error(err))
		return domain.SensorSnapshot{}, err
	}
	if snap == nil {
		return domain.SensorSnapshot{}, domain.ErrNotFound
	}
	return *snap, nil
}

func (s *Service) List(ctx context.Context) ([]domain.SensorSnapshot, error) {
	snaps, err := s.repo.List(ctx, s.db)
	if err != nil {
		s.log.Error("list snapshots", zap.Error(err))
		return nil, err
	}
	return values(snaps), nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]domain.SensorSnapshot, error) {
	owner, err := parseID(ownerID)
	if err != nil {
		return nil, domain.ErrInvalidOwner
	}

	snaps, err := s.repo.ListByOwner(ctx, s.db, owner)
	if err != nil {
		s.log.Error("list snapshots", zap.Error(err))
		return nil, err
	}
	return values(snaps), nil
}

func (s *Service) ListByDevice(ctx context.Context, deviceID string) ([]domain.SensorSnapshot, error) {
	if strings.TrimSpace(deviceID) == "" {
		return nil, domain.ErrInvalidDevice
	}

	snaps, err := s.repo.ListByDevice(ctx, s.db, deviceID)
	if err != nil {
		s.log.Error("list snapshots", zap.Error(err))
		return nil, err
	}
	return values(snaps), nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateSnapshotRequest) (domain.SensorSnapshot, error) {
	snapID, err := parseID(req.ID)
	if err != nil {
		return domain.SensorSnapshot{}, domain.ErrInvalidID
	}

	snap, err := s.repo.FindByID(ctx, s.db, snapID)
	if err != nil {
		s.log.Error("find snapshot", zap.Error(err))
		return domain.SensorSnapshot{}, err
	}
	if snap == nil {
		return domain.SensorSnapshot{}, domain.ErrNotFound
	}

	if req.DeviceID != nil {
		if strings.TrimSpace(*req.DeviceID) == "" {
			return domain.SensorSnapshot{}, domain.ErrInvalidDevice
		}
		snap.DeviceID = *req.DeviceID
	}
	if req.OwnerID != nil {
		owner, err := parseID(*req.OwnerID)
		if err != nil {
			return domain.SensorSnapshot{}, domain.ErrInvalidOwner
		}
		snap.OwnerID = owner
	}
	if req.Sensors != nil {
		if err := sensor.ValidateList(*req.Sensors); err != nil {
			return domain.SensorSnapshot{}, err
		}
		snap.Sensors = datatypes.NewJSONSlice(*req.Sensors)
	}
	snap.ObservedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, snap); err != nil {
		s.log.Error("update snapshot", zap.Error(err))
		return domain.SensorSnapshot{}, err
	}
	return *snap, nil
}

func (s *Service) Delete(ctx context.Context, id string) (domain.SensorSnapshot, error) {
	snapID, err := parseID(id)
	if err != nil {
		return domain.SensorSnapshot{}, domain.ErrInvalidID
	}

	snap, err := s.repo.FindByID(ctx, s.db, snapID)
	if err != nil {
		s.log.Error("find snapshot", zap.Error(err))
		return domain.SensorSnapshot{}, err
	}
	if snap == nil {
		return domain.SensorSnapshot{}, domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, s.db, snapID); err != nil {
		s.log.Error("delete snapshot", zap.Error(err))
		return domain.SensorSnapshot{}, err
	}
	return *snap, nil
}

func (s *Service) DeleteByDevice(ctx context.Context, deviceID string) (int64, error) {
	if strings.TrimSpace(deviceID) == "" {
		return 0, domain.ErrInvalidDevice
	}

	deleted, err := s.repo.DeleteByDevice(ctx, s.db, deviceID)
	if err != nil {
		s.log.Error("delete snapshots", zap.Error(err))
		return 0, err
	}
	return deleted, nil
}

func (s *Service) normalizeDevice(deviceID string) string {
	if v := strings.TrimSpace(deviceID); v != "" {
		return v
	}
	return s.deviceCfg.Get().DefaultDeviceID
}

func values(snaps []*domain.SensorSnapshot) []domain.SensorSnapshot {
	out := make([]domain.SensorSnapshot, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, *snap)
	}
	return out
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
