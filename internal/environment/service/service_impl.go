package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/hogarlink/hogar/internal/clock"
	"github.com/hogarlink/hogar/internal/environment/domain"
	"github.com/hogarlink/hogar/internal/sensor"
	snapshotdomain "github.com/hogarlink/hogar/internal/snapshot/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	Reconciler snapshotdomain.Reconciler
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	reconciler snapshotdomain.Reconciler
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("environment.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		reconciler: p.Reconciler,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEnvironmentRequest) (domain.EnvironmentResult, error) {
	ownerID, err := parseID(req.OwnerID)
	if err != nil {
		return domain.EnvironmentResult{}, domain.ErrInvalidOwner
	}
	if strings.TrimSpace(req.Name) == "" {
		return domain.EnvironmentResult{}, domain.ErrInvalidName
	}
	if !domain.ValidTime(req.StartTime) || !domain.ValidTime(req.EndTime) {
		return domain.EnvironmentResult{}, domain.ErrInvalidTime
	}
	for _, day := range req.DaysOfWeek {
		if !domain.ValidWeekday(day) {
			return domain.EnvironmentResult{}, domain.ErrInvalidDay
		}
	}
	if err := sensor.ValidateList(req.Sensors); err != nil {
		return domain.EnvironmentResult{}, err
	}

	now := s.clock.Now()
	env := &domain.Environment{
		ID:         s.genID.Generate(),
		OwnerID:    ownerID,
		Name:       req.Name,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		DaysOfWeek: datatypes.NewJSONSlice(req.DaysOfWeek),
		Sensors:    datatypes.NewJSONSlice(req.Sensors),
		Playlist:   datatypes.NewJSONSlice(req.Playlist),
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.Active != nil {
		env.Active = *req.Active
	}

	if err := s.repo.Insert(ctx, s.db, env); err != nil {
		s.log.Error("insert environment", zap.Error(err))
		return domain.EnvironmentResult{}, err
	}

	reconciled := s.reconcile(ctx, req.OwnerID, req.DeviceID, req.Sensors)
	return domain.EnvironmentResult{Environment: *env, ReconciledSensors: reconciled}, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateEnvironmentRequest) (domain.EnvironmentResult, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.EnvironmentResult{}, domain.ErrInvalidID
	}
	ownerID, err := parseID(req.OwnerID)
	if err != nil {
		return domain.EnvironmentResult{}, domain.ErrInvalidOwner
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return domain.EnvironmentResult{}, domain.ErrInvalidName
	}
	if req.StartTime != nil && !domain.ValidTime(*req.StartTime) {
		return domain.EnvironmentResult{}, domain.ErrInvalidTime
	}
	if req.EndTime != nil && !domain.ValidTime(*req.EndTime) {
		return domain.EnvironmentResult{}, domain.ErrInvalidTime
	}
	if req.DaysOfWeek != nil {
		for _, day := range *req.DaysOfWeek {
			if !domain.ValidWeekday(day) {
				return domain.EnvironmentResult{}, domain.ErrInvalidDay
			}
		}
	}
	if req.Sensors != nil {
		if err := sensor.ValidateList(*req.Sensors); err != nil {
			return domain.EnvironmentResult{}, err
		}
	}

	env, err := s.repo.FindForOwner(ctx, s.db, id, ownerID)
	if err != nil {
		s.log.Error("find environment", zap.Error(err))
		return domain.EnvironmentResult{}, err
	}
	if env == nil {
		return domain.EnvironmentResult{}, domain.ErrNotFound
	}

	if req.Name != nil {
		env.Name = *req.Name
	}
	if req.StartTime != nil {
		env.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		env.EndTime = *req.EndTime
	}
	if req.DaysOfWeek != nil {
		env.DaysOfWeek = datatypes.NewJSONSlice(*req.DaysOfWeek)
	}
	if req.Sensors != nil {
		env.Sensors = datatypes.NewJSONSlice(*req.Sensors)
	}
	if req.Playlist != nil {
		env.Playlist = datatypes.NewJSONSlice(*req.Playlist)
	}
	if req.Active != nil {
		env.Active = *req.Active
	}
	env.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, env); err != nil {
		s.log.Error("update environment", zap.Error(err))
		return domain.EnvironmentResult{}, err
	}

	reconciled := 0
	if req.Sensors != nil {
		reconciled = s.reconcile(ctx, req.OwnerID, req.DeviceID, *req.Sensors)
	}
	return domain.EnvironmentResult{Environment: *env, ReconciledSensors: reconciled}, nil
}

// reconcile pushes the environment's sensor list into the snapshot store.
// The environment write has already committed; a reconciliation failure is
// logged and surfaced only through the returned count.
func (s *Service) reconcile(ctx context.Context, ownerID, deviceID string, sensors []sensor.Sensor) int {
	if len(sensors) == 0 {
		return 0
	}

	res, err := s.reconciler.Reconcile(ctx, snapshotdomain.ReconcileRequest{
		OwnerID:  ownerID,
		DeviceID: deviceID,
		Sensors:  sensors,
	})
	if err != nil {
		s.log.Warn("snapshot reconcile failed after environment write",
			zap.String("owner_id", ownerID),
			zap.Error(err),
		)
		return 0
	}
	return res.Reconciled
}

func (s *Service) Get(ctx context.Context, id string) (domain.Environment, error) {
	envID, err := parseID(id)
	if err != nil {
		return domain.Environment{}, domain.ErrInvalidID
	}

	env, err := s.repo.FindByID(ctx, s.db, envID)
	if err != nil {
		s.log.Error("find environment", zap.Error(err))
		return domain.Environment{}, err
	}
	if env == nil {
		return domain.Environment{}, domain.ErrNotFound
	}
	return *env, nil
}

func (s *Service) GetForOwner(ctx context.Context, id, ownerID string) (domain.Environment, error) {
	envID, err := parseID(id)
	if err != nil {
		return domain.Environment{}, domain.ErrInvalidID
	}
	owner, err := parseID(ownerID)
	if err != nil {
		return domain.Environment{}, domain.ErrInvalidOwner
	}

	env, err := s.repo.FindForOwner(ctx, s.db, envID, owner)
	if err != nil {
		s.log.Error("find environment", zap.Error(err))
		return domain.Environment{}, err
	}
	if env == nil {
		return domain.Environment{}, domain.ErrNotFound
	}
	return *env, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Summary, error) {
	envs, err := s.repo.ListAll(ctx, s.db)
	if err != nil {
		s.log.Error("list environments", zap.Error(err))
		return nil, err
	}
	return summaries(envs), nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]domain.Summary, error) {
	owner, err := parseID(ownerID)
	if err != nil {
		return nil, domain.ErrInvalidOwner
	}

	envs, err := s.repo.ListByOwner(ctx, s.db, owner)
	if err != nil {
		s.log.Error("list environments", zap.Error(err))
		return nil, err
	}
	return summaries(envs), nil
}

func (s *Service) Delete(ctx context.Context, id string) (domain.Environment, error) {
	envID, err := parseID(id)
	if err != nil {
		return domain.Environment{}, domain.ErrInvalidID
	}

	env, err := s.repo.FindByID(ctx, s.db, envID)
	if err != nil {
		s.log.Error("find environment", zap.Error(err))
		return domain.Environment{}, err
	}
	if env == nil {
		return domain.Environment{}, domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, s.db, envID); err != nil {
		s.log.Error("delete environment", zap.Error(err))
		return domain.Environment{}, err
	}
	return *env, nil
}

func (s *Service) Toggle(ctx context.Context, id, ownerID string) (domain.Environment, error) {
	envID, err := parseID(id)
	if err != nil {
		return domain.Environment{}, domain.ErrInvalidID
	}
	owner, err := parseID(ownerID)
	if err != nil {
		return domain.Environment{}, domain.ErrInvalidOwner
	}

	env, err := s.repo.FindForOwner(ctx, s.db, envID, owner)
	if err != nil {
		s.log.Error("find environment", zap.Error(err))
		return domain.Environment{}, err
	}
	if env == nil {
		return domain.Environment{}, domain.ErrNotFound
	}

	env.Active = !env.Active
	env.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, env); err != nil {
		s.log.Error("toggle environment", zap.Error(err))
		return domain.Environment{}, err
	}
	return *env, nil
}

func summaries(envs []*domain.Environment) []domain.Summary {
	out := make([]domain.Summary, 0, len(envs))
	for _, env := range envs {
		out = append(out, env.Summary())
	}
	return out
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
