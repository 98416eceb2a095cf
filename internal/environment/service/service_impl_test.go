package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/hogarlink/hogar/internal/clock"
	"github.com/hogarlink/hogar/internal/environment/domain"
	"github.com/hogarlink/hogar/internal/environment/repository"
	"github.com/hogarlink/hogar/internal/sensor"
	snapshotdomain "github.com/hogarlink/hogar/internal/snapshot/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type reconcilerStub struct {
	calls []snapshotdomain.ReconcileRequest
	err   error
}

func (r *reconcilerStub) Reconcile(ctx context.Context, req snapshotdomain.ReconcileRequest) (snapshotdomain.ReconcileResult, error) {
	r.calls = append(r.calls, req)
	if r.err != nil {
		return snapshotdomain.ReconcileResult{}, r.err
	}
	return snapshotdomain.ReconcileResult{
		SnapshotID: "1",
		DeviceID:   req.DeviceID,
		Reconciled: len(req.Sensors),
	}, nil
}

func setupEnvironmentTest(t *testing.T) (*Service, *reconcilerStub, *gorm.DB, *snowflake.Node) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&domain.Environment{}))

	node, _ := snowflake.NewNode(1)
	stub := &reconcilerStub{}

	svc := &Service{
		db:         db,
		log:        zap.NewNop(),
		genID:      node,
		clock:      clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		repo:       repository.Provide(),
		reconciler: stub,
	}

	return svc, stub, db, node
}

func lampAndFan() []sensor.Sensor {
	return []sensor.Sensor{
		{ID: "lamp-1", Name: "Lamp", Type: sensor.TypeLight, Value: 70, Color: "#ffcc00"},
		{ID: "fan-1", Name: "Fan", Type: sensor.TypeFan, Value: 2},
	}
}

func TestCreateEnvironmentDefaultsActive(t *testing.T) {
	svc, stub, _, node := setupEnvironmentTest(t)
	owner := node.Generate()

	result, err := svc.Create(context.Background(), domain.CreateEnvironmentRequest{
		OwnerID:    owner.String(),
		Name:       "Evening",
		StartTime:  "18:00",
		EndTime:    "23:30",
		DaysOfWeek: []string{"Monday", "Friday"},
		Sensors:    lampAndFan(),
	})
	require.NoError(t, err)

	assert.True(t, result.Environment.Active)
	assert.Equal(t, 2, result.ReconciledSensors)
	require.Len(t, stub.calls, 1)
	assert.Equal(t, owner.String(), stub.calls[0].OwnerID)
}

func TestCreateEnvironmentExplicitInactive(t *testing.T) {
	svc, _, _, node := setupEnvironmentTest(t)
	inactive := false

	result, err := svc.Create(context.Background(), domain.CreateEnvironmentRequest{
		OwnerID:   node.Generate().String(),
		Name:      "Away",
		StartTime: "08:00",
		EndTime:   "17:00",
		Active:    &inactive,
	})
	require.NoError(t, err)
	assert.False(t, result.Environment.Active)
}

func TestCreateEnvironmentRejectsBadTime(t *testing.T) {
	svc, stub, db, node := setupEnvironmentTest(t)

	_, err := svc.Create(context.Background(), domain.CreateEnvironmentRequest{
		OwnerID:   node.Generate().String(),
		Name:      "Broken",
		StartTime: "24:00",
		EndTime:   "08:00",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTime)
	assert.Empty(t, stub.calls)

	var count int64
	db.Model(&domain.Environment{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateEnvironmentRejectsBadSensorBeforeWrite(t *testing.T) {
	svc, stub, db, node := setupEnvironmentTest(t)

	sensors := lampAndFan()
	sensors[1].Color = "#fff"

	_, err := svc.Create(context.Background(), domain.CreateEnvironmentRequest{
		OwnerID:   node.Generate().String(),
		Name:      "Partial",
		StartTime: "10:00",
		EndTime:   "12:00",
		Sensors:   sensors,
	})
	assert.ErrorIs(t, err, sensor.ErrColorForbidden)
	assert.Empty(t, stub.calls)

	var count int64
	db.Model(&domain.Environment{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateEnvironmentRejectsBadWeekday(t *testing.T) {
	svc, _, _, node := setupEnvironmentTest(t)

	_, err := svc.Create(context.Background(), domain.CreateEnvironmentRequest{
		OwnerID:    node.Generate().String(),
		Name:       "Weekdays",
		StartTime:  "10:00",
		EndTime:    "12:00",
		DaysOfWeek: []string{"Monday", "Someday"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDay)
}

func TestCreateSurvivesReconcileFailure(t *testing.T) {
	svc, stub, db, node := setupEnvironmentTest(t)
	stub.err = assert.AnError

	result, err := svc.Create(context.Background(), domain.CreateEnvironmentRequest{
		OwnerID:   node.Generate().String(),
		Name:      "Resilient",
		StartTime: "18:00",
		EndTime:   "23:00",
		Sensors:   lampAndFan(),
	})
	require.NoError(t, err)
	assert.Zero(t, result.ReconciledSensors)

	var count int64
	db.Model(&domain.Environment{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestUpdateReplacesSensorListInFull(t *testing.T) {
	svc, stub, _, node := setupEnvironmentTest(t)
	owner := node.Generate()

	created, err := svc.Create(context.Background(), domain.CreateEnvironmentRequest{
		OwnerID:   owner.String(),
		Name:      "Morning",
		StartTime: "06:00",
		EndTime:   "09:00",
		Sensors:   lampAndFan(),
	})
	require.NoError(t, err)

	replacement := []sensor.Sensor{
		{ID: "plug-1", Name: "Heater plug", Type: sensor.TypeSmartPlug, Value: 1},
	}
	updated, err := svc.Update(context.Background(), domain.UpdateEnvironmentRequest{
		ID:      created.Environment.ID.String(),
		OwnerID: owner.String(),
		Sensors: &replacement,
	})
	require.NoError(t, err)

	require.Len(t, updated.Environment.Sensors, 1)
	assert.Equal(t, "plug-1", updated.Environment.Sensors[0].ID)
	assert.Equal(t, 1, updated.ReconciledSensors)
	assert.Len(t, stub.calls, 2)
}

func TestUpdateWithoutSensorsSkipsReconcile(t *testing.T) {
	svc, stub, _, node := setupEnvironmentTest(t)
	owner := node.Generate()

	created, err := svc.Create(context.Background(), domain.CreateEnvironmentRequest{
		OwnerID:   owner.String(),
		Name:      "Night",
		StartTime: "22:00",
		EndTime:   "23:00",
	})
	require.NoError(t, err)
	require.Empty(t, stub.calls)

	name := "Late night"
	updated, err := svc.Update(context.Background(), domain.UpdateEnvironmentRequest{
		ID:      created.Environment.ID.String(),
		OwnerID: owner.String(),
		Name:    &name,
	})
	require.NoError(t, err)
	assert.Equal(t, "Late night", updated.Environment.Name)
	assert.Zero(t, updated.ReconciledSensors)
	assert.Empty(t, stub.calls)
}

func TestToggleFlipsActiveTwice(t *testing.T) {
	svc, _, _, node := setupEnvironmentTest(t)
	owner := node.Generate()

	created, err := svc.Create(context.Background(), domain.CreateEnvironmentRequest{
		OwnerID:   owner.String(),
		Name:      "Toggle me",
		StartTime: "12:00",
		EndTime:   "13:00",
	})
	require.NoError(t, err)
	require.True(t, created.Environment.Active)

	id := created.Environment.ID.String()
	toggled, err := svc.Toggle(context.Background(), id, owner.String())
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	toggled, err = svc.Toggle(context.Background(), id, owner.String())
	require.NoError(t, err)
	assert.True(t, toggled.Active)
}

func TestToggleWrongOwnerNotFound(t *testing.T) {
	svc, _, _, node := setupEnvironmentTest(t)
	owner := node.Generate()

	created, err := svc.Create(context.Background(), domain.CreateEnvironmentRequest{
		OwnerID:   owner.String(),
		Name:      "Private",
		StartTime: "12:00",
		EndTime:   "13:00",
	})
	require.NoError(t, err)

	_, err = svc.Toggle(context.Background(), created.Environment.ID.String(), node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteEnvironment(t *testing.T) {
	svc, _, db, node := setupEnvironmentTest(t)
	owner := node.Generate()

	created, err := svc.Create(context.Background(), domain.CreateEnvironmentRequest{
		OwnerID:   owner.String(),
		Name:      "Gone soon",
		StartTime: "12:00",
		EndTime:   "13:00",
	})
	require.NoError(t, err)

	deleted, err := svc.Delete(context.Background(), created.Environment.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.Environment.ID, deleted.ID)

	var count int64
	db.Model(&domain.Environment{}).Count(&count)
	assert.Zero(t, count)

	_, err = svc.Delete(context.Background(), created.Environment.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
