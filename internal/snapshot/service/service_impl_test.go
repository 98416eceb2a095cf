package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/hogarlink/hogar/internal/clock"
	"github.com/hogarlink/hogar/internal/config"
	"github.com/hogarlink/hogar/internal/observability/metrics"
	"github.com/hogarlink/hogar/internal/sensor"
	"github.com/hogarlink/hogar/internal/snapshot/domain"
	"github.com/hogarlink/hogar/internal/snapshot/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupSnapshotTest(t *testing.T) (*Service, *clock.FakeClock, *gorm.DB, *snowflake.Node) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&domain.SensorSnapshot{}))

	node, _ := snowflake.NewNode(1)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := &Service{
		db:        db,
		log:       zap.NewNop(),
		genID:     node,
		clock:     fake,
		repo:      repository.Provide(),
		deviceCfg: config.NewStaticDeviceConfigHolder(config.DefaultDeviceConfig()),
		metrics:   metrics.NewUnregistered(),
	}

	return svc, fake, db, node
}

func TestReconcileCreatesSnapshotForDefaultDevice(t *testing.T) {
	svc, fake, _, node := setupSnapshotTest(t)
	owner := node.Generate()

	res, err := svc.Reconcile(context.Background(), domain.ReconcileRequest{
		OwnerID: owner.String(),
		Sensors: []sensor.Sensor{
			{ID: "lamp-1", Name: "Lamp", Type: sensor.TypeLight, Value: 50, Color: "#fff"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "default_device", res.DeviceID)
	assert.Equal(t, 1, res.Reconciled)

	snap, err := svc.GetByID(context.Background(), res.SnapshotID)
	require.NoError(t, err)
	assert.Equal(t, owner, snap.OwnerID)
	assert.Equal(t, fake.Now(), snap.ObservedAt.UTC())
}

func TestReconcileOverwritesById(t *testing.T) {
	svc, _, _, node := setupSnapshotTest(t)
	owner := node.Generate()
	ctx := context.Background()

	first, err := svc.Reconcile(ctx, domain.ReconcileRequest{
		OwnerID: owner.String(),
		Sensors: []sensor.Sensor{
			{ID: "lamp-1", Name: "Lamp", Type: sensor.TypeLight, Value: 5, Color: "#ffcc00"},
			{ID: "fan-1", Name: "Fan", Type: sensor.TypeFan, Value: 2},
		},
	})
	require.NoError(t, err)

	second, err := svc.Reconcile(ctx, domain.ReconcileRequest{
		OwnerID: owner.String(),
		Sensors: []sensor.Sensor{
			{ID: "lamp-1", Name: "Lamp renamed", Type: sensor.TypeLight, Value: 9, Color: "#00ccff"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, first.SnapshotID, second.SnapshotID)

	snap, err := svc.GetByID(ctx, second.SnapshotID)
	require.NoError(t, err)
	require.Len(t, snap.Sensors, 2)

	assert.Equal(t, "lamp-1", snap.Sensors[0].ID)
	assert.Equal(t, "Lamp renamed", snap.Sensors[0].Name)
	assert.Equal(t, 9.0, snap.Sensors[0].Value)
	assert.Equal(t, "#00ccff", snap.Sensors[0].Color)
	assert.Equal(t, "fan-1", snap.Sensors[1].ID)
}

func TestReconcileOverwriteDropsAbsentFields(t *testing.T) {
	svc, _, _, node := setupSnapshotTest(t)
	owner := node.Generate()
	ctx := context.Background()

	_, err := svc.Reconcile(ctx, domain.ReconcileRequest{
		OwnerID: owner.String(),
		Sensors: []sensor.Sensor{
			{ID: "lamp-1", Name: "Lamp", Type: sensor.TypeLight, Value: 5, Color: "#ffcc00"},
		},
	})
	require.NoError(t, err)

	// Incoming descriptor reclassified without a color; the stored color
	// must not bleed through the overwrite.
	res, err := svc.Reconcile(ctx, domain.ReconcileRequest{
		OwnerID: owner.String(),
		Sensors: []sensor.Sensor{
			{ID: "lamp-1", Name: "Now a plug", Type: sensor.TypeSmartPlug, Value: 1},
		},
	})
	require.NoError(t, err)

	snap, err := svc.GetByID(ctx, res.SnapshotID)
	require.NoError(t, err)
	require.Len(t, snap.Sensors, 1)
	assert.Equal(t, sensor.TypeSmartPlug, snap.Sensors[0].Type)
	assert.Empty(t, snap.Sensors[0].Color)
}

func TestReconcileAppendsNewSensorsInOrder(t *testing.T) {
	svc, _, _, node := setupSnapshotTest(t)
	owner := node.Generate()
	ctx := context.Background()

	_, err := svc.Reconcile(ctx, domain.ReconcileRequest{
		OwnerID: owner.String(),
		Sensors: []sensor.Sensor{
			{ID: "a", Name: "A", Type: sensor.TypeFan, Value: 1},
		},
	})
	require.NoError(t, err)

	res, err := svc.Reconcile(ctx, domain.ReconcileRequest{
		OwnerID: owner.String(),
		Sensors: []sensor.Sensor{
			{ID: "c", Name: "C", Type: sensor.TypeCurtain, Value: 0},
			{ID: "b", Name: "B", Type: sensor.TypeSmartPlug, Value: 1},
		},
	})
	require.NoError(t, err)

	snap, err := svc.GetByID(ctx, res.SnapshotID)
	require.NoError(t, err)
	require.Len(t, snap.Sensors, 3)
	assert.Equal(t, "a", snap.Sensors[0].ID)
	assert.Equal(t, "c", snap.Sensors[1].ID)
	assert.Equal(t, "b", snap.Sensors[2].ID)
}

func TestReconcileBumpsObservedAtOnNoChange(t *testing.T) {
	svc, fake, _, node := setupSnapshotTest(t)
	owner := node.Generate()
	ctx := context.Background()

	sensors := []sensor.Sensor{
		{ID: "lamp-1", Name: "Lamp", Type: sensor.TypeLight, Value: 5, Color: "#fff"},
	}

	first, err := svc.Reconcile(ctx, domain.ReconcileRequest{OwnerID: owner.String(), Sensors: sensors})
	require.NoError(t, err)

	fake.Advance(5 * time.Minute)

	second, err := svc.Reconcile(ctx, domain.ReconcileRequest{OwnerID: owner.String(), Sensors: sensors})
	require.NoError(t, err)
	require.Equal(t, first.SnapshotID, second.SnapshotID)

	snap, err := svc.GetByID(ctx, second.SnapshotID)
	require.NoError(t, err)
	assert.Equal(t, fake.Now(), snap.ObservedAt.UTC())
}

func TestReconcileSeparateDevices(t *testing.T) {
	svc, _, _, node := setupSnapshotTest(t)
	owner := node.Generate()
	ctx := context.Background()

	first, err := svc.Reconcile(ctx, domain.ReconcileRequest{
		OwnerID:  owner.String(),
		DeviceID: "esp32-kitchen",
		Sensors:  []sensor.Sensor{{ID: "a", Name: "A", Type: sensor.TypeFan, Value: 1}},
	})
	require.NoError(t, err)

	second, err := svc.Reconcile(ctx, domain.ReconcileRequest{
		OwnerID:  owner.String(),
		DeviceID: "esp32-bedroom",
		Sensors:  []sensor.Sensor{{ID: "a", Name: "A", Type: sensor.TypeFan, Value: 3}},
	})
	require.NoError(t, err)

	assert.NotEqual(t, first.SnapshotID, second.SnapshotID)

	snaps, err := svc.ListByOwner(ctx, owner.String())
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
}

func TestReconcileRejectsEmptySensors(t *testing.T) {
	svc, _, _, node := setupSnapshotTest(t)

	_, err := svc.Reconcile(context.Background(), domain.ReconcileRequest{
		OwnerID: node.Generate().String(),
	})
	assert.ErrorIs(t, err, domain.ErrEmptySensors)
}

func TestReconcileRejectsBadOwner(t *testing.T) {
	svc, _, _, _ := setupSnapshotTest(t)

	_, err := svc.Reconcile(context.Background(), domain.ReconcileRequest{
		OwnerID: "not-a-snowflake",
		Sensors: []sensor.Sensor{{ID: "a", Name: "A", Type: sensor.TypeFan, Value: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOwner)
}

func TestDeleteByDeviceCountsRows(t *testing.T) {
	svc, _, _, node := setupSnapshotTest(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Create(ctx, domain.CreateSnapshotRequest{
			OwnerID:  node.Generate().String(),
			DeviceID: "esp32-attic",
			Sensors:  []sensor.Sensor{{ID: "a", Name: "A", Type: sensor.TypeFan, Value: 1}},
		})
		require.NoError(t, err)
	}

	deleted, err := svc.DeleteByDevice(ctx, "esp32-attic")
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	deleted, err = svc.DeleteByDevice(ctx, "esp32-attic")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
