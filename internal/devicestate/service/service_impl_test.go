package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/hogarlink/hogar/internal/clock"
	"github.com/hogarlink/hogar/internal/config"
	"github.com/hogarlink/hogar/internal/devicestate/domain"
	environmentdomain "github.com/hogarlink/hogar/internal/environment/domain"
	environmentrepo "github.com/hogarlink/hogar/internal/environment/repository"
	"github.com/hogarlink/hogar/internal/observability/metrics"
	"github.com/hogarlink/hogar/internal/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupDeviceStateTest(t *testing.T) (*Service, *gorm.DB, *snowflake.Node) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&environmentdomain.Environment{}))

	node, _ := snowflake.NewNode(1)
	svc := &Service{
		db:        db,
		log:       zap.NewNop(),
		clock:     clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		envRepo:   environmentrepo.Provide(),
		deviceCfg: config.NewStaticDeviceConfigHolder(config.DefaultDeviceConfig()),
		metrics:   metrics.NewUnregistered(),
	}

	return svc, db, node
}

func seedEnvironment(t *testing.T, db *gorm.DB, node *snowflake.Node, owner snowflake.ID, name string, active bool, createdAt time.Time, sensors ...sensor.Sensor) *environmentdomain.Environment {
	env := &environmentdomain.Environment{
		ID:        node.Generate(),
		OwnerID:   owner,
		Name:      name,
		StartTime: "08:00",
		EndTime:   "20:00",
		Sensors:   datatypes.NewJSONSlice(sensors),
		Active:    active,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, db.Create(env).Error)
	return env
}

func TestStateActiveKeepsValues(t *testing.T) {
	svc, db, node := setupDeviceStateTest(t)
	owner := node.Generate()

	seedEnvironment(t, db, node, owner, "Evening", true, time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
		sensor.Sensor{ID: "lamp-1", Name: "Lamp", Type: sensor.TypeLight, Value: 42, Color: "#fff"},
	)

	state, err := svc.State(context.Background(), owner.String(), "")
	require.NoError(t, err)

	assert.True(t, state.Active)
	assert.Equal(t, "default_device", state.DeviceID)
	assert.Equal(t, owner.String(), state.OwnerID)
	require.Len(t, state.Sensors, 1)
	assert.Equal(t, 42.0, state.Sensors[0].Value)
}

func TestStateInactiveZeroesValues(t *testing.T) {
	svc, db, node := setupDeviceStateTest(t)
	owner := node.Generate()

	seedEnvironment(t, db, node, owner, "Evening", false, time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
		sensor.Sensor{ID: "lamp-1", Name: "Lamp", Type: sensor.TypeLight, Value: 42, Color: "#fff"},
		sensor.Sensor{ID: "fan-1", Name: "Fan", Type: sensor.TypeFan, Value: 3},
	)

	state, err := svc.State(context.Background(), owner.String(), "esp32-kitchen")
	require.NoError(t, err)

	assert.False(t, state.Active)
	assert.Equal(t, "esp32-kitchen", state.DeviceID)
	require.Len(t, state.Sensors, 2)
	assert.Zero(t, state.Sensors[0].Value)
	assert.Zero(t, state.Sensors[1].Value)
	// Descriptors survive the zeroing.
	assert.Equal(t, "Lamp", state.Sensors[0].Name)
	assert.Equal(t, "#fff", state.Sensors[0].Color)
}

func TestStatePinnedToOldestEnvironment(t *testing.T) {
	svc, db, node := setupDeviceStateTest(t)
	owner := node.Generate()
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	seedEnvironment(t, db, node, owner, "First", true, base,
		sensor.Sensor{ID: "lamp-1", Name: "Lamp", Type: sensor.TypeLight, Value: 10, Color: "#fff"},
	)
	seedEnvironment(t, db, node, owner, "Second", true, base.Add(time.Hour),
		sensor.Sensor{ID: "fan-1", Name: "Fan", Type: sensor.TypeFan, Value: 3},
	)

	state, err := svc.State(context.Background(), owner.String(), "")
	require.NoError(t, err)
	require.Len(t, state.Sensors, 1)
	assert.Equal(t, "lamp-1", state.Sensors[0].ID)
}

func TestStateNoEnvironment(t *testing.T) {
	svc, _, node := setupDeviceStateTest(t)

	_, err := svc.State(context.Background(), node.Generate().String(), "")
	assert.ErrorIs(t, err, domain.ErrNoEnvironment)
}

func TestStateInvalidOwner(t *testing.T) {
	svc, _, _ := setupDeviceStateTest(t)

	_, err := svc.State(context.Background(), "nope", "")
	assert.ErrorIs(t, err, domain.ErrInvalidOwner)
}
