package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/hogarlink/hogar/internal/clock"
	"github.com/hogarlink/hogar/internal/config"
	"github.com/hogarlink/hogar/internal/devicestate"
	"github.com/hogarlink/hogar/internal/environment"
	"github.com/hogarlink/hogar/internal/inventory"
	"github.com/hogarlink/hogar/internal/migration"
	"github.com/hogarlink/hogar/internal/observability"
	"github.com/hogarlink/hogar/internal/ratelimit"
	"github.com/hogarlink/hogar/internal/server"
	"github.com/hogarlink/hogar/internal/snapshot"
	"github.com/hogarlink/hogar/internal/user"
	"github.com/hogarlink/hogar/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		user.Module,
		environment.Module,
		snapshot.Module,
		inventory.Module,
		devicestate.Module,
		ratelimit.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
