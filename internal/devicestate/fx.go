package devicestate

import (
	"github.com/hogarlink/hogar/internal/devicestate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("devicestate.service",
	fx.Provide(service.New),
)
