package environment

import (
	"github.com/hogarlink/hogar/internal/environment/repository"
	"github.com/hogarlink/hogar/internal/environment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("environment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
