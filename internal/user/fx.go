package user

import (
	"github.com/hogarlink/hogar/internal/user/repository"
	"github.com/hogarlink/hogar/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
