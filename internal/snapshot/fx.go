package snapshot

import (
	"github.com/hogarlink/hogar/internal/snapshot/domain"
	"github.com/hogarlink/hogar/internal/snapshot/repository"
	"github.com/hogarlink/hogar/internal/snapshot/service"
	"go.uber.org/fx"
)

var Module = fx.Module("snapshot.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(s domain.Service) domain.Reconciler { return s }),
)
