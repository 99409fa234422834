package audit

import (
	"go.uber.org/fx"

	"github.com/I7ZT1/club-manager-panel/internal/audit/repository"
	"github.com/I7ZT1/club-manager-panel/internal/audit/service"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
