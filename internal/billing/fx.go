package billing

import (
	"go.uber.org/fx"

	"github.com/I7ZT1/club-manager-panel/internal/billing/repository"
	"github.com/I7ZT1/club-manager-panel/internal/billing/service"
)

var Module = fx.Module("billing.service",
	fx.Provide(repository.New),
	fx.Provide(service.NewService),
)
