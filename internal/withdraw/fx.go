package withdraw

import "go.uber.org/fx"

var Module = fx.Module("withdraw",
	fx.Provide(New),
)
