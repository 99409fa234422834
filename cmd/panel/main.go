package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/I7ZT1/club-manager-panel/internal/audit"
	"github.com/I7ZT1/club-manager-panel/internal/billing"
	"github.com/I7ZT1/club-manager-panel/internal/clock"
	"github.com/I7ZT1/club-manager-panel/internal/config"
	"github.com/I7ZT1/club-manager-panel/internal/events"
	"github.com/I7ZT1/club-manager-panel/internal/migration"
	"github.com/I7ZT1/club-manager-panel/internal/observability/logger"
	"github.com/I7ZT1/club-manager-panel/internal/observability/metrics"
	"github.com/I7ZT1/club-manager-panel/internal/observability/tracing"
	"github.com/I7ZT1/club-manager-panel/internal/provider"
	"github.com/I7ZT1/club-manager-panel/internal/resolver"
	"github.com/I7ZT1/club-manager-panel/internal/seed"
	"github.com/I7ZT1/club-manager-panel/internal/server"
	"github.com/I7ZT1/club-manager-panel/internal/withdraw"
	"github.com/I7ZT1/club-manager-panel/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		tracing.Module,
		metrics.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		provider.Module,
		resolver.Module,
		billing.Module,
		withdraw.Module,
		audit.Module,
		events.Module,

		fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if cfg.IsProduction() {
				return nil
			}
			return seed.EnsureDefaultCards(conn)
		}),
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
