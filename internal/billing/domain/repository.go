package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	providerdomain "github.com/I7ZT1/club-manager-panel/internal/provider/domain"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, billing *Billing) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Billing, error)
	List(ctx context.Context, db *gorm.DB, req ListRequest) (*ListResult, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	DistinctValues(ctx context.Context, db *gorm.DB, column string) ([]string, error)
	FirstMatching(ctx context.Context, db *gorm.DB, currency providerdomain.Currency, amount float64) (*Billing, error)
}
