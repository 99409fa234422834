package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"

	providerdomain "github.com/I7ZT1/club-manager-panel/internal/provider/domain"
)

type Service interface {
	Create(ctx context.Context, billing *Billing) (*Billing, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Billing, error)
	List(ctx context.Context, req ListRequest) (*ListResult, error)
	Update(ctx context.Context, id snowflake.ID, fields map[string]any) (*Billing, error)
	SoftDelete(ctx context.Context, id snowflake.ID) error
	Filters(ctx context.Context) (*FilterOptions, error)
	PickRequisites(ctx context.Context, currency providerdomain.Currency, amount float64) (*Billing, error)
}

var (
	ErrBillingNotFound = errors.New("billing_not_found")
	ErrInvalidBilling  = errors.New("invalid_billing")
	ErrNoCardAvailable = errors.New("no_card_available")
)
