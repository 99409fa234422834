package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	billingdomain "github.com/I7ZT1/club-manager-panel/internal/billing/domain"
	providerdomain "github.com/I7ZT1/club-manager-panel/internal/provider/domain"
)

const (
	defaultPage  = 1
	defaultLimit = 25
)

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo billingdomain.Repository

	genID *snowflake.Node
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  billingdomain.Repository
	GenID *snowflake.Node
}

func NewService(p ServiceParam) billingdomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("billing.service"),
		repo: p.Repo,

		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, billing *billingdomain.Billing) (*billingdomain.Billing, error) {
	if billing == nil || strings.TrimSpace(billing.BillingName) == "" || billing.BillingCurrency == "" {
		return nil, billingdomain.ErrInvalidBilling
	}
	if billing.MaxAmount > 0 && billing.MinAmount > billing.MaxAmount {
		return nil, billingdomain.ErrInvalidBilling
	}
	if billing.ID == 0 {
		billing.ID = s.genID.Generate()
	}
	if billing.CreatedAt.IsZero() {
		billing.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.Insert(ctx, s.db, billing); err != nil {
		return nil, err
	}
	s.log.Info("billing card created",
		zap.String("billing_id", billing.ID.String()),
		zap.String("currency", string(billing.BillingCurrency)),
	)
	return billing, nil
}

// GetByID reports not-found as nil, nil.
func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*billingdomain.Billing, error) {
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *Service) List(ctx context.Context, req billingdomain.ListRequest) (*billingdomain.ListResult, error) {
	if req.Page < 1 {
		req.Page = defaultPage
	}
	if req.Limit < 1 {
		req.Limit = defaultLimit
	}
	return s.repo.List(ctx, s.db, req)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, fields map[string]any) (*billingdomain.Billing, error) {
	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, billingdomain.ErrBillingNotFound
	}
	if len(fields) == 0 {
		return existing, nil
	}
	delete(fields, "id")
	if err := s.repo.Update(ctx, s.db, id, fields); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *Service) SoftDelete(ctx context.Context, id snowflake.ID) error {
	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return billingdomain.ErrBillingNotFound
	}
	return s.repo.SoftDelete(ctx, s.db, id)
}

func (s *Service) Filters(ctx context.Context) (*billingdomain.FilterOptions, error) {
	banks, err := s.repo.DistinctValues(ctx, s.db, "bank")
	if err != nil {
		return nil, err
	}
	currencies, err := s.repo.DistinctValues(ctx, s.db, "billing_currency")
	if err != nil {
		return nil, err
	}
	return &billingdomain.FilterOptions{Banks: banks, Currencies: currencies}, nil
}

// PickRequisites selects a manual payout card for the amount. It is the
// directory-backed counterpart of the provider fallback chain.
func (s *Service) PickRequisites(ctx context.Context, currency providerdomain.Currency, amount float64) (*billingdomain.Billing, error) {
	if amount <= 0 {
		return nil, providerdomain.ErrInvalidAmount
	}
	billing, err := s.repo.FirstMatching(ctx, s.db, currency, amount)
	if err != nil {
		return nil, err
	}
	if billing == nil {
		return nil, billingdomain.ErrNoCardAvailable
	}
	return billing, nil
}
