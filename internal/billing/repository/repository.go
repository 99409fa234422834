// Package repository is the gorm-backed billing card store.
package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/I7ZT1/club-manager-panel/internal/billing/domain"
	providerdomain "github.com/I7ZT1/club-manager-panel/internal/provider/domain"
	"github.com/I7ZT1/club-manager-panel/pkg/filter"
)

type billingRepository struct{}

func New() domain.Repository {
	return &billingRepository{}
}

func (r *billingRepository) Insert(ctx context.Context, db *gorm.DB, billing *domain.Billing) error {
	return db.WithContext(ctx).Create(billing).Error
}

func (r *billingRepository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Billing, error) {
	var billing domain.Billing
	err := db.WithContext(ctx).First(&billing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &billing, nil
}

func (r *billingRepository) List(ctx context.Context, db *gorm.DB, req domain.ListRequest) (*domain.ListResult, error) {
	tx := db.WithContext(ctx).Model(&domain.Billing{})
	tx = filter.Apply(tx, &domain.Billing{}, req.Filters)
	tx = filter.ApplyOrder(tx, &domain.Billing{}, req.OrderBy)

	var rows []domain.Billing
	page, err := filter.Paginate(tx, req.Page, req.Limit, &rows)
	if err != nil {
		return nil, err
	}
	return &domain.ListResult{
		Data:       rows,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}, nil
}

func (r *billingRepository) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).
		Model(&domain.Billing{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *billingRepository) SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&domain.Billing{}).
		Where("id = ?", id).
		Update("soft_delete", true).Error
}

func (r *billingRepository) DistinctValues(ctx context.Context, db *gorm.DB, column string) ([]string, error) {
	var values []string
	err := db.WithContext(ctx).
		Model(&domain.Billing{}).
		Where("soft_delete = ?", false).
		Distinct(column).
		Order(column).
		Pluck(column, &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}

// FirstMatching returns the first live card for the currency whose
// min/max window admits the amount, in sort_id order. Not-found is nil, nil.
func (r *billingRepository) FirstMatching(ctx context.Context, db *gorm.DB, currency providerdomain.Currency, amount float64) (*domain.Billing, error) {
	var billing domain.Billing
	err := db.WithContext(ctx).
		Where("soft_delete = ?", false).
		Where("billing_currency = ?", currency).
		Where("min_amount <= ?", amount).
		Where("max_amount >= ?", amount).
		Order("sort_id").
		First(&billing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &billing, nil
}
