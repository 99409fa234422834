package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/I7ZT1/club-manager-panel/internal/audit/domain"
	"github.com/I7ZT1/club-manager-panel/pkg/filter"
)

type auditRepository struct{}

func Provide() domain.Repository {
	return &auditRepository{}
}

func (r *auditRepository) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, db *gorm.DB, req domain.ListRequest) (*domain.ListResult, error) {
	tx := db.WithContext(ctx).Model(&domain.AuditLog{})
	tx = filter.Apply(tx, &domain.AuditLog{}, req.Filters)
	if len(req.OrderBy) == 0 {
		req.OrderBy = []string{"-created_at"}
	}
	tx = filter.ApplyOrder(tx, &domain.AuditLog{}, req.OrderBy)

	var rows []domain.AuditLog
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
