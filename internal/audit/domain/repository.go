package domain

import (
	"context"

	"gorm.io/gorm"

	"github.com/I7ZT1/club-manager-panel/pkg/filter"
)

// ListRequest is the audit listing window, same declarative shape the
// billing listing uses.
type ListRequest struct {
	Filters []filter.Condition `json:"filters"`
	OrderBy []string           `json:"order_by"`
	Page    int                `json:"page"`
	Limit   int                `json:"limit"`
}

type ListResult struct {
	Data       []AuditLog `json:"data"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalItems int64      `json:"total_items"`
	TotalPages int        `json:"total_pages"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, req ListRequest) (*ListResult, error)
}
