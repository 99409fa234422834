package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"

	providerdomain "github.com/I7ZT1/club-manager-panel/internal/provider/domain"
	"github.com/I7ZT1/club-manager-panel/pkg/filter"
)

// Billing is one payout card in the manual requisites directory. Rows are
// never hard-deleted; SoftDelete hides a card from selection while keeping
// its history intact.
type Billing struct {
	ID              snowflake.ID             `gorm:"primaryKey" json:"id"`
	BillingName     string                   `gorm:"type:text;not null" json:"billing_name"`
	BillingCurrency providerdomain.Currency  `gorm:"type:text;not null;index" json:"billing_currency"`
	Bank            string                   `gorm:"type:text;not null;default:''" json:"bank"`
	Card            string                   `gorm:"type:text;not null;default:''" json:"card"`
	CardDetails     string                   `gorm:"type:text;not null;default:''" json:"card_details"`
	CardBalance     float64                  `gorm:"not null;default:0" json:"card_balance"`
	IntegrationID   int                      `gorm:"not null;default:0" json:"integration_id"`
	TaxDeposit      float64                  `gorm:"not null;default:0" json:"tax_deposit"`
	TaxWithdraw     float64                  `gorm:"not null;default:0" json:"tax_withdraw"`
	MinAmount       float64                  `gorm:"not null;default:0" json:"min_amount"`
	MaxAmount       float64                  `gorm:"not null;default:0" json:"max_amount"`
	Limits          float64                  `gorm:"not null;default:0" json:"limits"`
	SortID          int                      `gorm:"not null;default:0" json:"sort_id"`
	Clubs           datatypes.JSONSlice[int] `gorm:"type:jsonb" json:"clubs"`
	Risk            string                   `gorm:"type:text;not null;default:''" json:"risk"`
	SoftDelete      bool                     `gorm:"not null;default:false" json:"soft_delete"`
	CreatedAt       time.Time                `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Billing) TableName() string { return "billings" }

// ListRequest is the admin listing window: declarative filters, ordering
// and a 1-based pagination window.
type ListRequest struct {
	Filters []filter.Condition `json:"filters"`
	OrderBy []string           `json:"order_by"`
	Page    int                `json:"page"`
	Limit   int                `json:"limit"`
}

// ListResult matches the admin panel's listing envelope.
type ListResult struct {
	Data       []Billing `json:"data"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalItems int64     `json:"total_items"`
	TotalPages int       `json:"total_pages"`
}

// FilterOptions feeds the admin UI's filter dropdowns.
type FilterOptions struct {
	Banks      []string `json:"banks"`
	Currencies []string `json:"currencies"`
}
