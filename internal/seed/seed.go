// Package seed bootstraps a development database with a couple of billing
// cards so listing and requisite-pick endpoints work out of the box.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	billingdomain "github.com/I7ZT1/club-manager-panel/internal/billing/domain"
	providerdomain "github.com/I7ZT1/club-manager-panel/internal/provider/domain"
)

// EnsureDefaultCards inserts the development card directory once. An
// already-populated table is left untouched.
func EnsureDefaultCards(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&billingdomain.Billing{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		cards := []billingdomain.Billing{
			{
				ID:              node.Generate(),
				BillingName:     "dev monobank",
				BillingCurrency: providerdomain.UAH,
				Bank:            "monobank",
				Card:            "5375414100000000",
				CardDetails:     "DEV HOLDER",
				MinAmount:       50,
				MaxAmount:       50000,
				SortID:          1,
			},
			{
				ID:              node.Generate(),
				BillingName:     "dev kaspi",
				BillingCurrency: providerdomain.KZT,
				Bank:            "kaspi",
				Card:            "4400430100000000",
				CardDetails:     "DEV HOLDER",
				MinAmount:       5000,
				MaxAmount:       1000000,
				SortID:          1,
			},
		}
		return tx.Create(&cards).Error
	})
}
