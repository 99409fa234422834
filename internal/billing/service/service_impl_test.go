package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	billingdomain "github.com/I7ZT1/club-manager-panel/internal/billing/domain"
	"github.com/I7ZT1/club-manager-panel/internal/billing/repository"
	providerdomain "github.com/I7ZT1/club-manager-panel/internal/provider/domain"
	"github.com/I7ZT1/club-manager-panel/pkg/filter"
)

func setupBillingService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&billingdomain.Billing{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec("DELETE FROM billings").Error; err != nil {
		t.Fatalf("truncate: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	return &Service{
		db:    db,
		log:   zap.NewNop(),
		repo:  repository.New(),
		genID: node,
	}
}

func mustCreate(t *testing.T, svc *Service, billing billingdomain.Billing) *billingdomain.Billing {
	t.Helper()
	created, err := svc.Create(context.Background(), &billing)
	if err != nil {
		t.Fatalf("create billing: %v", err)
	}
	return created
}

func TestCreateAssignsID(t *testing.T) {
	svc := setupBillingService(t)
	created := mustCreate(t, svc, billingdomain.Billing{
		BillingName:     "kaspi main",
		BillingCurrency: providerdomain.KZT,
		Card:            "4400430112345678",
	})
	if created.ID == 0 {
		t.Fatalf("expected generated id")
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	svc := setupBillingService(t)
	if _, err := svc.Create(context.Background(), &billingdomain.Billing{BillingCurrency: providerdomain.UAH}); !errors.Is(err, billingdomain.ErrInvalidBilling) {
		t.Fatalf("expected invalid for empty name, got %v", err)
	}
	if _, err := svc.Create(context.Background(), &billingdomain.Billing{
		BillingName:     "bad window",
		BillingCurrency: providerdomain.UAH,
		MinAmount:       500,
		MaxAmount:       100,
	}); !errors.Is(err, billingdomain.ErrInvalidBilling) {
		t.Fatalf("expected invalid for min>max, got %v", err)
	}
}

func TestGetByIDNotFoundIsNil(t *testing.T) {
	svc := setupBillingService(t)
	got, err := svc.GetByID(context.Background(), snowflake.ID(987654321))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing billing, got %+v", got)
	}
}

func TestListFiltersAndPaginates(t *testing.T) {
	svc := setupBillingService(t)
	mustCreate(t, svc, billingdomain.Billing{BillingName: "a", BillingCurrency: providerdomain.UAH, Bank: "monobank", SortID: 2})
	mustCreate(t, svc, billingdomain.Billing{BillingName: "b", BillingCurrency: providerdomain.UAH, Bank: "privatbank", SortID: 1})
	mustCreate(t, svc, billingdomain.Billing{BillingName: "c", BillingCurrency: providerdomain.KZT, Bank: "kaspi", SortID: 3})

	result, err := svc.List(context.Background(), billingdomain.ListRequest{
		Filters: []filter.Condition{
			{Field: "billing_currency", Op: "eq", Value: "UAH"},
		},
		OrderBy: []string{"sort_id"},
		Page:    1,
		Limit:   10,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.TotalItems != 2 || result.TotalPages != 1 {
		t.Fatalf("expected 2 UAH cards on 1 page, got %+v", result)
	}
	if result.Data[0].BillingName != "b" {
		t.Fatalf("expected sort_id ordering, got %+v", result.Data)
	}
}

func TestUpdatePartialFields(t *testing.T) {
	svc := setupBillingService(t)
	created := mustCreate(t, svc, billingdomain.Billing{
		BillingName:     "old name",
		BillingCurrency: providerdomain.UAH,
		Bank:            "monobank",
	})

	updated, err := svc.Update(context.Background(), created.ID, map[string]any{
		"billing_name": "new name",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.BillingName != "new name" {
		t.Fatalf("expected updated name, got %q", updated.BillingName)
	}
	if updated.Bank != "monobank" {
		t.Fatalf("untouched fields must survive, got %q", updated.Bank)
	}
}

func TestUpdateMissingBilling(t *testing.T) {
	svc := setupBillingService(t)
	_, err := svc.Update(context.Background(), snowflake.ID(42), map[string]any{"bank": "x"})
	if !errors.Is(err, billingdomain.ErrBillingNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSoftDeleteHidesFromSelection(t *testing.T) {
	svc := setupBillingService(t)
	created := mustCreate(t, svc, billingdomain.Billing{
		BillingName:     "retired",
		BillingCurrency: providerdomain.UAH,
		MinAmount:       10,
		MaxAmount:       10000,
	})

	if err := svc.SoftDelete(context.Background(), created.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	got, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got == nil || !got.SoftDelete {
		t.Fatalf("soft delete must keep the row with the flag set, got %+v", got)
	}

	_, err = svc.PickRequisites(context.Background(), providerdomain.UAH, 100)
	if !errors.Is(err, billingdomain.ErrNoCardAvailable) {
		t.Fatalf("deleted card must not be selectable, got %v", err)
	}
}

func TestPickRequisitesRespectsWindowAndOrder(t *testing.T) {
	svc := setupBillingService(t)
	mustCreate(t, svc, billingdomain.Billing{
		BillingName:     "small window",
		BillingCurrency: providerdomain.UAH,
		MinAmount:       10,
		MaxAmount:       50,
		SortID:          1,
	})
	second := mustCreate(t, svc, billingdomain.Billing{
		BillingName:     "big window low priority",
		BillingCurrency: providerdomain.UAH,
		MinAmount:       10,
		MaxAmount:       10000,
		SortID:          2,
	})

	picked, err := svc.PickRequisites(context.Background(), providerdomain.UAH, 500)
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if picked.ID != second.ID {
		t.Fatalf("expected the card whose window admits the amount, got %+v", picked)
	}

	if _, err := svc.PickRequisites(context.Background(), providerdomain.KZT, 500); !errors.Is(err, billingdomain.ErrNoCardAvailable) {
		t.Fatalf("expected no card for other currency, got %v", err)
	}
	if _, err := svc.PickRequisites(context.Background(), providerdomain.UAH, -5); !errors.Is(err, providerdomain.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}

func TestFiltersDistinctValues(t *testing.T) {
	svc := setupBillingService(t)
	mustCreate(t, svc, billingdomain.Billing{BillingName: "a", BillingCurrency: providerdomain.UAH, Bank: "monobank"})
	mustCreate(t, svc, billingdomain.Billing{BillingName: "b", BillingCurrency: providerdomain.UAH, Bank: "monobank"})
	mustCreate(t, svc, billingdomain.Billing{BillingName: "c", BillingCurrency: providerdomain.KZT, Bank: "kaspi"})

	opts, err := svc.Filters(context.Background())
	if err != nil {
		t.Fatalf("filters: %v", err)
	}
	if len(opts.Banks) != 2 {
		t.Fatalf("expected 2 distinct banks, got %v", opts.Banks)
	}
	if len(opts.Currencies) != 2 {
		t.Fatalf("expected 2 distinct currencies, got %v", opts.Currencies)
	}
}
