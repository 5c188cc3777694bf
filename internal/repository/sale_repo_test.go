package repository

import (
	"context"
	"testing"
	"time"

	"naxospos/internal/dto"
	"naxospos/internal/model"
	"naxospos/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSale(t *testing.T, repo SaleRepository, locationID uint, openedAt time.Time) *model.Sale {
	t.Helper()
	s := &model.Sale{Status: model.SaleOpen, LocationID: locationID, CashierID: 1, OpenedAt: openedAt}
	require.NoError(t, repo.Create(context.Background(), nil, s))
	return s
}

func TestSaleTransitionsAreConditional(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.SeedCatalog(t, db)
	repo := NewSaleRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	sale := newSale(t, repo, cat.Location.ID, now)

	ok, err := repo.LockOpen(ctx, nil, sale.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	sale.PaidAt = &now
	sale.Subtotal, sale.Tax, sale.Total = testutil.Dec("5.00"), testutil.Dec("0"), testutil.Dec("5.00")
	ok, err = repo.MarkPaid(ctx, nil, sale)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkPaid(ctx, nil, sale)
	require.NoError(t, err)
	assert.False(t, ok, "already PAID")
	ok, err = repo.LockOpen(ctx, nil, sale.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.MarkCancelled(ctx, nil, sale.ID, "x", now)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.LockUnpaid(ctx, nil, sale.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.Delete(ctx, nil, sale.ID)
	require.NoError(t, err)
	assert.False(t, ok, "PAID sales are never deleted")

	stored, err := repo.FindByID(ctx, nil, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SalePaid, stored.Status)
	assert.Nil(t, stored.CancelledAt)

	ok, err = repo.LockOpen(ctx, nil, 4242)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaleItemsAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.SeedCatalog(t, db)
	repo := NewSaleRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	sale := newSale(t, repo, cat.Location.ID, now)
	items := []model.SaleItem{
		{SaleID: sale.ID, VariantID: cat.Smoothie.ID, Quantity: testutil.Dec("2"), UnitPrice: testutil.Dec("5.00"), LineTotal: testutil.Dec("10.00"), FlavorID: &cat.Fresa.ID},
		{SaleID: sale.ID, VariantID: cat.Frappe.ID, Quantity: testutil.Dec("1"), UnitPrice: testutil.Dec("4.50"), LineTotal: testutil.Dec("4.50")},
	}
	require.NoError(t, repo.CreateItems(ctx, nil, items))
	require.NoError(t, repo.CreatePayments(ctx, nil, []model.SalePayment{
		{SaleID: sale.ID, Method: model.MethodCash, Amount: testutil.Dec("14.50"), PaidAt: now},
	}))

	stored, err := repo.FindByID(ctx, nil, sale.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "Smoothie", stored.Items[0].Variant.Product.Name)
	assert.Equal(t, "Fresa", stored.Items[0].Flavor.Name)
	require.Len(t, stored.Payments, 1)

	it := stored.Items[1]
	it.Quantity = testutil.Dec("3")
	it.LineTotal = testutil.Dec("13.50")
	require.NoError(t, repo.UpdateItem(ctx, nil, &it))
	got, err := repo.FindItem(ctx, nil, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "13.50", got.LineTotal.StringFixed(2))

	locked, err := repo.LockUnpaid(ctx, nil, sale.ID)
	require.NoError(t, err)
	assert.True(t, locked)
	deleted, err := repo.Delete(ctx, nil, sale.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = repo.FindByID(ctx, nil, sale.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	var n int64
	require.NoError(t, db.Model(&model.SaleItem{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestSaleListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.SeedCatalog(t, db)
	repo := NewSaleRepository(db)
	ctx := context.Background()

	day := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	newSale(t, repo, cat.Location.ID, day.AddDate(0, 0, -1))
	a := newSale(t, repo, cat.Location.ID, day)
	b := newSale(t, repo, cat.Location.ID, day.Add(11*time.Hour))
	newSale(t, repo, cat.InactiveLocation.ID, day)
	_, err := repo.MarkCancelled(ctx, nil, a.ID, "x", day)
	require.NoError(t, err)

	sales, total, err := repo.List(ctx, dto.SaleFilter{From: "2026-05-10", To: "2026-05-10", LocationID: cat.Location.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, sales, 2)
	assert.Equal(t, b.ID, sales[0].ID)

	sales, total, err = repo.List(ctx, dto.SaleFilter{Status: string(model.SaleCancelled), Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, a.ID, sales[0].ID)

	_, total, err = repo.List(ctx, dto.SaleFilter{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestListInWindowIsInclusive(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.SeedCatalog(t, db)
	repo := NewSaleRepository(db)
	ctx := context.Background()

	from := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	to := from.Add(8 * time.Hour)
	newSale(t, repo, cat.Location.ID, from.Add(-time.Second))
	first := newSale(t, repo, cat.Location.ID, from)
	last := newSale(t, repo, cat.Location.ID, to)
	newSale(t, repo, cat.Location.ID, to.Add(time.Second))

	sales, err := repo.ListInWindow(ctx, nil, cat.Location.ID, from, to, "")
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, first.ID, sales[0].ID)
	assert.Equal(t, last.ID, sales[1].ID)

	sales, err = repo.ListInWindow(ctx, nil, cat.Location.ID, from, to, model.SalePaid)
	require.NoError(t, err)
	assert.Empty(t, sales)
}
