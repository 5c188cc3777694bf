package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"naxospos/internal/apierror"
	"naxospos/internal/dto"
	"naxospos/internal/model"
	"naxospos/internal/repository"
	"naxospos/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const managerID uint = 3

type shiftFixture struct {
	shifts ShiftService
	sales  SaleService
	db     *gorm.DB
	cat    *testutil.Catalog
}

func newShiftFixture(t *testing.T) *shiftFixture {
	t.Helper()
	db := testutil.NewDB(t)
	cat := testutil.SeedCatalog(t, db)
	saleRepo := repository.NewSaleRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	return &shiftFixture{
		shifts: NewShiftService(repository.NewShiftRepository(db), saleRepo, catalogRepo, nil),
		sales:  NewSaleService(saleRepo, catalogRepo, nil),
		db:     db,
		cat:    cat,
	}
}

func (f *shiftFixture) openShift(t *testing.T, float string) *dto.ShiftResponse {
	t.Helper()
	shift, err := f.shifts.OpenShift(context.Background(), managerID, dto.OpenShiftRequest{
		LocationID: f.cat.Location.ID, OpeningFloat: testutil.DecPtr(float),
	})
	require.NoError(t, err)
	return shift
}

func (f *shiftFixture) paidSale(t *testing.T, payments ...dto.PaymentRequest) *dto.SaleResponse {
	t.Helper()
	total := testutil.Dec("0")
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	sale, err := f.sales.CreateFullSale(context.Background(), cashierID, dto.CreateFullSaleRequest{
		LocationID: f.cat.Location.ID,
		Items: []dto.SaleItemRequest{{
			VariantID: f.cat.Smoothie.ID, Quantity: testutil.Dec("1"), UnitPrice: &total,
		}},
		Payments: payments,
	})
	require.NoError(t, err)
	return sale
}

// ── OpenShift ─────────────────────────────────────────────────────────────────

func TestOpenShift(t *testing.T) {
	f := newShiftFixture(t)

	shift := f.openShift(t, "100.00")
	assert.False(t, shift.IsClosed)
	assert.Equal(t, managerID, shift.OpenedBy)
	assertMoney(t, "100.00", shift.OpeningFloat)
	assert.Nil(t, shift.Summary)
	assert.Nil(t, shift.Difference)
}

func TestOpenShift_SecondOpenConflicts(t *testing.T) {
	f := newShiftFixture(t)
	f.openShift(t, "100.00")

	_, err := f.shifts.OpenShift(context.Background(), managerID, dto.OpenShiftRequest{
		LocationID: f.cat.Location.ID, OpeningFloat: testutil.DecPtr("50.00"),
	})
	assertKind(t, err, apierror.KindConflict)

	var n int64
	require.NoError(t, f.db.Model(&model.CashShift{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestOpenShift_Validation(t *testing.T) {
	f := newShiftFixture(t)
	ctx := context.Background()

	_, err := f.shifts.OpenShift(ctx, managerID, dto.OpenShiftRequest{LocationID: f.cat.Location.ID})
	assertKind(t, err, apierror.KindValidation)
	_, err = f.shifts.OpenShift(ctx, managerID, dto.OpenShiftRequest{LocationID: f.cat.Location.ID, OpeningFloat: testutil.DecPtr("-1")})
	assertKind(t, err, apierror.KindValidation)
	_, err = f.shifts.OpenShift(ctx, managerID, dto.OpenShiftRequest{LocationID: 999, OpeningFloat: testutil.DecPtr("0")})
	assertKind(t, err, apierror.KindNotFound)
	_, err = f.shifts.OpenShift(ctx, managerID, dto.OpenShiftRequest{LocationID: f.cat.InactiveLocation.ID, OpeningFloat: testutil.DecPtr("0")})
	assertKind(t, err, apierror.KindNotFound)
}

func TestOpenShift_ConcurrentOpensLeaveOneShift(t *testing.T) {
	f := newShiftFixture(t)
	const workers = 8

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.shifts.OpenShift(context.Background(), managerID, dto.OpenShiftRequest{
				LocationID: f.cat.Location.ID, OpeningFloat: testutil.DecPtr("10.00"),
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assertKind(t, err, apierror.KindConflict)
	}
	assert.Equal(t, 1, ok)
}

// blindShiftRepo never sees an open shift, so only the unique index can
// reject the second open.
type blindShiftRepo struct {
	repository.ShiftRepository
}

func (blindShiftRepo) FindOpenByLocation(context.Context, *gorm.DB, uint) (*model.CashShift, error) {
	return nil, gorm.ErrRecordNotFound
}

func TestOpenShift_UniqueIndexRejectsRace(t *testing.T) {
	f := newShiftFixture(t)
	svc := NewShiftService(blindShiftRepo{repository.NewShiftRepository(f.db)},
		repository.NewSaleRepository(f.db), repository.NewCatalogRepository(f.db), nil)
	req := dto.OpenShiftRequest{LocationID: f.cat.Location.ID, OpeningFloat: testutil.DecPtr("10.00")}

	_, err := svc.OpenShift(context.Background(), managerID, req)
	require.NoError(t, err)
	_, err = svc.OpenShift(context.Background(), managerID, req)
	assertKind(t, err, apierror.KindConflict)
}

// ── CloseShift ────────────────────────────────────────────────────────────────

func TestCloseShift_OverageAgainstCashSales(t *testing.T) {
	f := newShiftFixture(t)
	ctx := context.Background()
	shift := f.openShift(t, "100.00")

	f.paidSale(t, pay("EFECTIVO", "25.00"))
	f.paidSale(t, pay("EFECTIVO", "15.00"), pay("TARJETA", "12.00"))
	f.paidSale(t, pay("TRANSFERENCIA", "8.00"))
	f.paidSale(t, pay("OTRO", "3.00"))

	cancelled, err := f.sales.OpenSale(ctx, cashierID, dto.OpenSaleRequest{LocationID: f.cat.Location.ID})
	require.NoError(t, err)
	_, err = f.sales.AddPayment(ctx, cancelled.ID, pay("EFECTIVO", "99.00"))
	require.NoError(t, err)
	_, err = f.sales.CancelSale(ctx, cancelled.ID, nil)
	require.NoError(t, err)

	// cash in drawer should be 100 + 40 = 140
	closed, err := f.shifts.CloseShift(ctx, shift.ID, managerID, dto.CloseShiftRequest{
		ClosingCashCounted: testutil.DecPtr("150.00"),
		Notes:              strPtr("sin novedades"),
	})
	require.NoError(t, err)

	assert.True(t, closed.IsClosed)
	require.NotNil(t, closed.ClosedAt)
	require.NotNil(t, closed.ClosedBy)
	assert.Equal(t, managerID, *closed.ClosedBy)
	require.NotNil(t, closed.Summary)
	assertMoney(t, "63.00", closed.Summary.TotalSales)
	assertMoney(t, "40.00", closed.Summary.TotalCash)
	assertMoney(t, "12.00", closed.Summary.TotalCard)
	assertMoney(t, "8.00", closed.Summary.TotalTransfer)
	assertMoney(t, "3.00", closed.Summary.TotalOther)
	assert.Equal(t, 4, closed.Summary.TotalOrders)
	require.NotNil(t, closed.Difference)
	assertMoney(t, "10.00", *closed.Difference)
	assert.Equal(t, "+$10.00", *closed.DifferenceFormatted)
}

func TestCloseShift_ShortageIsNegative(t *testing.T) {
	f := newShiftFixture(t)
	shift := f.openShift(t, "50.00")
	f.paidSale(t, pay("EFECTIVO", "20.00"))

	closed, err := f.shifts.CloseShift(context.Background(), shift.ID, managerID, dto.CloseShiftRequest{
		ClosingCashCounted: testutil.DecPtr("65.50"),
	})
	require.NoError(t, err)
	assertMoney(t, "-4.50", *closed.Difference)
	assert.Equal(t, "-$4.50", *closed.DifferenceFormatted)
}

func TestCloseShift_IgnoresSalesBeforeOpening(t *testing.T) {
	f := newShiftFixture(t)
	early := f.paidSale(t, pay("EFECTIVO", "30.00"))
	require.NoError(t, f.db.Model(&model.Sale{}).Where("id = ?", early.ID).
		Update("opened_at", time.Now().UTC().Add(-2*time.Hour)).Error)

	shift := f.openShift(t, "0.00")
	f.paidSale(t, pay("EFECTIVO", "5.00"))

	closed, err := f.shifts.CloseShift(context.Background(), shift.ID, managerID, dto.CloseShiftRequest{
		ClosingCashCounted: testutil.DecPtr("5.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, closed.Summary.TotalOrders)
	assertMoney(t, "5.00", closed.Summary.TotalCash)
	assert.Equal(t, "+$0.00", *closed.DifferenceFormatted)
}

func TestCloseShift_SecondCloseIsRejected(t *testing.T) {
	f := newShiftFixture(t)
	ctx := context.Background()
	shift := f.openShift(t, "10.00")
	req := dto.CloseShiftRequest{ClosingCashCounted: testutil.DecPtr("10.00")}

	_, err := f.shifts.CloseShift(ctx, shift.ID, managerID, req)
	require.NoError(t, err)
	_, err = f.shifts.CloseShift(ctx, shift.ID, managerID, req)
	assertKind(t, err, apierror.KindInvalidState)

	var n int64
	require.NoError(t, f.db.Model(&model.CashShiftSummary{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	// the location can open a new shift once the previous one is closed
	f.openShift(t, "20.00")
}

func TestCloseShift_Errors(t *testing.T) {
	f := newShiftFixture(t)
	ctx := context.Background()
	shift := f.openShift(t, "10.00")

	_, err := f.shifts.CloseShift(ctx, 4242, managerID, dto.CloseShiftRequest{ClosingCashCounted: testutil.DecPtr("1")})
	assertKind(t, err, apierror.KindNotFound)
	_, err = f.shifts.CloseShift(ctx, shift.ID, managerID, dto.CloseShiftRequest{})
	assertKind(t, err, apierror.KindValidation)
	_, err = f.shifts.CloseShift(ctx, shift.ID, managerID, dto.CloseShiftRequest{ClosingCashCounted: testutil.DecPtr("-0.01")})
	assertKind(t, err, apierror.KindValidation)
}

// ── Queries ───────────────────────────────────────────────────────────────────

func TestGetActiveShift(t *testing.T) {
	f := newShiftFixture(t)
	ctx := context.Background()

	_, err := f.shifts.GetActiveShift(ctx, f.cat.Location.ID)
	assertKind(t, err, apierror.KindNotFound)

	shift := f.openShift(t, "100.00")
	f.paidSale(t, pay("EFECTIVO", "10.00"))
	f.paidSale(t, pay("TARJETA", "20.00"))
	open, err := f.sales.OpenSale(ctx, cashierID, dto.OpenSaleRequest{LocationID: f.cat.Location.ID})
	require.NoError(t, err)
	_, err = f.sales.CancelSale(ctx, open.ID, nil)
	require.NoError(t, err)

	active, err := f.shifts.GetActiveShift(ctx, f.cat.Location.ID)
	require.NoError(t, err)
	assert.Equal(t, shift.ID, active.Shift.ID)
	assert.Equal(t, 3, active.Stats.TotalSales)
	assert.Equal(t, 2, active.Stats.PaidSales)
	assert.Equal(t, 1, active.Stats.CancelledSales)
	assertMoney(t, "30.00", active.Stats.TotalRevenue)
	assertMoney(t, "15.00", active.Stats.AverageSale)
	require.Len(t, active.Stats.ByPaymentMethod, 2)
	assert.Equal(t, "EFECTIVO", active.Stats.ByPaymentMethod[0].Method)
	assert.Equal(t, "TARJETA", active.Stats.ByPaymentMethod[1].Method)
	require.Len(t, active.Stats.TopProducts, 1)
	assert.Equal(t, "Smoothie", active.Stats.TopProducts[0].ProductName)
}

func TestGetShiftAndHistory(t *testing.T) {
	f := newShiftFixture(t)
	ctx := context.Background()

	first := f.openShift(t, "10.00")
	_, err := f.shifts.CloseShift(ctx, first.ID, managerID, dto.CloseShiftRequest{ClosingCashCounted: testutil.DecPtr("10.00")})
	require.NoError(t, err)
	second := f.openShift(t, "20.00")

	got, err := f.shifts.GetShift(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, got.IsClosed)
	_, err = f.shifts.GetShift(ctx, 4242)
	assertKind(t, err, apierror.KindNotFound)

	history, err := f.shifts.ShiftHistory(ctx, dto.ShiftFilter{LocationID: f.cat.Location.ID, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), history.Total)
	require.Len(t, history.Data, 1)
	assert.Equal(t, first.ID, history.Data[0].ID)
	require.NotNil(t, history.Data[0].Summary)
}
