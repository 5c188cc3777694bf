package infra

import (
	"os"
	"testing"
	"time"

	"naxospos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReceiptPDF(t *testing.T) {
	paidAt := time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC)
	sale := &model.Sale{
		ID:       42,
		Status:   model.SalePaid,
		OpenedAt: paidAt.Add(-time.Minute),
		PaidAt:   &paidAt,
		Subtotal: decimal.RequireFromString("10.00"),
		Total:    decimal.RequireFromString("10.00"),
		Items: []model.SaleItem{{
			Quantity:  decimal.NewFromInt(2),
			UnitPrice: decimal.RequireFromString("5.00"),
			LineTotal: decimal.RequireFromString("10.00"),
			Variant:   &model.Variant{VariantName: "16oz", Product: &model.Product{Name: "Smoothie"}},
			Flavor:    &model.Flavor{Name: "Fresa"},
		}},
		Payments: []model.SalePayment{{Method: model.MethodCash, Amount: decimal.RequireFromString("10.00")}},
	}

	path, err := GenerateReceiptPDF(sale, "NAXOS", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, path, "venta_42.pdf")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestGenerateShiftReportPDF(t *testing.T) {
	closedAt := time.Now().UTC()
	counted := decimal.RequireFromString("160.00")
	shift := &model.CashShift{
		ID: 7, LocationID: 1, OpenedAt: closedAt.Add(-8 * time.Hour), ClosedAt: &closedAt,
		OpeningFloat: decimal.RequireFromString("100.00"), ClosingCashCounted: &counted, IsClosed: true,
	}
	summary := &model.CashShiftSummary{
		ShiftID: 7, TotalSales: decimal.RequireFromString("80.00"), TotalCash: decimal.RequireFromString("50.00"),
		TotalCard: decimal.RequireFromString("30.00"), TotalOrders: 2, ComputedAt: closedAt,
	}

	path, err := GenerateShiftReportPDF(shift, summary, "+$10.00", "NAXOS", t.TempDir())
	require.NoError(t, err)
	assert.FileExists(t, path)
}
