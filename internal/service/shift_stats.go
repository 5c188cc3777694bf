package service

import (
	"sort"

	"naxospos/internal/dto"
	"naxospos/internal/model"
	"naxospos/internal/money"

	"github.com/shopspring/decimal"
)

const topProductsLimit = 5

// buildShiftStats computes the live snapshot shown for an open shift. Counts
// cover every sale in the window; money figures only PAID ones.
func buildShiftStats(sales []model.Sale) dto.ShiftStats {
	stats := dto.ShiftStats{
		TotalSales:      len(sales),
		TotalRevenue:    decimal.Zero,
		AverageSale:     decimal.Zero,
		ByPaymentMethod: []dto.PaymentMethodStat{},
		TopProducts:     []dto.TopProductStat{},
	}

	type methodAcc struct {
		count int
		total decimal.Decimal
	}
	methods := make(map[model.PaymentMethod]*methodAcc)
	products := make(map[uint]*dto.TopProductStat)

	for _, sale := range sales {
		switch sale.Status {
		case model.SaleCancelled:
			stats.CancelledSales++
			continue
		case model.SalePaid:
			stats.PaidSales++
		default:
			continue
		}
		stats.TotalRevenue = stats.TotalRevenue.Add(sale.Total)

		for _, p := range sale.Payments {
			acc, ok := methods[p.Method]
			if !ok {
				acc = &methodAcc{total: decimal.Zero}
				methods[p.Method] = acc
			}
			acc.count++
			acc.total = acc.total.Add(p.Amount)
		}

		for _, it := range sale.Items {
			ps, ok := products[it.VariantID]
			if !ok {
				ps = &dto.TopProductStat{VariantID: it.VariantID, Quantity: decimal.Zero, Revenue: decimal.Zero}
				if it.Variant != nil {
					ps.VariantName = it.Variant.VariantName
					if it.Variant.Product != nil {
						ps.ProductName = it.Variant.Product.Name
					}
				}
				products[it.VariantID] = ps
			}
			ps.Quantity = ps.Quantity.Add(it.Quantity)
			ps.Revenue = ps.Revenue.Add(it.LineTotal)
		}
	}

	stats.TotalRevenue = money.Round(stats.TotalRevenue)
	if stats.PaidSales > 0 {
		stats.AverageSale = money.Round(stats.TotalRevenue.Div(decimal.NewFromInt(int64(stats.PaidSales))))
	}

	for _, m := range model.Methods {
		if acc, ok := methods[m]; ok {
			stats.ByPaymentMethod = append(stats.ByPaymentMethod, dto.PaymentMethodStat{
				Method: m.Tender(),
				Count:  acc.count,
				Total:  money.Round(acc.total),
			})
		}
	}

	for _, ps := range products {
		stats.TopProducts = append(stats.TopProducts, *ps)
	}
	sort.Slice(stats.TopProducts, func(i, j int) bool {
		a, b := stats.TopProducts[i], stats.TopProducts[j]
		if !a.Quantity.Equal(b.Quantity) {
			return a.Quantity.GreaterThan(b.Quantity)
		}
		if !a.Revenue.Equal(b.Revenue) {
			return a.Revenue.GreaterThan(b.Revenue)
		}
		return a.VariantID < b.VariantID
	})
	if len(stats.TopProducts) > topProductsLimit {
		stats.TopProducts = stats.TopProducts[:topProductsLimit]
	}
	return stats
}
