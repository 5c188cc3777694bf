package service

import (
	"naxospos/internal/dto"
	"naxospos/internal/model"
	"naxospos/internal/money"
)

func saleToResponse(s *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:                 s.ID,
		Status:             string(s.Status),
		LocationID:         s.LocationID,
		CashierID:          s.CashierID,
		Note:               s.Note,
		OpenedAt:           s.OpenedAt,
		PaidAt:             s.PaidAt,
		CancelledAt:        s.CancelledAt,
		CancellationReason: s.CancellationReason,
		Subtotal:           s.Subtotal,
		Tax:                s.Tax,
		Total:              s.Total,
		Items:              make([]dto.SaleItemResponse, 0, len(s.Items)),
		Payments:           make([]dto.PaymentResponse, 0, len(s.Payments)),
	}
	for _, it := range s.Items {
		resp.Items = append(resp.Items, itemToResponse(it))
	}
	for _, p := range s.Payments {
		resp.Payments = append(resp.Payments, paymentToResponse(p))
	}
	return resp
}

func itemToResponse(it model.SaleItem) dto.SaleItemResponse {
	resp := dto.SaleItemResponse{
		ID:        it.ID,
		VariantID: it.VariantID,
		FlavorID:  it.FlavorID,
		Quantity:  it.Quantity,
		UnitPrice: it.UnitPrice,
		LineTotal: it.LineTotal,
	}
	if it.Variant != nil {
		resp.VariantName = it.Variant.VariantName
		if it.Variant.Product != nil {
			resp.ProductName = it.Variant.Product.Name
		}
	}
	if it.Flavor != nil {
		name := it.Flavor.Name
		resp.FlavorName = &name
	}
	return resp
}

// paymentToResponse renders the method in the tender vocabulary.
func paymentToResponse(p model.SalePayment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:        p.ID,
		Method:    p.Method.Tender(),
		Amount:    p.Amount,
		Reference: p.Reference,
		PaidAt:    p.PaidAt,
	}
}

func shiftToResponse(s *model.CashShift) *dto.ShiftResponse {
	resp := &dto.ShiftResponse{
		ID:                 s.ID,
		LocationID:         s.LocationID,
		OpenedBy:           s.OpenedBy,
		ClosedBy:           s.ClosedBy,
		OpenedAt:           s.OpenedAt,
		ClosedAt:           s.ClosedAt,
		OpeningFloat:       s.OpeningFloat,
		ClosingCashCounted: s.ClosingCashCounted,
		Notes:              s.Notes,
		IsClosed:           s.IsClosed,
	}
	if s.Summary != nil {
		resp.Summary = &dto.ShiftSummaryResponse{
			TotalSales:    s.Summary.TotalSales,
			TotalCash:     s.Summary.TotalCash,
			TotalCard:     s.Summary.TotalCard,
			TotalTransfer: s.Summary.TotalTransfer,
			TotalOther:    s.Summary.TotalOther,
			TotalOrders:   s.Summary.TotalOrders,
			ComputedAt:    s.Summary.ComputedAt,
		}
		if s.ClosingCashCounted != nil {
			diff := money.Difference(*s.ClosingCashCounted, s.OpeningFloat, s.Summary.TotalCash)
			formatted := money.FormatSigned(diff)
			resp.Difference = &diff
			resp.DifferenceFormatted = &formatted
		}
	}
	return resp
}
