package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// ShiftFilter is bound from the query string of GET /v1/shifts (closed shifts only).
type ShiftFilter struct {
	LocationID uint   `form:"location_id"`
	From       string `form:"from" validate:"omitempty,datetime=2006-01-02"` // by opened_at
	To         string `form:"to"   validate:"omitempty,datetime=2006-01-02"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type ShiftListResponse struct {
	Data  []ShiftResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenShiftRequest struct {
	LocationID   uint             `json:"location_id"   validate:"required,min=1"`
	OpeningFloat *decimal.Decimal `json:"opening_float" validate:"required,min=0,dp2"`
}

type CloseShiftRequest struct {
	ClosingCashCounted *decimal.Decimal `json:"closing_cash_counted" validate:"required,min=0,dp2"`
	Notes              *string          `json:"notes"                validate:"omitnil,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ShiftSummaryResponse struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalCash     decimal.Decimal `json:"total_cash"`
	TotalCard     decimal.Decimal `json:"total_card"`
	TotalTransfer decimal.Decimal `json:"total_transfer"`
	TotalOther    decimal.Decimal `json:"total_other"`
	TotalOrders   int             `json:"total_orders"`
	ComputedAt    time.Time       `json:"computed_at"`
}

// ShiftResponse.Difference is counted − (opening_float + total_cash); set only
// for closed shifts. DifferenceFormatted renders it as +$X.XX / -$X.XX.
type ShiftResponse struct {
	ID                  uint                  `json:"id"`
	LocationID          uint                  `json:"location_id"`
	OpenedBy            uint                  `json:"opened_by"`
	ClosedBy            *uint                 `json:"closed_by"`
	OpenedAt            time.Time             `json:"opened_at"`
	ClosedAt            *time.Time            `json:"closed_at"`
	OpeningFloat        decimal.Decimal       `json:"opening_float"`
	ClosingCashCounted  *decimal.Decimal      `json:"closing_cash_counted"`
	Notes               *string               `json:"notes"`
	IsClosed            bool                  `json:"is_closed"`
	Summary             *ShiftSummaryResponse `json:"summary,omitempty"`
	Difference          *decimal.Decimal      `json:"difference,omitempty"`
	DifferenceFormatted *string               `json:"difference_formatted,omitempty"`
}

type PaymentMethodStat struct {
	Method string          `json:"method"` // tender vocabulary
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

type TopProductStat struct {
	VariantID   uint            `json:"variant_id"`
	ProductName string          `json:"product_name"`
	VariantName string          `json:"variant_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// ShiftStats is computed live over the sales of the shift window.
type ShiftStats struct {
	TotalSales      int                 `json:"total_sales"`
	PaidSales       int                 `json:"paid_sales"`
	CancelledSales  int                 `json:"cancelled_sales"`
	TotalRevenue    decimal.Decimal     `json:"total_revenue"`
	AverageSale     decimal.Decimal     `json:"average_sale"`
	ByPaymentMethod []PaymentMethodStat `json:"by_payment_method"`
	TopProducts     []TopProductStat    `json:"top_products"`
}

type ActiveShiftResponse struct {
	Shift ShiftResponse `json:"shift"`
	Stats ShiftStats    `json:"stats"`
}
