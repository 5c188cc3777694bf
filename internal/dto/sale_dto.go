package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	Status     string `form:"status"      validate:"omitempty,oneof=OPEN PAID CANCELLED"`
	LocationID uint   `form:"location_id"`
	CashierID  uint   `form:"cashier_id"`
	From       string `form:"from"        validate:"omitempty,datetime=2006-01-02"` // inclusive, by opened_at
	To         string `form:"to"          validate:"omitempty,datetime=2006-01-02"` // inclusive
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSaleRequest struct {
	LocationID uint    `json:"location_id" validate:"required,min=1"`
	Note       *string `json:"note"        validate:"omitempty,max=500"`
}

// SaleItemRequest identifies the flavor by id or by name; id wins when both are set.
// UnitPrice overrides the catalog price.
type SaleItemRequest struct {
	VariantID  uint             `json:"variant_id"  validate:"required,min=1"`
	FlavorID   *uint            `json:"flavor_id"   validate:"omitnil,min=1"`
	FlavorName *string          `json:"flavor_name" validate:"omitnil,min=1,max=100"`
	Quantity   decimal.Decimal  `json:"quantity"    validate:"gt=0,dp3"`
	UnitPrice  *decimal.Decimal `json:"unit_price"  validate:"omitnil,gt=0,dp2"`
}

type UpdateItemRequest struct {
	Quantity  *decimal.Decimal `json:"quantity"   validate:"omitnil,gt=0,dp3"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitnil,gt=0,dp2"`
}

// PaymentRequest.Method uses the tender vocabulary: EFECTIVO | TARJETA | TRANSFERENCIA | OTRO.
type PaymentRequest struct {
	Method    string          `json:"method"    validate:"required,tender"`
	Amount    decimal.Decimal `json:"amount"    validate:"gt=0,dp2"`
	Reference *string         `json:"reference" validate:"omitnil,max=100"`
}

// FinalizeSaleRequest carries the items and payments added at checkout. Both
// are merged with whatever was already attached to the sale.
type FinalizeSaleRequest struct {
	Items    []SaleItemRequest `json:"items"    validate:"omitempty,dive"`
	Payments []PaymentRequest  `json:"payments" validate:"omitempty,dive"`
	// CustomerEmail: optional, the receipt worker mails the PDF when present.
	CustomerEmail *string `json:"customer_email" validate:"omitnil,email"`
}

type CreateFullSaleRequest struct {
	LocationID    uint              `json:"location_id"    validate:"required,min=1"`
	Note          *string           `json:"note"           validate:"omitnil,max=500"`
	Items         []SaleItemRequest `json:"items"          validate:"required,min=1,dive"`
	Payments      []PaymentRequest  `json:"payments"       validate:"required,min=1,dive"`
	CustomerEmail *string           `json:"customer_email" validate:"omitnil,email"`
}

type CancelSaleRequest struct {
	Reason *string `json:"reason" validate:"omitnil,max=255"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ID          uint            `json:"id"`
	VariantID   uint            `json:"variant_id"`
	ProductName string          `json:"product_name"`
	VariantName string          `json:"variant_name"`
	FlavorID    *uint           `json:"flavor_id"`
	FlavorName  *string         `json:"flavor_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// PaymentResponse.Method is rendered in the tender vocabulary.
type PaymentResponse struct {
	ID        uint            `json:"id"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference *string         `json:"reference"`
	PaidAt    time.Time       `json:"paid_at"`
}

type SaleResponse struct {
	ID                 uint               `json:"id"`
	Status             string             `json:"status"`
	LocationID         uint               `json:"location_id"`
	CashierID          uint               `json:"cashier_id"`
	Note               *string            `json:"note"`
	OpenedAt           time.Time          `json:"opened_at"`
	PaidAt             *time.Time         `json:"paid_at"`
	CancelledAt        *time.Time         `json:"cancelled_at"`
	CancellationReason *string            `json:"cancellation_reason"`
	Subtotal           decimal.Decimal    `json:"subtotal"`
	Tax                decimal.Decimal    `json:"tax"`
	Total              decimal.Decimal    `json:"total"`
	Items              []SaleItemResponse `json:"items"`
	Payments           []PaymentResponse  `json:"payments"`
}
