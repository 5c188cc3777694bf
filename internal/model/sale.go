package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus: "OPEN" | "PAID" | "CANCELLED". PAID and CANCELLED are terminal.
type SaleStatus string

const (
	SaleOpen      SaleStatus = "OPEN"
	SalePaid      SaleStatus = "PAID"
	SaleCancelled SaleStatus = "CANCELLED"
)

// Terminal reports whether no further transition is allowed.
func (s SaleStatus) Terminal() bool { return s == SalePaid || s == SaleCancelled }

// DefaultCancellationReason is stored when the cashier gives none.
const DefaultCancellationReason = "Cancelada por el cajero"

// Sale is the aggregate root of a customer transaction.
// Total = Subtotal + Tax; PaidAt is set iff PAID; CancelledAt iff CANCELLED.
type Sale struct {
	ID                 uint       `gorm:"primaryKey"`
	Status             SaleStatus `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	LocationID         uint       `gorm:"not null;index"`
	CashierID          uint       `gorm:"not null;index"`
	Note               *string    `gorm:"type:varchar(500)"`
	OpenedAt           time.Time  `gorm:"not null;index"`
	PaidAt             *time.Time
	CancelledAt        *time.Time
	CancellationReason *string         `gorm:"type:varchar(255)"`
	Subtotal           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Tax                decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total              decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	Items    []SaleItem    `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Payments []SalePayment `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// SaleItem is one line of a sale. UnitPrice is a snapshot of the catalog price
// at the time the line was created; LineTotal = round(Quantity × UnitPrice, 2).
type SaleItem struct {
	ID        uint            `gorm:"primaryKey"`
	SaleID    uint            `gorm:"not null;index"`
	VariantID uint            `gorm:"not null;index"`
	FlavorID  *uint           `gorm:"index"`
	Quantity  decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Variant *Variant `gorm:"foreignKey:VariantID"`
	Flavor  *Flavor  `gorm:"foreignKey:FlavorID"`
}

// SalePayment is one tender applied to a sale. Method holds the internal code.
type SalePayment struct {
	ID        uint            `gorm:"primaryKey"`
	SaleID    uint            `gorm:"not null;index"`
	Method    PaymentMethod   `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reference *string         `gorm:"type:varchar(100)"`
	PaidAt    time.Time       `gorm:"not null"`
}
