package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashShift is a till session for one location. At most one shift per
// location may have IsClosed=false; the partial unique index
// uq_cash_shifts_open_location enforces it. Closing is one-way.
type CashShift struct {
	ID                 uint `gorm:"primaryKey"`
	LocationID         uint `gorm:"not null;index"`
	OpenedBy           uint `gorm:"not null"`
	ClosedBy           *uint
	OpenedAt           time.Time `gorm:"not null"`
	ClosedAt           *time.Time
	OpeningFloat       decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	ClosingCashCounted *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Notes              *string          `gorm:"type:varchar(500)"`
	IsClosed           bool             `gorm:"not null;default:false"`

	Location *Location         `gorm:"foreignKey:LocationID"`
	Summary  *CashShiftSummary `gorm:"foreignKey:ShiftID"`
}

// CashShiftSummary is frozen when the shift closes and never recomputed.
type CashShiftSummary struct {
	ID            uint            `gorm:"primaryKey"`
	ShiftID       uint            `gorm:"not null;uniqueIndex"`
	TotalSales    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalCash     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalCard     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalTransfer decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalOther    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalOrders   int             `gorm:"not null"`
	ComputedAt    time.Time       `gorm:"not null"`
}
