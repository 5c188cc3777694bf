package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt status: "pending" | "generated" | "error"
const (
	ReceiptPending   = "pending"
	ReceiptGenerated = "generated"
	ReceiptError     = "error"
)

// Receipt records the PDF rendered for a PAID sale by the receipt worker.
// Failed renders are retried by the retry cron until RetryCount reaches the cap.
type Receipt struct {
	ID          uint            `gorm:"primaryKey"`
	SaleID      uint            `gorm:"not null;uniqueIndex"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status      string          `gorm:"type:varchar(20);not null;default:'pending'"`
	PDFPath     *string
	SentTo      *string
	RetryCount  int `gorm:"not null;default:0"`
	NextRetryAt *time.Time
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
