package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Location is a point of sale (inventory_location in the legacy schema).
// Sales and cash shifts are scoped to a location.
type Location struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(100);not null"`
	Address   *string
	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product groups the purchasable variants of one menu item.
type Product struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(200);not null"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Variants []Variant `gorm:"foreignKey:ProductID"`
}

// Variant is the SKU-level configuration actually sold (size / packaging).
// Price is the fallback list price when no VariantPrice row is in effect.
type Variant struct {
	ID          uint   `gorm:"primaryKey"`
	ProductID   uint   `gorm:"not null;index"`
	VariantName string `gorm:"type:varchar(100);not null"`
	Ounces      *int
	SKU         *string          `gorm:"type:varchar(50)"`
	Price       *decimal.Decimal `gorm:"type:decimal(10,2)"`
	IsActive    bool             `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// VariantPrice is one entry of a variant's price history.
// The row in effect at instant t has ValidFrom <= t and (ValidTo is nil or ValidTo > t).
type VariantPrice struct {
	ID        uint            `gorm:"primaryKey"`
	VariantID uint            `gorm:"not null;index"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ValidFrom time.Time       `gorm:"not null"`
	ValidTo   *time.Time
	CreatedAt time.Time
}

// Flavor is an optional attribute chosen per sale item.
type Flavor struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(100);uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
