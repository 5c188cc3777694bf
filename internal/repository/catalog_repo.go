package repository

import (
	"context"
	"time"

	"naxospos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogRepository is the read side of products, variants, prices and flavors.
// Lookups by id set are used for bulk resolution inside a sale transaction.
type CatalogRepository interface {
	FindLocation(ctx context.Context, tx *gorm.DB, id uint) (*model.Location, error)
	FindVariantsByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]model.Variant, error)
	CurrentPrices(ctx context.Context, tx *gorm.DB, variantIDs []uint, at time.Time) (map[uint]decimal.Decimal, error)
	FindFlavorsByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]model.Flavor, error)
	FindFlavorsByNames(ctx context.Context, tx *gorm.DB, names []string) ([]model.Flavor, error)
}

type catalogRepo struct{ db *gorm.DB }

func NewCatalogRepository(db *gorm.DB) CatalogRepository { return &catalogRepo{db: db} }

func (r *catalogRepo) FindLocation(ctx context.Context, tx *gorm.DB, id uint) (*model.Location, error) {
	var l model.Location
	err := conn(r.db, tx).WithContext(ctx).First(&l, id).Error
	return &l, err
}

func (r *catalogRepo) FindVariantsByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]model.Variant, error) {
	var variants []model.Variant
	if len(ids) == 0 {
		return variants, nil
	}
	err := conn(r.db, tx).WithContext(ctx).Preload("Product").Where("id IN ?", ids).Find(&variants).Error
	return variants, err
}

// CurrentPrices returns, per variant, the price of the most recent history row
// in effect at the given instant. Variants without such a row are absent.
func (r *catalogRepo) CurrentPrices(ctx context.Context, tx *gorm.DB, variantIDs []uint, at time.Time) (map[uint]decimal.Decimal, error) {
	prices := make(map[uint]decimal.Decimal, len(variantIDs))
	if len(variantIDs) == 0 {
		return prices, nil
	}
	var rows []model.VariantPrice
	err := conn(r.db, tx).WithContext(ctx).
		Where("variant_id IN ? AND valid_from <= ? AND (valid_to IS NULL OR valid_to > ?)", variantIDs, at, at).
		Order("valid_from DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if _, seen := prices[row.VariantID]; !seen {
			prices[row.VariantID] = row.Price
		}
	}
	return prices, nil
}

func (r *catalogRepo) FindFlavorsByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]model.Flavor, error) {
	var flavors []model.Flavor
	if len(ids) == 0 {
		return flavors, nil
	}
	err := conn(r.db, tx).WithContext(ctx).Where("id IN ?", ids).Find(&flavors).Error
	return flavors, err
}

func (r *catalogRepo) FindFlavorsByNames(ctx context.Context, tx *gorm.DB, names []string) ([]model.Flavor, error) {
	var flavors []model.Flavor
	if len(names) == 0 {
		return flavors, nil
	}
	err := conn(r.db, tx).WithContext(ctx).Where("name IN ?", names).Find(&flavors).Error
	return flavors, err
}
