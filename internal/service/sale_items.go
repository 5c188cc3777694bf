package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"naxospos/internal/apierror"
	"naxospos/internal/dto"
	"naxospos/internal/model"
	"naxospos/internal/money"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func validateQuantity(q decimal.Decimal) error {
	if !q.IsPositive() {
		return apierror.Validation("quantity debe ser mayor a 0")
	}
	if !money.HasMaxPlaces(q, money.QuantityPlaces) {
		return apierror.Validation("quantity admite hasta 3 decimales")
	}
	return nil
}

func validateUnitPrice(p decimal.Decimal) error {
	if !p.IsPositive() {
		return apierror.Validation("unit_price debe ser mayor a 0")
	}
	if !money.HasMaxPlaces(p, money.Cents) {
		return apierror.Validation("unit_price admite hasta 2 decimales")
	}
	return nil
}

// resolveItems turns item requests into SaleItems with snapshot prices and line
// totals. Catalog lookups are done in bulk. missing builds the error returned
// for an unknown variant or flavor: NOT_FOUND for a single AddItem, VALIDATION
// at finalize.
func (s *saleService) resolveItems(
	ctx context.Context,
	tx *gorm.DB,
	saleID uint,
	reqs []dto.SaleItemRequest,
	missing func(msg string) *apierror.Error,
) ([]model.SaleItem, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	var variantIDs, flavorIDs, priceIDs []uint
	var flavorNames []string
	for i, r := range reqs {
		if r.VariantID == 0 {
			return nil, apierror.Validation(fmt.Sprintf("items[%d].variant_id es requerido", i))
		}
		if err := validateQuantity(r.Quantity); err != nil {
			return nil, err
		}
		if r.UnitPrice != nil {
			if err := validateUnitPrice(*r.UnitPrice); err != nil {
				return nil, err
			}
		} else {
			priceIDs = append(priceIDs, r.VariantID)
		}
		variantIDs = append(variantIDs, r.VariantID)
		switch {
		case r.FlavorID != nil:
			flavorIDs = append(flavorIDs, *r.FlavorID)
		case r.FlavorName != nil && strings.TrimSpace(*r.FlavorName) != "":
			flavorNames = append(flavorNames, strings.TrimSpace(*r.FlavorName))
		}
	}

	variants, err := s.catalog.FindVariantsByIDs(ctx, tx, variantIDs)
	if err != nil {
		return nil, err
	}
	variantByID := make(map[uint]*model.Variant, len(variants))
	for i := range variants {
		variantByID[variants[i].ID] = &variants[i]
	}

	prices, err := s.catalog.CurrentPrices(ctx, tx, priceIDs, s.now())
	if err != nil {
		return nil, err
	}

	flavorByID, flavorByName, err := s.loadFlavors(ctx, tx, flavorIDs, flavorNames)
	if err != nil {
		return nil, err
	}

	items := make([]model.SaleItem, 0, len(reqs))
	for _, r := range reqs {
		v, ok := variantByID[r.VariantID]
		if !ok || !v.IsActive {
			return nil, missing(fmt.Sprintf("Variante %d no encontrada o inactiva", r.VariantID))
		}

		var flavor *model.Flavor
		switch {
		case r.FlavorID != nil:
			if flavor, ok = flavorByID[*r.FlavorID]; !ok {
				return nil, missing(fmt.Sprintf("Sabor %d no encontrado", *r.FlavorID))
			}
		case r.FlavorName != nil && strings.TrimSpace(*r.FlavorName) != "":
			name := strings.TrimSpace(*r.FlavorName)
			if flavor, ok = flavorByName[name]; !ok {
				return nil, missing(fmt.Sprintf("Sabor '%s' no encontrado", name))
			}
		}

		unitPrice, err := unitPriceFor(r, v, prices)
		if err != nil {
			return nil, err
		}

		item := model.SaleItem{
			SaleID:    saleID,
			VariantID: v.ID,
			Quantity:  r.Quantity,
			UnitPrice: unitPrice,
			LineTotal: money.LineTotal(r.Quantity, unitPrice),
			Variant:   v,
			Flavor:    flavor,
		}
		if flavor != nil {
			item.FlavorID = &flavor.ID
		}
		items = append(items, item)
	}
	return items, nil
}

// unitPriceFor picks the override, then the price history, then the variant list price.
func unitPriceFor(r dto.SaleItemRequest, v *model.Variant, history map[uint]decimal.Decimal) (decimal.Decimal, error) {
	if r.UnitPrice != nil {
		return money.Round(*r.UnitPrice), nil
	}
	if p, ok := history[v.ID]; ok {
		return money.Round(p), nil
	}
	if v.Price != nil && v.Price.IsPositive() {
		return money.Round(*v.Price), nil
	}
	return decimal.Zero, apierror.Validation(fmt.Sprintf("La variante %d no tiene precio vigente; indique unit_price", v.ID))
}

func (s *saleService) loadFlavors(ctx context.Context, tx *gorm.DB, ids []uint, names []string) (map[uint]*model.Flavor, map[string]*model.Flavor, error) {
	byID := make(map[uint]*model.Flavor)
	byName := make(map[string]*model.Flavor)

	flavors, err := s.catalog.FindFlavorsByIDs(ctx, tx, ids)
	if err != nil {
		return nil, nil, err
	}
	named, err := s.catalog.FindFlavorsByNames(ctx, tx, names)
	if err != nil {
		return nil, nil, err
	}
	for i := range flavors {
		byID[flavors[i].ID] = &flavors[i]
	}
	for i := range named {
		byName[named[i].Name] = &named[i]
	}
	return byID, byName, nil
}

// buildPayments maps tender names to internal codes and rounds amounts.
func buildPayments(saleID uint, reqs []dto.PaymentRequest, at time.Time) ([]model.SalePayment, error) {
	payments := make([]model.SalePayment, 0, len(reqs))
	for _, r := range reqs {
		method, ok := model.ParseTender(r.Method)
		if !ok {
			return nil, apierror.Validation(fmt.Sprintf("Metodo de pago invalido: %s", r.Method))
		}
		if !r.Amount.IsPositive() {
			return nil, apierror.Validation("amount debe ser mayor a 0")
		}
		if !money.HasMaxPlaces(r.Amount, money.Cents) {
			return nil, apierror.Validation("amount admite hasta 2 decimales")
		}
		payments = append(payments, model.SalePayment{
			SaleID:    saleID,
			Method:    method,
			Amount:    money.Round(r.Amount),
			Reference: r.Reference,
			PaidAt:    at,
		})
	}
	return payments, nil
}
