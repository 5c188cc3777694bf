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
	"naxospos/internal/repository"
	"naxospos/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	OpenSale(ctx context.Context, cashierID uint, req dto.OpenSaleRequest) (*dto.SaleResponse, error)
	CreateFullSale(ctx context.Context, cashierID uint, req dto.CreateFullSaleRequest) (*dto.SaleResponse, error)
	AddItem(ctx context.Context, saleID uint, req dto.SaleItemRequest) (*dto.SaleItemResponse, error)
	UpdateItem(ctx context.Context, itemID uint, req dto.UpdateItemRequest) (*dto.SaleItemResponse, error)
	RemoveItem(ctx context.Context, itemID uint) error
	AddPayment(ctx context.Context, saleID uint, req dto.PaymentRequest) (*dto.PaymentResponse, error)
	FinalizeSale(ctx context.Context, saleID uint, req dto.FinalizeSaleRequest) (*dto.SaleResponse, error)
	CancelSale(ctx context.Context, saleID uint, reason *string) (*dto.SaleResponse, error)
	DeleteSale(ctx context.Context, saleID uint) error
	GetSale(ctx context.Context, saleID uint) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	repo       repository.SaleRepository
	catalog    repository.CatalogRepository
	dispatcher *worker.Dispatcher // nil disables receipt jobs
	now        func() time.Time
}

func NewSaleService(
	repo repository.SaleRepository,
	catalog repository.CatalogRepository,
	dispatcher *worker.Dispatcher,
) SaleService {
	return &saleService{
		repo:       repo,
		catalog:    catalog,
		dispatcher: dispatcher,
		now:        utcNow,
	}
}

const (
	msgSaleNotFound = "Venta no encontrada"
	msgItemNotFound = "Item no encontrado"
	msgSaleNotOpen  = "La venta no esta abierta (estado: %s)"

	msgSalePaidDelete = "No se puede eliminar una venta pagada"
)

// ── OpenSale ──────────────────────────────────────────────────────────────────

func (s *saleService) OpenSale(ctx context.Context, cashierID uint, req dto.OpenSaleRequest) (*dto.SaleResponse, error) {
	var sale *model.Sale
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		sale, err = s.createHeader(ctx, tx, cashierID, req.LocationID, req.Note)
		return err
	})
	if err != nil {
		return nil, surface("OpenSale", err)
	}
	return saleToResponse(sale), nil
}

func (s *saleService) createHeader(ctx context.Context, tx *gorm.DB, cashierID, locationID uint, note *string) (*model.Sale, error) {
	if err := s.requireLocation(ctx, tx, locationID); err != nil {
		return nil, err
	}
	sale := &model.Sale{
		Status:     model.SaleOpen,
		LocationID: locationID,
		CashierID:  cashierID,
		Note:       note,
		OpenedAt:   s.now(),
		Subtotal:   decimal.Zero,
		Tax:        decimal.Zero,
		Total:      decimal.Zero,
	}
	if err := s.repo.Create(ctx, tx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *saleService) requireLocation(ctx context.Context, tx *gorm.DB, id uint) error {
	loc, err := s.catalog.FindLocation(ctx, tx, id)
	if err != nil {
		return notFoundOr(err, "Sucursal no encontrada")
	}
	if !loc.IsActive {
		return apierror.NotFound("Sucursal inactiva")
	}
	return nil
}

// requireOpen claims the sale row for the rest of the transaction and fails
// unless the sale exists and is OPEN. Holding the row serializes item and
// payment writes against a concurrent finalize or cancel.
func (s *saleService) requireOpen(ctx context.Context, tx *gorm.DB, saleID uint) error {
	ok, err := s.repo.LockOpen(ctx, tx, saleID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	sale, err := s.repo.FindByID(ctx, tx, saleID)
	if err != nil {
		return notFoundOr(err, msgSaleNotFound)
	}
	return apierror.InvalidState(fmt.Sprintf(msgSaleNotOpen, sale.Status))
}

// ── Items ─────────────────────────────────────────────────────────────────────

func (s *saleService) AddItem(ctx context.Context, saleID uint, req dto.SaleItemRequest) (*dto.SaleItemResponse, error) {
	var item model.SaleItem
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.requireOpen(ctx, tx, saleID); err != nil {
			return err
		}
		items, err := s.resolveItems(ctx, tx, saleID, []dto.SaleItemRequest{req}, apierror.NotFound)
		if err != nil {
			return err
		}
		if err := s.repo.CreateItems(ctx, tx, items); err != nil {
			return err
		}
		item = items[0]
		return nil
	})
	if err != nil {
		return nil, surface("AddItem", err)
	}
	resp := itemToResponse(item)
	return &resp, nil
}

// UpdateItem recomputes the line from the stored snapshot price unless a new
// price is given. The catalog is never consulted again.
func (s *saleService) UpdateItem(ctx context.Context, itemID uint, req dto.UpdateItemRequest) (*dto.SaleItemResponse, error) {
	if req.Quantity == nil && req.UnitPrice == nil {
		return nil, apierror.Validation("Debe indicar quantity o unit_price")
	}
	if req.Quantity != nil {
		if err := validateQuantity(*req.Quantity); err != nil {
			return nil, err
		}
	}
	if req.UnitPrice != nil {
		if err := validateUnitPrice(*req.UnitPrice); err != nil {
			return nil, err
		}
	}

	var item *model.SaleItem
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		item, err = s.repo.FindItem(ctx, tx, itemID)
		if err != nil {
			return notFoundOr(err, msgItemNotFound)
		}
		if err := s.requireOpen(ctx, tx, item.SaleID); err != nil {
			return err
		}
		if req.Quantity != nil {
			item.Quantity = *req.Quantity
		}
		if req.UnitPrice != nil {
			item.UnitPrice = money.Round(*req.UnitPrice)
		}
		item.LineTotal = money.LineTotal(item.Quantity, item.UnitPrice)
		return s.repo.UpdateItem(ctx, tx, item)
	})
	if err != nil {
		return nil, surface("UpdateItem", err)
	}
	resp := itemToResponse(*item)
	return &resp, nil
}

// RemoveItem deletes a line; sale totals are only computed at finalize.
func (s *saleService) RemoveItem(ctx context.Context, itemID uint) error {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		item, err := s.repo.FindItem(ctx, tx, itemID)
		if err != nil {
			return notFoundOr(err, msgItemNotFound)
		}
		if err := s.requireOpen(ctx, tx, item.SaleID); err != nil {
			return err
		}
		return s.repo.DeleteItem(ctx, tx, item.ID)
	})
	return surface("RemoveItem", err)
}

// ── Payments ──────────────────────────────────────────────────────────────────

// AddPayment stores a pending tender; it is validated against the total at finalize.
func (s *saleService) AddPayment(ctx context.Context, saleID uint, req dto.PaymentRequest) (*dto.PaymentResponse, error) {
	payments, err := buildPayments(saleID, []dto.PaymentRequest{req}, s.now())
	if err != nil {
		return nil, err
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.requireOpen(ctx, tx, saleID); err != nil {
			return err
		}
		return s.repo.CreatePayments(ctx, tx, payments)
	})
	if err != nil {
		return nil, surface("AddPayment", err)
	}
	resp := paymentToResponse(payments[0])
	return &resp, nil
}

// ── FinalizeSale ──────────────────────────────────────────────────────────────
// All-or-nothing:
//   1. sale exists and is OPEN
//   2. bulk resolve variants / flavors of the new items
//   3. line totals and subtotal over stored + new items, tax 0
//   4. Σ(stored + new payments) == total, to the cent
//   5. persist items and payments, conditional OPEN → PAID
// Any failure rolls the whole transaction back.

func (s *saleService) FinalizeSale(ctx context.Context, saleID uint, req dto.FinalizeSaleRequest) (*dto.SaleResponse, error) {
	payments, err := buildPayments(saleID, req.Payments, s.now())
	if err != nil {
		return nil, err
	}

	var sale *model.Sale
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.requireOpen(ctx, tx, saleID); err != nil {
			return err
		}
		var err error
		sale, err = s.repo.FindByID(ctx, tx, saleID)
		if err != nil {
			return notFoundOr(err, msgSaleNotFound)
		}
		sale, err = s.finalizeInTx(ctx, tx, sale, req.Items, payments)
		return err
	})
	if err != nil {
		return nil, surface("FinalizeSale", err)
	}

	s.enqueueReceipt(ctx, sale.ID, req.CustomerEmail)
	return saleToResponse(sale), nil
}

// CreateFullSale opens and finalizes a sale in one transaction. On any failure
// nothing is persisted, header included.
func (s *saleService) CreateFullSale(ctx context.Context, cashierID uint, req dto.CreateFullSaleRequest) (*dto.SaleResponse, error) {
	if len(req.Items) == 0 {
		return nil, apierror.Validation("La venta debe tener al menos un item")
	}
	if len(req.Payments) == 0 {
		return nil, apierror.Validation("La venta debe tener al menos un pago")
	}
	payments, err := buildPayments(0, req.Payments, s.now())
	if err != nil {
		return nil, err
	}

	var sale *model.Sale
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		header, err := s.createHeader(ctx, tx, cashierID, req.LocationID, req.Note)
		if err != nil {
			return err
		}
		for i := range payments {
			payments[i].SaleID = header.ID
		}
		sale, err = s.finalizeInTx(ctx, tx, header, req.Items, payments)
		return err
	})
	if err != nil {
		return nil, surface("CreateFullSale", err)
	}

	s.enqueueReceipt(ctx, sale.ID, req.CustomerEmail)
	return saleToResponse(sale), nil
}

// finalizeInTx expects sale to carry its already stored items and payments.
func (s *saleService) finalizeInTx(ctx context.Context, tx *gorm.DB, sale *model.Sale, itemReqs []dto.SaleItemRequest, payments []model.SalePayment) (*model.Sale, error) {
	newItems, err := s.resolveItems(ctx, tx, sale.ID, itemReqs, apierror.Validation)
	if err != nil {
		return nil, err
	}

	lines := make([]decimal.Decimal, 0, len(sale.Items)+len(newItems))
	for _, it := range sale.Items {
		lines = append(lines, it.LineTotal)
	}
	for _, it := range newItems {
		lines = append(lines, it.LineTotal)
	}
	if len(lines) == 0 {
		return nil, apierror.Validation("La venta debe tener al menos un item")
	}
	totals := money.Compute(lines)

	amounts := make([]decimal.Decimal, 0, len(sale.Payments)+len(payments))
	for _, p := range sale.Payments {
		amounts = append(amounts, p.Amount)
	}
	for _, p := range payments {
		amounts = append(amounts, p.Amount)
	}
	if err := money.ValidatePayments(totals.Total, amounts); err != nil {
		return nil, err
	}

	if err := s.repo.CreateItems(ctx, tx, newItems); err != nil {
		return nil, err
	}
	if err := s.repo.CreatePayments(ctx, tx, payments); err != nil {
		return nil, err
	}

	paidAt := s.now()
	sale.PaidAt = &paidAt
	sale.Subtotal = totals.Subtotal
	sale.Tax = totals.Tax
	sale.Total = totals.Total
	ok, err := s.repo.MarkPaid(ctx, tx, sale)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierror.InvalidState("La venta ya fue finalizada o cancelada")
	}
	return s.repo.FindByID(ctx, tx, sale.ID)
}

func (s *saleService) enqueueReceipt(ctx context.Context, saleID uint, email *string) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueReceipt(ctx, worker.ReceiptJobPayload{SaleID: saleID, CustomerEmail: email}); err != nil {
		log.Warn().Err(err).Uint("sale_id", saleID).Msg("sale_service: failed to enqueue receipt")
	}
}

// ── Cancel / Delete ───────────────────────────────────────────────────────────

func (s *saleService) CancelSale(ctx context.Context, saleID uint, reason *string) (*dto.SaleResponse, error) {
	why := model.DefaultCancellationReason
	if reason != nil && strings.TrimSpace(*reason) != "" {
		why = strings.TrimSpace(*reason)
	}

	var sale *model.Sale
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ok, err := s.repo.MarkCancelled(ctx, tx, saleID, why, s.now())
		if err != nil {
			return err
		}
		sale, err = s.repo.FindByID(ctx, tx, saleID)
		if err != nil {
			return notFoundOr(err, msgSaleNotFound)
		}
		if !ok {
			return apierror.InvalidState(fmt.Sprintf(msgSaleNotOpen, sale.Status))
		}
		return nil
	})
	if err != nil {
		return nil, surface("CancelSale", err)
	}
	return saleToResponse(sale), nil
}

// DeleteSale hard-deletes an OPEN or CANCELLED sale. PAID sales are kept; a
// correction on them needs a reversal flow.
func (s *saleService) DeleteSale(ctx context.Context, saleID uint) error {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ok, err := s.repo.LockUnpaid(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if !ok {
			if _, err := s.repo.FindByID(ctx, tx, saleID); err != nil {
				return notFoundOr(err, msgSaleNotFound)
			}
			return apierror.InvalidState(msgSalePaidDelete)
		}
		deleted, err := s.repo.Delete(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if !deleted {
			return apierror.InvalidState(msgSalePaidDelete)
		}
		return nil
	})
	return surface("DeleteSale", err)
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *saleService) GetSale(ctx context.Context, saleID uint) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, nil, saleID)
	if err != nil {
		return nil, surface("GetSale", notFoundOr(err, msgSaleNotFound))
	}
	return saleToResponse(sale), nil
}

func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, surface("ListSales", err)
	}
	data := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		data = append(data, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}
