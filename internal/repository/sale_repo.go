package repository

import (
	"context"
	"time"

	"naxospos/internal/dto"
	"naxospos/internal/model"

	"gorm.io/gorm"
)

// SaleRepository persists the Sale aggregate (header, items, payments).
// Every write takes the caller's transaction; nil means the repository handle.
type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Sale, error)
	CreateItems(ctx context.Context, tx *gorm.DB, items []model.SaleItem) error
	FindItem(ctx context.Context, tx *gorm.DB, id uint) (*model.SaleItem, error)
	UpdateItem(ctx context.Context, tx *gorm.DB, item *model.SaleItem) error
	DeleteItem(ctx context.Context, tx *gorm.DB, id uint) error
	CreatePayments(ctx context.Context, tx *gorm.DB, payments []model.SalePayment) error
	LockOpen(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	MarkPaid(ctx context.Context, tx *gorm.DB, s *model.Sale) (bool, error)
	MarkCancelled(ctx context.Context, tx *gorm.DB, id uint, reason string, at time.Time) (bool, error)
	LockUnpaid(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)
	ListInWindow(ctx context.Context, tx *gorm.DB, locationID uint, from, to time.Time, status model.SaleStatus) ([]model.Sale, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

// withDetails preloads everything a SaleResponse renders.
func withDetails(q *gorm.DB) *gorm.DB {
	return q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Variant.Product").
		Preload("Items.Flavor").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return conn(r.db, tx).WithContext(ctx).Omit("Items", "Payments").Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Sale, error) {
	var s model.Sale
	err := withDetails(conn(r.db, tx).WithContext(ctx)).First(&s, id).Error
	return &s, err
}

func (r *saleRepo) CreateItems(ctx context.Context, tx *gorm.DB, items []model.SaleItem) error {
	if len(items) == 0 {
		return nil
	}
	return conn(r.db, tx).WithContext(ctx).Omit("Variant", "Flavor").Create(&items).Error
}

func (r *saleRepo) FindItem(ctx context.Context, tx *gorm.DB, id uint) (*model.SaleItem, error) {
	var item model.SaleItem
	err := conn(r.db, tx).WithContext(ctx).Preload("Variant.Product").Preload("Flavor").First(&item, id).Error
	return &item, err
}

func (r *saleRepo) UpdateItem(ctx context.Context, tx *gorm.DB, item *model.SaleItem) error {
	return conn(r.db, tx).WithContext(ctx).Model(&model.SaleItem{}).Where("id = ?", item.ID).
		Updates(map[string]any{
			"quantity":   item.Quantity,
			"unit_price": item.UnitPrice,
			"line_total": item.LineTotal,
		}).Error
}

func (r *saleRepo) DeleteItem(ctx context.Context, tx *gorm.DB, id uint) error {
	return conn(r.db, tx).WithContext(ctx).Delete(&model.SaleItem{}, id).Error
}

func (r *saleRepo) CreatePayments(ctx context.Context, tx *gorm.DB, payments []model.SalePayment) error {
	if len(payments) == 0 {
		return nil
	}
	return conn(r.db, tx).WithContext(ctx).Create(&payments).Error
}

// LockOpen rewrites the status of an OPEN sale with itself. The row lock it
// takes is held until tx ends; false means the sale is missing or not OPEN.
func (r *saleRepo) LockOpen(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	res := conn(r.db, tx).WithContext(ctx).Model(&model.Sale{}).
		Where("id = ? AND status = ?", id, model.SaleOpen).
		Update("status", model.SaleOpen)
	return res.RowsAffected == 1, res.Error
}

// MarkPaid moves an OPEN sale to PAID with its computed totals. It reports
// false when the row was no longer OPEN, e.g. a concurrent finalize won.
func (r *saleRepo) MarkPaid(ctx context.Context, tx *gorm.DB, s *model.Sale) (bool, error) {
	res := conn(r.db, tx).WithContext(ctx).Model(&model.Sale{}).
		Where("id = ? AND status = ?", s.ID, model.SaleOpen).
		Updates(map[string]any{
			"status":   model.SalePaid,
			"paid_at":  s.PaidAt,
			"subtotal": s.Subtotal,
			"tax":      s.Tax,
			"total":    s.Total,
		})
	return res.RowsAffected == 1, res.Error
}

// MarkCancelled moves an OPEN sale to CANCELLED; false when it was not OPEN.
func (r *saleRepo) MarkCancelled(ctx context.Context, tx *gorm.DB, id uint, reason string, at time.Time) (bool, error) {
	res := conn(r.db, tx).WithContext(ctx).Model(&model.Sale{}).
		Where("id = ? AND status = ?", id, model.SaleOpen).
		Updates(map[string]any{
			"status":              model.SaleCancelled,
			"cancelled_at":        at,
			"cancellation_reason": reason,
		})
	return res.RowsAffected == 1, res.Error
}

// Delete removes payments, items and the header, children first.
// LockUnpaid takes the row lock on a sale that is not PAID; false means the
// sale is missing or already PAID.
func (r *saleRepo) LockUnpaid(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	res := conn(r.db, tx).WithContext(ctx).Model(&model.Sale{}).
		Where("id = ? AND status <> ?", id, model.SalePaid).
		Update("status", gorm.Expr("status"))
	return res.RowsAffected == 1, res.Error
}

// Delete removes a non-PAID sale with its items and payments. It reports false
// when the header was gone or PAID by then; callers must roll back tx so the
// child deletes are undone.
func (r *saleRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := conn(r.db, tx).WithContext(ctx)
	if err := db.Where("sale_id = ?", id).Delete(&model.SalePayment{}).Error; err != nil {
		return false, err
	}
	if err := db.Where("sale_id = ?", id).Delete(&model.SaleItem{}).Error; err != nil {
		return false, err
	}
	res := db.Where("status <> ?", model.SalePaid).Delete(&model.Sale{}, id)
	return res.RowsAffected == 1, res.Error
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64
	offset, limit := paginate(filter.Page, filter.Limit)

	q := r.db.WithContext(ctx).Model(&model.Sale{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.LocationID != 0 {
		q = q.Where("location_id = ?", filter.LocationID)
	}
	if filter.CashierID != 0 {
		q = q.Where("cashier_id = ?", filter.CashierID)
	}
	from, to := dayRange(filter.From, filter.To)
	if !from.IsZero() {
		q = q.Where("opened_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("opened_at < ?", to)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := withDetails(q).
		Order("opened_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&sales).Error

	return sales, total, err
}

// ListInWindow returns sales at a location opened within [from, to], with
// items and payments. An empty status selects every status.
func (r *saleRepo) ListInWindow(ctx context.Context, tx *gorm.DB, locationID uint, from, to time.Time, status model.SaleStatus) ([]model.Sale, error) {
	var sales []model.Sale
	q := conn(r.db, tx).WithContext(ctx).
		Where("location_id = ? AND opened_at >= ? AND opened_at <= ?", locationID, from, to)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := withDetails(q).Order("opened_at ASC").Find(&sales).Error
	return sales, err
}
