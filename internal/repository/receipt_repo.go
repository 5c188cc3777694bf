package repository

import (
	"context"
	"time"

	"naxospos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReceiptRepository interface {
	// Upsert inserts or replaces the receipt row of a sale.
	Upsert(ctx context.Context, r *model.Receipt) error
	FindBySaleID(ctx context.Context, saleID uint) (*model.Receipt, error)
	ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Receipt, error)
}

type receiptRepo struct{ db *gorm.DB }

func NewReceiptRepository(db *gorm.DB) ReceiptRepository { return &receiptRepo{db: db} }

func (r *receiptRepo) Upsert(ctx context.Context, rec *model.Receipt) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sale_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total", "status", "pdf_path", "sent_to", "retry_count", "next_retry_at", "last_error", "updated_at",
		}),
	}).Create(rec).Error
}

func (r *receiptRepo) FindBySaleID(ctx context.Context, saleID uint) (*model.Receipt, error) {
	var rec model.Receipt
	err := r.db.WithContext(ctx).Where("sale_id = ?", saleID).First(&rec).Error
	return &rec, err
}

// ListPendingRetries returns failed receipts whose next retry is due.
func (r *receiptRepo) ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Receipt, error) {
	var recs []model.Receipt
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", model.ReceiptError, now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}
