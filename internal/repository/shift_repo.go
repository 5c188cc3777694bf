package repository

import (
	"context"
	"time"

	"naxospos/internal/dto"
	"naxospos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ShiftRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.CashShift) error
	FindOpenByLocation(ctx context.Context, tx *gorm.DB, locationID uint) (*model.CashShift, error)
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.CashShift, error)
	Close(ctx context.Context, tx *gorm.DB, id, closedBy uint, counted decimal.Decimal, notes *string, at time.Time) (bool, error)
	CreateSummary(ctx context.Context, tx *gorm.DB, s *model.CashShiftSummary) error
	ListClosed(ctx context.Context, filter dto.ShiftFilter) ([]model.CashShift, int64, error)
	DB() *gorm.DB
}

type shiftRepo struct{ db *gorm.DB }

func NewShiftRepository(db *gorm.DB) ShiftRepository { return &shiftRepo{db: db} }

func (r *shiftRepo) DB() *gorm.DB { return r.db }

func (r *shiftRepo) Create(ctx context.Context, tx *gorm.DB, s *model.CashShift) error {
	return conn(r.db, tx).WithContext(ctx).Omit("Location", "Summary").Create(s).Error
}

func (r *shiftRepo) FindOpenByLocation(ctx context.Context, tx *gorm.DB, locationID uint) (*model.CashShift, error) {
	var s model.CashShift
	err := conn(r.db, tx).WithContext(ctx).
		Where("location_id = ? AND is_closed = ?", locationID, false).
		First(&s).Error
	return &s, err
}

func (r *shiftRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.CashShift, error) {
	var s model.CashShift
	err := conn(r.db, tx).WithContext(ctx).Preload("Summary").First(&s, id).Error
	return &s, err
}

// Close flips an open shift to closed. It reports false when the shift was
// already closed, so a summary is never written twice.
func (r *shiftRepo) Close(ctx context.Context, tx *gorm.DB, id, closedBy uint, counted decimal.Decimal, notes *string, at time.Time) (bool, error) {
	res := conn(r.db, tx).WithContext(ctx).Model(&model.CashShift{}).
		Where("id = ? AND is_closed = ?", id, false).
		Updates(map[string]any{
			"is_closed":            true,
			"closed_at":            at,
			"closed_by":            closedBy,
			"closing_cash_counted": counted,
			"notes":                notes,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *shiftRepo) CreateSummary(ctx context.Context, tx *gorm.DB, s *model.CashShiftSummary) error {
	return conn(r.db, tx).WithContext(ctx).Create(s).Error
}

// ListClosed returns closed shifts, newest first, with their frozen summaries.
func (r *shiftRepo) ListClosed(ctx context.Context, filter dto.ShiftFilter) ([]model.CashShift, int64, error) {
	var shifts []model.CashShift
	var total int64
	offset, limit := paginate(filter.Page, filter.Limit)

	q := r.db.WithContext(ctx).Model(&model.CashShift{}).Where("is_closed = ?", true)
	if filter.LocationID != 0 {
		q = q.Where("location_id = ?", filter.LocationID)
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
	err := q.Preload("Summary").
		Order("closed_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&shifts).Error
	return shifts, total, err
}
