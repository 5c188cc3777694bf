package infra

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"naxospos/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and brings the schema
// up to date via Migrate.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), GormConfig())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// GormConfig is shared by every dialector so timestamps are always UTC and
// unique violations surface as gorm.ErrDuplicatedKey.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// Migrate runs AutoMigrate for every model and then applies the idempotent DDL
// that GORM tags cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Location{},
		&model.Product{},
		&model.Variant{},
		&model.VariantPrice{},
		&model.Flavor{},
		&model.User{},
		&model.Sale{},
		&model.SaleItem{},
		&model.SalePayment{},
		&model.CashShift{},
		&model.CashShiftSummary{},
		&model.Receipt{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// OpenShiftIndex is the partial unique index guaranteeing one open shift per location.
const OpenShiftIndex = "uq_cash_shifts_open_location"

// applySchemaPatches runs idempotent DDL statements. Partial indexes use syntax
// shared by PostgreSQL and SQLite so the same patch runs in tests.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS ` + OpenShiftIndex + `
		    ON cash_shifts (location_id) WHERE is_closed = false`,
		`CREATE INDEX IF NOT EXISTS idx_sales_location_opened
		    ON sales (location_id, opened_at)`,
		`CREATE INDEX IF NOT EXISTS idx_variant_prices_window
		    ON variant_prices (variant_id, valid_from)`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}

// IsUniqueViolation reports whether err comes from a unique constraint or index,
// whether translated by GORM, raised by pgx (SQLSTATE 23505) or by SQLite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
