// Package testutil builds throwaway databases for package tests: a migrated
// SQLite file per test (pure Go, no cgo) and a small seeded catalog.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"naxospos/internal/infra"
	"naxospos/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a migrated SQLite database under t.TempDir(). A single
// connection keeps transactions serialized like row locks would.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "naxos.db") + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), infra.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infra.Migrate(db))
	return db
}

// Catalog is the reference data seeded by SeedCatalog.
type Catalog struct {
	Location         model.Location // id 1, active
	InactiveLocation model.Location
	Smoothie         model.Variant // list price 5.00, no history
	Frappe           model.Variant // list price 9.99, current history price 4.50
	Retired          model.Variant // inactive
	Unpriced         model.Variant // neither list price nor history
	Fresa            model.Flavor
	Mango            model.Flavor
}

func Dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func DecPtr(s string) *decimal.Decimal {
	d := Dec(s)
	return &d
}

// SeedCatalog inserts locations, products, variants, prices and flavors.
func SeedCatalog(t testing.TB, db *gorm.DB) *Catalog {
	t.Helper()
	c := &Catalog{}

	c.Location = model.Location{ID: 1, Name: "NAXOS Principal", IsActive: true}
	require.NoError(t, db.Create(&c.Location).Error)
	c.InactiveLocation = model.Location{Name: "Sucursal Cerrada", IsActive: true}
	require.NoError(t, db.Create(&c.InactiveLocation).Error)
	// is_active defaults to true, so the false value is written explicitly
	require.NoError(t, db.Model(&c.InactiveLocation).Update("is_active", false).Error)
	c.InactiveLocation.IsActive = false

	smoothies := model.Product{Name: "Smoothie", IsActive: true}
	require.NoError(t, db.Create(&smoothies).Error)
	frappes := model.Product{Name: "Frappe", IsActive: true}
	require.NoError(t, db.Create(&frappes).Error)

	c.Smoothie = model.Variant{ProductID: smoothies.ID, VariantName: "16oz", Price: DecPtr("5.00"), IsActive: true}
	c.Frappe = model.Variant{ProductID: frappes.ID, VariantName: "12oz", Price: DecPtr("9.99"), IsActive: true}
	c.Retired = model.Variant{ProductID: smoothies.ID, VariantName: "32oz", Price: DecPtr("8.00"), IsActive: true}
	c.Unpriced = model.Variant{ProductID: frappes.ID, VariantName: "Mini", IsActive: true}
	for _, v := range []*model.Variant{&c.Smoothie, &c.Frappe, &c.Retired, &c.Unpriced} {
		require.NoError(t, db.Omit("Product").Create(v).Error)
	}
	require.NoError(t, db.Model(&c.Retired).Update("is_active", false).Error)
	c.Retired.IsActive = false

	now := time.Now().UTC()
	expired := now.Add(-time.Hour)
	require.NoError(t, db.Create(&model.VariantPrice{
		VariantID: c.Frappe.ID, Price: Dec("4.00"), ValidFrom: now.Add(-48 * time.Hour), ValidTo: &expired,
	}).Error)
	require.NoError(t, db.Create(&model.VariantPrice{
		VariantID: c.Frappe.ID, Price: Dec("4.50"), ValidFrom: expired,
	}).Error)

	c.Fresa = model.Flavor{Name: "Fresa"}
	c.Mango = model.Flavor{Name: "Mango"}
	require.NoError(t, db.Create(&c.Fresa).Error)
	require.NoError(t, db.Create(&c.Mango).Error)

	return c
}

// SeedUser inserts an active user with the given bcrypt hash.
func SeedUser(t testing.TB, db *gorm.DB, username, passwordHash, role string) model.User {
	t.Helper()
	u := model.User{Username: username, PasswordHash: passwordHash, Role: role, IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	return u
}
