// Package testdb opens migrated throwaway databases for tests.
package testdb

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/Skotchmaster/zefir_shop/internal/models"
	pkgdb "github.com/Skotchmaster/zefir_shop/pkg/db"
)

// InitTestDB returns a fresh in-memory sqlite database with the full schema.
func InitTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	return Open(t, "sqlite", ":memory:")
}

// Open connects with the given driver, migrates, and closes the pool on cleanup.
func Open(t testing.TB, driver, dsn string) *gorm.DB {
	t.Helper()

	db, err := pkgdb.Open(context.Background(), driver, dsn)
	if err != nil {
		t.Fatalf("open %s test db: %v", driver, err)
	}
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	if err := models.Migrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}
