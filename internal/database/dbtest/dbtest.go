// Package dbtest provides migrated in-memory sqlite databases for tests.
package dbtest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/arrendix/protecciones/internal/database"
	"github.com/arrendix/protecciones/migration"
)

// Open returns an in-memory database with the full schema applied. The pool
// is pinned to one connection so every query sees the same memory database.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.Options(false))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	_, err = migration.NewMigrator(db, migration.Schema()...).Up()
	require.NoError(t, err)
	return db
}
