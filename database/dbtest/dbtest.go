// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/raseen-shahil/Med-App-sub000/database"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns a migrated in-memory SQLite database private to t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { database.Close(db) })
	return db
}

// Medicine inserts a medicine owned by sellerID.
func Medicine(t testing.TB, db *gorm.DB, sellerID, name, price string, stock int) models.Medicine {
	t.Helper()
	m := models.Medicine{
		Name:     name,
		Brand:    "Generic",
		Category: "General",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		SellerID: sellerID,
	}
	require.NoError(t, db.Create(&m).Error)
	return m
}

// LockedTables records the table of every query issued with a row lock, in
// the order the locks were taken.
func LockedTables(t testing.TB, db *gorm.DB) func() []string {
	t.Helper()
	var (
		mu     sync.Mutex
		tables []string
	)
	err := db.Callback().Query().Before("gorm:query").Register("dbtest:locked_tables", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Clauses["FOR"]; ok {
			mu.Lock()
			tables = append(tables, tx.Statement.Table)
			mu.Unlock()
		}
	})
	require.NoError(t, err)
	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), tables...)
	}
}
