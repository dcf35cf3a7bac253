// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"school-service/internal/model"
)

// PostgresDSNEnv names the variable holding a disposable Postgres database
// for the tests that need real row locks.
const PostgresDSNEnv = "TEST_POSTGRES_DSN"

// NewDB opens a migrated SQLite database in a temp dir that is removed when
// the test ends. A single connection is used so transactions serialize the
// way row locks do on Postgres.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openSQLite(t, "_busy_timeout=5000", 1)
}

// NewPooledDB is NewDB with conns connections. Every transaction begins
// IMMEDIATE, taking the database write lock up front, so concurrent
// transactions queue on the busy timeout instead of failing on upgrade.
func NewPooledDB(t *testing.T, conns int) *gorm.DB {
	t.Helper()
	return openSQLite(t, "_busy_timeout=10000&_txlock=immediate", conns)
}

// NewPostgresDB opens the database named by TEST_POSTGRES_DSN and skips the
// test when it is unset. The school and student tables are dropped before
// and after the test.
func NewPostgresDB(t *testing.T, conns int) *gorm.DB {
	t.Helper()

	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresDSNEnv)
	}
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open postgres: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(conns)

	drop := func() {
		if err := db.Migrator().DropTable(&model.Student{}, &model.School{}); err != nil {
			t.Errorf("failed to drop test tables: %v", err)
		}
	}
	drop()
	t.Cleanup(func() {
		drop()
		sqlDB.Close()
	})

	if err := db.AutoMigrate(&model.School{}, &model.Student{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func openSQLite(t *testing.T, params string, conns int) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path+"?"+params), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&model.School{}, &model.Student{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
