// Package dbtest opens a migrated database for tests.
//
// By default each call gets a fresh SQLite file under tb.TempDir(). When
// TEST_POSTGRES_DSN is set the shared Postgres database is used instead and
// emptied before the test; run those with -p 1.
package dbtest

import (
	"os"
	"path/filepath"
	"testing"

	"calendars/internal/db"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func Open(tb testing.TB) *gorm.DB {
	tb.Helper()

	driver, dsn := db.DriverSQLite, filepath.Join(tb.TempDir(), "calendars.db")
	if pg := os.Getenv("TEST_POSTGRES_DSN"); pg != "" {
		driver, dsn = db.DriverPostgres, pg
	}

	gdb, err := db.Connect(driver, dsn)
	if err != nil {
		tb.Fatalf("connect %s: %v", driver, err)
	}
	gdb.Logger = gormLogger.Default.LogMode(gormLogger.Silent)

	if err := db.Migrate(gdb); err != nil {
		tb.Fatalf("migrate: %v", err)
	}

	if driver == db.DriverPostgres {
		for _, stmt := range []string{`delete from events`, `delete from calendars`} {
			if err := gdb.Exec(stmt).Error; err != nil {
				tb.Fatalf("reset tables: %v", err)
			}
		}
	}

	tb.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
