package db

import (
	"context"
	"fmt"

	"calendars/internal/calendar"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Connect opens dsn with the named driver. Storage uniqueness errors are
// translated to gorm.ErrDuplicatedKey for both drivers.
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres, "":
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if gdb.Dialector.Name() == DriverSQLite {
		// one writer at a time; transactions hold the only connection
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return gdb, nil
}

// Ready pings the underlying connection pool.
func Ready(ctx context.Context, gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate bootstraps the calendars and events relations.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&calendar.CalendarRow{},
		&calendar.EventRow{},
	); err != nil {
		return err
	}

	stmts := []string{
		`create index if not exists idx_events_calendar_start on events(calendar_id, start_datetime);`,
		`create index if not exists idx_calendars_created on calendars(created_timestamp desc, id);`,
	}

	// sqlite cannot add a constraint to an existing table
	if gdb.Dialector.Name() == DriverPostgres {
		stmts = append(stmts, `
do $$
begin
  if not exists (select 1 from pg_constraint where conname = 'fk_events_calendar') then
    alter table events
      add constraint fk_events_calendar
      foreign key (calendar_id) references calendars(id);
  end if;
end $$;`)
	}

	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}
	return nil
}
