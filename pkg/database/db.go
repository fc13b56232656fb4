// Package database owns the GORM handle shared by the repositories, the
// migration runner and the seeders. Connect must run before anything
// touches DB.
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlog "gorm.io/gorm/logger"

	"github.com/agriconnect-ug/agriconnect/config"
	"github.com/agriconnect-ug/agriconnect/pkg/metrics"
)

var DB *gorm.DB

// dialectors maps DB_DRIVER values onto GORM drivers. SQLite backs local
// development and the test suite; Postgres is the production target.
var dialectors = map[string]func(string) gorm.Dialector{
	"sqlite":    sqlite.Open,
	"postgres":  postgres.Open,
	"mysql":     mysql.Open,
	"sqlserver": sqlserver.Open,
}

// Connect opens the configured database, tunes the pool and wires the
// query-timing callbacks. Failures come back as errors; the caller
// decides whether they are fatal.
func Connect() error {
	driver := config.DatabaseDriver()
	open, ok := dialectors[driver]
	if !ok {
		return fmt.Errorf("database: unsupported DB_DRIVER %q (supported: sqlite, postgres, mysql, sqlserver)", driver)
	}

	db, err := gorm.Open(open(config.DatabaseDSN()), &gorm.Config{
		// GORM's own logger stays silent; pkg/logger carries query errors.
		Logger: gormlog.Default.LogMode(gormlog.Silent),
		// Driver-specific unique violations surface as gorm.ErrDuplicatedKey
		// so repositories can spot duplicates without driver imports.
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("database: open %s: %w", driver, err)
	}

	timeQueries(db)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database: unwrap sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(config.Int("DB_MAX_OPEN_CONNS", 25))
	sqlDB.SetMaxIdleConns(config.Int("DB_MAX_IDLE_CONNS", 10))
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database: ping: %w", err)
	}

	DB = db
	return nil
}

// timeQueries observes every query through the Prometheus histogram,
// labelled by operation.
func timeQueries(db *gorm.DB) {
	start := func(db *gorm.DB) {
		db.InstanceSet("metrics:start", time.Now())
	}
	observe := func(op string) func(*gorm.DB) {
		return func(db *gorm.DB) {
			if v, ok := db.InstanceGet("metrics:start"); ok {
				if t, ok := v.(time.Time); ok {
					metrics.ObserveDBQuery(op, t)
				}
			}
		}
	}

	_ = db.Callback().Query().Before("gorm:query").Register("metrics:query_start", start)
	_ = db.Callback().Query().After("gorm:query").Register("metrics:query_done", observe("select"))
	_ = db.Callback().Create().Before("gorm:create").Register("metrics:create_start", start)
	_ = db.Callback().Create().After("gorm:create").Register("metrics:create_done", observe("insert"))
	_ = db.Callback().Update().Before("gorm:update").Register("metrics:update_start", start)
	_ = db.Callback().Update().After("gorm:update").Register("metrics:update_done", observe("update"))
	_ = db.Callback().Delete().Before("gorm:delete").Register("metrics:delete_start", start)
	_ = db.Callback().Delete().After("gorm:delete").Register("metrics:delete_done", observe("delete"))
}
