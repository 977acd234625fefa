package datamodel

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLDriverName is the database/sql driver gorm registers for cfg.Driver, as sqlx needs it for bind vars.
func SQLDriverName(driver string) string {
	switch driver {
	case internal.DriverPostgres:
		return "pgx"
	case internal.DriverMySQL:
		return "mysql"
	default:
		return "sqlite3"
	}
}

// NewLogger routes gorm's slow-query and error output through slog.
func NewLogger(lg *slog.Logger) gormlogger.Interface {
	return gormlogger.New(
		slog.NewLogLogger(lg.Handler(), slog.LevelWarn),
		gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// Open connects to a relational backend and applies the pool settings.
func Open(cfg internal.DatabaseConfig, lg *slog.Logger) (*gorm.DB, error) {
	gl := NewLogger(lg)

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case internal.DriverPostgres:
		db, err = gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{Logger: gl, TranslateError: true})
	case internal.DriverMySQL:
		db, err = gorm.Open(mysql.Open(cfg.GetDSN()), &gorm.Config{Logger: gl, TranslateError: true})
	case internal.DriverSQLite:
		return OpenSQLite(cfg.GetDSN(), gl)
	default:
		return nil, fmt.Errorf("driver %q is not relational", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	return db, nil
}
