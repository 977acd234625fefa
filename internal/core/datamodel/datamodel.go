// Package datamodel holds the relational shapes of every aggregate.
package datamodel

import (
	"errors"
	"strings"

	"github.com/frahmantamala/hrms/internal/core/datamodel/attendance"
	"github.com/frahmantamala/hrms/internal/core/datamodel/document"
	"github.com/frahmantamala/hrms/internal/core/datamodel/employee"
	"github.com/frahmantamala/hrms/internal/core/datamodel/holiday"
	"github.com/frahmantamala/hrms/internal/core/datamodel/leave"
	"github.com/frahmantamala/hrms/internal/core/datamodel/notification"
	"github.com/frahmantamala/hrms/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/hrms/internal/core/datamodel/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&user.PasswordHistory{},
		&user.PasswordResetToken{},
		&employee.Employee{},
		&employee.Profile{},
		&employee.Skill{},
		&attendance.Record{},
		&leave.Type{},
		&leave.Request{},
		&timesheet.Entry{},
		&timesheet.Lock{},
		&notification.Notification{},
		&holiday.Holiday{},
		&document.Document{},
	}
}

// AutoMigrate creates the schema for drivers that are not managed by goose (sqlite, mysql) and for tests.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// OpenSQLite opens a sqlite database (a file path or ":memory:"). sqlite allows one writer, so the
// pool is pinned to a single connection; for ":memory:" that also keeps every query on the same database.
func OpenSQLite(dsn string, lg gormlogger.Interface) (*gorm.DB, error) {
	if lg == nil {
		lg = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: lg})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// OpenTestDB is an in-memory, fully migrated database for repository and handler tests.
func OpenTestDB() (*gorm.DB, error) {
	db, err := OpenSQLite(":memory:", nil)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// IsDuplicateKey reports a unique-constraint violation on any of the supported drivers.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
