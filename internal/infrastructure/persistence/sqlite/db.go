// Package sqlite implements the gradebook repositories on SQLite through gorm.
// It is the default storage backend.
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/SamijonovSardor/Programming-topshiriq/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options configures the SQLite database.
type Options struct {
	// Path of the database file. ":memory:" gives a private in-memory database.
	Path string

	ConnMaxLifetime time.Duration

	// LogQueries logs every statement at info level. Otherwise only slow
	// statements and errors are logged.
	LogQueries bool
}

// DB owns the gorm handle shared by the repositories.
type DB struct {
	gorm *gorm.DB
}

// Open opens (creating if needed) the database file and migrates the schema.
func Open(opts Options, log *logger.Logger) (*DB, error) {
	gdb, err := gorm.Open(sqlite.Open(opts.Path), &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(log, opts.LogQueries),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", opts.Path, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	// SQLite has a single writer. One connection serializes the
	// check-then-insert transactions below and spares us "database is locked".
	sqlDB.SetMaxOpenConns(1)
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	db := New(gdb)
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New wraps an already opened gorm handle. The schema is not touched.
func New(gdb *gorm.DB) *DB {
	return &DB{gorm: gdb}
}

// Migrate creates the tables and indexes that do not exist yet.
func (db *DB) Migrate() error {
	if err := db.gorm.AutoMigrate(&studentModel{}, &testModel{}, &resultModel{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	sqlDB, err := db.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Students returns the student repository.
func (db *DB) Students() *StudentRepository { return &StudentRepository{db: db.gorm} }

// Tests returns the test repository.
func (db *DB) Tests() *TestRepository { return &TestRepository{db: db.gorm} }

// Results returns the result repository.
func (db *DB) Results() *ResultRepository { return &ResultRepository{db: db.gorm} }

// gormWriter routes gorm's log lines into the service logger.
type gormWriter struct {
	log *logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Infof(format, args...)
}

func newGormLogger(log *logger.Logger, verbose bool) gormlogger.Interface {
	if log == nil {
		return gormlogger.Discard
	}
	level := gormlogger.Warn
	if verbose {
		level = gormlogger.Info
	}
	return gormlogger.New(gormWriter{log: log.With(logger.Component("sqlite"))}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}
