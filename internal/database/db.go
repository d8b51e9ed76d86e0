package database

import (
	"bytes"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"inventario/internal/config"
	"inventario/internal/models"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// sqliteDriverName is mattn/go-sqlite3 with LOWER replaced by a Unicode-aware
// version, so case-insensitive search agrees with strings.ToLower for
// accented names.
const sqliteDriverName = "sqlite3_inventario"

func init() {
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", lower, true)
		},
	})
}

func lower(v any) any {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []byte:
		return bytes.ToLower(s)
	default:
		return v
	}
}

// Open connects to the configured database and creates the productos table
// when it is missing. The returned handle keeps cfg.MaxIdleConns idle
// connections (zero by default), so every store operation that releases its
// connection really closes it.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := buildDialector(cfg.DBDriver, cfg.DatabaseDSN, cfg.LockTimeout)
	if err != nil {
		return nil, fmt.Errorf("database: build dialector: %w", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	if err := EnsureSchema(db, log); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("database ready",
		zap.String("driver", cfg.DBDriver),
		zap.Duration("lock_timeout", cfg.LockTimeout),
	)
	return db, nil
}

// EnsureSchema creates the productos table if it does not exist. Existing
// tables are left untouched.
func EnsureSchema(db *gorm.DB, log *zap.Logger) error {
	m := db.Migrator()
	if m.HasTable(&models.Product{}) {
		return nil
	}
	if err := m.CreateTable(&models.Product{}); err != nil {
		return fmt.Errorf("database: create productos: %w", err)
	}
	log.Info("productos table created")
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func buildDialector(driver, dsn string, lockTimeout time.Duration) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.New(sqlite.Config{
			DriverName: sqliteDriverName,
			DSN:        withLockTimeout(driver, dsn, lockTimeout),
		}), nil
	case "postgres":
		return postgres.Open(withLockTimeout(driver, dsn, lockTimeout)), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres)", driver)
	}
}

// withLockTimeout makes writers wait for a competing writer's lock instead of
// failing at once. An explicit setting already present in the DSN wins.
func withLockTimeout(driver, dsn string, d time.Duration) string {
	ms := strconv.FormatInt(d.Milliseconds(), 10)

	switch driver {
	case "sqlite":
		if strings.Contains(dsn, "_busy_timeout=") || strings.Contains(dsn, "_timeout=") {
			return dsn
		}
		return appendQuery(dsn, "_busy_timeout", ms)
	case "postgres":
		if strings.Contains(dsn, "lock_timeout") {
			return dsn
		}
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			return appendQuery(dsn, "lock_timeout", ms)
		}
		return strings.TrimSpace(dsn) + " lock_timeout=" + ms
	}
	return dsn
}

func appendQuery(dsn, key, value string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + url.QueryEscape(value)
}
