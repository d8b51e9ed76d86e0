package database

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"inventario/internal/config"
	"inventario/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWithLockTimeout(t *testing.T) {
	cases := []struct {
		name   string
		driver string
		dsn    string
		want   string
	}{
		{"sqlite plain", "sqlite", "inventario.db", "inventario.db?_busy_timeout=10000"},
		{"sqlite with query", "sqlite", "file:inv.db?cache=shared", "file:inv.db?cache=shared&_busy_timeout=10000"},
		{"sqlite explicit", "sqlite", "inv.db?_busy_timeout=500", "inv.db?_busy_timeout=500"},
		{"postgres keyword", "postgres", "host=db user=app dbname=inv", "host=db user=app dbname=inv lock_timeout=10000"},
		{"postgres url", "postgres", "postgres://app@db/inv?sslmode=disable", "postgres://app@db/inv?sslmode=disable&lock_timeout=10000"},
		{"postgres explicit", "postgres", "host=db lock_timeout=1000", "host=db lock_timeout=1000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, withLockTimeout(tc.driver, tc.dsn, 10*time.Second))
		})
	}
}

func TestBuildDialectorUnknownDriver(t *testing.T) {
	_, err := buildDialector("mssql", "x", time.Second)
	assert.Error(t, err)
}

func TestOpenCreatesTableIdempotently(t *testing.T) {
	cfg := &config.Config{
		DBDriver:    "sqlite",
		DatabaseDSN: filepath.Join(t.TempDir(), "inventario.db"),
		LockTimeout: time.Second,
	}

	db, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Product{Code: "A1", Name: "Widget"}).Error)
	require.NoError(t, Close(db))

	db, err = Open(cfg, zap.NewNop())
	require.NoError(t, err)
	defer Close(db)

	assert.True(t, db.Migrator().HasTable("productos"))
	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "reopening must not drop existing rows")
}

func TestLowerIsUnicodeAware(t *testing.T) {
	cfg := &config.Config{
		DBDriver:    "sqlite",
		DatabaseDSN: filepath.Join(t.TempDir(), "inventario.db"),
		LockTimeout: time.Second,
	}
	db, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	defer Close(db)

	var got string
	require.NoError(t, db.Raw("SELECT LOWER(?)", "ÑANDÚ Grande").Scan(&got).Error)
	assert.Equal(t, "ñandú grande", got)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	var null sql.NullString
	require.NoError(t, sqlDB.QueryRow("SELECT LOWER(NULL)").Scan(&null))
	assert.False(t, null.Valid)
}
