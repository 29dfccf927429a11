package gormpersistence_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/NeNorvalls/Secure-Notes-App/internal/infra/setup"
)

// openTestDB 返回位于临时目录、已完成迁移的 SQLite 数据库
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := setup.OpenDatabase(setup.DatabaseOptions{
		Driver:     setup.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
		LogLevel:   logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, setup.MigrateDB(db))
	t.Cleanup(func() { _ = setup.CloseDatabase(db) })
	return db
}
